package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/attempt"
	"github.com/learnedu/learnedu-backend/internal/middleware"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
	"github.com/learnedu/learnedu-backend/internal/validator"
)

// ExamHandler handles the exam lobby, instructions gate and attempt start.
type ExamHandler struct {
	examService     *service.ExamService
	practiceService *service.PracticeService
	manager         *attempt.Manager
	log             zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, practiceService *service.PracticeService, manager *attempt.Manager, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService:     examService,
		practiceService: practiceService,
		manager:         manager,
		log:             log.With().Str("component", "exam_handler").Logger(),
	}
}

// ListMine godoc
// GET /api/v1/exams/mine
// Returns the exams visible to the student, with lobby statuses.
func (h *ExamHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	items, err := h.examService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if items == nil {
		items = []service.ExamListItem{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": items})
}

// Get godoc
// GET /api/v1/exams/:exam_id
// Returns one published exam without question bodies.
func (h *ExamHandler) Get(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		failGate(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Instructions godoc
// GET /api/v1/exams/:exam_id/instructions
// Returns the pre-attempt gating view.
func (h *ExamHandler) Instructions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.examService.Instructions(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		failGate(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// startRequest is the payload for starting an attempt.
type startRequest struct {
	Agreed bool `json:"agreed"`
}

// Start godoc
// POST /api/v1/exams/:exam_id/start
// Runs the gate and begins (or resumes) a timed attempt.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req startRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := c.Request.Context()
	studentID := claims.UserID
	practice := false

	ewq, err := h.examService.GetWithQuestions(ctx, examID)
	if err != nil {
		if !errors.Is(err, service.ErrExamNotFound) {
			failGate(c, err)
			return
		}
		// Fall back to the student's own practice exams.
		p, perr := h.practiceService.Get(ctx, studentID, examID.String())
		if perr != nil {
			failGate(c, perr)
			return
		}
		ewq = &model.ExamWithQuestions{Exam: p.Exam, Questions: p.Questions}
		practice = true
	}

	if !practice {
		if err := h.examService.CanStart(ctx, studentID, &ewq.Exam, req.Agreed); err != nil {
			failGate(c, err)
			return
		}
	} else if !req.Agreed {
		failGate(c, service.ErrAgreementRequired)
		return
	}

	a, err := h.manager.Start(studentID.String(), &ewq.Exam, ewq.Questions, practice)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("failed to start attempt")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paperView(&ewq.Exam, a))
}

// CreatePractice godoc
// POST /api/v1/practice-exams
// Assembles a self-authored exam from question-bank picks.
func (h *ExamHandler) CreatePractice(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req service.CreatePracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.practiceService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ─── Views ──────────────────────────────────────────────────────────

// paperQuestion is a prepared question with the answer key stripped.
type paperQuestion struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"question_text"`
	Options []string  `json:"options"`
	Marks   float64   `json:"marks"`
}

// paperView is the attempt payload handed to a student. The answer key
// never leaves the server.
func paperView(exam *model.Exam, a *attempt.Attempt) gin.H {
	paper := a.Paper()
	questions := make([]paperQuestion, 0, len(paper))
	for i := range paper {
		q := &paper[i]
		options := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, o.Text)
		}
		questions = append(questions, paperQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Options: options,
			Marks:   q.Marks,
		})
	}

	return gin.H{
		"exam_id":     exam.ID,
		"title":       exam.Title,
		"duration":    exam.DurationMinutes,
		"total_marks": exam.TotalMarks,
		"remaining":   a.Remaining(),
		"config":      a.Config,
		"questions":   questions,
	}
}
