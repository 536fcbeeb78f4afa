package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
	"github.com/learnedu/learnedu-backend/internal/store"
)

// CreatePracticeRequest is the payload for POST /practice-exams. The
// student picks questions from the bank and a duration; everything else
// is derived.
type CreatePracticeRequest struct {
	Title            string   `json:"title" binding:"required,min=2,max=200"`
	QuestionIDs      []string `json:"questionIds" binding:"required,min=1,dive,uuid"`
	DurationMinutes  int      `json:"duration" binding:"required,min=1,max=600"`
	MarksPerQuestion float64  `json:"marksPerQuestion" binding:"min=0"`
	NegativeMarking  bool     `json:"negativeMarking"`
	NegativeMark     float64  `json:"negativeMarkValue" binding:"min=0"`
}

// PracticeService builds self-authored exams. They live entirely in the
// user's store: no database rows, no shared visibility.
type PracticeService struct {
	questions *repository.QuestionRepository
	kv        store.KV
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(questions *repository.QuestionRepository, kv store.KV) *PracticeService {
	return &PracticeService{questions: questions, kv: kv}
}

// Create assembles and stores a practice exam for the student.
func (s *PracticeService) Create(ctx context.Context, studentID uuid.UUID, req *CreatePracticeRequest) (*model.Exam, error) {
	ids := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, raw := range req.QuestionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid question id %q", raw)
		}
		ids = append(ids, id)
	}

	questions, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	marks := req.MarksPerQuestion
	if marks <= 0 {
		marks = 1
	}

	cfg, _ := json.Marshal(map[string]any{
		"negativeMarking":       req.NegativeMarking,
		"negativeMarkValue":     req.NegativeMark,
		"allowMultipleAttempts": true,
	})

	now := time.Now()
	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            req.Title,
		DurationMinutes:  req.DurationMinutes,
		TotalMarks:       marks * float64(len(questions)),
		MarksPerQuestion: marks,
		QuestionIDs:      ids,
		Published:        true,
		Config:           cfg,
		AccessType:       model.AccessTypeAll,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	practice := &store.PracticeExam{Exam: *exam, Questions: questions}
	state := store.NewUserState(s.kv, studentID.String())
	if err := state.SavePracticeExam(ctx, exam.ID.String(), practice); err != nil {
		return nil, fmt.Errorf("save practice exam: %w", err)
	}
	return exam, nil
}

// Get loads one of the student's practice exams.
func (s *PracticeService) Get(ctx context.Context, studentID uuid.UUID, examID string) (*store.PracticeExam, error) {
	state := store.NewUserState(s.kv, studentID.String())
	practice, err := state.PracticeExam(ctx, examID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return practice, nil
}
