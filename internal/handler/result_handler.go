package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnedu/learnedu-backend/internal/middleware"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
	"github.com/learnedu/learnedu-backend/internal/validator"
)

// ResultHandler handles result submission and the result page.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Submit godoc
// POST /api/v1/exam-results
// Accepts a completed answer sheet. Question-bank submissions are regraded
// server-side before persisting.
func (h *ResultHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.resultService.Submit(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failGate(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ListMine godoc
// GET /api/v1/exam-results/mine
// Returns all of the student's persisted results, newest first.
func (h *ResultHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Get godoc
// GET /api/v1/exam-results/:exam_id
// Resolves the student's result for one exam and decorates it with the
// per-question review and subject history.
func (h *ResultHandler) Get(c *gin.Context) {
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

	view, err := h.resultService.View(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, view)
}
