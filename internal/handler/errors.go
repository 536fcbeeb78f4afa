package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
)

// failGate maps gating and resolution errors to their API error codes.
func failGate(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamUpcoming):
		response.Fail(c, http.StatusForbidden, response.ErrExamUpcoming)
	case errors.Is(err, service.ErrNotAllowedForExam):
		response.Fail(c, http.StatusForbidden, response.ErrNotAllowedForExam)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrAgreementRequired):
		response.Fail(c, http.StatusPreconditionRequired, response.ErrAgreementRequired)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
