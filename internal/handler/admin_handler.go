package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
	"github.com/learnedu/learnedu-backend/internal/validator"
)

// AdminHandler handles the privileged exam management surface. Content
// authoring itself lives elsewhere; this service only controls student
// visibility.
type AdminHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(examService *service.ExamService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		examService: examService,
		log:         log.With().Str("component", "admin_handler").Logger(),
	}
}

// publishRequest is the payload for publishing or unpublishing an exam.
// Published is a pointer so "false" and "absent" stay distinguishable.
type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// Publish godoc
// PATCH /api/v1/admin/exams/:exam_id/publish
// Flips an exam's student visibility.
func (h *AdminHandler) Publish(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req publishRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.SetPublished(c.Request.Context(), examID, *req.Published); err != nil {
		failGate(c, err)
		return
	}

	h.log.Info().Str("exam_id", examID.String()).Bool("published", *req.Published).Msg("exam visibility changed")
	response.Success(c, http.StatusOK, gin.H{"exam_id": examID, "published": *req.Published})
}
