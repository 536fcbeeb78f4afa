package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnedu/learnedu-backend/internal/response"
	"github.com/learnedu/learnedu-backend/internal/service"
)

// HierarchyHandler exposes the read-only question hierarchy.
type HierarchyHandler struct {
	hierarchyService *service.HierarchyService
}

// NewHierarchyHandler creates a new HierarchyHandler.
func NewHierarchyHandler(hierarchyService *service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchyService: hierarchyService}
}

// ListClasses godoc
// GET /api/v1/classes
func (h *HierarchyHandler) ListClasses(c *gin.Context) {
	classes, err := h.hierarchyService.Classes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// ListGroups godoc
// GET /api/v1/classes/:class_id/groups
func (h *HierarchyHandler) ListGroups(c *gin.Context) {
	classID, err := uuid.Parse(c.Param("class_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	groups, err := h.hierarchyService.Groups(c.Request.Context(), classID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// ListSubjects godoc
// GET /api/v1/groups/:group_id/subjects
func (h *HierarchyHandler) ListSubjects(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	subjects, err := h.hierarchyService.Subjects(c.Request.Context(), groupID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListChapters godoc
// GET /api/v1/subjects/:subject_id/chapters
func (h *HierarchyHandler) ListChapters(c *gin.Context) {
	subjectID, err := uuid.Parse(c.Param("subject_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	chapters, err := h.hierarchyService.Chapters(c.Request.Context(), subjectID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapters": chapters})
}

// ListTopics godoc
// GET /api/v1/chapters/:chapter_id/topics
func (h *HierarchyHandler) ListTopics(c *gin.Context) {
	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	topics, err := h.hierarchyService.Topics(c.Request.Context(), chapterID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"topics": topics})
}
