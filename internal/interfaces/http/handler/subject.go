package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/tutoring"
)

// SubjectHandler handles subject reference list HTTP requests
type SubjectHandler struct {
	BaseHandler
	subjectService *tutoring.SubjectService
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(subjectService *tutoring.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// List returns every subject
func (h *SubjectHandler) List(c *gin.Context) {
	views, err := h.subjectService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// GetBySlug returns a subject by its slug
func (h *SubjectHandler) GetBySlug(c *gin.Context) {
	view, err := h.subjectService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Create adds a subject
func (h *SubjectHandler) Create(c *gin.Context) {
	var input tutoring.CreateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.subjectService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}
