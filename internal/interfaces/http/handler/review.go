package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/tutoring"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	BaseHandler
	reviewService *tutoring.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *tutoring.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create leaves a review on a completed session
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input tutoring.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.reviewService.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}
