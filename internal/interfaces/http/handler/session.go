package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/application/tutoring"
)

// SessionHandler handles tutoring session HTTP requests
type SessionHandler struct {
	BaseHandler
	sessionService *tutoring.SessionService
	reviewService  *tutoring.ReviewService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *tutoring.SessionService, reviewService *tutoring.ReviewService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		reviewService:  reviewService,
	}
}

// Schedule books a session with a tutor
func (h *SessionHandler) Schedule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input tutoring.ScheduleSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.sessionService.Schedule(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// ListMine returns the caller's sessions
func (h *SessionHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := h.sessionService.ListMine(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns one session
func (h *SessionHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Complete marks a session completed
func (h *SessionHandler) Complete(c *gin.Context) {
	h.transition(c, h.sessionService.Complete)
}

// Cancel cancels a scheduled session
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.sessionService.Cancel)
}

// ListReviews returns the reviews left on a session
func (h *SessionHandler) ListReviews(c *gin.Context) {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	views, err := h.reviewService.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

func (h *SessionHandler) transition(c *gin.Context, apply func(ctx context.Context, callerID, sessionID uuid.UUID) (*tutoring.SessionView, error)) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	view, err := apply(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}
