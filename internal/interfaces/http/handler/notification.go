package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/messaging"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	BaseHandler
	notificationService *messaging.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *messaging.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, most recent first
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.Query("limit"))

	views, err := h.notificationService.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

// MarkRead marks one notification read. Foreign and unknown IDs succeed
// silently; existence is not disclosed.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MarkAllRead marks every notification of the caller read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
