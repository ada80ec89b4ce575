package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/messaging"
)

// ConversationHandler handles conversation and message HTTP requests.
// Non-members get the same generic 403 whether or not a conversation
// exists.
type ConversationHandler struct {
	BaseHandler
	messagingService *messaging.MessagingService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(messagingService *messaging.MessagingService) *ConversationHandler {
	return &ConversationHandler{messagingService: messagingService}
}

// sendMessageRequest is the body for the conversation-scoped send route;
// the conversation comes from the path
type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// directMessageRequest addresses a message to a user instead of a
// conversation, creating the conversation on first contact
type directMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
	Body        string `json:"body" binding:"required"`
}

// List returns the caller's conversations, most recently active first
func (h *ConversationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	views, err := h.messagingService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

// Start creates or reuses the direct conversation with a recipient
func (h *ConversationHandler) Start(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input messaging.StartConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.messagingService.StartConversation(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// Get returns one conversation
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	view, err := h.messagingService.GetConversation(c.Request.Context(), userID, conversationID)
	if err != nil {
		h.HandleConversationError(c, err)
		return
	}

	h.Success(c, view)
}

// GetMessages returns a conversation's history and marks it read
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	views, err := h.messagingService.GetMessages(c.Request.Context(), userID, conversationID)
	if err != nil {
		h.HandleConversationError(c, err)
		return
	}

	h.Success(c, views)
}

// SendMessage appends a message to a conversation
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.messagingService.SendMessage(c.Request.Context(), userID, messaging.SendMessageInput{
		ConversationID: conversationID,
		Body:           req.Body,
	})
	if err != nil {
		h.HandleConversationError(c, err)
		return
	}

	h.Created(c, result)
}

// SendDirect sends a message addressed to a user, creating the conversation
// on first contact
func (h *ConversationHandler) SendDirect(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req directMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.messagingService.StartConversation(c.Request.Context(), userID, messaging.StartConversationInput{
		RecipientID:  mustParseUUID(req.RecipientID),
		FirstMessage: req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// MarkRead marks a conversation read without fetching history
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conversation ID")
		return
	}

	if err := h.messagingService.MarkConversationRead(c.Request.Context(), userID, conversationID); err != nil {
		h.HandleConversationError(c, err)
		return
	}

	h.NoContent(c)
}
