package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/messaging"
)

// StartConversationInput contains input for starting a direct conversation
type StartConversationInput struct {
	RecipientID  uuid.UUID `json:"recipient_id" binding:"required"`
	Title        string    `json:"title"`
	FirstMessage string    `json:"first_message"`
}

// SendMessageInput contains input for sending a message
type SendMessageInput struct {
	ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
	Body           string    `json:"body" binding:"required"`
}

// MessageView is the API representation of a message
type MessageView struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
	Read           bool      `json:"read"`
}

// ConversationView is the API representation of a conversation list entry
type ConversationView struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title,omitempty"`
	Members     []identity.PublicProfile `json:"members"`
	LastMessage *MessageView             `json:"last_message,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// StartConversationResult is the outcome of a start-conversation request.
// Created is false when the existing conversation for the pair was reused.
type StartConversationResult struct {
	Conversation ConversationView `json:"conversation"`
	Created      bool             `json:"created"`
	Message      *MessageView     `json:"message,omitempty"`
}

// SendMessageResult is the delivery acknowledgement returned to the sender.
// OnlineRecipientIDs lists the recipients that held at least one live
// connection at send time; the rest will find the message via notifications.
type SendMessageResult struct {
	Message            MessageView `json:"message"`
	RecipientIDs       []uuid.UUID `json:"recipient_ids"`
	OnlineRecipientIDs []uuid.UUID `json:"online_recipient_ids"`
}

// NotificationView is the API representation of a notification
type NotificationView struct {
	ID        uuid.UUID                     `json:"id"`
	Type      messaging.NotificationType    `json:"type"`
	Payload   messaging.NotificationPayload `json:"payload"`
	Read      bool                          `json:"read"`
	CreatedAt time.Time                     `json:"created_at"`
}

// MessageViewFromDomain maps a domain message to its API view. Exported
// because the live delivery layer reuses the same representation on the
// wire.
func MessageViewFromDomain(m *messaging.Message) MessageView {
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		SentAt:         m.SentAt,
		Read:           m.Read,
	}
}

// notificationViewFromDomain maps a domain notification to its API view
func notificationViewFromDomain(n *messaging.Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Payload:   n.Payload,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
