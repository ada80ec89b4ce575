package messaging

import (
	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// NotificationType tags the kind of event a notification records
type NotificationType string

const (
	NotificationTypeMessage      NotificationType = "message"
	NotificationTypeConversation NotificationType = "conversation"
)

// NotificationPayload references the entities a notification is about.
// It is stored as an opaque JSON document; its lifecycle is independent of
// the message it references.
type NotificationPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	MessageID      uuid.UUID `json:"message_id,omitempty"`
	SenderID       uuid.UUID `json:"sender_id"`
	Excerpt        string    `json:"excerpt,omitempty"`
	Title          string    `json:"title,omitempty"`
}

// Notification is a durable per-user record of a messaging event, the
// fallback delivery path for recipients without a live connection.
type Notification struct {
	shared.BaseEntity
	RecipientID uuid.UUID
	Type        NotificationType
	Payload     NotificationPayload
	Read        bool
}

// NewNotification creates an unread notification for a recipient
func NewNotification(recipientID uuid.UUID, kind NotificationType, payload NotificationPayload) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	if kind != NotificationTypeMessage && kind != NotificationTypeConversation {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type")
	}

	return &Notification{
		BaseEntity:  shared.NewBaseEntity(),
		RecipientID: recipientID,
		Type:        kind,
		Payload:     payload,
		Read:        false,
	}, nil
}

// MarkRead flips the read flag
func (n *Notification) MarkRead() {
	n.Read = true
}
