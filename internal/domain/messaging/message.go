package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// ExcerptMaxChars bounds notification excerpts. Truncation is character
// based (runes), not bytes, so multi-byte text is never split mid-rune.
const ExcerptMaxChars = 200

// Message is an immutable chat message. Only the read flag may change after
// creation, and it transitions false to true exactly once.
type Message struct {
	shared.BaseEntity
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	SentAt         time.Time
	Read           bool
}

// NewMessage creates a message. An empty body is rejected.
func NewMessage(conversationID, senderID uuid.UUID, body string) (*Message, error) {
	if conversationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONVERSATION", "Conversation ID cannot be empty")
	}
	if senderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender ID cannot be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewDomainError("EMPTY_BODY", "Message body cannot be empty")
	}
	if len(body) > 10000 {
		return nil, shared.NewDomainError("BODY_TOO_LONG", "Message body cannot exceed 10000 characters")
	}

	base := shared.NewBaseEntity()
	return &Message{
		BaseEntity:     base,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         base.CreatedAt,
		Read:           false,
	}, nil
}

// MarkRead flips the read flag. The transition is one way.
func (m *Message) MarkRead() {
	m.Read = true
}

// Excerpt returns the first ExcerptMaxChars characters of the body
func (m *Message) Excerpt() string {
	return Excerpt(m.Body)
}

// Excerpt truncates a body to ExcerptMaxChars characters
func Excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= ExcerptMaxChars {
		return body
	}
	return string(runes[:ExcerptMaxChars])
}
