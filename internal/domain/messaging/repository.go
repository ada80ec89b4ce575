package messaging

import (
	"context"

	"github.com/google/uuid"
)

// ConversationSummary is a conversation list entry: the conversation, its
// most recent message, and the member IDs for profile enrichment upstream.
type ConversationSummary struct {
	Conversation Conversation
	LastMessage  *Message
}

// ConversationRepository defines durable storage for conversations and
// membership. It is the source of truth for history.
type ConversationRepository interface {
	// Create persists the conversation and its membership rows in one
	// transaction
	Create(ctx context.Context, conv *Conversation) error

	// FindByID finds a conversation with its members loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Conversation, error)

	// FindDirectBetween finds the conversation whose membership set equals
	// exactly {a, b}. Returns shared.ErrNotFound when no such conversation
	// exists.
	FindDirectBetween(ctx context.Context, a, b uuid.UUID) (*Conversation, error)

	// ListForUser returns the user's conversations ordered most recently
	// updated first, each with its latest message
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)

	// IsMember reports whether the user belongs to the conversation
	IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

// MessageRepository defines durable append-only message storage
type MessageRepository interface {
	// Append inserts the message and bumps the owning conversation's
	// updated_at in a single transaction, so no reader observes one
	// without the other
	Append(ctx context.Context, msg *Message) error

	// ListByConversation returns messages ordered by sent_at ascending
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*Message, error)

	// MarkReadExcludingSender sets read=true on every unread message in the
	// conversation not sent by the reader and reports how many messages it
	// flipped. Idempotent: a second call returns zero.
	MarkReadExcludingSender(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
}

// NotificationRepository defines the durable per-user notification queue
type NotificationRepository interface {
	// Create persists a notification
	Create(ctx context.Context, n *Notification) error

	// ListForUser returns the user's notifications, most recent first,
	// capped at limit
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error)

	// MarkRead marks one notification read. Silently does nothing when the
	// notification does not exist or belongs to another user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error

	// MarkAllRead marks all of the user's notifications read
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// MarkConversationRead marks unread "message" notifications whose
	// payload references the conversation as read, keeping notification
	// state and conversation read state from diverging
	MarkConversationRead(ctx context.Context, userID, conversationID uuid.UUID) error
}
