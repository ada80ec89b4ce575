package messaging

import (
	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeConversation = "Conversation"
	AggregateTypeMessage      = "Message"
)

// Messaging domain event types. These are the post-commit events the
// messaging service publishes after the durable write succeeds; handlers
// write notifications and drive the live broadcast.
const (
	EventTypeMessageSent         = "MessageSent"
	EventTypeConversationCreated = "ConversationCreated"
	EventTypeMessagesRead        = "MessagesRead"
)

// MessageSentEvent is published after a message is durably persisted
type MessageSentEvent struct {
	shared.BaseDomainEvent
	Message        *Message    `json:"message"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	RecipientIDs   []uuid.UUID `json:"recipient_ids"`
}

// NewMessageSentEvent creates a new MessageSentEvent
func NewMessageSentEvent(msg *Message, recipientIDs []uuid.UUID) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeMessage, msg.ID),
		Message:         msg,
		ConversationID:  msg.ConversationID,
		SenderID:        msg.SenderID,
		RecipientIDs:    recipientIDs,
	}
}

// ConversationCreatedEvent is published when a new conversation is created,
// explicitly or implicitly on first message
type ConversationCreatedEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID   `json:"conversation_id"`
	StarterID      uuid.UUID   `json:"starter_id"`
	RecipientIDs   []uuid.UUID `json:"recipient_ids"`
	Title          string      `json:"title,omitempty"`
}

// NewConversationCreatedEvent creates a new ConversationCreatedEvent
func NewConversationCreatedEvent(conv *Conversation, starterID uuid.UUID) *ConversationCreatedEvent {
	return &ConversationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConversationCreated, AggregateTypeConversation, conv.ID),
		ConversationID:  conv.ID,
		StarterID:       starterID,
		RecipientIDs:    conv.OtherMemberIDs(starterID),
		Title:           conv.Title,
	}
}

// MessagesReadEvent is published after a reader marks a conversation's
// messages read; the live layer turns it into a read receipt broadcast
type MessagesReadEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID `json:"conversation_id"`
	ReaderID       uuid.UUID `json:"reader_id"`
}

// NewMessagesReadEvent creates a new MessagesReadEvent
func NewMessagesReadEvent(conversationID, readerID uuid.UUID) *MessagesReadEvent {
	return &MessagesReadEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessagesRead, AggregateTypeConversation, conversationID),
		ConversationID:  conversationID,
		ReaderID:        readerID,
	}
}
