package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/application/messaging"
)

// Wire event names. Client and server exchange JSON frames of the form
// {"event": string, "data": object} over the persistent connection.
const (
	EventPresence            = "presence"
	EventJoinConversation    = "joinConversation"
	EventLeaveConversation   = "leaveConversation"
	EventTyping              = "typing"
	EventMarkRead            = "markRead"
	EventMessagesRead        = "messagesRead"
	EventNewMessage          = "newMessage"
	EventMessageDelivered    = "messageDelivered"
	EventConversationCreated = "conversationCreated"
)

// Frame is one wire event
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals an event and payload into wire bytes
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// PresencePayload announces a global presence change
type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
	Online bool      `json:"online"`
}

// ConversationRefPayload carries a bare conversation reference, used by
// join, leave, and markRead
type ConversationRefPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

// TypingPayload is both the inbound typing signal and the room re-broadcast;
// the server attaches the sender's UserID on the way out
type TypingPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	IsTyping       bool      `json:"isTyping"`
	UserID         uuid.UUID `json:"userId,omitempty"`
}

// MessagesReadPayload is the read receipt broadcast to a room
type MessagesReadPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
}

// NewMessagePayload delivers a full message to room subscribers
type NewMessagePayload struct {
	ConversationID uuid.UUID             `json:"conversationId"`
	Message        messaging.MessageView `json:"message"`
}

// MessageDeliveredPayload is the delivery acknowledgment sent to the
// sender's own connections, listing which recipients were online
type MessageDeliveredPayload struct {
	MessageID      uuid.UUID   `json:"messageId"`
	ConversationID uuid.UUID   `json:"conversationId"`
	Recipients     []uuid.UUID `json:"recipients"`
}

// ConversationCreatedPayload is the new-thread notice pushed to recipients
type ConversationCreatedPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	StarterID      uuid.UUID `json:"starterId"`
	Title          string    `json:"title,omitempty"`
}
