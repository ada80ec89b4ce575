package ws

import (
	"context"

	"go.uber.org/zap"

	appmessaging "github.com/tutorlink/backend/internal/application/messaging"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// LiveDispatcher turns post-commit messaging events into live frames. It
// runs after the durable write has succeeded, so a missing or slow socket
// can never fail the write; every send here is best effort.
type LiveDispatcher struct {
	hub    *Hub
	logger *zap.Logger
}

var _ shared.EventHandler = (*LiveDispatcher)(nil)

// NewLiveDispatcher creates a dispatcher for the hub
func NewLiveDispatcher(hub *Hub, log *zap.Logger) *LiveDispatcher {
	return &LiveDispatcher{hub: hub, logger: log.Named("ws.dispatcher")}
}

// EventTypes lists the events the dispatcher consumes
func (d *LiveDispatcher) EventTypes() []string {
	return []string{
		messaging.EventTypeMessageSent,
		messaging.EventTypeConversationCreated,
		messaging.EventTypeMessagesRead,
	}
}

// Handle fans an event out to the connections that should see it
func (d *LiveDispatcher) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *messaging.MessageSentEvent:
		d.handleMessageSent(e)
	case *messaging.ConversationCreatedEvent:
		d.handleConversationCreated(e)
	case *messaging.MessagesReadEvent:
		d.handleMessagesRead(e)
	default:
		d.logger.Debug("ignoring unexpected event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// handleMessageSent delivers the message to everyone viewing the room and
// acknowledges delivery to the sender's own connections. The sender gets
// no self-echo through the room; the acknowledgment carries the message id
// plus the recipients who were online when it was sent.
func (d *LiveDispatcher) handleMessageSent(e *messaging.MessageSentEvent) {
	d.hub.BroadcastRoomExcludingUser(e.ConversationID, EventNewMessage, NewMessagePayload{
		ConversationID: e.ConversationID,
		Message:        appmessaging.MessageViewFromDomain(e.Message),
	}, e.SenderID)

	d.hub.SendToUser(e.SenderID, EventMessageDelivered, MessageDeliveredPayload{
		MessageID:      e.Message.ID,
		ConversationID: e.ConversationID,
		Recipients:     d.hub.presence.OnlineAmong(e.RecipientIDs),
	})
}

// handleConversationCreated notifies each recipient's connections that a
// new thread exists, so their conversation list can refresh without a poll
func (d *LiveDispatcher) handleConversationCreated(e *messaging.ConversationCreatedEvent) {
	payload := ConversationCreatedPayload{
		ConversationID: e.ConversationID,
		StarterID:      e.StarterID,
		Title:          e.Title,
	}
	for _, recipientID := range e.RecipientIDs {
		d.hub.SendToUser(recipientID, EventConversationCreated, payload)
	}
}

// handleMessagesRead broadcasts the read receipt to the room, reader
// included; the reader's other tabs use it to sync their unread badges
func (d *LiveDispatcher) handleMessagesRead(e *messaging.MessagesReadEvent) {
	d.hub.BroadcastRoom(e.ConversationID, EventMessagesRead, MessagesReadPayload{
		ConversationID: e.ConversationID,
		UserID:         e.ReaderID,
	})
}
