package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier turns messaging events into durable notifications for every
// recipient. It runs as a post-commit event handler; a notification that
// fails to write is logged and lost, the message itself is already safe in
// the store.
type Notifier struct {
	notifRepo messaging.NotificationRepository
	logger    *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(notifRepo messaging.NotificationRepository, logger *zap.Logger) *Notifier {
	return &Notifier{
		notifRepo: notifRepo,
		logger:    logger,
	}
}

// EventTypes returns the events the notifier consumes
func (n *Notifier) EventTypes() []string {
	return []string{
		messaging.EventTypeMessageSent,
		messaging.EventTypeConversationCreated,
	}
}

// Handle fans a messaging event out into one notification per recipient
func (n *Notifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *messaging.MessageSentEvent:
		return n.onMessageSent(ctx, e)
	case *messaging.ConversationCreatedEvent:
		return n.onConversationCreated(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

func (n *Notifier) onMessageSent(ctx context.Context, e *messaging.MessageSentEvent) error {
	payload := messaging.NotificationPayload{
		ConversationID: e.ConversationID,
		MessageID:      e.Message.ID,
		SenderID:       e.SenderID,
		Excerpt:        e.Message.Excerpt(),
	}
	return n.fanOut(ctx, e.RecipientIDs, messaging.NotificationTypeMessage, payload)
}

func (n *Notifier) onConversationCreated(ctx context.Context, e *messaging.ConversationCreatedEvent) error {
	payload := messaging.NotificationPayload{
		ConversationID: e.ConversationID,
		SenderID:       e.StarterID,
		Title:          e.Title,
	}
	return n.fanOut(ctx, e.RecipientIDs, messaging.NotificationTypeConversation, payload)
}

// fanOut writes one notification per recipient. A failure for one recipient
// does not stop the others; the first error is reported for logging.
func (n *Notifier) fanOut(ctx context.Context, recipients []uuid.UUID, kind messaging.NotificationType, payload messaging.NotificationPayload) error {
	var firstErr error
	for _, recipientID := range recipients {
		notification, err := messaging.NewNotification(recipientID, kind, payload)
		if err == nil {
			err = n.notifRepo.Create(ctx, notification)
		}
		if err != nil {
			n.logger.Error("Failed to create notification",
				zap.String("recipient_id", recipientID.String()),
				zap.String("type", string(kind)),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Ensure Notifier implements EventHandler
var _ shared.EventHandler = (*Notifier)(nil)
