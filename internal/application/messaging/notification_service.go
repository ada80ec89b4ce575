package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"go.uber.org/zap"
)

// NotificationService exposes the per-user notification queue
type NotificationService struct {
	notifRepo    messaging.NotificationRepository
	defaultLimit int
	logger       *zap.Logger
}

// NewNotificationService creates a new notification service. defaultLimit
// caps list responses when the caller does not pass a limit.
func NewNotificationService(notifRepo messaging.NotificationRepository, defaultLimit int, logger *zap.Logger) *NotificationService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &NotificationService{
		notifRepo:    notifRepo,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// List returns the caller's notifications, most recent first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]NotificationView, error) {
	if limit <= 0 || limit > s.defaultLimit {
		limit = s.defaultLimit
	}

	notifications, err := s.notifRepo.ListForUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}

	views := make([]NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = notificationViewFromDomain(n)
	}
	return views, nil
}

// MarkRead marks one notification read. Unknown IDs and notifications owned
// by other users are ignored, so the operation is safe to retry.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead marks every notification of the caller read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
