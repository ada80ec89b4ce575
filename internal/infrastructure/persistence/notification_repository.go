package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create persists a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *messaging.Notification) error {
	model := models.NotificationModelFromDomain(n)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListForUser returns the user's notifications, most recent first, capped at limit
func (r *GormNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*messaging.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC")

	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notificationModels []models.NotificationModel
	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, err
	}

	notifications := make([]*messaging.Notification, len(notificationModels))
	for i := range notificationModels {
		notifications[i] = notificationModels[i].ToDomain()
	}
	return notifications, nil
}

// MarkRead marks one notification read. The recipient filter makes marking a
// foreign or missing notification a silent no-op.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("read", true).Error
}

// MarkAllRead marks all of the user's notifications read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// MarkConversationRead marks unread message notifications referencing the
// conversation as read, so notification state tracks conversation read state
func (r *GormNotificationRepository) MarkConversationRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND conversation_id = ? AND type = ? AND read = ?",
			userID, conversationID, messaging.NotificationTypeMessage, false).
		Update("read", true).Error
}

// Ensure GormNotificationRepository implements NotificationRepository
var _ messaging.NotificationRepository = (*GormNotificationRepository)(nil)
