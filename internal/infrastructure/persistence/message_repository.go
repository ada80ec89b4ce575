package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMessageRepository implements MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Append inserts the message and bumps the owning conversation's updated_at
// in a single transaction. The bump is monotonic: an older message never
// moves the conversation backwards in the list.
func (r *GormMessageRepository) Append(ctx context.Context, msg *messaging.Message) error {
	model := models.MessageModelFromDomain(msg)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationModel{}).
			Where("id = ? AND updated_at < ?", msg.ConversationID, msg.SentAt).
			Update("updated_at", msg.SentAt).Error
	})
}

// ListByConversation returns messages ordered by sent_at ascending
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*messaging.Message, error) {
	var messageModels []models.MessageModel
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC, created_at ASC").
		Find(&messageModels).Error; err != nil {
		return nil, err
	}

	messages := make([]*messaging.Message, len(messageModels))
	for i := range messageModels {
		messages[i] = messageModels[i].ToDomain()
	}
	return messages, nil
}

// MarkReadExcludingSender sets read=true on every unread message in the
// conversation not sent by the reader and reports how many rows it flipped.
// Idempotent: a second call matches nothing and returns zero.
func (r *GormMessageRepository) MarkReadExcludingSender(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// Ensure GormMessageRepository implements MessageRepository
var _ messaging.MessageRepository = (*GormMessageRepository)(nil)
