package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConversationRepository implements ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// Create persists the conversation and its membership rows in one transaction
func (r *GormConversationRepository) Create(ctx context.Context, conv *messaging.Conversation) error {
	model := models.ConversationModelFromDomain(conv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// FindByID finds a conversation with its members loaded
func (r *GormConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*messaging.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Preload("Members").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDirectBetween finds the conversation whose membership set equals
// exactly {a, b}
func (r *GormConversationRepository) FindDirectBetween(ctx context.Context, a, b uuid.UUID) (*messaging.Conversation, error) {
	// A two-member conversation where both rows match {a, b} has exactly
	// that membership set; duplicate members are impossible by primary key.
	subQuery := r.db.WithContext(ctx).
		Model(&models.ConversationMemberModel{}).
		Select("conversation_id").
		Group("conversation_id").
		Having("COUNT(*) = 2 AND SUM(CASE WHEN user_id IN (?, ?) THEN 1 ELSE 0 END) = 2", a, b)

	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id IN (?)", subQuery).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListForUser returns the user's conversations ordered most recently updated
// first, each with its latest message
func (r *GormConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]messaging.ConversationSummary, error) {
	memberOf := r.db.WithContext(ctx).
		Model(&models.ConversationMemberModel{}).
		Select("conversation_id").
		Where("user_id = ?", userID)

	var conversationModels []models.ConversationModel
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id IN (?)", memberOf).
		Order("updated_at DESC").
		Find(&conversationModels).Error; err != nil {
		return nil, err
	}

	summaries := make([]messaging.ConversationSummary, 0, len(conversationModels))
	for i := range conversationModels {
		summary := messaging.ConversationSummary{
			Conversation: *conversationModels[i].ToDomain(),
		}

		var lastModel models.MessageModel
		err := r.db.WithContext(ctx).
			Where("conversation_id = ?", conversationModels[i].ID).
			Order("sent_at DESC, created_at DESC").
			First(&lastModel).Error
		if err == nil {
			summary.LastMessage = lastModel.ToDomain()
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// IsMember reports whether the user belongs to the conversation
func (r *GormConversationRepository) IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConversationMemberModel{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormConversationRepository implements ConversationRepository
var _ messaging.ConversationRepository = (*GormConversationRepository)(nil)
