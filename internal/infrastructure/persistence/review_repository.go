package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create creates a new review. The unique (session, author) index backs the
// one-review-per-author invariant.
func (r *GormReviewRepository) Create(ctx context.Context, review *tutoring.Review) error {
	model := models.ReviewModelFromDomain(review)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindBySession returns reviews for a session, newest first
func (r *GormReviewRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]*tutoring.Review, error) {
	var reviewModels []models.ReviewModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&reviewModels).Error; err != nil {
		return nil, err
	}

	reviews := make([]*tutoring.Review, len(reviewModels))
	for i := range reviewModels {
		reviews[i] = reviewModels[i].ToDomain()
	}
	return reviews, nil
}

// ExistsBySessionAndAuthor checks if the author already reviewed the session
func (r *GormReviewRepository) ExistsBySessionAndAuthor(ctx context.Context, sessionID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("session_id = ? AND author_id = ?", sessionID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormReviewRepository implements ReviewRepository
var _ tutoring.ReviewRepository = (*GormReviewRepository)(nil)
