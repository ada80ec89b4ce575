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

// GormSessionRepository implements SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create creates a new session
func (r *GormSessionRepository) Create(ctx context.Context, session *tutoring.Session) error {
	model := models.SessionModelFromDomain(session)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing session with optimistic locking
func (r *GormSessionRepository) Update(ctx context.Context, session *tutoring.Session) error {
	model := models.SessionModelFromDomain(session)
	result := r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a session by its ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*tutoring.Session, error) {
	var model models.SessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByParticipant finds sessions where the user is tutor or student
func (r *GormSessionRepository) FindByParticipant(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*tutoring.Session, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("tutor_id = ? OR student_id = ?", userID, userID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessionModels []models.SessionModel
	if err := applyPaginationWithFields(query, filter, SessionSortFields).Find(&sessionModels).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*tutoring.Session, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = sessionModels[i].ToDomain()
	}
	return sessions, total, nil
}

// Ensure GormSessionRepository implements SessionRepository
var _ tutoring.SessionRepository = (*GormSessionRepository)(nil)
