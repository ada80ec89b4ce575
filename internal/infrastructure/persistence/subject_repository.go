package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubjectRepository implements SubjectRepository using GORM
type GormSubjectRepository struct {
	db *gorm.DB
}

// NewGormSubjectRepository creates a new GormSubjectRepository
func NewGormSubjectRepository(db *gorm.DB) *GormSubjectRepository {
	return &GormSubjectRepository{db: db}
}

// Create creates a new subject
func (r *GormSubjectRepository) Create(ctx context.Context, subject *tutoring.Subject) error {
	model := models.SubjectModelFromDomain(subject)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a subject by its ID
func (r *GormSubjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*tutoring.Subject, error) {
	var model models.SubjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a subject by its slug
func (r *GormSubjectRepository) FindBySlug(ctx context.Context, slug string) (*tutoring.Subject, error) {
	var model models.SubjectModel
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all subjects ordered by name
func (r *GormSubjectRepository) FindAll(ctx context.Context) ([]*tutoring.Subject, error) {
	var subjectModels []models.SubjectModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&subjectModels).Error; err != nil {
		return nil, err
	}

	subjects := make([]*tutoring.Subject, len(subjectModels))
	for i := range subjectModels {
		subjects[i] = subjectModels[i].ToDomain()
	}
	return subjects, nil
}

// Ensure GormSubjectRepository implements SubjectRepository
var _ tutoring.SubjectRepository = (*GormSubjectRepository)(nil)
