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

// GormStudyPlanRepository implements StudyPlanRepository using GORM
type GormStudyPlanRepository struct {
	db *gorm.DB
}

// NewGormStudyPlanRepository creates a new GormStudyPlanRepository
func NewGormStudyPlanRepository(db *gorm.DB) *GormStudyPlanRepository {
	return &GormStudyPlanRepository{db: db}
}

// Create persists a study plan
func (r *GormStudyPlanRepository) Create(ctx context.Context, plan *tutoring.StudyPlan) error {
	model := models.StudyPlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a study plan by its ID
func (r *GormStudyPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*tutoring.StudyPlan, error) {
	var model models.StudyPlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent returns a student's study plans, newest first
func (r *GormStudyPlanRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*tutoring.StudyPlan, error) {
	var planModels []models.StudyPlanModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]*tutoring.StudyPlan, len(planModels))
	for i := range planModels {
		plans[i] = planModels[i].ToDomain()
	}
	return plans, nil
}

// Ensure GormStudyPlanRepository implements StudyPlanRepository
var _ tutoring.StudyPlanRepository = (*GormStudyPlanRepository)(nil)
