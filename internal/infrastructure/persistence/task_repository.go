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

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *tutoring.Task) error {
	model := models.TaskModelFromDomain(task)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing task with optimistic locking
func (r *GormTaskRepository) Update(ctx context.Context, task *tutoring.Task) error {
	model := models.TaskModelFromDomain(task)
	result := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
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

// FindByID finds a task by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*tutoring.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tasks matching the filter
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*tutoring.Task, int64, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx).Model(&models.TaskModel{}), filter)
}

// FindByStudent finds a student's tasks matching the filter
func (r *GormTaskRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]*tutoring.Task, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("student_id = ?", studentID)
	return r.findWhere(ctx, query, filter)
}

func (r *GormTaskRepository) findWhere(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]*tutoring.Task, int64, error) {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if subjectID, ok := filter.Filters["subject_id"]; ok {
		query = query.Where("subject_id = ?", subjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var taskModels []models.TaskModel
	if err := applyPaginationWithFields(query, filter, TaskSortFields).Find(&taskModels).Error; err != nil {
		return nil, 0, err
	}

	tasks := make([]*tutoring.Task, len(taskModels))
	for i := range taskModels {
		tasks[i] = taskModels[i].ToDomain()
	}
	return tasks, total, nil
}

// Ensure GormTaskRepository implements TaskRepository
var _ tutoring.TaskRepository = (*GormTaskRepository)(nil)
