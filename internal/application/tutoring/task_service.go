package tutoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"go.uber.org/zap"
)

// TaskService manages student-posted tutoring requests
type TaskService struct {
	taskRepo    tutoring.TaskRepository
	subjectRepo tutoring.SubjectRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo tutoring.TaskRepository,
	subjectRepo tutoring.SubjectRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		subjectRepo: subjectRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Post creates an open task for the calling student
func (s *TaskService) Post(ctx context.Context, studentID uuid.UUID, input PostTaskInput) (*TaskView, error) {
	if _, err := s.subjectRepo.FindByID(ctx, input.SubjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SUBJECT_NOT_FOUND", "Subject does not exist")
		}
		return nil, err
	}

	task, err := tutoring.NewTask(studentID, input.SubjectID, input.Title, input.Description, input.Budget, input.Deadline)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Task posted",
		zap.String("task_id", task.ID.String()),
		zap.String("student_id", studentID.String()))

	view := taskViewFromDomain(task)
	return &view, nil
}

// Get returns a task by ID
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*TaskView, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := taskViewFromDomain(task)
	return &view, nil
}

// List returns tasks matching the filters, open board style
func (s *TaskService) List(ctx context.Context, input ListTasksInput) (shared.Paginated[TaskView], error) {
	filter := filterFromInput(input)
	tasks, total, err := s.taskRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[TaskView]{}, err
	}
	return paginatedTaskViews(tasks, total, filter), nil
}

// ListMine returns the calling student's tasks
func (s *TaskService) ListMine(ctx context.Context, studentID uuid.UUID, input ListTasksInput) (shared.Paginated[TaskView], error) {
	filter := filterFromInput(input)
	tasks, total, err := s.taskRepo.FindByStudent(ctx, studentID, filter)
	if err != nil {
		return shared.Paginated[TaskView]{}, err
	}
	return paginatedTaskViews(tasks, total, filter), nil
}

// Assign assigns a tutor to the caller's open task. Only the posting student
// may assign, and only a user with the tutor role may be assigned.
func (s *TaskService) Assign(ctx context.Context, callerID, taskID, tutorID uuid.UUID) (*TaskView, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.StudentID != callerID {
		return nil, shared.ErrForbidden
	}

	tutor, err := s.userRepo.FindByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TUTOR_NOT_FOUND", "Tutor does not exist")
		}
		return nil, err
	}
	if !tutor.IsActive() || !tutor.IsTutor() {
		return nil, shared.NewDomainError("INVALID_TUTOR", "Assignee must be an active tutor")
	}

	if err := task.Assign(tutorID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to assign task", zap.Error(err))
		return nil, err
	}

	view := taskViewFromDomain(task)
	return &view, nil
}

// Complete marks the caller's assigned task completed
func (s *TaskService) Complete(ctx context.Context, callerID, taskID uuid.UUID) (*TaskView, error) {
	return s.transition(ctx, callerID, taskID, (*tutoring.Task).Complete)
}

// Cancel cancels the caller's task
func (s *TaskService) Cancel(ctx context.Context, callerID, taskID uuid.UUID) (*TaskView, error) {
	return s.transition(ctx, callerID, taskID, (*tutoring.Task).Cancel)
}

func (s *TaskService) transition(ctx context.Context, callerID, taskID uuid.UUID, apply func(*tutoring.Task) error) (*TaskView, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.StudentID != callerID {
		return nil, shared.ErrForbidden
	}

	if err := apply(task); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to update task status", zap.Error(err))
		return nil, err
	}

	view := taskViewFromDomain(task)
	return &view, nil
}

func filterFromInput(input ListTasksInput) shared.Filter {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	if input.Status != "" {
		filter.Filters["status"] = input.Status
	}
	if input.SubjectID != "" {
		filter.Filters["subject_id"] = input.SubjectID
	}
	return filter
}

func paginatedTaskViews(tasks []*tutoring.Task, total int64, filter shared.Filter) shared.Paginated[TaskView] {
	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = taskViewFromDomain(t)
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize)
}
