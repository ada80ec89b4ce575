package tutoring

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task is a student-posted tutoring request
type Task struct {
	shared.BaseAggregateRoot
	StudentID       uuid.UUID
	SubjectID       uuid.UUID
	Title           string
	Description     string
	Budget          decimal.Decimal
	Deadline        *time.Time
	Status          TaskStatus
	AssignedTutorID *uuid.UUID
}

// NewTask creates an open task
func NewTask(studentID, subjectID uuid.UUID, title, description string, budget decimal.Decimal, deadline *time.Time) (*Task, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if subjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID cannot be empty")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot exceed 200 characters")
	}
	if budget.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	if deadline != nil && deadline.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_DEADLINE", "Deadline cannot be in the past")
	}

	return &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		SubjectID:         subjectID,
		Title:             title,
		Description:       strings.TrimSpace(description),
		Budget:            budget,
		Deadline:          deadline,
		Status:            TaskStatusOpen,
	}, nil
}

// Assign assigns a tutor to an open task
func (t *Task) Assign(tutorID uuid.UUID) error {
	if t.Status != TaskStatusOpen {
		return shared.ErrInvalidState
	}
	if tutorID == uuid.Nil {
		return shared.NewDomainError("INVALID_TUTOR", "Tutor ID cannot be empty")
	}
	if tutorID == t.StudentID {
		return shared.NewDomainError("INVALID_TUTOR", "A student cannot tutor their own task")
	}

	t.Status = TaskStatusAssigned
	t.AssignedTutorID = &tutorID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Complete marks an assigned task completed
func (t *Task) Complete() error {
	if t.Status != TaskStatusAssigned {
		return shared.ErrInvalidState
	}

	t.Status = TaskStatusCompleted
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Cancel cancels a task that has not completed
func (t *Task) Cancel() error {
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return shared.ErrInvalidState
	}

	t.Status = TaskStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}
