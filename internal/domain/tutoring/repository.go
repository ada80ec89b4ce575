package tutoring

import (
	"context"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// SubjectRepository defines the interface for subject persistence
type SubjectRepository interface {
	Create(ctx context.Context, subject *Subject) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subject, error)
	FindBySlug(ctx context.Context, slug string) (*Subject, error)
	FindAll(ctx context.Context) ([]*Subject, error)
}

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Task, int64, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]*Task, int64, error)
}

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Update(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	FindByParticipant(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Session, int64, error)
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]*Review, error)
	ExistsBySessionAndAuthor(ctx context.Context, sessionID, authorID uuid.UUID) (bool, error)
}

// StudyPlanRepository defines the interface for study plan persistence
type StudyPlanRepository interface {
	Create(ctx context.Context, plan *StudyPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*StudyPlan, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*StudyPlan, error)
}
