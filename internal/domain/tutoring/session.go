package tutoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Session is a scheduled tutoring meeting between a tutor and a student
type Session struct {
	shared.BaseAggregateRoot
	TutorID    uuid.UUID
	StudentID  uuid.UUID
	SubjectID  uuid.UUID
	StartsAt   time.Time
	EndsAt     time.Time
	HourlyRate decimal.Decimal
	Status     SessionStatus
	Notes      string
}

// NewSession schedules a session
func NewSession(tutorID, studentID, subjectID uuid.UUID, startsAt, endsAt time.Time, hourlyRate decimal.Decimal) (*Session, error) {
	if tutorID == uuid.Nil || studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTICIPANTS", "Tutor and student IDs are required")
	}
	if tutorID == studentID {
		return nil, shared.NewDomainError("INVALID_PARTICIPANTS", "Tutor and student must be different users")
	}
	if subjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID cannot be empty")
	}
	if !endsAt.After(startsAt) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Session must end after it starts")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}

	return &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TutorID:           tutorID,
		StudentID:         studentID,
		SubjectID:         subjectID,
		StartsAt:          startsAt,
		EndsAt:            endsAt,
		HourlyRate:        hourlyRate,
		Status:            SessionStatusScheduled,
	}, nil
}

// Duration returns the scheduled length of the session
func (s *Session) Duration() time.Duration {
	return s.EndsAt.Sub(s.StartsAt)
}

// Cost returns hourly rate times scheduled hours
func (s *Session) Cost() decimal.Decimal {
	hours := decimal.NewFromFloat(s.Duration().Hours())
	return s.HourlyRate.Mul(hours).Round(2)
}

// Complete marks a scheduled session completed
func (s *Session) Complete() error {
	if s.Status != SessionStatusScheduled {
		return shared.ErrInvalidState
	}

	s.Status = SessionStatusCompleted
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Cancel cancels a scheduled session
func (s *Session) Cancel() error {
	if s.Status != SessionStatusScheduled {
		return shared.ErrInvalidState
	}

	s.Status = SessionStatusCancelled
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// HasParticipant reports whether the user is the tutor or the student
func (s *Session) HasParticipant(userID uuid.UUID) bool {
	return s.TutorID == userID || s.StudentID == userID
}
