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

// SessionService manages scheduled tutoring sessions
type SessionService struct {
	sessionRepo tutoring.SessionRepository
	subjectRepo tutoring.SubjectRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo tutoring.SessionRepository,
	subjectRepo tutoring.SubjectRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		subjectRepo: subjectRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Schedule books a session between the calling student and a tutor
func (s *SessionService) Schedule(ctx context.Context, studentID uuid.UUID, input ScheduleSessionInput) (*SessionView, error) {
	tutor, err := s.userRepo.FindByID(ctx, input.TutorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TUTOR_NOT_FOUND", "Tutor does not exist")
		}
		return nil, err
	}
	if !tutor.IsActive() || !tutor.IsTutor() {
		return nil, shared.NewDomainError("INVALID_TUTOR", "Sessions can only be booked with an active tutor")
	}

	if _, err := s.subjectRepo.FindByID(ctx, input.SubjectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SUBJECT_NOT_FOUND", "Subject does not exist")
		}
		return nil, err
	}

	session, err := tutoring.NewSession(input.TutorID, studentID, input.SubjectID, input.StartsAt, input.EndsAt, input.HourlyRate)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Session scheduled",
		zap.String("session_id", session.ID.String()),
		zap.String("tutor_id", input.TutorID.String()),
		zap.String("student_id", studentID.String()))

	view := sessionViewFromDomain(session)
	return &view, nil
}

// Get returns a session. Only participants may see it.
func (s *SessionService) Get(ctx context.Context, callerID, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(callerID) {
		return nil, shared.ErrForbidden
	}
	view := sessionViewFromDomain(session)
	return &view, nil
}

// ListMine returns the caller's sessions as tutor or student
func (s *SessionService) ListMine(ctx context.Context, callerID uuid.UUID, page, pageSize int) (shared.Paginated[SessionView], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	sessions, total, err := s.sessionRepo.FindByParticipant(ctx, callerID, filter)
	if err != nil {
		return shared.Paginated[SessionView]{}, err
	}

	views := make([]SessionView, len(sessions))
	for i, session := range sessions {
		views[i] = sessionViewFromDomain(session)
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize), nil
}

// Complete marks a session completed. Either participant may complete.
func (s *SessionService) Complete(ctx context.Context, callerID, sessionID uuid.UUID) (*SessionView, error) {
	return s.transition(ctx, callerID, sessionID, (*tutoring.Session).Complete)
}

// Cancel cancels a scheduled session. Either participant may cancel.
func (s *SessionService) Cancel(ctx context.Context, callerID, sessionID uuid.UUID) (*SessionView, error) {
	return s.transition(ctx, callerID, sessionID, (*tutoring.Session).Cancel)
}

func (s *SessionService) transition(ctx context.Context, callerID, sessionID uuid.UUID, apply func(*tutoring.Session) error) (*SessionView, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(callerID) {
		return nil, shared.ErrForbidden
	}

	if err := apply(session); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.Error("Failed to update session status", zap.Error(err))
		return nil, err
	}

	view := sessionViewFromDomain(session)
	return &view, nil
}
