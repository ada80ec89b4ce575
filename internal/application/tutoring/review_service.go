package tutoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/domain/tutoring"
	"go.uber.org/zap"
)

// ReviewService manages post-session reviews
type ReviewService struct {
	reviewRepo  tutoring.ReviewRepository
	sessionRepo tutoring.SessionRepository
	logger      *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(reviewRepo tutoring.ReviewRepository, sessionRepo tutoring.SessionRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// Create leaves a review on a completed session. Only participants may
// review, and each participant at most once.
func (s *ReviewService) Create(ctx context.Context, authorID uuid.UUID, input CreateReviewInput) (*ReviewView, error) {
	session, err := s.sessionRepo.FindByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(authorID) {
		return nil, shared.ErrForbidden
	}
	if session.Status != tutoring.SessionStatusCompleted {
		return nil, shared.NewDomainError("SESSION_NOT_COMPLETED", "Only completed sessions can be reviewed")
	}

	exists, err := s.reviewRepo.ExistsBySessionAndAuthor(ctx, input.SessionID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this session")
	}

	review, err := tutoring.NewReview(input.SessionID, authorID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// unique index backs up the exists check under concurrency
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this session")
		}
		s.logger.Error("Failed to create review", zap.Error(err))
		return nil, err
	}

	view := reviewViewFromDomain(review)
	return &view, nil
}

// ListBySession returns the reviews left on a session
func (s *ReviewService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ReviewView, error) {
	reviews, err := s.reviewRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	views := make([]ReviewView, len(reviews))
	for i, r := range reviews {
		views[i] = reviewViewFromDomain(r)
	}
	return views, nil
}
