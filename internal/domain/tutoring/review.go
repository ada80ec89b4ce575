package tutoring

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// Review is a rating left after a completed session.
// One review per (session, author).
type Review struct {
	shared.BaseEntity
	SessionID uuid.UUID
	AuthorID  uuid.UUID
	Rating    int
	Comment   string
}

// NewReview creates a review with a 1..5 rating
func NewReview(sessionID, authorID uuid.UUID, rating int, comment string) (*Review, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author ID cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}

	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}

	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		SessionID:  sessionID,
		AuthorID:   authorID,
		Rating:     rating,
		Comment:    comment,
	}, nil
}
