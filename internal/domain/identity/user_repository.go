package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByIDs finds multiple users by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// FindAll returns users with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]*User, int64, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateLastSeen records connection activity without touching the
	// aggregate version; presence updates must not contend with profile
	// writes
	UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}
