package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles profile and account operations
type UserService struct {
	userRepo identity.UserRepository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, eventBus shared.EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// GetMe returns the caller's own account view
func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := userInfoFromDomain(user)
	return &info, nil
}

// GetProfile returns another user's public profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*identity.PublicProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile applies the non-nil fields of the input to the caller's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Avatar != nil {
		if err := user.SetAvatar(*input.Avatar); err != nil {
			return nil, err
		}
	}
	if input.Bio != nil {
		if err := user.SetBio(*input.Bio); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, err
	}

	info := userInfoFromDomain(user)
	return &info, nil
}

// ChangePassword changes the caller's password after verifying the current one
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to persist password change", zap.Error(err))
		return err
	}

	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// Deactivate deactivates the caller's account
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.Deactivate(); err != nil {
		return err
	}
	user.AddDomainEvent(identity.NewUserDeactivatedEvent(user))

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Error(err))
		return err
	}

	events := user.GetDomainEvents()
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Error("Failed to publish domain events", zap.Error(err))
		}
		user.ClearDomainEvents()
	}

	return nil
}

// ListUsers returns a paginated user directory, typically filtered to tutors
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (shared.Paginated[identity.PublicProfile], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search
	if input.Role != "" {
		filter.Filters["role"] = input.Role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[identity.PublicProfile]{}, err
	}

	profiles := make([]identity.PublicProfile, len(users))
	for i, u := range users {
		profiles[i] = u.Profile()
	}
	return shared.NewPaginated(profiles, total, filter.Page, filter.PageSize), nil
}

// TouchLastSeen records connection activity for a user. Used by the live
// gateway; failures are logged and swallowed since presence is best effort.
func (s *UserService) TouchLastSeen(ctx context.Context, userID uuid.UUID) {
	if err := s.userRepo.UpdateLastSeen(ctx, userID, time.Now()); err != nil {
		s.logger.Debug("TouchLastSeen: update failed", zap.Error(err))
	}
}
