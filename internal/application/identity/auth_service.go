package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, authentication, and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Register creates a new account and returns a token pair
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")
	}

	user, err := identity.NewUser(input.Email, input.Password, input.DisplayName, identity.UserRole(input.Role))
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}

	s.publishEvents(ctx, user)

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return s.issueTokens(user)
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.IsActive() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		default:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Error("Failed to check token invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	}
	if invalidated {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	return s.issueTokens(user)
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims.ID == "" {
		return shared.NewDomainError("TOKEN_INVALID", "Token has no ID")
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// LogoutAll revokes every token issued to the user before now
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, userID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate user tokens", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("All sessions revoked", zap.String("user_id", userID.String()))
	return nil
}

// ValidateAccessToken validates an access token and checks the blacklist
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, err
	}
	if blacklisted {
		return nil, auth.ErrTokenBlacklisted
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return nil, err
	}
	if invalidated {
		return nil, auth.ErrTokenBlacklisted
	}

	return claims, nil
}

func (s *AuthService) issueTokens(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  userInfoFromDomain(user),
	}, nil
}

// publishEvents publishes and clears an aggregate's pending domain events.
// Handler failures are logged by the bus and never fail the caller.
func (s *AuthService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
