package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
)

// RegisterInput contains input for user registration
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=student tutor"`
}

// LoginInput contains input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenInput contains input for token refresh
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserInfo is the authenticated user's own view of their account
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResult contains tokens and user info returned by register and login
type AuthResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// UpdateProfileInput contains input for profile updates.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
	Bio         *string `json:"bio"`
}

// ChangePasswordInput contains input for password changes
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ListUsersInput contains filters for listing users
type ListUsersInput struct {
	Role     string `form:"role" binding:"omitempty,oneof=student tutor"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// userInfoFromDomain maps a domain user to its owner-facing view
func userInfoFromDomain(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastSeenAt:  u.LastSeenAt,
		CreatedAt:   u.CreatedAt,
	}
}
