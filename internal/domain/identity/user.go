package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole represents what side of the marketplace a user is on
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleTutor   UserRole = "tutor"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a student or tutor account.
// It is the aggregate root for account operations and the identity
// the messaging core attaches to every live connection.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	DisplayName  string
	Avatar       string
	Bio          string
	Role         UserRole
	Status       UserStatus
	LastSeenAt   *time.Time
}

// PublicProfile is the subset of user fields other members may see.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar,omitempty"`
	Role        UserRole  `json:"role"`
}

// NewUser creates a new active user with required fields
func NewUser(email, password, displayName string, role UserRole) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if role != UserRoleStudent && role != UserRoleTutor {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be student or tutor")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		DisplayName:       strings.TrimSpace(displayName),
		Role:              role,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// Profile returns the public projection of the user
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Role:        u.Role,
	}
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if err := validateDisplayName(displayName); err != nil {
		return err
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetAvatar sets the user's avatar URL
func (u *User) SetAvatar(avatar string) error {
	if avatar != "" && len(avatar) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}

	u.Avatar = avatar
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetBio sets the user's bio text
func (u *User) SetBio(bio string) error {
	if len(bio) > 2000 {
		return shared.NewDomainError("INVALID_BIO", "Bio cannot exceed 2000 characters")
	}

	u.Bio = strings.TrimSpace(bio)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangePassword changes the user's password after verifying the old one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// TouchLastSeen records when the user was last connected
func (u *User) TouchLastSeen() {
	now := time.Now()
	u.LastSeenAt = &now
	u.UpdatedAt = now
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsTutor returns true if the user is a tutor
func (u *User) IsTutor() bool {
	return u.Role == UserRoleTutor
}

// Validation functions

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
