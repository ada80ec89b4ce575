package identity

import (
	"github.com/tutorlink/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered  = "UserRegistered"
	EventTypeUserDeactivated = "UserDeactivated"
)

// UserRegisteredEvent is published when a user registers
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		Role:            user.Role,
	}
}

// UserDeactivatedEvent is published when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(user *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}
