package models

import (
	"time"

	"github.com/tutorlink/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email        string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	DisplayName  string              `gorm:"type:varchar(200);not null"`
	Avatar       string              `gorm:"type:varchar(500)"`
	Bio          string              `gorm:"type:text"`
	Role         identity.UserRole   `gorm:"type:varchar(20);not null"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastSeenAt   *time.Time          `gorm:"index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		DisplayName:       m.DisplayName,
		Avatar:            m.Avatar,
		Bio:               m.Bio,
		Role:              m.Role,
		Status:            m.Status,
		LastSeenAt:        m.LastSeenAt,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Avatar = u.Avatar
	m.Bio = u.Bio
	m.Role = u.Role
	m.Status = u.Status
	m.LastSeenAt = u.LastSeenAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
