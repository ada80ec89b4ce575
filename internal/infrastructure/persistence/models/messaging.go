package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/messaging"
)

// ConversationModel is the persistence model for the Conversation aggregate.
// updated_at doubles as the last-activity timestamp that orders the
// conversation list, so message appends bump it.
type ConversationModel struct {
	AggregateModel
	Title   string                    `gorm:"type:varchar(200)"`
	Members []ConversationMemberModel `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts the persistence model to a domain Conversation
func (m *ConversationModel) ToDomain() *messaging.Conversation {
	conv := &messaging.Conversation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Title:             m.Title,
	}
	conv.Members = make([]messaging.Member, 0, len(m.Members))
	for _, member := range m.Members {
		conv.Members = append(conv.Members, member.ToDomain())
	}
	return conv
}

// FromDomain populates the persistence model from a domain Conversation
func (m *ConversationModel) FromDomain(c *messaging.Conversation) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Title = c.Title
	m.Members = make([]ConversationMemberModel, 0, len(c.Members))
	for _, member := range c.Members {
		m.Members = append(m.Members, ConversationMemberModel{
			ConversationID: member.ConversationID,
			UserID:         member.UserID,
			JoinedAt:       member.JoinedAt,
		})
	}
}

// ConversationModelFromDomain creates a new persistence model from a domain Conversation
func ConversationModelFromDomain(c *messaging.Conversation) *ConversationModel {
	m := &ConversationModel{}
	m.FromDomain(c)
	return m
}

// ConversationMemberModel is the persistence model for conversation membership
type ConversationMemberModel struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConversationMemberModel) TableName() string {
	return "conversation_members"
}

// ToDomain converts the persistence model to a domain Member
func (m *ConversationMemberModel) ToDomain() messaging.Member {
	return messaging.Member{
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		JoinedAt:       m.JoinedAt,
	}
}

// MessageModel is the persistence model for the Message domain entity
type MessageModel struct {
	BaseModel
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_sent"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Body           string    `gorm:"type:text;not null"`
	SentAt         time.Time `gorm:"not null;index:idx_messages_conversation_sent"`
	Read           bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Message
func (m *MessageModel) ToDomain() *messaging.Message {
	return &messaging.Message{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		SentAt:         m.SentAt,
		Read:           m.Read,
	}
}

// FromDomain populates the persistence model from a domain Message
func (m *MessageModel) FromDomain(msg *messaging.Message) {
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.ConversationID = msg.ConversationID
	m.SenderID = msg.SenderID
	m.Body = msg.Body
	m.SentAt = msg.SentAt
	m.Read = msg.Read
}

// MessageModelFromDomain creates a new persistence model from a domain Message
func MessageModelFromDomain(msg *messaging.Message) *MessageModel {
	m := &MessageModel{}
	m.FromDomain(msg)
	return m
}

// NotificationModel is the persistence model for the Notification domain
// entity. Payload fields are flattened into columns so read-propagation can
// match notifications by conversation without JSON operators.
type NotificationModel struct {
	BaseModel
	RecipientID    uuid.UUID                  `gorm:"type:uuid;not null;index:idx_notifications_recipient_read"`
	Type           messaging.NotificationType `gorm:"type:varchar(20);not null"`
	ConversationID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	MessageID      *uuid.UUID                 `gorm:"type:uuid"`
	SenderID       uuid.UUID                  `gorm:"type:uuid;not null"`
	Excerpt        string                     `gorm:"type:varchar(200)"`
	Title          string                     `gorm:"type:varchar(200)"`
	Read           bool                       `gorm:"not null;default:false;index:idx_notifications_recipient_read"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *messaging.Notification {
	payload := messaging.NotificationPayload{
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Excerpt:        m.Excerpt,
		Title:          m.Title,
	}
	if m.MessageID != nil {
		payload.MessageID = *m.MessageID
	}
	return &messaging.Notification{
		BaseEntity:  m.BaseModel.ToDomain(),
		RecipientID: m.RecipientID,
		Type:        m.Type,
		Payload:     payload,
		Read:        m.Read,
	}
}

// FromDomain populates the persistence model from a domain Notification
func (m *NotificationModel) FromDomain(n *messaging.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.RecipientID = n.RecipientID
	m.Type = n.Type
	m.ConversationID = n.Payload.ConversationID
	m.SenderID = n.Payload.SenderID
	m.Excerpt = n.Payload.Excerpt
	m.Title = n.Payload.Title
	m.Read = n.Read
	if n.Payload.MessageID != uuid.Nil {
		messageID := n.Payload.MessageID
		m.MessageID = &messageID
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *messaging.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}
