package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/shared"
)

// Conversation is a durable thread grouping two or more users and their
// messages. It is the aggregate root for the messaging core; rooms in the
// live layer are keyed by its ID but carry no persisted state of their own.
type Conversation struct {
	shared.BaseAggregateRoot
	Title   string
	Members []Member
}

// Member represents a user's membership in a conversation
type Member struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	JoinedAt       time.Time
}

// NewConversation creates a conversation with the given members.
// Duplicate member IDs are rejected; a conversation needs at least two members.
func NewConversation(title string, memberIDs ...uuid.UUID) (*Conversation, error) {
	if len(memberIDs) < 2 {
		return nil, shared.NewDomainError("INVALID_MEMBERS", "A conversation requires at least two members")
	}

	seen := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		if id == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_MEMBERS", "Member ID cannot be empty")
		}
		if seen[id] {
			return nil, shared.NewDomainError("INVALID_MEMBERS", "Duplicate member in conversation")
		}
		seen[id] = true
	}

	title = strings.TrimSpace(title)
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}

	conv := &Conversation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
	}

	now := time.Now()
	conv.Members = make([]Member, 0, len(memberIDs))
	for _, id := range memberIDs {
		conv.Members = append(conv.Members, Member{
			ConversationID: conv.ID,
			UserID:         id,
			JoinedAt:       now,
		})
	}

	return conv, nil
}

// NewDirectConversation creates a two-member conversation. The at-most-one
// conversation per unordered pair invariant is enforced by the store's
// lookup-before-create, not here.
func NewDirectConversation(initiatorID, recipientID uuid.UUID, title string) (*Conversation, error) {
	if initiatorID == recipientID {
		return nil, shared.NewDomainError("INVALID_MEMBERS", "Cannot start a conversation with yourself")
	}
	return NewConversation(title, initiatorID, recipientID)
}

// HasMember reports whether the user belongs to the conversation
func (c *Conversation) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the IDs of all members
func (c *Conversation) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// OtherMemberIDs returns the IDs of all members except the given user
func (c *Conversation) OtherMemberIDs(userID uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		if m.UserID != userID {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// IsDirect reports whether this is a two-member conversation
func (c *Conversation) IsDirect() bool {
	return len(c.Members) == 2
}

// Touch bumps the last-activity timestamp. UpdatedAt must never fall behind
// the sent-at of any contained message; list ordering depends on it.
func (c *Conversation) Touch(at time.Time) {
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
	}
}
