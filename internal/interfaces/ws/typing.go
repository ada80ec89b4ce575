package ws

import (
	"sync"

	"github.com/google/uuid"
)

// TypingState tracks which users are currently typing in which
// conversation. It is never persisted and carries no server-side timeout;
// entries are cleared by explicit stop signals and by disconnect cleanup.
type TypingState struct {
	mu     sync.Mutex
	typing map[uuid.UUID]map[uuid.UUID]struct{}
}

// NewTypingState creates an empty typing tracker
func NewTypingState() *TypingState {
	return &TypingState{
		typing: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Set records a typing signal and reports whether the state changed.
// Repeating the current state is a no-op, which lets the hub suppress
// duplicate re-broadcasts from chatty clients.
func (t *TypingState) Set(conversationID, userID uuid.UUID, isTyping bool) (changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.typing[conversationID]
	if isTyping {
		if !ok {
			users = make(map[uuid.UUID]struct{})
			t.typing[conversationID] = users
		}
		if _, present := users[userID]; present {
			return false
		}
		users[userID] = struct{}{}
		return true
	}

	if !ok {
		return false
	}
	if _, present := users[userID]; !present {
		return false
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(t.typing, conversationID)
	}
	return true
}

// IsTyping reports whether a user is currently marked as typing in a
// conversation
func (t *TypingState) IsTyping(conversationID, userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.typing[conversationID][userID]
	return ok
}

// Clear drops a user's typing entry in one conversation
func (t *TypingState) Clear(conversationID, userID uuid.UUID) {
	t.Set(conversationID, userID, false)
}
