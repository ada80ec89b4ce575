package messaging

import "github.com/google/uuid"

// Presence answers who currently holds a live connection. The live gateway
// provides the real implementation; it is consulted at send time to tell the
// sender which recipients saw the message immediately and which will catch up
// through notifications.
type Presence interface {
	// IsOnline reports whether the user has at least one live connection
	IsOnline(userID uuid.UUID) bool

	// OnlineAmong filters the given IDs down to those currently online
	OnlineAmong(userIDs []uuid.UUID) []uuid.UUID
}

// noPresence is used when no live gateway is wired, e.g. in tests or
// API-only deployments. Everyone is offline.
type noPresence struct{}

func (noPresence) IsOnline(uuid.UUID) bool             { return false }
func (noPresence) OnlineAmong([]uuid.UUID) []uuid.UUID { return nil }

// NoPresence returns a Presence that reports every user offline
func NoPresence() Presence { return noPresence{} }
