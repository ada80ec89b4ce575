package ws

import (
	"sync"

	"github.com/google/uuid"
)

// PresenceRegistry tracks which users currently hold at least one live
// connection. It is purely in-memory and rebuilt from scratch on restart;
// an entry is removed, not emptied, when its last connection goes away.
// It satisfies the application layer's Presence interface so delivery
// acknowledgments can report who was online at send time.
type PresenceRegistry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]map[*Client]struct{}
}

// NewPresenceRegistry creates an empty registry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		conns: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Add registers a connection for its user. It reports whether the user
// transitioned from offline to online.
func (p *PresenceRegistry) Add(client *Client) (wentOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		p.conns[client.userID] = set
	}
	set[client] = struct{}{}
	return !ok
}

// Remove unregisters a connection. It reports whether the user transitioned
// from online to offline, i.e. this was the last live connection.
func (p *PresenceRegistry) Remove(client *Client) (wentOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.conns[client.userID]
	if !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(p.conns, client.userID)
		return true
	}
	return false
}

// IsOnline reports whether the user has at least one live connection
func (p *PresenceRegistry) IsOnline(userID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.conns[userID]
	return ok
}

// OnlineAmong filters the given IDs down to those currently online,
// preserving order
func (p *PresenceRegistry) OnlineAmong(userIDs []uuid.UUID) []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	online := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := p.conns[id]; ok {
			online = append(online, id)
		}
	}
	return online
}

// ConnectionsOf returns the live connections of one user
func (p *PresenceRegistry) ConnectionsOf(userID uuid.UUID) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.conns[userID]
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	return clients
}

// All returns every live connection across all users
func (p *PresenceRegistry) All() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var clients []*Client
	for _, set := range p.conns {
		for client := range set {
			clients = append(clients, client)
		}
	}
	return clients
}
