package ws

import (
	"sync"

	"github.com/google/uuid"
)

// RoomRouter maps conversation rooms to the connections actively viewing
// them. Room membership is per connection, not per user: two tabs of the
// same user join and leave independently. Joining is idempotent, and the
// router keeps a reverse index so a dying connection can be detached from
// all of its rooms in one call.
type RoomRouter struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	joined map[*Client]map[uuid.UUID]struct{}
}

// NewRoomRouter creates an empty router
func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		joined: make(map[*Client]map[uuid.UUID]struct{}),
	}
}

// Join subscribes a connection to a conversation room
func (r *RoomRouter) Join(conversationID uuid.UUID, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[conversationID]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[conversationID] = room
	}
	room[client] = struct{}{}

	set, ok := r.joined[client]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		r.joined[client] = set
	}
	set[conversationID] = struct{}{}
}

// Leave unsubscribes a connection from a room. Leaving a room the
// connection never joined is a no-op.
func (r *RoomRouter) Leave(conversationID uuid.UUID, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(conversationID, client)
}

// LeaveAll detaches a connection from every room it joined and returns
// the rooms it was in, for disconnect cleanup.
func (r *RoomRouter) LeaveAll(client *Client) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.joined[client]
	left := make([]uuid.UUID, 0, len(set))
	for conversationID := range set {
		left = append(left, conversationID)
	}
	for _, conversationID := range left {
		r.leaveLocked(conversationID, client)
	}
	return left
}

func (r *RoomRouter) leaveLocked(conversationID uuid.UUID, client *Client) {
	if room, ok := r.rooms[conversationID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(r.rooms, conversationID)
		}
	}
	if set, ok := r.joined[client]; ok {
		delete(set, conversationID)
		if len(set) == 0 {
			delete(r.joined, client)
		}
	}
}

// InRoom reports whether a connection is subscribed to a room
func (r *RoomRouter) InRoom(conversationID uuid.UUID, client *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[conversationID][client]
	return ok
}

// Broadcast sends a frame to every connection in a room, optionally
// skipping one connection. An empty room is a silent no-op.
func (r *RoomRouter) Broadcast(conversationID uuid.UUID, frame []byte, exclude *Client) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for client := range r.rooms[conversationID] {
		if client == exclude {
			continue
		}
		client.Send(frame)
	}
}

// BroadcastExcludingUser sends a frame to every connection in a room that
// does not belong to the given user. The sender's own tabs get their
// confirmation through the delivery acknowledgment instead of a self-echo.
func (r *RoomRouter) BroadcastExcludingUser(conversationID uuid.UUID, frame []byte, userID uuid.UUID) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for client := range r.rooms[conversationID] {
		if client.userID == userID {
			continue
		}
		client.Send(frame)
	}
}
