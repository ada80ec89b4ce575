package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorlink/backend/internal/infrastructure/config"
)

// handleTimeout bounds the durable work triggered by a single inbound frame
const handleTimeout = 5 * time.Second

// MembershipVerifier authorizes a room join. Room subscription is a
// viewing concern, so membership is checked once at join time rather than
// re-derived on every broadcast.
type MembershipVerifier interface {
	IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

// ReadMarker applies a durable read acknowledgment on behalf of a
// connection's markRead frame
type ReadMarker interface {
	MarkConversationRead(ctx context.Context, userID, conversationID uuid.UUID) error
}

// LastSeenRecorder records connection activity. Best effort; failures are
// swallowed by the implementation.
type LastSeenRecorder interface {
	TouchLastSeen(ctx context.Context, userID uuid.UUID)
}

// Hub owns the live connection state: the presence registry, the room
// router, and the typing tracker. It routes inbound client frames and
// offers the outbound primitives the event dispatcher builds on. All
// state is in-memory and rebuilt empty on restart.
type Hub struct {
	cfg        config.WSConfig
	presence   *PresenceRegistry
	rooms      *RoomRouter
	typing     *TypingState
	membership MembershipVerifier
	readMarker ReadMarker
	lastSeen   LastSeenRecorder
	logger     *zap.Logger
}

// NewHub creates a hub. lastSeen may be nil when connection activity
// should not be recorded.
func NewHub(cfg config.WSConfig, membership MembershipVerifier, lastSeen LastSeenRecorder, log *zap.Logger) *Hub {
	return &Hub{
		cfg:        cfg,
		presence:   NewPresenceRegistry(),
		rooms:      NewRoomRouter(),
		typing:     NewTypingState(),
		membership: membership,
		lastSeen:   lastSeen,
		logger:     log.Named("ws"),
	}
}

// SetReadMarker injects the markRead frame handler. The messaging service
// consumes the hub's presence registry, so the two are wired in a second
// step after both exist.
func (h *Hub) SetReadMarker(rm ReadMarker) {
	h.readMarker = rm
}

// Presence exposes the registry for injection into the application layer
func (h *Hub) Presence() *PresenceRegistry {
	return h.presence
}

// Register adds a connection and, when it is the user's first one,
// announces the presence change to every live connection
func (h *Hub) Register(client *Client) {
	if h.presence.Add(client) {
		h.broadcastAll(EventPresence, PresencePayload{UserID: client.userID, Online: true})
	}
	if h.lastSeen != nil {
		h.lastSeen.TouchLastSeen(context.Background(), client.userID)
	}
}

// Unregister tears a connection down: it leaves every room, proactively
// clears the user's typing indicator in each of them so no viewer is left
// with a stuck indicator, and announces offline when this was the user's
// last connection.
func (h *Hub) Unregister(client *Client) {
	for _, conversationID := range h.rooms.LeaveAll(client) {
		h.typing.Clear(conversationID, client.userID)
		h.broadcastRoom(conversationID, EventTyping, TypingPayload{
			ConversationID: conversationID,
			IsTyping:       false,
			UserID:         client.userID,
		}, client)
	}

	if h.presence.Remove(client) {
		h.broadcastAll(EventPresence, PresencePayload{UserID: client.userID, Online: false})
	}
	if h.lastSeen != nil {
		h.lastSeen.TouchLastSeen(context.Background(), client.userID)
	}
}

// handleFrame routes one inbound frame. Malformed or unauthorized frames
// are dropped without closing the connection.
func (h *Hub) handleFrame(client *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.logger.Debug("discarding malformed frame", zap.Error(err))
		return
	}

	switch frame.Event {
	case EventJoinConversation:
		h.handleJoin(client, frame.Data)
	case EventLeaveConversation:
		h.handleLeave(client, frame.Data)
	case EventTyping:
		h.handleTyping(client, frame.Data)
	case EventMarkRead:
		h.handleMarkRead(client, frame.Data)
	default:
		h.logger.Debug("discarding unknown frame", zap.String("event", frame.Event))
	}
}

func (h *Hub) handleJoin(client *Client, data json.RawMessage) {
	var payload ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == uuid.Nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	member, err := h.membership.IsMember(ctx, payload.ConversationID, client.userID)
	if err != nil {
		h.logger.Warn("room join membership check failed",
			zap.String("conversation_id", payload.ConversationID.String()),
			zap.Error(err))
		return
	}
	if !member {
		return
	}
	h.rooms.Join(payload.ConversationID, client)
}

func (h *Hub) handleLeave(client *Client, data json.RawMessage) {
	var payload ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == uuid.Nil {
		return
	}

	h.rooms.Leave(payload.ConversationID, client)
	if h.typing.Set(payload.ConversationID, client.userID, false) {
		h.broadcastRoom(payload.ConversationID, EventTyping, TypingPayload{
			ConversationID: payload.ConversationID,
			IsTyping:       false,
			UserID:         client.userID,
		}, client)
	}
}

func (h *Hub) handleTyping(client *Client, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == uuid.Nil {
		return
	}
	// Typing signals only make sense from someone viewing the room
	if !h.rooms.InRoom(payload.ConversationID, client) {
		return
	}
	if !h.typing.Set(payload.ConversationID, client.userID, payload.IsTyping) {
		return
	}

	h.broadcastRoom(payload.ConversationID, EventTyping, TypingPayload{
		ConversationID: payload.ConversationID,
		IsTyping:       payload.IsTyping,
		UserID:         client.userID,
	}, client)
}

func (h *Hub) handleMarkRead(client *Client, data json.RawMessage) {
	var payload ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == uuid.Nil {
		return
	}

	if h.readMarker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	// The durable write publishes a MessagesReadEvent on success; the
	// dispatcher turns that into the room's messagesRead receipt.
	if err := h.readMarker.MarkConversationRead(ctx, client.userID, payload.ConversationID); err != nil {
		h.logger.Debug("markRead frame rejected",
			zap.String("conversation_id", payload.ConversationID.String()),
			zap.Error(err))
	}
}

// broadcastRoom encodes and sends an event to a room, optionally skipping
// the originating connection
func (h *Hub) broadcastRoom(conversationID uuid.UUID, event string, payload any, exclude *Client) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error("encoding broadcast frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.rooms.Broadcast(conversationID, frame, exclude)
}

// BroadcastRoomExcludingUser sends an event to every room connection not
// owned by the given user
func (h *Hub) BroadcastRoomExcludingUser(conversationID uuid.UUID, event string, payload any, userID uuid.UUID) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error("encoding broadcast frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.rooms.BroadcastExcludingUser(conversationID, frame, userID)
}

// BroadcastRoom sends an event to every connection in a room
func (h *Hub) BroadcastRoom(conversationID uuid.UUID, event string, payload any) {
	h.broadcastRoom(conversationID, event, payload, nil)
}

// SendToUser sends an event to every live connection of one user. A user
// with no connections is a silent no-op.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error("encoding user frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	for _, client := range h.presence.ConnectionsOf(userID) {
		client.Send(frame)
	}
}

func (h *Hub) broadcastAll(event string, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error("encoding broadcast frame failed", zap.String("event", event), zap.Error(err))
		return
	}
	for _, client := range h.presence.All() {
		client.Send(frame)
	}
}
