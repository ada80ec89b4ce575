package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/infrastructure/config"
)

type fakeMembership struct {
	members map[uuid.UUID]map[uuid.UUID]bool
	err     error
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{members: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (f *fakeMembership) allow(conversationID, userID uuid.UUID) {
	if f.members[conversationID] == nil {
		f.members[conversationID] = make(map[uuid.UUID]bool)
	}
	f.members[conversationID][userID] = true
}

func (f *fakeMembership) IsMember(_ context.Context, conversationID, userID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.members[conversationID][userID], nil
}

type fakeReadMarker struct {
	calls []struct{ userID, conversationID uuid.UUID }
	err   error
}

func (f *fakeReadMarker) MarkConversationRead(_ context.Context, userID, conversationID uuid.UUID) error {
	f.calls = append(f.calls, struct{ userID, conversationID uuid.UUID }{userID, conversationID})
	return f.err
}

type hubFixture struct {
	hub        *Hub
	membership *fakeMembership
	readMarker *fakeReadMarker
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()

	cfg := config.WSConfig{
		WriteWait:       time.Second,
		PongWait:        time.Minute,
		PingInterval:    54 * time.Second,
		MaxMessageBytes: 64 << 10,
		SendBufferSize:  16,
	}
	membership := newFakeMembership()
	readMarker := &fakeReadMarker{}
	hub := NewHub(cfg, membership, nil, zap.NewNop())
	hub.SetReadMarker(readMarker)

	return &hubFixture{
		hub:        hub,
		membership: membership,
		readMarker: readMarker,
	}
}

// connect creates a registered client without a live socket; outbound
// frames pile up in its send buffer where tests can inspect them
func (f *hubFixture) connect(userID uuid.UUID) *Client {
	client := newClient(f.hub, nil, userID, zap.NewNop())
	f.hub.Register(client)
	return client
}

func drainFrames(t *testing.T, client *Client) []Frame {
	t.Helper()

	var frames []Frame
	for {
		select {
		case raw := <-client.send:
			var frame Frame
			require.NoError(t, json.Unmarshal(raw, &frame))
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func framesOf(t *testing.T, client *Client, event string) []Frame {
	t.Helper()

	var matched []Frame
	for _, frame := range drainFrames(t, client) {
		if frame.Event == event {
			matched = append(matched, frame)
		}
	}
	return matched
}

func encodeClientFrame(t *testing.T, event string, payload any) []byte {
	t.Helper()
	raw, err := EncodeFrame(event, payload)
	require.NoError(t, err)
	return raw
}

func TestPresenceRegistry(t *testing.T) {
	t.Run("second connection of a user does not re-announce online", func(t *testing.T) {
		registry := NewPresenceRegistry()
		userID := uuid.New()
		first := &Client{userID: userID}
		second := &Client{userID: userID}

		assert.True(t, registry.Add(first))
		assert.False(t, registry.Add(second))
		assert.True(t, registry.IsOnline(userID))

		assert.False(t, registry.Remove(first))
		assert.True(t, registry.IsOnline(userID))
		assert.True(t, registry.Remove(second))
		assert.False(t, registry.IsOnline(userID))
	})

	t.Run("removing an unknown connection is a no-op", func(t *testing.T) {
		registry := NewPresenceRegistry()
		assert.False(t, registry.Remove(&Client{userID: uuid.New()}))
	})

	t.Run("online among filters and preserves order", func(t *testing.T) {
		registry := NewPresenceRegistry()
		online1, offline, online2 := uuid.New(), uuid.New(), uuid.New()
		registry.Add(&Client{userID: online1})
		registry.Add(&Client{userID: online2})

		got := registry.OnlineAmong([]uuid.UUID{online1, offline, online2})
		assert.Equal(t, []uuid.UUID{online1, online2}, got)
	})
}

func TestRoomRouter(t *testing.T) {
	t.Run("join is idempotent per connection", func(t *testing.T) {
		router := NewRoomRouter()
		conversationID := uuid.New()
		client := &Client{userID: uuid.New(), send: make(chan []byte, 4)}

		router.Join(conversationID, client)
		router.Join(conversationID, client)
		assert.True(t, router.InRoom(conversationID, client))

		router.Broadcast(conversationID, []byte("x"), nil)
		assert.Len(t, client.send, 1)
	})

	t.Run("broadcast excludes one connection", func(t *testing.T) {
		router := NewRoomRouter()
		conversationID := uuid.New()
		sender := &Client{userID: uuid.New(), send: make(chan []byte, 4)}
		viewer := &Client{userID: uuid.New(), send: make(chan []byte, 4)}
		router.Join(conversationID, sender)
		router.Join(conversationID, viewer)

		router.Broadcast(conversationID, []byte("x"), sender)
		assert.Len(t, sender.send, 0)
		assert.Len(t, viewer.send, 1)
	})

	t.Run("broadcast excluding user skips all of their tabs", func(t *testing.T) {
		router := NewRoomRouter()
		conversationID := uuid.New()
		userID := uuid.New()
		tab1 := &Client{userID: userID, send: make(chan []byte, 4)}
		tab2 := &Client{userID: userID, send: make(chan []byte, 4)}
		other := &Client{userID: uuid.New(), send: make(chan []byte, 4)}
		router.Join(conversationID, tab1)
		router.Join(conversationID, tab2)
		router.Join(conversationID, other)

		router.BroadcastExcludingUser(conversationID, []byte("x"), userID)
		assert.Len(t, tab1.send, 0)
		assert.Len(t, tab2.send, 0)
		assert.Len(t, other.send, 1)
	})

	t.Run("leave all reports and empties every room", func(t *testing.T) {
		router := NewRoomRouter()
		convA, convB := uuid.New(), uuid.New()
		client := &Client{userID: uuid.New(), send: make(chan []byte, 4)}
		router.Join(convA, client)
		router.Join(convB, client)

		left := router.LeaveAll(client)
		assert.ElementsMatch(t, []uuid.UUID{convA, convB}, left)
		assert.False(t, router.InRoom(convA, client))
		assert.False(t, router.InRoom(convB, client))
		assert.Empty(t, router.LeaveAll(client))
	})

	t.Run("broadcast to an empty room is a silent no-op", func(t *testing.T) {
		router := NewRoomRouter()
		router.Broadcast(uuid.New(), []byte("x"), nil)
	})
}

func TestTypingState(t *testing.T) {
	state := NewTypingState()
	conversationID := uuid.New()
	userID := uuid.New()

	assert.True(t, state.Set(conversationID, userID, true))
	assert.False(t, state.Set(conversationID, userID, true), "duplicate start is suppressed")
	assert.True(t, state.IsTyping(conversationID, userID))

	assert.True(t, state.Set(conversationID, userID, false))
	assert.False(t, state.Set(conversationID, userID, false), "duplicate stop is suppressed")
	assert.False(t, state.IsTyping(conversationID, userID))

	assert.False(t, state.Set(uuid.New(), userID, false), "stop in an untouched conversation changes nothing")
}

func TestHubPresenceBroadcast(t *testing.T) {
	f := newHubFixture(t)
	alice, bob := uuid.New(), uuid.New()

	watcher := f.connect(alice)
	drainFrames(t, watcher)

	bobTab1 := f.connect(bob)
	frames := framesOf(t, watcher, EventPresence)
	require.Len(t, frames, 1)
	var presence PresencePayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &presence))
	assert.Equal(t, bob, presence.UserID)
	assert.True(t, presence.Online)

	// A second tab must not re-announce
	bobTab2 := f.connect(bob)
	assert.Empty(t, framesOf(t, watcher, EventPresence))

	// Offline only when the last tab goes
	f.hub.Unregister(bobTab1)
	assert.Empty(t, framesOf(t, watcher, EventPresence))

	f.hub.Unregister(bobTab2)
	frames = framesOf(t, watcher, EventPresence)
	require.Len(t, frames, 1)
	require.NoError(t, json.Unmarshal(frames[0].Data, &presence))
	assert.Equal(t, bob, presence.UserID)
	assert.False(t, presence.Online)
}

func TestHubJoinAuthorization(t *testing.T) {
	f := newHubFixture(t)
	conversationID := uuid.New()
	member, outsider := uuid.New(), uuid.New()
	f.membership.allow(conversationID, member)

	memberClient := f.connect(member)
	outsiderClient := f.connect(outsider)

	join := encodeClientFrame(t, EventJoinConversation, ConversationRefPayload{ConversationID: conversationID})
	f.hub.handleFrame(memberClient, join)
	f.hub.handleFrame(outsiderClient, join)

	assert.True(t, f.hub.rooms.InRoom(conversationID, memberClient))
	assert.False(t, f.hub.rooms.InRoom(conversationID, outsiderClient))

	t.Run("membership lookup failure denies the join", func(t *testing.T) {
		f.membership.err = errors.New("store down")
		fresh := f.connect(member)
		f.hub.handleFrame(fresh, join)
		assert.False(t, f.hub.rooms.InRoom(conversationID, fresh))
	})
}

func TestHubTypingRebroadcast(t *testing.T) {
	f := newHubFixture(t)
	conversationID := uuid.New()
	alice, bob := uuid.New(), uuid.New()
	f.membership.allow(conversationID, alice)
	f.membership.allow(conversationID, bob)

	aliceClient := f.connect(alice)
	bobClient := f.connect(bob)
	join := encodeClientFrame(t, EventJoinConversation, ConversationRefPayload{ConversationID: conversationID})
	f.hub.handleFrame(aliceClient, join)
	f.hub.handleFrame(bobClient, join)
	drainFrames(t, aliceClient)
	drainFrames(t, bobClient)

	typingOn := encodeClientFrame(t, EventTyping, TypingPayload{ConversationID: conversationID, IsTyping: true})
	f.hub.handleFrame(aliceClient, typingOn)

	frames := framesOf(t, bobClient, EventTyping)
	require.Len(t, frames, 1)
	var typing TypingPayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &typing))
	assert.Equal(t, alice, typing.UserID, "server attaches the sender id")
	assert.True(t, typing.IsTyping)
	assert.Empty(t, framesOf(t, aliceClient, EventTyping), "no self-echo")

	t.Run("duplicate signal is not re-broadcast", func(t *testing.T) {
		f.hub.handleFrame(aliceClient, typingOn)
		assert.Empty(t, framesOf(t, bobClient, EventTyping))
	})

	t.Run("typing from outside the room is ignored", func(t *testing.T) {
		stranger := f.connect(uuid.New())
		f.hub.handleFrame(stranger, typingOn)
		assert.Empty(t, framesOf(t, bobClient, EventTyping))
	})

	t.Run("disconnect clears the stuck indicator", func(t *testing.T) {
		f.hub.Unregister(aliceClient)
		frames := framesOf(t, bobClient, EventTyping)
		require.Len(t, frames, 1)
		require.NoError(t, json.Unmarshal(frames[0].Data, &typing))
		assert.Equal(t, alice, typing.UserID)
		assert.False(t, typing.IsTyping)
		assert.False(t, f.hub.typing.IsTyping(conversationID, alice))
	})
}

func TestHubMarkRead(t *testing.T) {
	f := newHubFixture(t)
	conversationID := uuid.New()
	reader := uuid.New()
	client := f.connect(reader)

	f.hub.handleFrame(client, encodeClientFrame(t, EventMarkRead, ConversationRefPayload{ConversationID: conversationID}))

	require.Len(t, f.readMarker.calls, 1)
	assert.Equal(t, reader, f.readMarker.calls[0].userID)
	assert.Equal(t, conversationID, f.readMarker.calls[0].conversationID)

	t.Run("rejection does not close the connection", func(t *testing.T) {
		f.readMarker.err = errors.New("not a member")
		f.hub.handleFrame(client, encodeClientFrame(t, EventMarkRead, ConversationRefPayload{ConversationID: conversationID}))
		assert.Len(t, f.readMarker.calls, 2)
	})
}

func TestHubMalformedFrames(t *testing.T) {
	f := newHubFixture(t)
	client := f.connect(uuid.New())

	f.hub.handleFrame(client, []byte("not json"))
	f.hub.handleFrame(client, []byte(`{"event":"joinConversation","data":{"conversationId":"nope"}}`))
	f.hub.handleFrame(client, encodeClientFrame(t, "unknownEvent", struct{}{}))

	assert.Empty(t, f.readMarker.calls)
	assert.Empty(t, drainFrames(t, client))
}

func TestLiveDispatcherMessageSent(t *testing.T) {
	f := newHubFixture(t)
	dispatcher := NewLiveDispatcher(f.hub, zap.NewNop())
	conversationID := uuid.New()
	sender, recipient := uuid.New(), uuid.New()
	f.membership.allow(conversationID, sender)
	f.membership.allow(conversationID, recipient)

	senderClient := f.connect(sender)
	recipientClient := f.connect(recipient)
	join := encodeClientFrame(t, EventJoinConversation, ConversationRefPayload{ConversationID: conversationID})
	f.hub.handleFrame(senderClient, join)
	f.hub.handleFrame(recipientClient, join)
	drainFrames(t, senderClient)
	drainFrames(t, recipientClient)

	msg, err := messaging.NewMessage(conversationID, sender, "hello there")
	require.NoError(t, err)
	require.NoError(t, dispatcher.Handle(context.Background(), messaging.NewMessageSentEvent(msg, []uuid.UUID{recipient})))

	frames := framesOf(t, recipientClient, EventNewMessage)
	require.Len(t, frames, 1)
	var delivered NewMessagePayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &delivered))
	assert.Equal(t, conversationID, delivered.ConversationID)
	assert.Equal(t, msg.ID, delivered.Message.ID)
	assert.Equal(t, "hello there", delivered.Message.Body)

	senderFrames := drainFrames(t, senderClient)
	var ackFrames []Frame
	for _, frame := range senderFrames {
		switch frame.Event {
		case EventMessageDelivered:
			ackFrames = append(ackFrames, frame)
		case EventNewMessage:
			t.Fatal("sender must not receive a self-echo through the room")
		}
	}
	require.Len(t, ackFrames, 1)
	var ack MessageDeliveredPayload
	require.NoError(t, json.Unmarshal(ackFrames[0].Data, &ack))
	assert.Equal(t, msg.ID, ack.MessageID)
	assert.Equal(t, []uuid.UUID{recipient}, ack.Recipients)

	t.Run("offline recipient still yields a delivery ack", func(t *testing.T) {
		f.hub.Unregister(recipientClient)
		drainFrames(t, senderClient)

		msg2, err := messaging.NewMessage(conversationID, sender, "anyone home")
		require.NoError(t, err)
		require.NoError(t, dispatcher.Handle(context.Background(), messaging.NewMessageSentEvent(msg2, []uuid.UUID{recipient})))

		ackFrames := framesOf(t, senderClient, EventMessageDelivered)
		require.Len(t, ackFrames, 1)
		require.NoError(t, json.Unmarshal(ackFrames[0].Data, &ack))
		assert.Empty(t, ack.Recipients)
	})
}

func TestLiveDispatcherConversationCreated(t *testing.T) {
	f := newHubFixture(t)
	dispatcher := NewLiveDispatcher(f.hub, zap.NewNop())
	starter, recipient := uuid.New(), uuid.New()

	conv, err := messaging.NewDirectConversation(starter, recipient, "Algebra help")
	require.NoError(t, err)

	starterClient := f.connect(starter)
	recipientClient := f.connect(recipient)
	drainFrames(t, starterClient)
	drainFrames(t, recipientClient)

	require.NoError(t, dispatcher.Handle(context.Background(), messaging.NewConversationCreatedEvent(conv, starter)))

	frames := framesOf(t, recipientClient, EventConversationCreated)
	require.Len(t, frames, 1)
	var created ConversationCreatedPayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &created))
	assert.Equal(t, conv.ID, created.ConversationID)
	assert.Equal(t, starter, created.StarterID)
	assert.Equal(t, "Algebra help", created.Title)

	assert.Empty(t, framesOf(t, starterClient, EventConversationCreated), "starter initiated it and needs no push")
}

func TestLiveDispatcherMessagesRead(t *testing.T) {
	f := newHubFixture(t)
	dispatcher := NewLiveDispatcher(f.hub, zap.NewNop())
	conversationID := uuid.New()
	reader, other := uuid.New(), uuid.New()
	f.membership.allow(conversationID, reader)
	f.membership.allow(conversationID, other)

	readerClient := f.connect(reader)
	otherClient := f.connect(other)
	join := encodeClientFrame(t, EventJoinConversation, ConversationRefPayload{ConversationID: conversationID})
	f.hub.handleFrame(readerClient, join)
	f.hub.handleFrame(otherClient, join)
	drainFrames(t, readerClient)
	drainFrames(t, otherClient)

	require.NoError(t, dispatcher.Handle(context.Background(), messaging.NewMessagesReadEvent(conversationID, reader)))

	for name, client := range map[string]*Client{"other member": otherClient, "reader's own tabs": readerClient} {
		frames := framesOf(t, client, EventMessagesRead)
		require.Len(t, frames, 1, name)
		var receipt MessagesReadPayload
		require.NoError(t, json.Unmarshal(frames[0].Data, &receipt))
		assert.Equal(t, reader, receipt.UserID, name)
	}
}

func TestClientSendDropsWhenBufferFull(t *testing.T) {
	f := newHubFixture(t)
	client := newClient(f.hub, nil, uuid.New(), zap.NewNop())

	for i := 0; i < f.hub.cfg.SendBufferSize+5; i++ {
		client.Send([]byte(fmt.Sprintf("frame-%d", i)))
	}
	assert.Len(t, client.send, f.hub.cfg.SendBufferSize)
}
