package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "test", uuid.New()),
	}
}

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	failWith   error
	panicWith  any
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	h.received = append(h.received, event)
	h.mu.Unlock()
	return h.failWith
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"message.sent"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("message.sent"))

	require.NoError(t, err)
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_IgnoresUnrelatedEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"message.sent"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("conversation.created"))

	require.NoError(t, err)
	assert.Equal(t, 0, handler.count())
}

func TestInMemoryEventBus_WildcardHandlerReceivesAllEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("message.sent"),
		newTestEvent("conversation.created"),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, handler.count())
}

func TestInMemoryEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{eventTypes: []string{"message.sent"}, failWith: errors.New("boom")}
	healthy := &recordingHandler{eventTypes: []string{"message.sent"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("message.sent"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{eventTypes: []string{"message.sent"}, panicWith: "boom"}
	healthy := &recordingHandler{eventTypes: []string{"message.sent"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("message.sent"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"message.sent"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("message.sent"))

	require.NoError(t, err)
	assert.Equal(t, 0, handler.count())
}
