package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/backend/internal/domain/identity"
	domainmsg "github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/domain/shared"
	"github.com/tutorlink/backend/internal/infrastructure/event"
	"github.com/tutorlink/backend/internal/infrastructure/persistence"
	"github.com/tutorlink/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakePresence reports a fixed set of users online
type fakePresence struct {
	online map[uuid.UUID]bool
}

func (p *fakePresence) IsOnline(userID uuid.UUID) bool {
	return p.online[userID]
}

func (p *fakePresence) OnlineAmong(userIDs []uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range userIDs {
		if p.online[id] {
			out = append(out, id)
		}
	}
	return out
}

// fixture wires the messaging service against a real in-memory store with
// the notifier subscribed, so tests observe the full send-to-notification
// path
type fixture struct {
	svc       *MessagingService
	notifSvc  *NotificationService
	userRepo  identity.UserRepository
	notifRepo domainmsg.NotificationRepository
	presence  *fakePresence
	bus       *event.InMemoryEventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := zap.NewNop()
	convRepo := persistence.NewGormConversationRepository(db)
	msgRepo := persistence.NewGormMessageRepository(db)
	notifRepo := persistence.NewGormNotificationRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	bus := event.NewInMemoryEventBus(log)
	notifier := NewNotifier(notifRepo, log)
	bus.Subscribe(notifier)

	presence := &fakePresence{online: make(map[uuid.UUID]bool)}
	svc := NewMessagingService(convRepo, msgRepo, notifRepo, userRepo, bus, presence, log)
	notifSvc := NewNotificationService(notifRepo, 50, log)

	return &fixture{
		svc:       svc,
		notifSvc:  notifSvc,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		presence:  presence,
		bus:       bus,
	}
}

// readReceiptRecorder collects MessagesRead events crossing the bus
type readReceiptRecorder struct {
	events []*domainmsg.MessagesReadEvent
}

func (r *readReceiptRecorder) Handle(_ context.Context, e shared.DomainEvent) error {
	if evt, ok := e.(*domainmsg.MessagesReadEvent); ok {
		r.events = append(r.events, evt)
	}
	return nil
}

func (r *readReceiptRecorder) EventTypes() []string {
	return []string{domainmsg.EventTypeMessagesRead}
}

func (f *fixture) createUser(t *testing.T, email, name string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, "password123", name, identity.UserRoleStudent)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func TestStartConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a conversation once and reuses it after", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		first, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)
		assert.True(t, first.Created)
		assert.Len(t, first.Conversation.Members, 2)

		// starting again, even from the other side, lands in the same thread
		second, err := f.svc.StartConversation(ctx, bob.ID, StartConversationInput{RecipientID: alice.ID})
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
	})

	t.Run("notifies the recipient about the new conversation", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		result, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID: bob.ID,
			Title:       "Algebra help",
		})
		require.NoError(t, err)

		notifications, err := f.notifSvc.List(ctx, bob.ID, false, 0)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, domainmsg.NotificationTypeConversation, notifications[0].Type)
		assert.Equal(t, result.Conversation.ID, notifications[0].Payload.ConversationID)
		assert.Equal(t, alice.ID, notifications[0].Payload.SenderID)
		assert.Equal(t, "Algebra help", notifications[0].Payload.Title)

		// the starter gets nothing
		own, err := f.notifSvc.List(ctx, alice.ID, false, 0)
		require.NoError(t, err)
		assert.Empty(t, own)
	})

	t.Run("sends the first message in the same call", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		result, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "hi, are you free this week?",
		})
		require.NoError(t, err)
		require.NotNil(t, result.Message)
		assert.Equal(t, "hi, are you free this week?", result.Message.Body)
		require.NotNil(t, result.Conversation.LastMessage)
		assert.Equal(t, result.Message.ID, result.Conversation.LastMessage.ID)

		msgs, err := f.svc.GetMessages(ctx, bob.ID, result.Conversation.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, alice.ID, msgs[0].SenderID)
	})

	t.Run("rejects self and unknown recipients", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")

		_, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: alice.ID})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_MEMBERS", domainErr.Code)

		_, err = f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: uuid.New()})
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "RECIPIENT_NOT_FOUND", domainErr.Code)
	})

	t.Run("rejects deactivated recipients", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")
		require.NoError(t, bob.Deactivate())
		require.NoError(t, f.userRepo.Update(ctx, bob))

		_, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "RECIPIENT_INACTIVE", domainErr.Code)
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("acknowledges which recipients are online", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		// bob offline: delivery falls back to notifications
		result, err := f.svc.SendMessage(ctx, alice.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           "first",
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{bob.ID}, result.RecipientIDs)
		assert.Empty(t, result.OnlineRecipientIDs)

		f.presence.online[bob.ID] = true
		result, err = f.svc.SendMessage(ctx, alice.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           "second",
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{bob.ID}, result.OnlineRecipientIDs)
	})

	t.Run("rejects non-members", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")
		mallory := f.createUser(t, "mallory@example.com", "Mallory")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		_, err = f.svc.SendMessage(ctx, mallory.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           "let me in",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("creates an excerpt notification for the recipient", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		long := strings.Repeat("日", 300)
		result, err := f.svc.SendMessage(ctx, alice.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           long,
		})
		require.NoError(t, err)

		notifications, err := f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		require.NotEmpty(t, notifications)

		var msgNotif *NotificationView
		for i := range notifications {
			if notifications[i].Type == domainmsg.NotificationTypeMessage {
				msgNotif = &notifications[i]
			}
		}
		require.NotNil(t, msgNotif)
		assert.Equal(t, result.Message.ID, msgNotif.Payload.MessageID)
		assert.Equal(t, strings.Repeat("日", domainmsg.ExcerptMaxChars), msgNotif.Payload.Excerpt)
	})

	t.Run("bumps the conversation to the top of the list", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")
		carol := f.createUser(t, "carol@example.com", "Carol")

		withBob, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "hello bob",
		})
		require.NoError(t, err)
		withCarol, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  carol.ID,
			FirstMessage: "hello carol",
		})
		require.NoError(t, err)

		_, err = f.svc.SendMessage(ctx, bob.ID, SendMessageInput{
			ConversationID: withBob.Conversation.ID,
			Body:           "hi alice",
		})
		require.NoError(t, err)

		list, err := f.svc.ListConversations(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, withBob.Conversation.ID, list[0].ID)
		assert.Equal(t, withCarol.Conversation.ID, list[1].ID)
		require.NotNil(t, list[0].LastMessage)
		assert.Equal(t, "hi alice", list[0].LastMessage.Body)
	})
}

func TestListConversations(t *testing.T) {
	ctx := context.Background()

	t.Run("includes member profiles", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		_, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		list, err := f.svc.ListConversations(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)

		names := make([]string, 0, 2)
		for _, m := range list[0].Members {
			names = append(names, m.DisplayName)
		}
		assert.ElementsMatch(t, []string{"Alice", "Bob"}, names)
	})

	t.Run("excludes conversations of other users", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")
		carol := f.createUser(t, "carol@example.com", "Carol")

		_, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		list, err := f.svc.ListConversations(ctx, carol.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestGetMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the other side's messages read", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "hello",
		})
		require.NoError(t, err)
		_, err = f.svc.SendMessage(ctx, bob.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           "hey",
		})
		require.NoError(t, err)

		// bob fetches: alice's message flips to read, his own stays as is
		msgs, err := f.svc.GetMessages(ctx, bob.ID, conv.Conversation.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		for _, m := range msgs {
			if m.SenderID == alice.ID {
				assert.True(t, m.Read)
			}
		}

		// alice fetches next: bob's message is now read too
		msgs, err = f.svc.GetMessages(ctx, alice.ID, conv.Conversation.ID)
		require.NoError(t, err)
		for _, m := range msgs {
			assert.True(t, m.Read)
		}
	})

	t.Run("clears matching message notifications", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "ping",
		})
		require.NoError(t, err)

		unread, err := f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		require.NotEmpty(t, unread)

		_, err = f.svc.GetMessages(ctx, bob.ID, conv.Conversation.ID)
		require.NoError(t, err)

		unread, err = f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		for _, n := range unread {
			// the conversation-created notification is not touched by reading
			assert.NotEqual(t, domainmsg.NotificationTypeMessage, n.Type)
		}
	})

	t.Run("publishes a read receipt only when something was unread", func(t *testing.T) {
		f := newFixture(t)
		rec := &readReceiptRecorder{}
		f.bus.Subscribe(rec)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "hello",
		})
		require.NoError(t, err)

		_, err = f.svc.GetMessages(ctx, bob.ID, conv.Conversation.ID)
		require.NoError(t, err)
		require.Len(t, rec.events, 1)
		assert.Equal(t, bob.ID, rec.events[0].ReaderID)

		// re-opening an already-read conversation emits no receipt
		_, err = f.svc.GetMessages(ctx, bob.ID, conv.Conversation.ID)
		require.NoError(t, err)
		assert.Len(t, rec.events, 1)
	})

	t.Run("rejects non-members", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")
		mallory := f.createUser(t, "mallory@example.com", "Mallory")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		_, err = f.svc.GetMessages(ctx, mallory.ID, conv.Conversation.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestMarkConversationRead(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", "Alice")
	bob := f.createUser(t, "bob@example.com", "Bob")
	mallory := f.createUser(t, "mallory@example.com", "Mallory")

	conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
		RecipientID:  bob.ID,
		FirstMessage: "read me",
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.MarkConversationRead(ctx, mallory.ID, conv.Conversation.ID), shared.ErrForbidden)

	require.NoError(t, f.svc.MarkConversationRead(ctx, bob.ID, conv.Conversation.ID))
	// idempotent
	require.NoError(t, f.svc.MarkConversationRead(ctx, bob.ID, conv.Conversation.ID))

	msgs, err := f.svc.GetMessages(ctx, bob.ID, conv.Conversation.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()

	t.Run("mark read is scoped to the owner", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		_, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{RecipientID: bob.ID})
		require.NoError(t, err)

		notifications, err := f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		id := notifications[0].ID

		// a foreign mark-read is a silent no-op
		require.NoError(t, f.notifSvc.MarkRead(ctx, alice.ID, id))
		notifications, err = f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		assert.Len(t, notifications, 1)

		require.NoError(t, f.notifSvc.MarkRead(ctx, bob.ID, id))
		notifications, err = f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		assert.Empty(t, notifications)
	})

	t.Run("mark all read", func(t *testing.T) {
		f := newFixture(t)
		alice := f.createUser(t, "alice@example.com", "Alice")
		bob := f.createUser(t, "bob@example.com", "Bob")

		conv, err := f.svc.StartConversation(ctx, alice.ID, StartConversationInput{
			RecipientID:  bob.ID,
			FirstMessage: "one",
		})
		require.NoError(t, err)
		_, err = f.svc.SendMessage(ctx, alice.ID, SendMessageInput{
			ConversationID: conv.Conversation.ID,
			Body:           "two",
		})
		require.NoError(t, err)

		require.NoError(t, f.notifSvc.MarkAllRead(ctx, bob.ID))
		unread, err := f.notifSvc.List(ctx, bob.ID, true, 0)
		require.NoError(t, err)
		assert.Empty(t, unread)

		all, err := f.notifSvc.List(ctx, bob.ID, false, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
