package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/backend/internal/domain/messaging"
)

func mustNotification(t *testing.T, recipientID uuid.UUID, kind messaging.NotificationType, payload messaging.NotificationPayload) *messaging.Notification {
	t.Helper()
	n, err := messaging.NewNotification(recipientID, kind, payload)
	require.NoError(t, err)
	return n
}

func TestGormNotificationRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	convID := uuid.New()
	sender := uuid.New()

	n := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: convID,
		MessageID:      uuid.New(),
		SenderID:       sender,
		Excerpt:        "hello there",
	})
	require.NoError(t, repo.Create(ctx, n))

	list, err := repo.ListForUser(ctx, recipient, false, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, convID, list[0].Payload.ConversationID)
	assert.Equal(t, "hello there", list[0].Payload.Excerpt)
	assert.False(t, list[0].Read)

	// Other users never see it
	list, err = repo.ListForUser(ctx, uuid.New(), false, 50)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormNotificationRepository_UnreadOnlyFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	read := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: uuid.New(), SenderID: uuid.New(),
	})
	read.MarkRead()
	unread := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: uuid.New(), SenderID: uuid.New(),
	})
	require.NoError(t, repo.Create(ctx, read))
	require.NoError(t, repo.Create(ctx, unread))

	list, err := repo.ListForUser(ctx, recipient, true, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, unread.ID, list[0].ID)
}

func TestGormNotificationRepository_MarkReadIsScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	n := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: uuid.New(), SenderID: uuid.New(),
	})
	require.NoError(t, repo.Create(ctx, n))

	// Someone else marking it read is a silent no-op
	require.NoError(t, repo.MarkRead(ctx, n.ID, uuid.New()))
	list, err := repo.ListForUser(ctx, recipient, true, 50)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Missing notification is also a no-op
	require.NoError(t, repo.MarkRead(ctx, uuid.New(), recipient))

	// The owner marking it read works
	require.NoError(t, repo.MarkRead(ctx, n.ID, recipient))
	list, err = repo.ListForUser(ctx, recipient, true, 50)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormNotificationRepository_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	for i := 0; i < 3; i++ {
		n := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
			ConversationID: uuid.New(), SenderID: uuid.New(),
		})
		require.NoError(t, repo.Create(ctx, n))
	}

	require.NoError(t, repo.MarkAllRead(ctx, recipient))

	list, err := repo.ListForUser(ctx, recipient, true, 50)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormNotificationRepository_MarkConversationRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	convID := uuid.New()
	sender := uuid.New()

	inConv := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: convID, SenderID: sender,
	})
	otherConv := mustNotification(t, recipient, messaging.NotificationTypeMessage, messaging.NotificationPayload{
		ConversationID: uuid.New(), SenderID: sender,
	})
	// conversation-type notifications are not touched by read propagation
	convCreated := mustNotification(t, recipient, messaging.NotificationTypeConversation, messaging.NotificationPayload{
		ConversationID: convID, SenderID: sender,
	})
	require.NoError(t, repo.Create(ctx, inConv))
	require.NoError(t, repo.Create(ctx, otherConv))
	require.NoError(t, repo.Create(ctx, convCreated))

	require.NoError(t, repo.MarkConversationRead(ctx, recipient, convID))

	list, err := repo.ListForUser(ctx, recipient, true, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []uuid.UUID{list[0].ID, list[1].ID}
	assert.Contains(t, ids, otherConv.ID)
	assert.Contains(t, ids, convCreated.ID)
}
