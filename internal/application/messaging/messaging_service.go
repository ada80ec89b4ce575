package messaging

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/domain/identity"
	"github.com/tutorlink/backend/internal/domain/messaging"
	"github.com/tutorlink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MessagingService implements the messaging core: conversations, messages,
// and read state. Every state change goes through the durable store first;
// events are published after the write succeeds, so a failing broadcast or
// notification handler never loses a message.
type MessagingService struct {
	convRepo  messaging.ConversationRepository
	msgRepo   messaging.MessageRepository
	notifRepo messaging.NotificationRepository
	userRepo  identity.UserRepository
	eventBus  shared.EventPublisher
	presence  Presence
	logger    *zap.Logger
}

// NewMessagingService creates a new messaging service
func NewMessagingService(
	convRepo messaging.ConversationRepository,
	msgRepo messaging.MessageRepository,
	notifRepo messaging.NotificationRepository,
	userRepo identity.UserRepository,
	eventBus shared.EventPublisher,
	presence Presence,
	logger *zap.Logger,
) *MessagingService {
	if presence == nil {
		presence = NoPresence()
	}
	return &MessagingService{
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		notifRepo: notifRepo,
		userRepo:  userRepo,
		eventBus:  eventBus,
		presence:  presence,
		logger:    logger,
	}
}

// StartConversation gets or creates the direct conversation between the
// caller and the recipient. At most one conversation exists per unordered
// pair; starting again returns the existing one and Created=false. An
// optional first message is sent in the same call.
func (s *MessagingService) StartConversation(ctx context.Context, starterID uuid.UUID, input StartConversationInput) (*StartConversationResult, error) {
	if input.RecipientID == starterID {
		return nil, shared.NewDomainError("INVALID_MEMBERS", "Cannot start a conversation with yourself")
	}

	recipient, err := s.userRepo.FindByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("RECIPIENT_NOT_FOUND", "Recipient does not exist")
		}
		return nil, err
	}
	if !recipient.IsActive() {
		return nil, shared.NewDomainError("RECIPIENT_INACTIVE", "Recipient account is deactivated")
	}

	conv, err := s.convRepo.FindDirectBetween(ctx, starterID, input.RecipientID)
	created := false
	switch {
	case err == nil:
		// reuse the existing thread
	case errors.Is(err, shared.ErrNotFound):
		conv, err = messaging.NewDirectConversation(starterID, input.RecipientID, input.Title)
		if err != nil {
			return nil, err
		}
		if err := s.convRepo.Create(ctx, conv); err != nil {
			s.logger.Error("Failed to create conversation", zap.Error(err))
			return nil, err
		}
		created = true
		s.publish(ctx, messaging.NewConversationCreatedEvent(conv, starterID))
		s.logger.Info("Conversation created",
			zap.String("conversation_id", conv.ID.String()),
			zap.String("starter_id", starterID.String()))
	default:
		return nil, err
	}

	result := &StartConversationResult{Created: created}

	if input.FirstMessage != "" {
		msg, err := s.appendMessage(ctx, conv, starterID, input.FirstMessage)
		if err != nil {
			return nil, err
		}
		view := MessageViewFromDomain(msg)
		result.Message = &view
	}

	view, err := s.conversationView(ctx, conv, result.Message)
	if err != nil {
		return nil, err
	}
	result.Conversation = *view
	return result, nil
}

// SendMessage appends a message to a conversation the sender belongs to and
// returns a delivery acknowledgement listing which recipients were online.
func (s *MessagingService) SendMessage(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*SendMessageResult, error) {
	conv, err := s.convRepo.FindByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasMember(senderID) {
		return nil, shared.ErrForbidden
	}

	msg, err := s.appendMessage(ctx, conv, senderID, input.Body)
	if err != nil {
		return nil, err
	}

	recipients := conv.OtherMemberIDs(senderID)
	return &SendMessageResult{
		Message:            MessageViewFromDomain(msg),
		RecipientIDs:       recipients,
		OnlineRecipientIDs: s.presence.OnlineAmong(recipients),
	}, nil
}

// ListConversations returns the caller's conversations, most recently active
// first, with member profiles and each conversation's latest message.
func (s *MessagingService) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationView, error) {
	summaries, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.memberProfiles(ctx, summaries)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(summaries))
	for i := range summaries {
		conv := &summaries[i].Conversation
		view := ConversationView{
			ID:        conv.ID,
			Title:     conv.Title,
			Members:   resolveMembers(conv, profiles),
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		}
		if summaries[i].LastMessage != nil {
			last := MessageViewFromDomain(summaries[i].LastMessage)
			view.LastMessage = &last
		}
		views = append(views, view)
	}
	return views, nil
}

// GetConversation returns one conversation with member profiles. The caller
// must be a member.
func (s *MessagingService) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationView, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasMember(userID) {
		return nil, shared.ErrForbidden
	}
	return s.conversationView(ctx, conv, nil)
}

// GetMessages returns the conversation's full history oldest first and, as a
// side effect, marks everything the caller had not read yet as read: the act
// of fetching history is the act of reading it. Matching message
// notifications are cleared in the same pass so the two read states cannot
// diverge, then a read receipt event is published for the live layer when
// anything was actually unread.
func (s *MessagingService) GetMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]MessageView, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasMember(userID) {
		return nil, shared.ErrForbidden
	}

	if err := s.markRead(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	msgs, err := s.msgRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, len(msgs))
	for i, m := range msgs {
		views[i] = MessageViewFromDomain(m)
	}
	return views, nil
}

// MarkConversationRead marks the conversation read for the caller without
// fetching history. Used by the live layer when a client acknowledges a
// conversation it already has on screen.
func (s *MessagingService) MarkConversationRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	member, err := s.convRepo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return shared.ErrForbidden
	}
	return s.markRead(ctx, conversationID, userID)
}

// appendMessage persists a message, then publishes MessageSent. The publish
// happens strictly after the durable write.
func (s *MessagingService) appendMessage(ctx context.Context, conv *messaging.Conversation, senderID uuid.UUID, body string) (*messaging.Message, error) {
	msg, err := messaging.NewMessage(conv.ID, senderID, body)
	if err != nil {
		return nil, err
	}

	if err := s.msgRepo.Append(ctx, msg); err != nil {
		s.logger.Error("Failed to append message",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err))
		return nil, err
	}
	conv.Touch(msg.SentAt)

	s.publish(ctx, messaging.NewMessageSentEvent(msg, conv.OtherMemberIDs(senderID)))
	return msg, nil
}

// markRead flips read state on messages and matching notifications, then
// publishes the read receipt. Nothing unread means no receipt: re-opening an
// already-read conversation stays silent on the wire.
func (s *MessagingService) markRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	marked, err := s.msgRepo.MarkReadExcludingSender(ctx, conversationID, readerID)
	if err != nil {
		return err
	}
	if marked == 0 {
		return nil
	}
	if err := s.notifRepo.MarkConversationRead(ctx, readerID, conversationID); err != nil {
		return err
	}
	s.publish(ctx, messaging.NewMessagesReadEvent(conversationID, readerID))
	return nil
}

// publish dispatches an event post-commit. Bus errors are logged, never
// propagated: the durable write already happened.
func (s *MessagingService) publish(ctx context.Context, event shared.DomainEvent) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

func (s *MessagingService) conversationView(ctx context.Context, conv *messaging.Conversation, lastMessage *MessageView) (*ConversationView, error) {
	users, err := s.userRepo.FindByIDs(ctx, conv.MemberIDs())
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]identity.PublicProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Profile()
	}
	return &ConversationView{
		ID:          conv.ID,
		Title:       conv.Title,
		Members:     resolveMembers(conv, profiles),
		LastMessage: lastMessage,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}, nil
}

// memberProfiles loads the profiles of every member across the summaries in
// one query
func (s *MessagingService) memberProfiles(ctx context.Context, summaries []messaging.ConversationSummary) (map[uuid.UUID]identity.PublicProfile, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for i := range summaries {
		for _, id := range summaries[i].Conversation.MemberIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]identity.PublicProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Profile()
	}
	return profiles, nil
}

// resolveMembers maps a conversation's member IDs to loaded profiles.
// Members whose account no longer resolves get an ID-only placeholder.
func resolveMembers(conv *messaging.Conversation, profiles map[uuid.UUID]identity.PublicProfile) []identity.PublicProfile {
	members := make([]identity.PublicProfile, 0, len(conv.Members))
	for _, m := range conv.Members {
		if p, ok := profiles[m.UserID]; ok {
			members = append(members, p)
		} else {
			members = append(members, identity.PublicProfile{ID: m.UserID})
		}
	}
	return members
}
