package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/models"
	"chatservice/backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

type MessageService struct {
	messages storage.MessageStore
	chats    storage.ChatStore
	validate *validator.Validate
	log      *slog.Logger
	clock    func() time.Time
}

// NewMessageService builds the message service. A nil clock means time.Now.
func NewMessageService(messages storage.MessageStore, chats storage.ChatStore, log *slog.Logger, clock func() time.Time) *MessageService {
	if clock == nil {
		clock = time.Now
	}
	return &MessageService{messages: messages, chats: chats, validate: newValidator(), log: log, clock: clock}
}

// ListMessages returns one page of the chat history, newest first.
func (s *MessageService) ListMessages(ctx context.Context, chatID string, page, pageSize int) (*models.Page[models.ChatMessage], error) {
	if err := checkPage(s.validate, page, pageSize); err != nil {
		return nil, err
	}
	if _, err := getChat(ctx, s.chats, s.log, chatID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListMessages(ctx, chatID, models.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, apperror.Internal(CodeMessageList).Wrap(err)
	}
	total, err := s.messages.CountMessages(ctx, chatID)
	if err != nil {
		return nil, apperror.Internal(CodeMessageList).Wrap(err)
	}
	return models.NewPage(messages, page, pageSize, total), nil
}

// CreateMessage stores a message from senderID and advances the chat's
// LastModified. The chat must exist and the sender must be a participant.
//
// The insert and the touch are separate writes. When the touch fails the
// message is kept and returned; the chat only sorts lower until its next
// message.
func (s *MessageService) CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation(map[string][]string{"Content": {"Content was expected"}})
	}

	chat, err := getChat(ctx, s.chats, s.log, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperror.UserNotChatMember(senderID)
	}

	msg := models.NewChatMessage(chatID, senderID, content, now(s.clock))
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		s.log.Error("Failed to save message", "chat_id", chatID, "sender_id", senderID, "error", err)
		return nil, apperror.Internal(CodeMessageCreate).Wrap(err)
	}

	if err := s.chats.TouchChat(ctx, chatID, msg.Timestamp); err != nil {
		s.log.Warn("Message saved but chat was not touched",
			"chat_id", chatID,
			"message_id", msg.ID,
			"error", err)
	}

	s.log.Debug("Message created", "chat_id", chatID, "message_id", msg.ID)
	return msg, nil
}
