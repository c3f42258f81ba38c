// Package chat holds the chat and message use cases: creating and listing
// chats, accepting messages and paging through history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/config"
	"chatservice/backend/internal/models"
	"chatservice/backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

// Internal error codes, one per failed persistence step.
const (
	CodeChatGet       = "Chat.Get"
	CodeChatList      = "Chat.List"
	CodeChatCreate    = "Chat.Create"
	CodeUserGet       = "User.Get"
	CodeMessageList   = "ChatMessage.List"
	CodeMessageCreate = "ChatMessage.Create"
)

// UserDirectory resolves participant IDs.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	chats    storage.ChatStore
	users    UserDirectory
	validate *validator.Validate
	log      *slog.Logger
	clock    func() time.Time
}

// NewService builds the chat service. A nil clock means time.Now.
func NewService(chats storage.ChatStore, users UserDirectory, log *slog.Logger, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{chats: chats, users: users, validate: newValidator(), log: log, clock: clock}
}

func (s *Service) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return getChat(ctx, s.chats, s.log, chatID)
}

// ListChatsForUser returns one page of the user's chats, most recently
// active first.
func (s *Service) ListChatsForUser(ctx context.Context, userID string, page, pageSize int) (*models.Page[models.Chat], error) {
	if err := checkPage(s.validate, page, pageSize); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	chats, err := s.chats.ListChatsForUser(ctx, userID, models.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, apperror.Internal(CodeChatList).Wrap(err)
	}
	total, err := s.chats.CountChatsForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(CodeChatList).Wrap(err)
	}
	return models.NewPage(chats, page, pageSize, total), nil
}

// CreateChat opens a chat between two distinct existing users. At most one
// chat exists per pair.
func (s *Service) CreateChat(ctx context.Context, participants []string) (*models.Chat, error) {
	if !models.ValidParticipants(participants) {
		return nil, apperror.Validation(map[string][]string{
			"Participants": {"Chat must have exactly 2 different participants"},
		})
	}

	_, err := s.chats.GetChatByParticipants(ctx, participants)
	if err == nil {
		return nil, apperror.ChatDuplicate(participants)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Internal(CodeChatGet).Wrap(err)
	}

	for _, id := range participants {
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
	}

	chat := models.NewChat(participants, now(s.clock))
	err = s.chats.CreateChat(ctx, chat)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, apperror.ChatDuplicate(participants)
	}
	if err != nil {
		s.log.Error("Failed to create chat", "participants", participants, "error", err)
		return nil, apperror.Internal(CodeChatCreate).Wrap(err)
	}

	s.log.Info("Chat created", "chat_id", chat.ID, "participants", participants)
	return chat, nil
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return apperror.As(err, CodeUserGet)
	}
	if !ok {
		return apperror.UserNotFound(userID)
	}
	return nil
}

func getChat(ctx context.Context, chats storage.ChatStore, log *slog.Logger, chatID string) (*models.Chat, error) {
	chat, err := chats.GetChat(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.ChatNotFound(chatID)
	}
	if err != nil {
		log.Error("Failed to get chat", "chat_id", chatID, "error", err)
		return nil, apperror.Internal(CodeChatGet).Wrap(err)
	}
	return chat, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterAlias("pagesize", fmt.Sprintf("min=1,max=%d", config.MaxPageSize))
	return v
}

func checkPage(v *validator.Validate, page, pageSize int) error {
	if err := v.Struct(models.PageQuery{Page: page, PageSize: pageSize}); err != nil {
		return apperror.FromValidation(err)
	}
	return nil
}

// now is truncated to milliseconds, the coarsest precision of the stores.
func now(clock func() time.Time) time.Time {
	return clock().UTC().Truncate(time.Millisecond)
}
