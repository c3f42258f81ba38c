package storage

import (
	"context"
	"errors"
	"time"

	"chatservice/backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same identity already exists.
	ErrDuplicate = errors.New("record already exists")
)

// UserStore persists user accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ChatStore persists chats.
type ChatStore interface {
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	// GetChatByParticipants finds the chat whose participant set equals the
	// given one exactly, ignoring order.
	GetChatByParticipants(ctx context.Context, participants []string) (*models.Chat, error)
	// ListChatsForUser returns the user's chats, most recently modified first.
	ListChatsForUser(ctx context.Context, userID string, offset, limit int) ([]models.Chat, error)
	CountChatsForUser(ctx context.Context, userID string) (int, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	// TouchChat advances LastModified to at. It never moves it backwards and
	// is a no-op for unknown chats.
	TouchChat(ctx context.Context, id string, at time.Time) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	// ListMessages returns the chat's messages, newest first.
	ListMessages(ctx context.Context, chatID string, offset, limit int) ([]models.ChatMessage, error)
	CountMessages(ctx context.Context, chatID string) (int, error)
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Storage is implemented by every storage adapter.
type Storage interface {
	UserStore
	ChatStore
	MessageStore
	Close() error
}
