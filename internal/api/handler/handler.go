package handler

import (
	"context"
	"log/slog"

	"chatservice/backend/internal/auth"
	"chatservice/backend/internal/chathub"
	"chatservice/backend/internal/models"
)

// ChatService is the chat use case surface used by the HTTP layer.
type ChatService interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ListChatsForUser(ctx context.Context, userID string, page, pageSize int) (*models.Page[models.Chat], error)
	CreateChat(ctx context.Context, participants []string) (*models.Chat, error)
}

type MessageService interface {
	ListMessages(ctx context.Context, chatID string, page, pageSize int) (*models.Page[models.ChatMessage], error)
	CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error)
}

type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Handler holds the services behind the HTTP routes and the Chat Hub.
type Handler struct {
	Hub      *chathub.Hub
	Chats    ChatService
	Messages MessageService
	Users    UserService
	Tokens   TokenValidator
	// SendBufferSize is the per-connection outgoing queue length.
	SendBufferSize int

	log *slog.Logger
}

func NewHandler(hub *chathub.Hub, chats ChatService, messages MessageService, users UserService, tokens TokenValidator, log *slog.Logger) *Handler {
	return &Handler{
		Hub:            hub,
		Chats:          chats,
		Messages:       messages,
		Users:          users,
		Tokens:         tokens,
		SendBufferSize: 256,
		log:            log,
	}
}
