package chat_test

import (
	"context"
	"time"

	"chatservice/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockChatStore struct {
	mock.Mock
}

func (m *MockChatStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	args := m.Called(ctx, id)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockChatStore) GetChatByParticipants(ctx context.Context, participants []string) (*models.Chat, error) {
	args := m.Called(ctx, participants)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockChatStore) ListChatsForUser(ctx context.Context, userID string, offset, limit int) ([]models.Chat, error) {
	args := m.Called(ctx, userID, offset, limit)
	chats, _ := args.Get(0).([]models.Chat)
	return chats, args.Error(1)
}

func (m *MockChatStore) CountChatsForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockChatStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	return m.Called(ctx, chat).Error(0)
}

func (m *MockChatStore) TouchChat(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) ListMessages(ctx context.Context, chatID string, offset, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatID, offset, limit)
	messages, _ := args.Get(0).([]models.ChatMessage)
	return messages, args.Error(1)
}

func (m *MockMessageStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	args := m.Called(ctx, chatID)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
