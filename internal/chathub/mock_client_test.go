package chathub_test

import (
	"context"
	"sync"

	"chatservice/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	id          string
	userID      string
	RecvChannel chan models.Envelope

	mu     sync.Mutex
	closed bool
}

// newMockClient returns a client whose buffer holds capacity envelopes.
func newMockClient(id, userID string, capacity int) *MockClient {
	return &MockClient{
		id:          id,
		userID:      userID,
		RecvChannel: make(chan models.Envelope, capacity),
	}
}

func (c *MockClient) ID() string     { return c.id }
func (c *MockClient) UserID() string { return c.userID }

func (c *MockClient) Send(env models.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.RecvChannel <- env:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Received drains everything delivered so far.
func (c *MockClient) Received() []models.Envelope {
	var out []models.Envelope
	for {
		select {
		case env := <-c.RecvChannel:
			out = append(out, env)
		default:
			return out
		}
	}
}

type MockChatResolver struct {
	mock.Mock
}

func (m *MockChatResolver) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	args := m.Called(ctx, chatID)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

type MockMessageCreator struct {
	mock.Mock
}

func (m *MockMessageCreator) CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error) {
	args := m.Called(ctx, chatID, senderID, content)
	msg, _ := args.Get(0).(*models.ChatMessage)
	return msg, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, userID string, env models.Envelope) error {
	return m.Called(ctx, userID, env).Error(0)
}
