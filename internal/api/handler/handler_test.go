package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chatservice/backend/internal/api/handler"
	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/auth"
	"chatservice/backend/internal/chathub"
	"chatservice/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	userA  = "1a24a4f4-e9cb-437f-9369-ed37448ca4c4"
	userB  = "be1e9e60-e11b-4c44-b4ee-54d511740523"
	chatID = "8aa2083d-471a-409f-ab82-057c29378a87"
)

type MockChatService struct{ mock.Mock }

func (m *MockChatService) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	args := m.Called(ctx, id)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockChatService) ListChatsForUser(ctx context.Context, userID string, page, pageSize int) (*models.Page[models.Chat], error) {
	args := m.Called(ctx, userID, page, pageSize)
	p, _ := args.Get(0).(*models.Page[models.Chat])
	return p, args.Error(1)
}

func (m *MockChatService) CreateChat(ctx context.Context, participants []string) (*models.Chat, error) {
	args := m.Called(ctx, participants)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

type MockMessageService struct{ mock.Mock }

func (m *MockMessageService) ListMessages(ctx context.Context, id string, page, pageSize int) (*models.Page[models.ChatMessage], error) {
	args := m.Called(ctx, id, page, pageSize)
	p, _ := args.Get(0).(*models.Page[models.ChatMessage])
	return p, args.Error(1)
}

func (m *MockMessageService) CreateMessage(ctx context.Context, id, senderID, content string) (*models.ChatMessage, error) {
	args := m.Called(ctx, id, senderID, content)
	msg, _ := args.Get(0).(*models.ChatMessage)
	return msg, args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// inboxClient is a live connection that records what it receives.
type inboxClient struct {
	id, userID string
	mu         sync.Mutex
	got        []models.Envelope
}

func (c *inboxClient) ID() string     { return c.id }
func (c *inboxClient) UserID() string { return c.userID }
func (c *inboxClient) Run()           {}
func (c *inboxClient) Close()         {}

func (c *inboxClient) Send(env models.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, env)
	return true
}

type fixture struct {
	router   *gin.Engine
	hub      *chathub.Hub
	chats    *MockChatService
	messages *MockMessageService
	users    *MockUserService
	issuer   *auth.Issuer
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	f := &fixture{
		chats:    new(MockChatService),
		messages: new(MockMessageService),
		users:    new(MockUserService),
		issuer:   auth.NewIssuer("test-secret", "chat-service", time.Hour),
	}
	f.hub = chathub.NewHub(f.chats, f.messages, chathub.NewRegistry(), log)
	h := handler.NewHandler(f.hub, f.chats, f.messages, f.users, f.issuer, log)
	f.router = handler.NewRouter(h, log)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, asUser string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		token, err := f.issuer.Issue(asUser, models.RoleDriver)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz_NoAuth(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, w.Body.String())
}

func TestAuth_Required(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/api/v1/chats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Auth.Unauthorized", decodeError(t, w)["code"])
}

func TestAuth_QueryToken(t *testing.T) {
	f := newFixture()
	f.users.On("ListUsers", mock.Anything).Return([]models.User{}, nil)
	token, err := f.issuer.Issue(userA, models.RoleDriver)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?access_token="+token, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListChats_DefaultsToCallerAndFirstPage(t *testing.T) {
	f := newFixture()
	chats := []models.Chat{{ID: chatID, Participants: pq.StringArray{userA, userB}, LastModified: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}
	f.chats.On("ListChatsForUser", mock.Anything, userA, 1, 10).Return(models.NewPage(chats, 1, 10, 11), nil)

	w := f.do(t, http.MethodGet, "/api/v1/chats", nil, userA)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["hasNextPage"])
	assert.Equal(t, false, body["hasPreviousPage"])
	assert.EqualValues(t, 11, body["totalCount"])
	assert.Len(t, body["items"], 1)
}

func TestListChats_RejectsMalformedUserID(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodGet, "/api/v1/chats?userId=nope", nil, userA)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeValidation, body["code"])
	assert.Contains(t, body["errors"], "UserID")
}

func TestListChats_UnknownUser(t *testing.T) {
	f := newFixture()
	f.chats.On("ListChatsForUser", mock.Anything, userB, 2, 5).Return(nil, apperror.UserNotFound(userB))

	w := f.do(t, http.MethodGet, "/api/v1/chats?userId="+userB+"&page=2&pageSize=5", nil, userA)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeUserNotFound, decodeError(t, w)["code"])
}

func TestGetChat_NotFound(t *testing.T) {
	f := newFixture()
	f.chats.On("GetChat", mock.Anything, chatID).Return(nil, apperror.ChatNotFound(chatID))

	w := f.do(t, http.MethodGet, "/api/v1/chats/"+chatID, nil, userA)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeChatNotFound, body["code"])
	assert.Equal(t, "Chat '"+chatID+"' not found", body["message"])
}

func TestCreateChat(t *testing.T) {
	f := newFixture()
	created := &models.Chat{ID: chatID, Participants: pq.StringArray{userA, userB}}
	f.chats.On("CreateChat", mock.Anything, []string{userA, userB}).Return(created, nil)

	w := f.do(t, http.MethodPost, "/api/v1/chats", map[string]any{"participants": []string{userA, userB}}, userA)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), chatID)
}

func TestCreateChat_Duplicate(t *testing.T) {
	f := newFixture()
	f.chats.On("CreateChat", mock.Anything, mock.Anything).Return(nil, apperror.ChatDuplicate([]string{userB, userA}))

	w := f.do(t, http.MethodPost, "/api/v1/chats", map[string]any{"participants": []string{userB, userA}}, userA)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeChatDuplicate, decodeError(t, w)["code"])
}

func TestCreateChat_InvalidParticipants(t *testing.T) {
	f := newFixture()

	for _, participants := range [][]string{{userA}, {userA, userA}, {userA, "not-a-uuid"}} {
		w := f.do(t, http.MethodPost, "/api/v1/chats", map[string]any{"participants": participants}, userA)
		assert.Equal(t, http.StatusBadRequest, w.Code, "participants %v", participants)
	}
	f.chats.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
}

func TestCreateMessage_FansOutToRecipient(t *testing.T) {
	f := newFixture()
	recipient := &inboxClient{id: "conn-b", userID: userB}
	sender := &inboxClient{id: "conn-a", userID: userA}
	f.hub.Register(recipient)
	f.hub.Register(sender)

	chat := &models.Chat{ID: chatID, Participants: pq.StringArray{userA, userB}}
	msg := &models.ChatMessage{ID: "m1", ChatID: chatID, SenderID: userA, Content: "hello"}
	f.chats.On("GetChat", mock.Anything, chatID).Return(chat, nil)
	f.messages.On("CreateMessage", mock.Anything, chatID, userA, "hello").Return(msg, nil)

	w := f.do(t, http.MethodPost, "/api/v1/messages", map[string]string{"chatId": chatID, "content": "hello"}, userA)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, recipient.got, 1)
	assert.Equal(t, "hello", recipient.got[0].Message.Content)
	assert.Empty(t, sender.got)
}

func TestCreateMessage_NonMember(t *testing.T) {
	f := newFixture()
	chat := &models.Chat{ID: chatID, Participants: pq.StringArray{userA, userB}}
	outsider := "0f8fad5b-d9cb-469f-a165-70867728950e"
	f.chats.On("GetChat", mock.Anything, chatID).Return(chat, nil)
	f.messages.On("CreateMessage", mock.Anything, chatID, outsider, "hi").Return(nil, apperror.UserNotChatMember(outsider))

	w := f.do(t, http.MethodPost, "/api/v1/messages", map[string]string{"chatId": chatID, "content": "hi"}, outsider)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeUserNotChatMember, decodeError(t, w)["code"])
}

func TestListMessages(t *testing.T) {
	f := newFixture()
	page := models.NewPage([]models.ChatMessage{{ID: "m2"}, {ID: "m1"}}, 1, 2, 2)
	f.messages.On("ListMessages", mock.Anything, chatID, 1, 2).Return(page, nil)

	w := f.do(t, http.MethodGet, "/api/v1/messages?chatId="+chatID+"&pageSize=2", nil, userA)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items       []models.ChatMessage `json:"items"`
		HasNextPage bool                 `json:"hasNextPage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "m2", body.Items[0].ID)
	assert.False(t, body.HasNextPage)
}

func TestListMessages_InternalError(t *testing.T) {
	f := newFixture()
	f.messages.On("ListMessages", mock.Anything, chatID, 1, 10).Return(nil, apperror.Internal("ChatMessage.List"))

	w := f.do(t, http.MethodGet, "/api/v1/messages?chatId="+chatID, nil, userA)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "ChatMessage.List", body["code"])
	assert.Equal(t, "Something went wrong", body["message"])
}

func TestUsers(t *testing.T) {
	f := newFixture()
	f.users.On("ListUsers", mock.Anything).Return([]models.User{{ID: userA, Email: "admin@example.com"}}, nil)
	f.users.On("GetUser", mock.Anything, userB).Return(nil, apperror.UserNotFound(userB))

	w := f.do(t, http.MethodGet, "/api/v1/users", nil, userA)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@example.com")

	w = f.do(t, http.MethodGet, "/api/v1/users/"+userB, nil, userA)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
