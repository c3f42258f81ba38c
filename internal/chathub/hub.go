package chathub

import (
	"context"
	"log/slog"

	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/models"
)

// Fallback codes for failures that carry no structured error.
const (
	codeResolve = "Chat.Get"
	codeSend    = "ChatMessage.Create"
)

// ChatResolver looks chats up by ID.
type ChatResolver interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
}

// MessageCreator accepts a message from a participant.
type MessageCreator interface {
	CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.ChatMessage, error)
}

// Publisher forwards deliveries to the other instances.
type Publisher interface {
	Publish(ctx context.Context, userID string, env models.Envelope) error
}

// Hub routes accepted messages to the live connections of the recipients
// and relays failures back to the sender's connection only.
type Hub struct {
	chats    ChatResolver
	messages MessageCreator
	registry *Registry
	relay    Publisher
	log      *slog.Logger
}

func NewHub(chats ChatResolver, messages MessageCreator, registry *Registry, log *slog.Logger) *Hub {
	return &Hub{
		chats:    chats,
		messages: messages,
		registry: registry,
		log:      log,
	}
}

// SetRelay enables cross-instance delivery.
func (h *Hub) SetRelay(relay Publisher) {
	h.relay = relay
}

// Register makes the connection addressable by its user ID. After
// Shutdown the connection is closed instead and Register reports false.
func (h *Hub) Register(c Client) bool {
	if !h.registry.Add(c) {
		h.log.Debug("Connection refused, hub is shut down", "user_id", c.UserID(), "conn_id", c.ID())
		return false
	}
	h.log.Debug("Connection registered", "user_id", c.UserID(), "conn_id", c.ID())
	return true
}

// Unregister removes the connection and closes it.
func (h *Hub) Unregister(c Client) {
	if h.registry.Remove(c) {
		h.log.Debug("Connection unregistered", "user_id", c.UserID(), "conn_id", c.ID())
	}
	c.Close()
}

// HandleIncomingMessage processes a message sent over sender's connection.
// The sender is always the connection's authenticated user. The first
// failure is reported to the sender and nothing is delivered.
func (h *Hub) HandleIncomingMessage(ctx context.Context, sender Client, chatID, content string) {
	chat, err := h.chats.GetChat(ctx, chatID)
	if err != nil {
		h.SendError(sender, apperror.As(err, codeResolve))
		return
	}

	msg, err := h.messages.CreateMessage(ctx, chatID, sender.UserID(), content)
	if err != nil {
		h.SendError(sender, apperror.As(err, codeSend))
		return
	}

	h.Broadcast(ctx, chat, msg, sender.UserID())
}

// Broadcast delivers msg to every participant of chat except exceptUserID.
func (h *Hub) Broadcast(ctx context.Context, chat *models.Chat, msg *models.ChatMessage, exceptUserID string) {
	env := models.MessageEnvelope(msg)
	for _, userID := range chat.OtherParticipants(exceptUserID) {
		h.Deliver(ctx, userID, env)
	}
}

// Deliver sends env to all connections of userID, here and, when a relay is
// set, on the other instances. A user without connections is skipped.
func (h *Hub) Deliver(ctx context.Context, userID string, env models.Envelope) {
	h.DeliverLocal(userID, env)
	if h.relay == nil {
		return
	}
	if err := h.relay.Publish(ctx, userID, env); err != nil {
		h.log.Warn("Failed to relay delivery", "user_id", userID, "error", err)
	}
}

// DeliverLocal sends env to the connections of userID held by this
// instance and returns how many accepted it. A connection whose buffer is
// full is dropped.
func (h *Hub) DeliverLocal(userID string, env models.Envelope) int {
	delivered := 0
	for _, c := range h.registry.Connections(userID) {
		if c.Send(env) {
			delivered++
			continue
		}
		h.log.Warn("Dropping slow connection", "user_id", userID, "conn_id", c.ID())
		h.Unregister(c)
	}
	return delivered
}

// SendError reports err to a single connection.
func (h *Hub) SendError(c Client, err *apperror.Error) {
	if err.Kind == apperror.KindInternal {
		h.log.Error("Message rejected", "user_id", c.UserID(), "conn_id", c.ID(), "code", err.Code, "error", err)
	} else {
		h.log.Debug("Message rejected", "user_id", c.UserID(), "conn_id", c.ID(), "code", err.Code)
	}

	env := models.ErrorEnvelope(&models.ErrorPayload{
		Code:    err.Code,
		Message: err.Message,
		Status:  err.Kind.HTTPStatus(),
		Errors:  err.Fields,
	})
	if !c.Send(env) {
		h.Unregister(c)
	}
}

// Connections returns the number of live connections on this instance.
func (h *Hub) Connections() int {
	return h.registry.Count()
}

// Shutdown closes every connection.
func (h *Hub) Shutdown() {
	h.log.Info("Closing live connections", "count", h.registry.Count())
	h.registry.CloseAll()
}
