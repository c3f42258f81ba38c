package chathub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/config"
	"chatservice/backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var frameValidator = validator.New()

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	send   chan models.Envelope
	log    *slog.Logger

	// ctx bounds the requests started by this connection.
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketClient wraps an upgraded connection of userID. bufferSize is
// the number of envelopes that may wait for the write pump.
func NewWebSocketClient(conn *websocket.Conn, hub *Hub, userID string, bufferSize int, log *slog.Logger) *WebSocketClient {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketClient{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan models.Envelope, bufferSize),
		log:    log.With("user_id", userID, "conn_id", id),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (c *WebSocketClient) ID() string     { return c.id }
func (c *WebSocketClient) UserID() string { return c.userID }

func (c *WebSocketClient) Send(env models.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Run starts the pumps for the WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump, which sends a close frame and closes the
// connection; the read pump then exits on its own.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("Error reading message", "error", err)
			}
			return
		}

		var frame models.IncomingFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Debug("Error decoding frame", "error", err)
			c.hub.SendError(c, apperror.Validation(map[string][]string{"frame": {"Frame must be a JSON object"}}))
			continue
		}
		if err := frameValidator.Struct(frame); err != nil {
			c.hub.SendError(c, apperror.FromValidation(err))
			continue
		}

		ctx, cancel := context.WithTimeout(c.ctx, config.RequestTimeout)
		c.hub.HandleIncomingMessage(ctx, c, frame.ChatID, frame.Content)
		cancel()
	}
}

// writePump writes queued envelopes to the socket, one frame each, and
// keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			if err := c.write(env); err != nil {
				return
			}
			// Drain what queued up meanwhile before going back to select.
			for n := len(c.send); n > 0; n-- {
				if err := c.write(<-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *WebSocketClient) write(env models.Envelope) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.log.Debug("Error writing frame", "error", err)
		return err
	}
	return nil
}
