package chathub

import (
	"encoding/json"
	"log/slog"
	"testing"

	"chatservice/backend/internal/models"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	id, userID string
	got        []models.Envelope
}

func (c *recordingClient) ID() string     { return c.id }
func (c *recordingClient) UserID() string { return c.userID }
func (c *recordingClient) Run()           {}
func (c *recordingClient) Close()         {}

func (c *recordingClient) Send(env models.Envelope) bool {
	c.got = append(c.got, env)
	return true
}

func TestRelay_HandleDeliversForeignFramesOnly(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	hub := NewHub(nil, nil, NewRegistry(), log)
	recipient := &recordingClient{id: "conn-u2", userID: "u2"}
	hub.Register(recipient)
	relay := &Relay{hub: hub, instanceID: "self", log: log}

	env := models.MessageEnvelope(&models.ChatMessage{ID: "m1", Content: "hello"})
	foreign, err := json.Marshal(relayFrame{Origin: "other", UserID: "u2", Envelope: env})
	require.NoError(t, err)
	own, err := json.Marshal(relayFrame{Origin: "self", UserID: "u2", Envelope: env})
	require.NoError(t, err)

	relay.handle(string(own))
	relay.handle("{not json")
	relay.handle(string(foreign))

	require.Len(t, recipient.got, 1)
	assert.Equal(t, "hello", recipient.got[0].Message.Content)
}
