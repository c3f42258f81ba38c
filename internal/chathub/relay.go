package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"chatservice/backend/internal/config"
	"chatservice/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayFrame is the payload published on the relay channel.
type relayFrame struct {
	Origin   string          `json:"origin"`
	UserID   string          `json:"userId"`
	Envelope models.Envelope `json:"envelope"`
}

// Relay fans deliveries out to every instance through Redis Pub/Sub. Each
// instance delivers relayed frames to its own connections and ignores the
// frames it published itself.
type Relay struct {
	rdb        *redis.Client
	hub        *Hub
	channel    string
	instanceID string
	log        *slog.Logger
}

func NewRelay(rdb *redis.Client, hub *Hub, log *slog.Logger) *Relay {
	instanceID := uuid.New().String()
	return &Relay{
		rdb:        rdb,
		hub:        hub,
		channel:    config.RelayChannel,
		instanceID: instanceID,
		log:        log.With("instance_id", instanceID),
	}
}

func (r *Relay) Publish(ctx context.Context, userID string, env models.Envelope) error {
	payload, err := json.Marshal(relayFrame{Origin: r.instanceID, UserID: userID, Envelope: env})
	if err != nil {
		return fmt.Errorf("marshal relay frame: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Listen consumes the relay channel until ctx is cancelled.
func (r *Relay) Listen(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.log.Info("Relay listening", "channel", r.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *Relay) handle(payload string) {
	var frame relayFrame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		r.log.Error("Error unmarshalling relay frame", "error", err)
		return
	}
	if frame.Origin == r.instanceID {
		return
	}
	r.hub.DeliverLocal(frame.UserID, frame.Envelope)
}
