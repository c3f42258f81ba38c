package chathub

import "chatservice/backend/internal/models"

// Client is one live connection of an authenticated user. A user may hold
// several at once (tabs, devices); the hub addresses them all.
type Client interface {
	// ID returns the unique identifier of this connection.
	ID() string
	// UserID returns the identity the connection was authenticated with.
	UserID() string
	// Send queues an envelope for delivery without blocking. It returns false
	// when the connection is closed or its send buffer is full.
	Send(env models.Envelope) bool
	// Run starts the read and write pumps.
	Run()
	// Close shuts the connection down. It is safe to call more than once.
	Close()
}
