package config

import "time"

const (
	// WebSocket
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 8 * 1024
	RequestTimeout = 10 * time.Second

	// HTTP
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 15 * time.Second
	MaxHeaderBytes  = 1 << 20

	// Pagination
	DefaultPageSize = 10
	MaxPageSize     = 100

	// Relay
	RelayChannel = "chat:deliver"
)
