package models

// Frame types exchanged over a live connection.
const (
	FrameSendMessage    = "send_message"
	FrameReceiveMessage = "receive_message"
	FrameReceiveError   = "receive_error"
)

// IncomingFrame is a frame sent by a connected client.
// The sender is never taken from the frame: it is the identity the
// connection was authenticated with.
type IncomingFrame struct {
	Type    string `json:"type" validate:"required,eq=send_message"`
	ChatID  string `json:"chatId" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
}

// ErrorPayload is the structured error relayed to the sender's connection.
type ErrorPayload struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Envelope is a frame pushed by the server to a connected client.
type Envelope struct {
	Type    string        `json:"type"`
	Message *ChatMessage  `json:"message,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// MessageEnvelope wraps a created message for delivery.
func MessageEnvelope(msg *ChatMessage) Envelope {
	return Envelope{Type: FrameReceiveMessage, Message: msg}
}

// ErrorEnvelope wraps an error payload for delivery.
func ErrorEnvelope(payload *ErrorPayload) Envelope {
	return Envelope{Type: FrameReceiveError, Error: payload}
}
