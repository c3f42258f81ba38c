package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage represents a message saved in a chat.
// Messages are immutable once created.
type ChatMessage struct {
	// ID is the unique identifier of the message (UUID).
	ID string `gorm:"primaryKey" json:"id" bson:"_id"`
	// ChatID references the owning chat.
	ChatID string `gorm:"type:text;not null;index:idx_chat_messages_chat_ts,priority:1" json:"chatId" bson:"chatId"`
	// SenderID is the ID of the participant who sent the message.
	SenderID string `gorm:"type:text;not null" json:"senderId" bson:"senderId"`
	// Content is the text of the message.
	Content string `gorm:"type:text;not null" json:"content" bson:"content"`
	// Timestamp is assigned by the server when the message is accepted and is
	// the only ordering key.
	Timestamp time.Time `gorm:"not null;index:idx_chat_messages_chat_ts,priority:2,sort:desc" json:"timestamp" bson:"timestamp"`
}

// NewChatMessage builds a message with a fresh ID stamped at the given time.
func NewChatMessage(chatID, senderID, content string, at time.Time) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: at.UTC(),
	}
}

// BeforeCreate generates the message ID when it was not assigned by the caller.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
