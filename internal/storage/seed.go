package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatservice/backend/internal/models"

	"github.com/lib/pq"
)

// Fixed identifiers of the development data set.
const (
	SeedAdminID       = "1a24a4f4-e9cb-437f-9369-ed37448ca4c4"
	SeedTestUserID    = "be1e9e60-e11b-4c44-b4ee-54d511740523"
	SeedChatID        = "8aa2083d-471a-409f-ab82-057c29378a87"
	seedFirstMessage  = "2a6d38f0-99b1-4a0d-b75f-c88957c16ef2"
	seedSecondMessage = "c51bac2e-cd38-44ac-8994-f9634239a83c"
)

// SeedUsers returns the development accounts.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:         SeedAdminID,
			Role:       models.RoleAdministrator,
			Email:      "admin@example.com",
			FirstName:  "Ivanov",
			LastName:   "Ivanov",
			Patronymic: "Ivanovich",
		},
		{
			ID:         SeedTestUserID,
			Role:       models.RoleAdministrator,
			Email:      "test@example.com",
			FirstName:  "TestFirstName",
			LastName:   "TestLastName",
			Patronymic: "TestPatronymic",
		},
	}
}

// Seed inserts the development data set. Records that already exist are
// left untouched, so it is safe to run on every start.
func Seed(ctx context.Context, store Storage, now time.Time, log *slog.Logger) error {
	now = now.UTC().Truncate(time.Millisecond)

	for _, user := range SeedUsers() {
		_, err := store.GetUser(ctx, user.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed user %s: %w", user.ID, err)
		}
		if err := store.CreateUser(ctx, &user); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("seed user %s: %w", user.ID, err)
		}
		log.Info("Seeded user", "user_id", user.ID, "email", user.Email)
	}

	_, err := store.GetChat(ctx, SeedChatID)
	if errors.Is(err, ErrNotFound) {
		chat := &models.Chat{
			ID:           SeedChatID,
			Participants: pq.StringArray{SeedAdminID, SeedTestUserID},
			LastModified: now,
		}
		if err := store.CreateChat(ctx, chat); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("seed chat: %w", err)
		}
		log.Info("Seeded chat", "chat_id", SeedChatID)
	} else if err != nil {
		return fmt.Errorf("seed chat: %w", err)
	}

	count, err := store.CountMessages(ctx, SeedChatID)
	if err != nil {
		return fmt.Errorf("seed messages: %w", err)
	}
	if count > 0 {
		return nil
	}
	messages := []models.ChatMessage{
		{ID: seedFirstMessage, ChatID: SeedChatID, SenderID: SeedAdminID, Content: "This is a message", Timestamp: now},
		{ID: seedSecondMessage, ChatID: SeedChatID, SenderID: SeedTestUserID, Content: "This also is a message", Timestamp: now.Add(time.Second)},
	}
	for _, msg := range messages {
		if err := store.CreateMessage(ctx, &msg); err != nil {
			return fmt.Errorf("seed message %s: %w", msg.ID, err)
		}
	}
	if err := store.TouchChat(ctx, SeedChatID, now.Add(time.Second)); err != nil {
		return fmt.Errorf("seed chat touch: %w", err)
	}
	log.Info("Seeded messages", "chat_id", SeedChatID, "count", len(messages))
	return nil
}
