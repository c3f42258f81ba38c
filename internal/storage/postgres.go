package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatservice/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore implements Storage on PostgreSQL through GORM.
// Chat participants are stored as a text[] column.
type PostgresStore struct {
	DB  *gorm.DB
	log *slog.Logger
}

// OpenPostgres connects to PostgreSQL and runs the migrations.
func OpenPostgres(dsn string, log *slog.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Chat{}, &models.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("PostgreSQL connection established, migrations complete")
	return NewPostgresStore(db, log), nil
}

// NewPostgresStore wraps an already opened GORM handle.
func NewPostgresStore(db *gorm.DB, log *slog.Logger) *PostgresStore {
	return &PostgresStore{DB: db, log: log}
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to get user", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("email asc").Find(&users).Error; err != nil {
		s.log.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.DB.WithContext(ctx).Create(user).Error
	if isDuplicateGorm(err) {
		return ErrDuplicate
	}
	if err != nil {
		s.log.Error("Failed to create user", "user_id", user.ID, "error", err)
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	result := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("*").
		Updates(user)
	if isDuplicateGorm(result.Error) {
		return ErrDuplicate
	}
	if result.Error != nil {
		s.log.Error("Failed to update user", "user_id", user.ID, "error", result.Error)
		return fmt.Errorf("update user %s: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		s.log.Error("Failed to delete user", "user_id", id, "error", result.Error)
		return fmt.Errorf("delete user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to get chat", "chat_id", id, "error", err)
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	return &chat, nil
}

func (s *PostgresStore) GetChatByParticipants(ctx context.Context, participants []string) (*models.Chat, error) {
	ids := pq.StringArray(participants)

	// Set equality: same cardinality and mutual containment.
	var chat models.Chat
	err := s.DB.WithContext(ctx).
		Where("cardinality(participants) = ?", len(participants)).
		Where("participants @> ?::text[]", ids).
		Where("participants <@ ?::text[]", ids).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Error("Failed to find chat by participants", "participants", participants, "error", err)
		return nil, fmt.Errorf("find chat by participants: %w", err)
	}
	return &chat, nil
}

func (s *PostgresStore) ListChatsForUser(ctx context.Context, userID string, offset, limit int) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.WithContext(ctx).
		Where("? = ANY(participants)", userID).
		Order("last_modified desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&chats).Error
	if err != nil {
		s.log.Error("Failed to list chats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list chats for %s: %w", userID, err)
	}
	return chats, nil
}

func (s *PostgresStore) CountChatsForUser(ctx context.Context, userID string) (int, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Chat{}).
		Where("? = ANY(participants)", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count chats for %s: %w", userID, err)
	}
	return int(count), nil
}

func (s *PostgresStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	err := s.DB.WithContext(ctx).Create(chat).Error
	if isDuplicateGorm(err) {
		return ErrDuplicate
	}
	if err != nil {
		s.log.Error("Failed to create chat", "chat_id", chat.ID, "error", err)
		return fmt.Errorf("create chat %s: %w", chat.ID, err)
	}
	return nil
}

func (s *PostgresStore) TouchChat(ctx context.Context, id string, at time.Time) error {
	err := s.DB.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ? AND last_modified < ?", id, at).
		Update("last_modified", at).Error
	if err != nil {
		s.log.Error("Failed to touch chat", "chat_id", id, "error", err)
		return fmt.Errorf("touch chat %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID string, offset, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.DB.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		s.log.Error("Failed to list messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("list messages for %s: %w", chatID, err)
	}
	return messages, nil
}

func (s *PostgresStore) CountMessages(ctx context.Context, chatID string) (int, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count messages for %s: %w", chatID, err)
	}
	return int(count), nil
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		s.log.Error("Failed to save message", "chat_id", msg.ChatID, "error", err)
		return fmt.Errorf("create message in %s: %w", msg.ChatID, err)
	}
	return nil
}

// isDuplicateGorm reports a primary or unique key violation. It relies on
// TranslateError being enabled on the connection.
func isDuplicateGorm(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
