package storage_test

import (
	"context"
	"log/slog"
	"testing"

	"chatservice/backend/internal/models"
	"chatservice/backend/internal/storage"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newRejectingPostgresStore returns a store whose writes fail with err
// before any statement reaches the (never dialed) server.
func newRejectingPostgresStore(t *testing.T, err error) *storage.PostgresStore {
	t.Helper()
	db, openErr := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=chat dbname=chat sslmode=disable",
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, openErr)

	reject := func(tx *gorm.DB) { _ = tx.AddError(err) }
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:reject_create", reject))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:reject_update", reject))

	return storage.NewPostgresStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestPostgres_UniqueViolationIsDuplicate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newRejectingPostgresStore(t, gorm.ErrDuplicatedKey)
	user := &models.User{ID: "be1e9e60-e11b-4c44-b4ee-54d511740523", Role: models.RoleDriver, Email: "taken@example.com"}

	req.ErrorIs(store.CreateUser(ctx, user), storage.ErrDuplicate)
	req.ErrorIs(store.UpdateUser(ctx, user), storage.ErrDuplicate)
}
