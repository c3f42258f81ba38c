package config_test

import (
	"os"
	"testing"
	"time"

	"chatservice/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("BADGER_PATH", t.TempDir())

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "chat", cfg.MongoDatabase)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.False(t, cfg.RelayEnabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("BADGER_PATH", t.TempDir())

	_, err := config.Load()

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"postgres without dsn", config.Config{JWTSecret: "s", StorageDriver: config.DriverPostgres, SendBufferSize: 1}, true},
		{"postgres", config.Config{JWTSecret: "s", StorageDriver: config.DriverPostgres, PostgresDSN: "host=db", SendBufferSize: 1}, false},
		{"mongo without uri", config.Config{JWTSecret: "s", StorageDriver: config.DriverMongo, SendBufferSize: 1}, true},
		{"mongo", config.Config{JWTSecret: "s", StorageDriver: config.DriverMongo, MongoURI: "mongodb://db", SendBufferSize: 1}, false},
		{"unknown driver", config.Config{JWTSecret: "s", StorageDriver: "sqlite", SendBufferSize: 1}, true},
		{"empty secret", config.Config{StorageDriver: config.DriverBadger, BadgerPath: "/tmp/x", SendBufferSize: 1}, true},
		{"zero buffer", config.Config{JWTSecret: "s", StorageDriver: config.DriverBadger, BadgerPath: "/tmp/x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
