package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatservice/backend/internal/api/handler"
	"chatservice/backend/internal/auth"
	"chatservice/backend/internal/chat"
	"chatservice/backend/internal/chathub"
	"chatservice/backend/internal/config"
	"chatservice/backend/internal/storage"
	"chatservice/backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)
	log.Info("Starting chat service", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()
	if cfg.SeedData {
		if err := storage.Seed(ctx, store, time.Now(), log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// 2. Services
	users := user.NewService(store, log.With("component", "user"))
	chats := chat.NewService(store, users, log.With("component", "chat"), time.Now)
	messages := chat.NewMessageService(store, store, log.With("component", "message"), time.Now)
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	// 3. Chat Hub and optional relay
	hub := chathub.NewHub(chats, messages, chathub.NewRegistry(), log.With("component", "hub"))
	var relay *chathub.Relay
	if cfg.RelayEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect Redis: %w", err)
		}
		relay = chathub.NewRelay(rdb, hub, log.With("component", "relay"))
		hub.SetRelay(relay)
	}

	// 4. HTTP
	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(hub, chats, messages, users, tokens, log.With("component", "http"))
	h.SendBufferSize = cfg.SendBufferSize

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        handler.NewRouter(h, log),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Listen(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// Hijacked WebSocket connections are not tracked by the server.
		hub.Shutdown()
		return err
	})

	return g.Wait()
}
