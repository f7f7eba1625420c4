package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/orbit-dashboard/orbit/internal/config"
	"github.com/orbit-dashboard/orbit/internal/infrastructure/dynamo"
	jwtinfra "github.com/orbit-dashboard/orbit/internal/infrastructure/jwt"
	"github.com/orbit-dashboard/orbit/internal/infrastructure/profile"
	"github.com/orbit-dashboard/orbit/internal/infrastructure/sns"
	transporthttp "github.com/orbit-dashboard/orbit/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	deps := &transporthttp.Deps{
		AccountRepo:       dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		PendingSignupRepo: dynamo.NewPendingSignupRepo(dynamoClient, cfg.DynamoTables.PendingSignups),
		SessionRepo:       dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		MembershipRepo:    dynamo.NewMembershipRepo(dynamoClient, cfg.DynamoTables.WorkspaceMembers),
		ActiveSessionRepo: dynamo.NewActiveSessionRepo(dynamoClient, cfg.DynamoTables.ActiveSessions),
		Profiles:          profile.NewClient(cfg.Profile),
		JWTProvider:       jwtProvider,
	}

	// Signup events are optional; a nil publisher must not reach the interface.
	publisher, err := sns.NewPublisher(ctx, cfg)
	switch {
	case err != nil:
		slog.Warn("signup events disabled", "err", err)
	case publisher != nil:
		deps.Events = publisher
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.AppEnv, "development") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
