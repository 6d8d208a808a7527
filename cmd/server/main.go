package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
	"github.com/godaily/godaily/internal/config"
	httpserver "github.com/godaily/godaily/internal/infrastructure/http"
	"github.com/godaily/godaily/internal/infrastructure/http/handler"
	"github.com/godaily/godaily/internal/infrastructure/observability"
	"github.com/godaily/godaily/internal/infrastructure/persistence/memory"
	"github.com/godaily/godaily/internal/infrastructure/persistence/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

// repositories is what the server needs from a persistence backend.
type repositories interface {
	todo.Repository
	auth.Repository
	auth.UserRepository
	io.Closer
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		Output:      os.Stdout,
		Level:       cfg.Observability.Level(),
		JSON:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown telemetry", "error", err)
		}
	}()
	slog.SetDefault(telemetry.Logger)

	store, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}

	authenticator := auth.NewAuthenticator(store, auth.Config{
		OperationTimeout: cfg.Auth.OperationTimeout,
		UpdateQueueSize:  cfg.Auth.UpdateQueueSize,
	})
	accounts := auth.NewAccounts(store, store, cfg.Auth.TokenTTL).WithBcryptCost(cfg.Auth.BcryptCost)
	tasks := handler.NewTaskHandler(todo.NewService(store), accounts)

	server := httpserver.NewAPIServer(tasks, authenticator, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutdown signal received")
	case runErr = <-errResult:
	}

	// The root context is already cancelled here; shutdown gets its own window.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "HTTP server shutdown failed", "error", err)
	}
	newCleanup(shutdownCtx, authenticator, store)()

	return runErr
}

// openRepositories connects to PostgreSQL, or falls back to memory without a DSN.
func openRepositories(ctx context.Context, db config.DatabaseConfig) (repositories, error) {
	if db.DSN == "" {
		slog.WarnContext(ctx, "GODAILY_DB_DSN not set, keeping data in memory")
		return memoryRepositories{memory.NewStore()}, nil
	}

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             db.DSN,
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
		ConnMaxIdleTime: db.ConnMaxIdleTime,
		AutoMigrate:     db.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	slog.InfoContext(ctx, "storage initialized", "url", maskPassword(db.DSN))
	return store, nil
}

type memoryRepositories struct {
	*memory.Store
}

func (memoryRepositories) Close() error { return nil }

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
