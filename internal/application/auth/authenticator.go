package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/infrastructure/keygen"
)

// Default configuration values.
const (
	DefaultOperationTimeout = 5 * time.Second
	DefaultUpdateQueueSize  = 1000
)

// Config holds configuration for the Authenticator.
type Config struct {
	OperationTimeout time.Duration // per storage call; zero means no timeout
	UpdateQueueSize  int           // buffered last-used updates
}

type lastUsed struct {
	keyID string
	at    time.Time
}

// Authenticator validates bearer tokens.
//
// Last-used timestamps are written by a single background worker fed through a
// bounded queue; updates are dropped when the queue is full.
type Authenticator struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time

	updates chan lastUsed
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewAuthenticator creates an authenticator and starts its last-used worker.
// Negative timeouts and non-positive queue sizes take the defaults.
func NewAuthenticator(repo Repository, config Config) *Authenticator {
	if config.OperationTimeout < 0 {
		config.OperationTimeout = DefaultOperationTimeout
	}
	if config.UpdateQueueSize <= 0 {
		config.UpdateQueueSize = DefaultUpdateQueueSize
	}

	a := &Authenticator{
		repo:    repo,
		timeout: config.OperationTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		updates: make(chan lastUsed, config.UpdateQueueSize),
		stop:    make(chan struct{}),
	}

	a.wg.Add(1)
	go a.run()

	return a
}

func (a *Authenticator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Authenticator) record(u lastUsed) {
	// Detached from request contexts so a finished request does not cancel the write.
	ctx, cancel := a.withTimeout(context.Background())
	defer cancel()

	if err := a.repo.UpdateLastUsed(ctx, u.keyID, u.at); err != nil {
		slog.WarnContext(ctx, "failed to update API key last_used_at",
			slog.String("key_id", u.keyID),
			slog.String("error", err.Error()))
	}
}

func (a *Authenticator) run() {
	defer a.wg.Done()

	for {
		select {
		case u := <-a.updates:
			a.record(u)
		case <-a.stop:
			for {
				select {
				case u := <-a.updates:
					a.record(u)
				default:
					return
				}
			}
		}
	}
}

// Shutdown stops the worker after it drains queued updates, or when ctx ends.
// Safe to call more than once.
func (a *Authenticator) Shutdown(ctx context.Context) error {
	var err error
	a.once.Do(func() {
		close(a.stop)

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("shutdown timeout: %w", ctx.Err())
		}
	})
	return err
}

// ValidateAPIKey returns the key behind token.
// Any failure (bad format, unknown, wrong secret, expired) is domain.ErrUnauthorized.
func (a *Authenticator) ValidateAPIKey(ctx context.Context, token string) (*domain.APIKey, error) {
	parts, err := keygen.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	opCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	key, err := a.repo.FindByShortToken(opCtx, parts.ShortToken)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "API key lookup failed", "error", err)
		}
		return nil, domain.ErrUnauthorized
	}

	if subtle.ConstantTimeCompare([]byte(key.LongSecretHash), []byte(keygen.HashSecret(parts.Secret))) != 1 {
		return nil, domain.ErrUnauthorized
	}

	now := a.now()
	if !key.IsActive || (key.ExpiresAt != nil && key.ExpiresAt.Before(now)) {
		return nil, domain.ErrUnauthorized
	}

	select {
	case a.updates <- lastUsed{keyID: key.ID, at: now}:
	default:
		slog.WarnContext(ctx, "dropped last_used_at update, queue full", slog.String("key_id", key.ID))
	}

	return key, nil
}

// IssueToken creates a token for userID and returns its plain form. The plain
// token is not stored and cannot be recovered later.
func IssueToken(ctx context.Context, repo Repository, userID, name string, expiresAt *time.Time) (string, error) {
	k, err := keygen.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate key ID: %w", err)
	}

	err = repo.Create(ctx, &domain.APIKey{
		ID:             id.String(),
		UserID:         userID,
		KeyType:        keygen.KeyType,
		Service:        keygen.Service,
		Version:        keygen.Version,
		ShortToken:     k.ShortToken,
		LongSecretHash: keygen.HashSecret(k.Secret),
		Name:           name,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create API key: %w", err)
	}

	return k.Plain, nil
}
