package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/godaily/godaily/internal/domain"
)

// === Auth Repository Implementation ===
// Implements application/auth.Repository and application/auth.UserRepository

const apiKeyColumns = `id, user_id, key_type, service, version, short_token, long_secret_hash,
	name, is_active, created_at, last_used_at, expires_at`

// FindByShortToken retrieves an active API key by its short token for validation.
func (s *Store) FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE short_token = $1 AND is_active`, shortToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[apiKeyRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: API key", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateLastUsed updates the last used timestamp for an API key.
// Only moves the timestamp forward; an older timestamp is an idempotent success.
// Returns ErrNotFound if the API key doesn't exist.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error {
	id, err := parseUUID(keyID)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $2
		 WHERE id = $1 AND (last_used_at IS NULL OR last_used_at < $2)`,
		id, timeToPgtype(timestamp))
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Either the key doesn't exist or the timestamp wasn't later.
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM api_keys WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check key existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: API key", domain.ErrNotFound)
	}
	return nil
}

// Create creates a new API key in storage.
func (s *Store) Create(ctx context.Context, key *domain.APIKey) error {
	id, err := parseUUID(key.ID)
	if err != nil {
		return err
	}
	userID, err := parseUUID(key.UserID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, key_type, service, version, short_token,
		     long_secret_hash, name, is_active, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, userID, key.KeyType, key.Service, key.Version, key.ShortToken,
		key.LongSecretHash, key.Name, key.IsActive,
		timeToPgtype(key.CreatedAt), timePtrToPgtype(key.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

// CreateUser stores a new account.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	id, err := parseUUID(user.ID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		id, user.Email, user.PasswordHash, timeToPgtype(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail returns the account registered under email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toDomain(), nil
}
