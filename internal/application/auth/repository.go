package auth

import (
	"context"
	"time"

	"github.com/godaily/godaily/internal/domain"
)

// Repository defines storage operations for bearer tokens.
type Repository interface {
	// FindByShortToken returns the active key with the given short token.
	// Returns domain.ErrNotFound if there is none.
	FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error)

	// UpdateLastUsed records when a key was last presented.
	UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error

	// Create stores a new key.
	Create(ctx context.Context, key *domain.APIKey) error
}

// UserRepository defines storage operations for accounts.
type UserRepository interface {
	// CreateUser stores a new account.
	// Returns domain.ErrEmailTaken if the email is already registered.
	CreateUser(ctx context.Context, user *domain.User) error

	// FindUserByEmail returns the account with the given (lower-cased) email.
	// Returns domain.ErrUserNotFound if there is none.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
