package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/godaily/godaily/internal/domain"
)

const (
	// BcryptCost is the work factor for password hashes.
	BcryptCost = 12

	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8

	// bcrypt ignores input past this many bytes.
	maxPasswordBytes = 72

	loginTokenName = "login"

	// dummyPassword is compared against when the email is unknown. Both login
	// failures cost one bcrypt comparison.
	dummyPassword = "godaily-dummy-password"
)

// Accounts registers users and exchanges credentials for tokens.
type Accounts struct {
	users    UserRepository
	keys     Repository
	cost     int
	tokenTTL time.Duration

	checkPassword func(password, hash string) bool
	dummyOnce     sync.Once
	dummyHash     string
}

// NewAccounts creates an account service. A zero tokenTTL issues tokens that
// never expire.
func NewAccounts(users UserRepository, keys Repository, tokenTTL time.Duration) *Accounts {
	return &Accounts{
		users:         users,
		keys:          keys,
		cost:          BcryptCost,
		tokenTTL:      tokenTTL,
		checkPassword: CheckPassword,
	}
}

// WithBcryptCost overrides BcryptCost. Costs outside bcrypt's range are ignored.
func (s *Accounts) WithBcryptCost(cost int) *Accounts {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
	return s
}

// Register creates an account for email.
func (s *Accounts) Register(ctx context.Context, email, password string) (*domain.User, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, domain.ErrPasswordTooWeak
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           id.String(),
		Email:        addr.String(),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err // ErrEmailTaken passes through
	}
	return user, nil
}

// Login checks the password and issues a new token.
// Unknown emails and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindUserByEmail(ctx, addr.String())
	if errors.Is(err, domain.ErrUserNotFound) {
		s.checkPassword(password, s.dummy())
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !s.checkPassword(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	var expiresAt *time.Time
	if s.tokenTTL > 0 {
		t := time.Now().UTC().Add(s.tokenTTL)
		expiresAt = &t
	}
	return IssueToken(ctx, s.keys, user.ID, loginTokenName, expiresAt)
}

// dummy returns a hash at the configured cost that no real password matches.
func (s *Accounts) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword(dummyPassword, s.cost)
		if err != nil {
			slog.Error("failed to create dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// truncatePassword cuts password to bcrypt's input limit without splitting a
// multi-byte character at the cut. Earlier bytes are kept as they are.
func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) <= maxPasswordBytes {
		return b
	}
	b = b[:maxPasswordBytes]
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax+1; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				b = b[:i]
			}
			break
		}
	}
	return b
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password)) == nil
}
