package domain

import "time"

// User is an account on the remote service. Tasks on the server are scoped to it.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// APIKey is a bearer token issued to a user.
//
// API keys use a split-token pattern:
//   - ShortToken: indexed portion for lookup
//   - LongSecretHash: BLAKE2b-256 hash of the secret, compared in constant time
//   - the full key is only returned once, at creation
type APIKey struct {
	ID             string
	UserID         string
	KeyType        string // "sk" = secret key
	Service        string // "godaily"
	Version        string // "v1"
	ShortToken     string
	LongSecretHash string
	Name           string
	IsActive       bool
	CreatedAt      time.Time
	LastUsedAt     *time.Time
	ExpiresAt      *time.Time
}

// CreateTaskParams carries the fields a client may set when creating a task on the
// server. Nil fields take the defaults of NewTask.
type CreateTaskParams struct {
	UserID   string
	Title    string
	Priority *Priority
	DueDate  *time.Time
}
