package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
)

// Store provides the PostgreSQL implementation of the server repositories:
//   - application/todo.Repository for tasks
//   - application/auth.Repository for bearer tokens
//   - application/auth.UserRepository for accounts
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ auth.Repository     = (*Store)(nil)
	_ auth.UserRepository = (*Store)(nil)
	_ todo.Repository     = (*Store)(nil)
)

// NewStore creates a new PostgreSQL store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
