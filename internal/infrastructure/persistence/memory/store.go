// Package memory is an in-process implementation of the server repositories.
// It backs the server when no database DSN is configured and is used by the HTTP
// tests. Data does not survive a restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
	"github.com/godaily/godaily/internal/domain"
)

// Store holds users, keys and tasks in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	users      map[string]*domain.User   // by email
	keys       map[string]*domain.APIKey // by short token
	tasks      map[string][]domain.Task  // by user ID, in creation order
	lastUsedAt map[string]time.Time      // by key ID
}

var (
	_ todo.Repository     = (*Store)(nil)
	_ auth.Repository     = (*Store)(nil)
	_ auth.UserRepository = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		keys:       make(map[string]*domain.APIKey),
		tasks:      make(map[string][]domain.Task),
		lastUsedAt: make(map[string]time.Time),
	}
}

// ListTasks implements todo.Repository.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneTasks(s.tasks[userID]), nil
}

// CreateTask implements todo.Repository.
func (s *Store) CreateTask(ctx context.Context, userID string, task domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[userID] = append(s.tasks[userID], domain.CloneTasks([]domain.Task{task})...)
	return domain.CloneTasks([]domain.Task{task})[0], nil
}

// ToggleTask implements todo.Repository.
func (s *Store) ToggleTask(ctx context.Context, userID, id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.tasks[userID]
	i := domain.IndexOf(list, id)
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	list[i].Completed = !list[i].Completed
	return domain.CloneTasks(list[i : i+1])[0], nil
}

// DeleteTask implements todo.Repository.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.tasks[userID]
	i := domain.IndexOf(list, id)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	s.tasks[userID] = slices.Delete(list, i, i+1)
	return nil
}

// DeleteAllTasks implements todo.Repository.
func (s *Store) DeleteAllTasks(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.tasks[userID]))
	delete(s.tasks, userID)
	return n, nil
}

// CreateUser implements auth.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	u := *user
	s.users[user.Email] = &u
	return nil
}

// FindUserByEmail implements auth.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// FindByShortToken implements auth.Repository.
func (s *Store) FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[shortToken]
	if !ok || !k.IsActive {
		return nil, domain.ErrNotFound
	}
	out := *k
	if t, ok := s.lastUsedAt[k.ID]; ok {
		out.LastUsedAt = &t
	}
	return &out, nil
}

// UpdateLastUsed implements auth.Repository.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsedAt[keyID] = timestamp
	return nil
}

// Create implements auth.Repository.
func (s *Store) Create(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := *key
	s.keys[key.ShortToken] = &k
	return nil
}
