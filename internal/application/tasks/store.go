package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/ptr"
)

// ErrInFlight is returned when a toggle for the same task is still waiting on the
// backend. Callers treat it like a disabled button.
var ErrInFlight = errors.New("request already in flight for this task")

// ClearAllPrompt is the question passed to the confirmation callback of ClearAll.
const ClearAllPrompt = "Are you sure you want to delete all tasks? This cannot be undone."

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// Draft holds the user-supplied fields of a new task. Nil fields take defaults.
type Draft struct {
	Title    string
	Priority *domain.Priority
	DueDate  *time.Time
}

// Snapshot is an immutable view of the store handed to observers.
type Snapshot struct {
	Tasks      []domain.Task
	Stats      Stats
	Suggested  *domain.Task // nil when every task is complete or there are none
	LastSynced time.Time    // zero until the first successful load or mutation
	Loaded     bool
	InFlight   map[string]bool
	Now        time.Time
}

// IsInFlight reports whether a toggle for id is waiting on the backend.
func (s Snapshot) IsInFlight(id string) bool {
	return s.InFlight[id]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the task ID generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// Store owns the task collection of one application session.
//
// State is guarded by a mutex that is never held across backend calls. Observers
// registered with Subscribe are called after every load and mutation attempt,
// outside the lock.
type Store struct {
	backend Backend
	now     func() time.Time
	newID   func() (string, error)

	mu          sync.Mutex
	tasks       []domain.Task
	loaded      bool
	lastSynced  time.Time
	inFlight    map[string]struct{}
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewStore creates an empty, not yet loaded store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		now:         time.Now,
		newID:       newUUID,
		inFlight:    make(map[string]struct{}),
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Load replaces the collection with the backend's. On failure the previous
// collection is kept.
func (s *Store) Load(ctx context.Context) error {
	next, err := s.backend.Load(ctx)
	if err != nil {
		s.publish()
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	s.mu.Lock()
	s.tasks = domain.CloneTasks(next)
	s.loaded = true
	s.lastSynced = s.now()
	s.mu.Unlock()

	slog.DebugContext(ctx, "tasks loaded", "count", len(next))
	s.publish()
	return nil
}

// Add creates a task with default priority and due date.
// Returns domain.ErrTitleRequired when the trimmed title is empty.
func (s *Store) Add(ctx context.Context, title string) (domain.Task, error) {
	return s.AddTask(ctx, Draft{Title: title})
}

// AddTask creates a task from draft.
func (s *Store) AddTask(ctx context.Context, draft Draft) (domain.Task, error) {
	id, err := s.newID()
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to generate id: %w", err)
	}

	task, err := domain.NewTask(id, draft.Title, s.now())
	if err != nil {
		return domain.Task{}, err
	}
	task.Priority = ptr.Deref(draft.Priority, task.Priority)
	if draft.DueDate != nil {
		due := draft.DueDate.UTC()
		task.DueDate = &due
	}

	created := task
	err = s.mutate(ctx, "", func(current []domain.Task) ([]domain.Task, error) {
		known := make(map[string]struct{}, len(current))
		for _, t := range current {
			known[t.ID] = struct{}{}
		}

		next, err := s.backend.Add(ctx, current, task)
		if err != nil {
			return nil, err
		}
		if stored, ok := addedTask(known, next, task); ok {
			created = stored
		}
		return next, nil
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to add task: %w", err)
	}

	return created, nil
}

// addedTask finds draft in the collection a backend returned. Backends that assign
// their own ids store it under a new id, so the newest unknown task with the same
// title is taken instead.
func addedTask(known map[string]struct{}, next []domain.Task, draft domain.Task) (domain.Task, bool) {
	var (
		found domain.Task
		ok    bool
	)
	for _, t := range next {
		if t.ID == draft.ID {
			return t, true
		}
		if _, seen := known[t.ID]; seen || t.Title != draft.Title {
			continue
		}
		if !ok || t.CreatedAt.After(found.CreatedAt) {
			found, ok = t, true
		}
	}
	return found, ok
}

// Toggle flips the completion flag of the task with the given id.
// An unknown id is a no-op. A failed backend call leaves the collection unchanged
// and is returned so the caller can revert any optimistic state.
func (s *Store) Toggle(ctx context.Context, id string) error {
	if !s.has(id) {
		return nil
	}

	err := s.mutate(ctx, id, func(current []domain.Task) ([]domain.Task, error) {
		return s.backend.Toggle(ctx, current, id)
	})
	if err != nil {
		if errors.Is(err, ErrInFlight) {
			return err
		}
		return fmt.Errorf("failed to toggle task %s: %w", id, err)
	}
	return nil
}

// Remove deletes the task with the given id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if !s.has(id) {
		return nil
	}

	err := s.mutate(ctx, "", func(current []domain.Task) ([]domain.Task, error) {
		return s.backend.Remove(ctx, current, id)
	})
	if err != nil {
		return fmt.Errorf("failed to remove task %s: %w", id, err)
	}
	return nil
}

// ClearAll empties the collection once confirm approves ClearAllPrompt.
// Returns false without touching anything when the user declines.
func (s *Store) ClearAll(ctx context.Context, confirm Confirm) (bool, error) {
	if confirm == nil || !confirm(ClearAllPrompt) {
		return false, nil
	}

	err := s.mutate(ctx, "", func(current []domain.Task) ([]domain.Task, error) {
		return s.backend.Clear(ctx, current)
	})
	if err != nil {
		return false, fmt.Errorf("failed to clear tasks: %w", err)
	}
	return true, nil
}

// Tasks returns a copy of the collection in stored order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneTasks(s.tasks)
}

// Stats computes the statistics of the current collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.tasks)
}

// Suggested returns the task to work on next, or false when there is none.
func (s *Store) Suggested() (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Suggest(s.tasks, s.now())
}

// LastSynced returns when the collection was last loaded or persisted.
func (s *Store) LastSynced() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	now := s.now()
	snap := Snapshot{
		Tasks:      domain.CloneTasks(s.tasks),
		Stats:      ComputeStats(s.tasks),
		LastSynced: s.lastSynced,
		Loaded:     s.loaded,
		InFlight:   make(map[string]bool, len(s.inFlight)),
		Now:        now,
	}
	if t, ok := Suggest(snap.Tasks, now); ok {
		snap.Suggested = &t
	}
	for id := range s.inFlight {
		snap.InFlight[id] = true
	}
	return snap
}

func (s *Store) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.IndexOf(s.tasks, id) >= 0
}

// mutate runs fn against a copy of the collection and installs its result.
// A non-empty guard marks that key as in flight for the duration of the call.
func (s *Store) mutate(ctx context.Context, guard string, fn func([]domain.Task) ([]domain.Task, error)) error {
	s.mu.Lock()
	if guard != "" {
		if _, busy := s.inFlight[guard]; busy {
			s.mu.Unlock()
			return ErrInFlight
		}
		s.inFlight[guard] = struct{}{}
	}
	current := domain.CloneTasks(s.tasks)
	s.mu.Unlock()

	if guard != "" {
		s.publish()
	}

	next, err := fn(current)

	s.mu.Lock()
	if guard != "" {
		delete(s.inFlight, guard)
	}
	if err == nil {
		s.tasks = domain.CloneTasks(next)
		s.lastSynced = s.now()
	}
	s.mu.Unlock()

	if err != nil {
		slog.WarnContext(ctx, "task mutation failed", "error", err)
	}

	s.publish()
	return err
}

func (s *Store) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, s.subscribers[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
