package tasks

import (
	"context"

	"github.com/godaily/godaily/internal/domain"
)

// Backend defines the persistence capability the Store is built on.
//
// Every mutating method receives the store's current collection and returns the
// authoritative collection after the mutation. A device-local backend applies the
// change to current and writes it back; a remote backend ignores current and
// returns what the server reports.
//
// On error the store keeps its previous collection.
type Backend interface {
	// Load returns the persisted collection.
	Load(ctx context.Context) ([]domain.Task, error)

	// Add persists draft. The backend may replace server-assigned fields (ID, CreatedAt).
	Add(ctx context.Context, current []domain.Task, draft domain.Task) ([]domain.Task, error)

	// Toggle flips the completion flag of the task with the given id.
	Toggle(ctx context.Context, current []domain.Task, id string) ([]domain.Task, error)

	// Remove deletes the task with the given id.
	Remove(ctx context.Context, current []domain.Task, id string) ([]domain.Task, error)

	// Clear deletes every task.
	Clear(ctx context.Context, current []domain.Task) ([]domain.Task, error)
}
