package todo

import (
	"context"

	"github.com/godaily/godaily/internal/domain"
)

// Repository defines storage operations for server-side tasks.
// Every operation is scoped to one user; a task owned by someone else behaves as if
// it did not exist.
type Repository interface {
	// ListTasks returns the user's tasks ordered by creation time, oldest first.
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)

	// CreateTask stores task for the user and returns it as persisted.
	CreateTask(ctx context.Context, userID string, task domain.Task) (domain.Task, error)

	// ToggleTask flips the completion flag and returns the updated task.
	// Returns domain.ErrTaskNotFound if the user has no such task.
	ToggleTask(ctx context.Context, userID, id string) (domain.Task, error)

	// DeleteTask removes one task.
	// Returns domain.ErrTaskNotFound if the user has no such task.
	DeleteTask(ctx context.Context, userID, id string) error

	// DeleteAllTasks removes every task of the user and reports how many were removed.
	DeleteAllTasks(ctx context.Context, userID string) (int64, error)
}
