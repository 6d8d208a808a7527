package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/godaily/godaily/internal/domain"
)

// === Todo Repository Implementation ===
// Implements application/todo.Repository interface

const taskColumns = `id, title, is_completed, priority, due_date, created_at`

// ListTasks returns the user's tasks, oldest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dbTasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(dbTasks))
	for _, row := range dbTasks {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

// CreateTask inserts a task owned by userID.
func (s *Store) CreateTask(ctx context.Context, userID string, task domain.Task) (domain.Task, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return domain.Task{}, err
	}
	id, err := parseUUID(task.ID)
	if err != nil {
		return domain.Task{}, err
	}

	rows, err := s.pool.Query(ctx,
		`INSERT INTO tasks (id, user_id, title, is_completed, priority, due_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		id, uid, task.Title, task.Completed, string(task.Priority),
		timePtrToPgtype(task.DueDate), timeToPgtype(task.CreatedAt))
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return row.toDomain(), nil
}

// ToggleTask flips is_completed in one statement.
func (s *Store) ToggleTask(ctx context.Context, userID, id string) (domain.Task, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return domain.Task{}, err
	}
	tid, err := parseUUID(id)
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrTaskNotFound, err)
	}

	rows, err := s.pool.Query(ctx,
		`UPDATE tasks SET is_completed = NOT is_completed
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns, tid, uid)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to toggle task: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("failed to toggle task: %w", err)
	}
	return row.toDomain(), nil
}

// DeleteTask removes one task.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}
	tid, err := parseUUID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTaskNotFound, err)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, tid, uid)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteAllTasks removes every task of the user.
func (s *Store) DeleteAllTasks(ctx context.Context, userID string) (int64, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, uid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}
