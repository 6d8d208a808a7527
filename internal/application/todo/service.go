package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/ptr"
)

const meterName = "github.com/godaily/godaily/internal/application/todo"

// Service provides business logic for server-side task management.
type Service struct {
	repo Repository
	now  func() time.Time

	created metric.Int64Counter
	toggled metric.Int64Counter
	deleted metric.Int64Counter
}

// NewService creates a new todo service. Counters are registered on the global
// meter provider, which is a no-op until observability is initialised.
func NewService(repo Repository) *Service {
	meter := otel.Meter(meterName)

	s := &Service{repo: repo, now: time.Now}
	s.created = mustCounter(meter, "godaily.tasks.created", "Tasks created")
	s.toggled = mustCounter(meter, "godaily.tasks.toggled", "Task completion toggles")
	s.deleted = mustCounter(meter, "godaily.tasks.deleted", "Tasks deleted")
	return s
}

func mustCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{task}"))
	if err != nil {
		// The API only fails on invalid instrument names.
		panic(fmt.Sprintf("failed to create counter %s: %v", name, err))
	}
	return c
}

// ListTasks returns the user's tasks.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask validates params and stores a new task.
func (s *Service) CreateTask(ctx context.Context, params domain.CreateTaskParams) (domain.Task, error) {
	if params.UserID == "" {
		return domain.Task{}, domain.ErrUnauthorized
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to generate id: %w", err)
	}

	task, err := domain.NewTask(idObj.String(), params.Title, s.now())
	if err != nil {
		return domain.Task{}, err // ErrTitleRequired or ErrTitleTooLong
	}
	task.Priority = ptr.Deref(params.Priority, task.Priority)
	if params.DueDate != nil {
		due := params.DueDate.UTC()
		task.DueDate = &due
	}

	created, err := s.repo.CreateTask(ctx, params.UserID, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("priority", string(created.Priority))))
	slog.DebugContext(ctx, "task created", "task_id", created.ID, "user_id", params.UserID)
	return created, nil
}

// ToggleTask flips the completion flag of one task.
func (s *Service) ToggleTask(ctx context.Context, userID, id string) (domain.Task, error) {
	if userID == "" {
		return domain.Task{}, domain.ErrUnauthorized
	}
	if id == "" {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	task, err := s.repo.ToggleTask(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err // Repository returns domain errors
	}

	s.toggled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("completed", task.Completed)))
	return task, nil
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if id == "" {
		return domain.ErrTaskNotFound
	}

	if err := s.repo.DeleteTask(ctx, userID, id); err != nil {
		return err
	}

	s.deleted.Add(ctx, 1)
	return nil
}

// ClearTasks removes all of the user's tasks.
func (s *Service) ClearTasks(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, domain.ErrUnauthorized
	}

	n, err := s.repo.DeleteAllTasks(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear tasks: %w", err)
	}

	s.deleted.Add(ctx, n)
	slog.InfoContext(ctx, "tasks cleared", "user_id", userID, "count", n)
	return n, nil
}
