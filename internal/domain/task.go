package domain

import "time"

// Default scheduling values applied to new tasks.
const (
	// DefaultDueIn is how far after creation a task is due when no due date is given.
	DefaultDueIn = 7 * 24 * time.Hour

	// UnscheduledDueIn is the horizon assumed for a task without a due date when
	// ranking suggestions.
	UnscheduledDueIn = 30 * 24 * time.Hour
)

// Task is a single to-do item.
//
// The JSON form is the device storage format; the remote service uses its own
// wire type and is mapped at the adapter boundary.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	Priority  Priority   `json:"priority"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// NewTask builds an incomplete task created at now, with the default priority and
// a due date DefaultDueIn later. The title is validated and trimmed.
func NewTask(id, title string, now time.Time) (Task, error) {
	t, err := NewTitle(title)
	if err != nil {
		return Task{}, err
	}

	now = now.UTC()
	due := now.Add(DefaultDueIn)

	return Task{
		ID:        id,
		Title:     t.String(),
		Completed: false,
		CreatedAt: now,
		Priority:  PriorityMedium,
		DueDate:   &due,
	}, nil
}

// DueOr returns the due date, or now+UnscheduledDueIn when the task has none.
func (t Task) DueOr(now time.Time) time.Time {
	if t.DueDate != nil {
		return *t.DueDate
	}
	return now.Add(UnscheduledDueIn)
}

// CloneTasks returns a deep copy of tasks so callers cannot alias the due dates
// of a collection they do not own.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.DueDate != nil {
			due := *t.DueDate
			t.DueDate = &due
		}
		out[i] = t
	}
	return out
}

// IndexOf returns the position of the task with the given id, or -1.
func IndexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
