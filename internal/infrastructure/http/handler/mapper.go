package handler

import (
	"time"

	"github.com/godaily/godaily/internal/domain"
)

// TaskDTO is the wire form of a task.
type TaskDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title    string     `json:"title"`
	Priority *string    `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// CredentialsRequest is the body of the /auth endpoints.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO is returned by registration.
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries a freshly issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// ClearResponse reports how many tasks DELETE /tasks removed.
type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}

// MapTaskToDTO converts domain.Task to TaskDTO.
func MapTaskToDTO(t domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		IsCompleted: t.Completed,
		CreatedAt:   t.CreatedAt.UTC(),
		Priority:    string(t.Priority),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		dto.DueDate = &due
	}
	return dto
}

// MapTasksToDTO converts a collection; an empty collection encodes as [].
func MapTasksToDTO(tasks []domain.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, MapTaskToDTO(t))
	}
	return out
}

// MapUserToDTO converts domain.User to UserDTO, leaving out the password hash.
func MapUserToDTO(u *domain.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt.UTC()}
}
