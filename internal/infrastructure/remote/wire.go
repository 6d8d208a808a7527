package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/godaily/godaily/internal/domain"
)

// flexibleID accepts a JSON string or number and keeps it as a string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

// wireTime accepts RFC 3339 timestamps as well as naive ones, which are read as UTC.
type wireTime time.Time

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*w = wireTime(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// taskDTO is a task as the service sends it.
type taskDTO struct {
	ID          flexibleID `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   *wireTime  `json:"created_at"`
	Priority    string     `json:"priority"`
	DueDate     *wireTime  `json:"due_date"`
}

func (d taskDTO) toDomain() domain.Task {
	t := domain.Task{
		ID:        string(d.ID),
		Title:     d.Title,
		Completed: d.IsCompleted,
		Priority:  domain.PriorityMedium,
	}
	if p, err := domain.NewPriority(d.Priority); err == nil {
		t.Priority = p
	}
	if d.CreatedAt != nil {
		t.CreatedAt = time.Time(*d.CreatedAt)
	}
	if d.DueDate != nil {
		due := time.Time(*d.DueDate)
		t.DueDate = &due
	}
	return t
}

type createTaskRequest struct {
	Title    string     `json:"title"`
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// errorEnvelope covers both {"error":{"message":...}} and {"detail":...} bodies.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != nil && env.Error.Message != "" {
			return env.Error.Message
		}
		var detail string
		if json.Unmarshal(env.Detail, &detail) == nil && detail != "" {
			return detail
		}
	}
	return strings.TrimSpace(string(body))
}
