package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/godaily/godaily/internal/domain"
	mw "github.com/godaily/godaily/internal/infrastructure/http/middleware"
	"github.com/godaily/godaily/internal/infrastructure/http/response"
)

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.todoService.ListTasks(r.Context(), mw.UserIDFromContext(r.Context()))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTasksToDTO(tasks))
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	params := domain.CreateTaskParams{
		UserID:  mw.UserIDFromContext(r.Context()),
		Title:   req.Title,
		DueDate: req.DueDate,
	}
	if req.Priority != nil {
		p, err := domain.NewPriority(*req.Priority)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params.Priority = &p
	}

	task, err := h.todoService.CreateTask(r.Context(), params)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, MapTaskToDTO(task))
}

// ToggleTask handles PATCH /tasks/{id}.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.todoService.ToggleTask(r.Context(), mw.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MapTaskToDTO(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.todoService.DeleteTask(r.Context(), mw.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ClearTasks handles DELETE /tasks.
func (h *TaskHandler) ClearTasks(w http.ResponseWriter, r *http.Request) {
	n, err := h.todoService.ClearTasks(r.Context(), mw.UserIDFromContext(r.Context()))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, ClearResponse{Deleted: n})
}
