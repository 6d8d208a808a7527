package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
	mw "github.com/godaily/godaily/internal/infrastructure/http/middleware"
)

// TaskHandler adapts HTTP requests to the todo and account services.
type TaskHandler struct {
	todoService *todo.Service
	accounts    *auth.Accounts
}

// NewTaskHandler creates a new HTTP API handler.
func NewTaskHandler(todoService *todo.Service, accounts *auth.Accounts) *TaskHandler {
	return &TaskHandler{
		todoService: todoService,
		accounts:    accounts,
	}
}

// Mount registers the public /auth routes and the bearer-protected /tasks routes.
func (h *TaskHandler) Mount(r chi.Router, authMiddleware *mw.Auth) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Validate)

		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Delete("/", h.ClearTasks)
		r.Patch("/{id}", h.ToggleTask)
		r.Delete("/{id}", h.DeleteTask)
	})
}
