package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/godaily/godaily/internal/infrastructure/http/response"
)

// Register handles POST /auth/register.
func (h *TaskHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	response.Created(w, MapUserToDTO(user))
}

// Login handles POST /auth/login.
func (h *TaskHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, LoginResponse{Token: token})
}
