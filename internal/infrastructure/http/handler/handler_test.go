package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
	"github.com/godaily/godaily/internal/infrastructure/http/handler"
	mw "github.com/godaily/godaily/internal/infrastructure/http/middleware"
	"github.com/godaily/godaily/internal/infrastructure/http/response"
	"github.com/godaily/godaily/internal/infrastructure/persistence/memory"
)

type testAPI struct {
	router http.Handler
	repo   *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repo := memory.NewStore()
	authenticator := auth.NewAuthenticator(repo, auth.Config{})
	t.Cleanup(func() { _ = authenticator.Shutdown(context.Background()) })

	h := handler.NewTaskHandler(
		todo.NewService(repo),
		auth.NewAccounts(repo, repo, time.Hour).WithBcryptCost(bcrypt.MinCost),
	)
	r := chi.NewRouter()
	h.Mount(r, mw.NewAuth(authenticator))
	return &testAPI{router: r, repo: repo}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signIn registers an account and returns a bearer token for it.
func (a *testAPI) signIn(t *testing.T, email string) string {
	t.Helper()
	creds := `{"email":"` + email + `","password":"correct horse"}`

	rec := a.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.do(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login handler.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func decodeTasks(t *testing.T, rec *httptest.ResponseRecorder) []handler.TaskDTO {
	t.Helper()
	var out []handler.TaskDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestTasks_RequireBearerToken(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodDelete, "/tasks"},
		{http.MethodPatch, "/tasks/abc"},
		{http.MethodDelete, "/tasks/abc"},
	} {
		rec := api.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestTasks_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn(t, "ada@example.com")

	rec := api.do(t, http.MethodGet, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/tasks", token, `{"title":"  Plan sprint  ","priority":"high","due_date":"2026-05-04T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created handler.TaskDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "Plan sprint", created.Title)
	assert.Equal(t, "high", created.Priority)
	assert.False(t, created.IsCompleted)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC), *created.DueDate)

	rec = api.do(t, http.MethodPost, "/tasks", token, `{"title":"Defaults"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPatch, "/tasks/"+created.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled handler.TaskDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&toggled))
	assert.True(t, toggled.IsCompleted)

	rec = api.do(t, http.MethodGet, "/tasks", token, "")
	list := decodeTasks(t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "medium", list[1].Priority)
	assert.NotNil(t, list[1].DueDate, "server applies the default due date")

	rec = api.do(t, http.MethodDelete, "/tasks/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}

func TestTasks_Errors(t *testing.T) {
	api := newTestAPI(t)
	token := api.signIn(t, "ada@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid json", http.MethodPost, "/tasks", `{`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"blank title", http.MethodPost, "/tasks", `{"title":"   "}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"long title", http.MethodPost, "/tasks", `{"title":"` + strings.Repeat("x", 256) + `"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad priority", http.MethodPost, "/tasks", `{"title":"a","priority":"urgent"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"toggle unknown", http.MethodPatch, "/tasks/missing", "", http.StatusNotFound, "NOT_FOUND"},
		{"delete unknown", http.MethodDelete, "/tasks/missing", "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, tc.method, tc.path, token, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestTasks_IsolatedBetweenUsers(t *testing.T) {
	api := newTestAPI(t)
	ada := api.signIn(t, "ada@example.com")
	bob := api.signIn(t, "bob@example.com")

	rec := api.do(t, http.MethodPost, "/tasks", ada, `{"title":"Ada only"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created handler.TaskDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = api.do(t, http.MethodGet, "/tasks", bob, "")
	assert.Empty(t, decodeTasks(t, rec))

	rec = api.do(t, http.MethodPatch, "/tasks/"+created.ID, bob, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_Errors(t *testing.T) {
	api := newTestAPI(t)
	api.signIn(t, "ada@example.com")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"duplicate email", "/auth/register", `{"email":"ADA@example.com","password":"correct horse"}`, http.StatusConflict, "CONFLICT"},
		{"bad email", "/auth/register", `{"email":"nope","password":"correct horse"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"short password", "/auth/register", `{"email":"eve@example.com","password":"short"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrong password", "/auth/login", `{"email":"ada@example.com","password":"battery staple"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown email", "/auth/login", `{"email":"zed@example.com","password":"correct horse"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid json", "/auth/login", `not json`, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, tc.path, "", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}
