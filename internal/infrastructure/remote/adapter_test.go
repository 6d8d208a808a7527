package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/domain"
)

type memorySession struct {
	mu      sync.Mutex
	token   string
	logouts int
}

func (s *memorySession) AuthToken(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != "", nil
}

func (s *memorySession) SetAuthToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memorySession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.logouts++
	return nil
}

// fakeServer is a minimal task service keyed by numeric ids.
type fakeServer struct {
	mu       sync.Mutex
	tasks    []map[string]any
	nextID   int
	status   map[string]int // "METHOD path" -> forced status
	requests []string
	auth     []string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	f := &fakeServer{nextID: 1, status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) force(method, path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[method+" "+path] = code
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	if code, ok := f.status[key]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"error":{"code":"FORCED","message":"forced failure"}}`))
		return
	}

	switch {
	case key == "GET /tasks":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.tasks)
	case key == "POST /tasks":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = f.nextID
		body["is_completed"] = false
		body["created_at"] = "2026-04-06T09:00:00"
		f.nextID++
		f.tasks = append(f.tasks, body)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPatch:
		for _, t := range f.tasks {
			if "/tasks/"+jsonID(t["id"]) == r.URL.Path {
				t["is_completed"] = !t["is_completed"].(bool)
			}
		}
		w.WriteHeader(http.StatusOK)
	case key == "DELETE /tasks":
		f.tasks = nil
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		kept := f.tasks[:0]
		for _, t := range f.tasks {
			if "/tasks/"+jsonID(t["id"]) != r.URL.Path {
				kept = append(kept, t)
			}
		}
		f.tasks = kept
		w.WriteHeader(http.StatusNoContent)
	case key == "POST /auth/login":
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token"})
	case key == "POST /auth/register":
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func jsonID(v any) string {
	data, _ := json.Marshal(v)
	var s string
	if json.Unmarshal(data, &s) == nil {
		return s
	}
	return string(data)
}

func (f *fakeServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestAdapter(t *testing.T, srv *httptest.Server, session Session) *Adapter {
	t.Helper()
	a, err := NewAdapter(srv.URL+"/", session, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return a
}

func TestAdapter_LoadMapsWireFields(t *testing.T) {
	f, srv := newFakeServer(t)
	f.tasks = []map[string]any{
		{"id": 7, "title": "numeric", "is_completed": true, "created_at": "2026-04-01T10:00:00Z", "priority": "HIGH", "due_date": "2026-04-03T00:00:00Z"},
		{"id": "abc", "title": "string id", "is_completed": false},
	}
	session := &memorySession{token: "t0k3n"}
	a := newTestAdapter(t, srv, session)

	list, err := a.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "7", list[0].ID)
	assert.True(t, list[0].Completed)
	assert.Equal(t, domain.PriorityHigh, list[0].Priority)
	require.NotNil(t, list[0].DueDate)
	assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), *list[0].DueDate)

	assert.Equal(t, "abc", list[1].ID)
	assert.Equal(t, domain.PriorityMedium, list[1].Priority)
	assert.Nil(t, list[1].DueDate)

	assert.Equal(t, "Bearer t0k3n", f.auth[0])
	assert.Equal(t, StateIdle, a.State())
}

func TestAdapter_LoadUnauthorizedLogsOutAndKeepsCollection(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			f, srv := newFakeServer(t)
			session := &memorySession{token: "expired"}
			a := newTestAdapter(t, srv, session)
			ctx := context.Background()

			f.tasks = []map[string]any{{"id": 1, "title": "cached", "is_completed": false}}
			store := tasks.NewStore(a)
			require.NoError(t, store.Load(ctx))
			before := store.Tasks()

			f.force(http.MethodGet, "/tasks", code)
			err := store.Load(ctx)

			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Equal(t, before, store.Tasks())
			assert.Equal(t, 1, session.logouts)
			assert.Equal(t, StateLoggedOut, a.State())

			// Terminal: no further requests until login.
			sent := f.requestCount()
			_, err = a.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Equal(t, sent, f.requestCount())
		})
	}
}

func TestAdapter_ToggleFailureLeavesCollection(t *testing.T) {
	f, srv := newFakeServer(t)
	f.tasks = []map[string]any{{"id": 1, "title": "stay", "is_completed": false}}
	session := &memorySession{token: "ok"}
	a := newTestAdapter(t, srv, session)
	ctx := context.Background()

	store := tasks.NewStore(a)
	require.NoError(t, store.Load(ctx))
	before := store.Tasks()

	f.force(http.MethodPatch, "/tasks/1", http.StatusInternalServerError)
	err := store.Toggle(ctx, "1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteFailure)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "forced failure", se.Message)

	assert.Equal(t, before, store.Tasks())
	assert.Zero(t, session.logouts)
	assert.Equal(t, StateIdle, a.State())
}

func TestAdapter_MutationsRefetch(t *testing.T) {
	f, srv := newFakeServer(t)
	a := newTestAdapter(t, srv, &memorySession{token: "ok"})
	ctx := context.Background()

	store := tasks.NewStore(a)
	require.NoError(t, store.Load(ctx))

	task, err := store.Add(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)

	all := store.Tasks()
	require.Len(t, all, 1)
	assert.Equal(t, "1", all[0].ID, "server-assigned id wins")
	assert.Equal(t, time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC), all[0].CreatedAt)

	require.NoError(t, store.Toggle(ctx, "1"))
	assert.True(t, store.Tasks()[0].Completed)

	_, err = store.Add(ctx, "Second")
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, "1"))
	require.Len(t, store.Tasks(), 1)
	assert.Equal(t, "Second", store.Tasks()[0].Title)

	cleared, err := store.ClearAll(ctx, func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Empty(t, store.Tasks())

	assert.Contains(t, f.requests, "PATCH /tasks/1")
	assert.Contains(t, f.requests, "DELETE /tasks/1")
	assert.Contains(t, f.requests, "DELETE /tasks")
}

func TestAdapter_MissingTokenFailsWithoutRequest(t *testing.T) {
	f, srv := newFakeServer(t)
	session := &memorySession{}
	a := newTestAdapter(t, srv, session)

	_, err := a.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, f.requestCount())
	assert.Equal(t, 1, session.logouts)
	assert.Equal(t, StateLoggedOut, a.State())
}

func TestAdapter_LoginLeavesLoggedOutState(t *testing.T) {
	f, srv := newFakeServer(t)
	session := &memorySession{}
	a := newTestAdapter(t, srv, session)
	ctx := context.Background()

	_, err := a.Load(ctx)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, a.Login(ctx, "me@example.com", "password1"))
	assert.Equal(t, "fresh-token", session.token)
	assert.Equal(t, StateIdle, a.State())

	_, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", f.auth[len(f.auth)-1])
}

func TestAdapter_LoginAndRegisterErrors(t *testing.T) {
	f, srv := newFakeServer(t)
	a := newTestAdapter(t, srv, &memorySession{})
	ctx := context.Background()

	f.force(http.MethodPost, "/auth/login", http.StatusUnauthorized)
	assert.ErrorIs(t, a.Login(ctx, "me@example.com", "wrong"), domain.ErrInvalidCredentials)

	require.NoError(t, a.Register(ctx, "me@example.com", "password1"))

	f.force(http.MethodPost, "/auth/register", http.StatusConflict)
	assert.ErrorIs(t, a.Register(ctx, "me@example.com", "password1"), domain.ErrEmailTaken)
}

func TestAdapter_TransportFailure(t *testing.T) {
	_, srv := newFakeServer(t)
	a := newTestAdapter(t, srv, &memorySession{token: "ok"})
	srv.Close()

	_, err := a.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemoteFailure)
	assert.Equal(t, StateIdle, a.State())
}

func TestNewAdapter_RejectsBadURL(t *testing.T) {
	_, err := NewAdapter("ftp://example.com", &memorySession{})
	assert.Error(t, err)
}

func TestFlexibleID(t *testing.T) {
	var dto taskDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12345678901234, "title": "x"}`), &dto))
	assert.Equal(t, flexibleID("12345678901234"), dto.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "uuid-1", "title": "x"}`), &dto))
	assert.Equal(t, flexibleID("uuid-1"), dto.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &dto))
}
