// Package remote mirrors the task collection of the GoDaily service. The server is
// the source of truth: every mutation is followed by a refetch of the full list.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/domain"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Session holds the bearer token of the signed-in user.
type Session interface {
	AuthToken(ctx context.Context) (string, bool, error)
	SetAuthToken(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// State is the request state of an adapter.
type State int

const (
	StateIdle State = iota
	StateInFlight
	// StateLoggedOut is terminal until Login succeeds.
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	case StateLoggedOut:
		return "logged-out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StatusError is a non-2xx response other than an authentication failure.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: server returned %d: %s", e.Method, e.Path, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return domain.ErrRemoteFailure }

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.client = c
	}
}

// Adapter is a tasks.Backend over the service's /tasks endpoints.
//
// Requests are never retried and the client has no timeout of its own; the
// caller's context is the only deadline.
type Adapter struct {
	baseURL string
	session Session
	client  *http.Client

	mu       sync.Mutex
	state    State
	inFlight int
}

var _ tasks.Backend = (*Adapter)(nil)

// NewAdapter creates an adapter for the service at baseURL.
func NewAdapter(baseURL string, session Session, opts ...Option) (*Adapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	a := &Adapter{
		baseURL: strings.TrimRight(u.String(), "/"),
		session: session,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// State reports the adapter's current request state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Adapter) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateLoggedOut {
		return domain.ErrUnauthorized
	}
	a.inFlight++
	a.state = StateInFlight
	return nil
}

func (a *Adapter) end(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight--
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.state = StateLoggedOut
	case a.state == StateLoggedOut:
	case a.inFlight == 0:
		a.state = StateIdle
	}
}

// call runs fn inside the state machine and refetches the list on success.
func (a *Adapter) call(ctx context.Context, fn func(token string) error) (list []domain.Task, err error) {
	if err := a.begin(); err != nil {
		return nil, err
	}
	defer func() { a.end(err) }()

	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	if fn != nil {
		if err := fn(token); err != nil {
			return nil, err
		}
	}

	var dtos []taskDTO
	if err := a.authorized(ctx, http.MethodGet, "/tasks", token, nil, &dtos); err != nil {
		return nil, err
	}

	list = make([]domain.Task, 0, len(dtos))
	for _, d := range dtos {
		list = append(list, d.toDomain())
	}
	return list, nil
}

func (a *Adapter) token(ctx context.Context) (string, error) {
	token, ok, err := a.session.AuthToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	if !ok || token == "" {
		a.logout(ctx)
		return "", fmt.Errorf("%w: no auth token", domain.ErrUnauthorized)
	}
	return token, nil
}

func (a *Adapter) logout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		slog.WarnContext(ctx, "failed to clear session", "error", err)
	}
}

// authorized sends a bearer-authenticated request. 401 and 403 end the session.
func (a *Adapter) authorized(ctx context.Context, method, path, token string, in, out any) error {
	err := a.send(ctx, method, path, token, in, out)

	var se *StatusError
	if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
		slog.WarnContext(ctx, "session rejected by server", "status", se.Code, "path", path)
		a.logout(ctx)
		return fmt.Errorf("%w: server returned %d", domain.ErrUnauthorized, se.Code)
	}
	return err
}

func (a *Adapter) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteFailure, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errorMessage(msg)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s response: %w", domain.ErrRemoteFailure, method, path, err)
	}
	return nil
}

// Load fetches the full list.
func (a *Adapter) Load(ctx context.Context) ([]domain.Task, error) {
	return a.call(ctx, nil)
}

// Add creates draft on the server. The server assigns the id and creation time.
func (a *Adapter) Add(ctx context.Context, _ []domain.Task, draft domain.Task) ([]domain.Task, error) {
	req := createTaskRequest{
		Title:    draft.Title,
		Priority: string(draft.Priority),
		DueDate:  draft.DueDate,
	}
	return a.call(ctx, func(token string) error {
		return a.authorized(ctx, http.MethodPost, "/tasks", token, req, nil)
	})
}

// Toggle asks the server to flip the completion flag.
func (a *Adapter) Toggle(ctx context.Context, _ []domain.Task, id string) ([]domain.Task, error) {
	return a.call(ctx, func(token string) error {
		return a.authorized(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), token, nil, nil)
	})
}

func (a *Adapter) Remove(ctx context.Context, _ []domain.Task, id string) ([]domain.Task, error) {
	return a.call(ctx, func(token string) error {
		return a.authorized(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), token, nil, nil)
	})
}

func (a *Adapter) Clear(ctx context.Context, _ []domain.Task) ([]domain.Task, error) {
	return a.call(ctx, func(token string) error {
		return a.authorized(ctx, http.MethodDelete, "/tasks", token, nil, nil)
	})
}

// Login exchanges credentials for a token, stores it in the session and leaves
// the logged-out state.
func (a *Adapter) Login(ctx context.Context, email, password string) error {
	var out loginResponse
	err := a.send(ctx, http.MethodPost, "/auth/login", "", credentialsRequest{Email: email, Password: password}, &out)

	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return domain.ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("%w: login response has no token", domain.ErrRemoteFailure)
	}

	if err := a.session.SetAuthToken(ctx, out.Token); err != nil {
		return fmt.Errorf("failed to store auth token: %w", err)
	}

	a.mu.Lock()
	if a.inFlight == 0 {
		a.state = StateIdle
	} else {
		a.state = StateInFlight
	}
	a.mu.Unlock()
	return nil
}

// Register creates an account. It does not sign in.
func (a *Adapter) Register(ctx context.Context, email, password string) error {
	err := a.send(ctx, http.MethodPost, "/auth/register", "", credentialsRequest{Email: email, Password: password}, nil)

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
		case http.StatusBadRequest:
			return fmt.Errorf("registration rejected: %s", se.Message)
		}
	}
	return err
}
