package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/application/todo"
	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/infrastructure/http/handler"
	"github.com/godaily/godaily/internal/infrastructure/persistence/memory"
	"github.com/godaily/godaily/internal/infrastructure/remote"
	"github.com/godaily/godaily/internal/settings"
	"github.com/godaily/godaily/internal/storage/fs"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memory.NewStore()
	authenticator := auth.NewAuthenticator(repo, auth.Config{})
	t.Cleanup(func() { _ = authenticator.Shutdown(context.Background()) })

	accounts := auth.NewAccounts(repo, repo, 0).WithBcryptCost(bcrypt.MinCost)
	h := handler.NewTaskHandler(todo.NewService(repo), accounts)

	srv := httptest.NewServer(NewAPIServer(h, authenticator, ServerConfig{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string) (*remote.Adapter, *settings.Settings) {
	t.Helper()
	kv, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	session := settings.New(kv)

	adapter, err := remote.NewAdapter(baseURL, session)
	require.NoError(t, err)
	return adapter, session
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRemoteClientAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	client, session := newClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "ada@example.com", "correct horse"))
	assert.ErrorIs(t, client.Register(ctx, "ada@example.com", "correct horse"), domain.ErrEmailTaken)
	assert.ErrorIs(t, client.Login(ctx, "ada@example.com", "wrong password"), domain.ErrInvalidCredentials)
	require.NoError(t, client.Login(ctx, "ada@example.com", "correct horse"))

	_, ok, err := session.AuthToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	store := tasks.NewStore(client)
	require.NoError(t, store.Load(ctx))
	assert.Empty(t, store.Tasks())

	first, err := store.Add(ctx, "Write the report")
	require.NoError(t, err)
	_, err = store.AddTask(ctx, tasks.Draft{Title: "Call the bank"})
	require.NoError(t, err)

	all := store.Tasks()
	require.Len(t, all, 2)
	assert.Equal(t, "Write the report", all[0].Title)
	assert.NotEmpty(t, all[0].ID)
	assert.NotEmpty(t, first.Title)

	require.NoError(t, store.Toggle(ctx, all[0].ID))
	assert.True(t, store.Tasks()[0].Completed)
	assert.Equal(t, 50, store.Stats().Percentage)

	require.NoError(t, store.Remove(ctx, all[1].ID))
	assert.Len(t, store.Tasks(), 1)

	cleared, err := store.ClearAll(ctx, func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Empty(t, store.Tasks())
}

func TestRemoteClientRejectedTokenLogsOut(t *testing.T) {
	srv := newTestServer(t)
	client, session := newClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, session.SetAuthToken(ctx, "sk-godaily-v1-000000000000-forged"))

	_, err := client.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, remote.StateLoggedOut, client.State())

	_, ok, err := session.AuthToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServerConfig_ApplyDefaults(t *testing.T) {
	t.Run("applies all defaults for zero config", func(t *testing.T) {
		cfg := ServerConfig{}
		cfg.applyDefaults()

		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
		assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
		assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
		assert.Equal(t, DefaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
		assert.Equal(t, DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	})

	t.Run("preserves non-zero values", func(t *testing.T) {
		cfg := ServerConfig{
			Port:           "9000",
			MaxHeaderBytes: 2048,
			MaxBodyBytes:   4096,
		}
		cfg.applyDefaults()

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, 2048, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	})
}

func TestSetupHTTPServer_ListenAddress(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: "9000"}
	cfg.applyDefaults()

	srv := setupHTTPServer(http.NotFoundHandler(), cfg)
	assert.Equal(t, "127.0.0.1:9000", srv.Addr)
	assert.Equal(t, DefaultReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, DefaultMaxHeaderBytes, srv.MaxHeaderBytes)

	cfg.Host = DefaultHost
	assert.Equal(t, ":9000", setupHTTPServer(http.NotFoundHandler(), cfg).Addr)
}
