package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/godaily/godaily/internal/application/auth"
	"github.com/godaily/godaily/internal/application/todo"
	"github.com/godaily/godaily/internal/domain"
	httpserver "github.com/godaily/godaily/internal/infrastructure/http"
	"github.com/godaily/godaily/internal/infrastructure/http/handler"
	"github.com/godaily/godaily/internal/infrastructure/persistence/memory"
	"github.com/godaily/godaily/internal/view"
)

var addedID = regexp.MustCompile(`\(([0-9a-f]{8})\)`)

// writeConfig creates a config file for a local workspace in a temp dir.
func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf("backend = \"local\"\n%s\n[storage]\ndriver = \"fs\"\ndir = %q\n",
		strings.Join(lines, "\n"), filepath.Join(dir, "data"))
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := execute(context.Background(), append([]string{"--config", cfgPath}, args...), strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfgPath, "", args...)
	require.NoError(t, err, "godaily %s", strings.Join(args, " "))
	return out
}

func TestCLI_TaskLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "list")
	assert.Contains(t, out, view.EmptyTaskList)

	out = mustRun(t, cfg, "add", "Write", "tests", "--priority", "high", "--due", "2030-01-15")
	require.Contains(t, out, `Added "Write tests"`)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2)
	id := m[1]

	assert.Empty(t, mustRun(t, cfg, "add", "   "), "blank titles are ignored")

	out = mustRun(t, cfg, "list")
	assert.Contains(t, out, "Write tests")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "due Tue Jan 15")

	out = mustRun(t, cfg, "toggle", id)
	assert.Contains(t, out, `"Write tests" is done`)

	assert.Contains(t, mustRun(t, cfg, "list", "--filter", "completed"), "Write tests")
	assert.Contains(t, mustRun(t, cfg, "list", "--filter", "pending"), view.EmptyFilteredList)
	assert.Contains(t, mustRun(t, cfg, "stats"), "Completion rate    100%")
	assert.Contains(t, mustRun(t, cfg, "suggest"), view.NoPendingTitle)

	out = mustRun(t, cfg, "remove", id)
	assert.Contains(t, out, `Removed "Write tests"`)
	assert.Contains(t, mustRun(t, cfg, "list"), view.EmptyTaskList)
}

func TestCLI_AddRejectsBadFlags(t *testing.T) {
	cfg := writeConfig(t)

	_, err := runCLI(t, cfg, "", "add", "x", "--priority", "urgent")
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)

	_, err = runCLI(t, cfg, "", "add", "x", "--due", "tomorrow")
	assert.Error(t, err)

	_, err = runCLI(t, cfg, "", "list", "--filter", "someday")
	assert.Error(t, err)
}

func TestCLI_ToggleUnknownID(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "only task")

	_, err := runCLI(t, cfg, "", "toggle", "ffffffff")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestCLI_SeedAndClear(t *testing.T) {
	cfg := writeConfig(t)

	assert.Contains(t, mustRun(t, cfg, "seed"), "Added 5 sample tasks")
	_, err := runCLI(t, cfg, "", "seed")
	assert.ErrorContains(t, err, "empty list")

	out := mustRun(t, cfg)
	assert.Contains(t, out, "Team standup meeting")
	assert.Contains(t, out, "0/5 done")
	assert.Contains(t, out, "Next: Team standup meeting")

	out, err = runCLI(t, cfg, "n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete all tasks?")
	assert.NotContains(t, out, "All tasks deleted")
	assert.Contains(t, mustRun(t, cfg, "list"), "Review pull requests")

	out, err = runCLI(t, cfg, "y\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "All tasks deleted")
	assert.Contains(t, mustRun(t, cfg, "list"), view.EmptyTaskList)
}

func TestCLI_Calendar(t *testing.T) {
	cfg := writeConfig(t)
	out := mustRun(t, cfg, "calendar")
	for _, day := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		assert.Contains(t, out, day)
	}
}

func TestCLI_ThemeProfileAndReset(t *testing.T) {
	cfg := writeConfig(t)

	assert.Equal(t, "light\n", mustRun(t, cfg, "theme"))
	assert.Contains(t, mustRun(t, cfg, "theme", "Dark"), "Theme set to dark")
	assert.Equal(t, "dark\n", mustRun(t, cfg, "theme"))

	_, err := runCLI(t, cfg, "", "theme", "blue")
	assert.ErrorIs(t, err, domain.ErrInvalidTheme)

	out := mustRun(t, cfg, "profile", "--name", "Ada Lovelace", "--email", "ada@example.com")
	assert.Contains(t, out, "(AL)")
	assert.Contains(t, out, "ada@example.com")

	mustRun(t, cfg, "add", "keep me?")
	mustRun(t, cfg, "--yes", "reset")

	assert.Equal(t, "light\n", mustRun(t, cfg, "theme"))
	assert.Contains(t, mustRun(t, cfg, "profile"), "GoDaily User")
	assert.Contains(t, mustRun(t, cfg, "list"), view.EmptyTaskList)
}

func TestCLI_Report(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "seed")
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	assert.Contains(t, mustRun(t, cfg, "report", "--out", jsonPath), "Wrote json report")
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "Team standup meeting")

	csvPath := filepath.Join(dir, "export.txt")
	mustRun(t, cfg, "report", "--out", csvPath, "--format", "csv")
	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(string(data), "\n"), "header plus one row per task")

	pdfPath := filepath.Join(dir, "report.pdf")
	mustRun(t, cfg, "report", "--out", pdfPath)
	data, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestCLI_SQLiteStorage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[storage]\ndriver = \"sqlite\"\nsqlite_path = %q\n", filepath.Join(dir, "nested", "godaily.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	mustRun(t, path, "add", "Stored in sqlite")
	assert.Contains(t, mustRun(t, path, "list"), "Stored in sqlite")
}

func TestCLI_MissingExplicitConfig(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "nope.toml"), "", "list")
	assert.Error(t, err)
}

func newTestServer(t *testing.T) string {
	t.Helper()
	repo := memory.NewStore()
	authenticator := auth.NewAuthenticator(repo, auth.Config{})
	t.Cleanup(func() { _ = authenticator.Shutdown(context.Background()) })

	accounts := auth.NewAccounts(repo, repo, 0).WithBcryptCost(bcrypt.MinCost)
	h := handler.NewTaskHandler(todo.NewService(repo), accounts)

	srv := httptest.NewServer(httpserver.NewAPIServer(h, authenticator, httpserver.ServerConfig{}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCLI_RemoteBackend(t *testing.T) {
	url := newTestServer(t)
	cfg := writeConfig(t, fmt.Sprintf("[remote]\nurl = %q", url))
	remoteCfg := writeConfig(t, fmt.Sprintf("[remote]\nurl = %q", url))
	// Second config shares nothing with the first but the server.
	body, err := os.ReadFile(remoteCfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(remoteCfg, bytes.Replace(body, []byte(`backend = "local"`), []byte(`backend = "remote"`), 1), 0o600))

	_, err = runCLI(t, remoteCfg, "", "list")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Contains(t, mustRun(t, cfg, "register", "ada@example.com", "--password", "correct horse"), "Registered")
	_, err = runCLI(t, cfg, "", "register", "ada@example.com", "--password", "correct horse")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = runCLI(t, remoteCfg, "wrong password\n", "login", "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	out, err := runCLI(t, remoteCfg, "correct horse\n", "login", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ada@example.com")
	assert.Contains(t, mustRun(t, remoteCfg, "profile"), "ada@example.com")

	out = mustRun(t, remoteCfg, "add", "Remote task", "-p", "low")
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2)
	out = mustRun(t, remoteCfg, "list")
	assert.Contains(t, out, "Remote task")
	assert.Contains(t, out, m[1], "add prints the id the server assigned")
	assert.Contains(t, mustRun(t, remoteCfg, "toggle", m[1]), `"Remote task" is done`)
	assert.Contains(t, mustRun(t, remoteCfg, "list", "--filter", "completed"), "Remote task")
	assert.Contains(t, mustRun(t, cfg, "list"), view.EmptyTaskList, "local workspace is separate")

	assert.Contains(t, mustRun(t, remoteCfg, "--yes", "logout"), "Logged out")
	_, err = runCLI(t, remoteCfg, "", "list")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveTask(t *testing.T) {
	list := []domain.Task{
		{ID: "0190a1b2-0000-7000-8000-00000000aa11", Title: "first"},
		{ID: "0190a1b2-0000-7000-8000-00000000bb11", Title: "second"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: list[0].ID, want: "first"},
		{ref: "bb11", want: "second"},
		{ref: "  000000aa11 ", want: "first"},
		{ref: "11", wantErr: errAmbiguousID},
		{ref: "cc11", wantErr: domain.ErrTaskNotFound},
		{ref: " ", wantErr: domain.ErrInvalidID},
	}

	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			got, err := resolveTask(list, tc.ref)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Title)
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "00aa11ff", shortID("0190a1b2-0000-7000-8000-000000aa11ff"))
	assert.Equal(t, "task-1", shortID("task-1"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "░░░░", bar(0, 4))
	assert.Equal(t, "██░░", bar(50, 4))
	assert.Equal(t, "████", bar(140, 4))
	assert.Equal(t, "░░░░", bar(-5, 4))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Team st…", truncate("Team standup", 8))
}
