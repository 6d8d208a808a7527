package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/config"
	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/infrastructure/persistence/local"
	"github.com/godaily/godaily/internal/infrastructure/remote"
	"github.com/godaily/godaily/internal/settings"
	"github.com/godaily/godaily/internal/storage"
	"github.com/godaily/godaily/internal/storage/fs"
	"github.com/godaily/godaily/internal/storage/gcs"
	"github.com/godaily/godaily/internal/storage/sqlite"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      *config.ClientConfig
	kv       storage.KeyValue
	settings *settings.Settings
	store    *tasks.Store

	// remote is set when the remote backend is selected, or lazily for login and register.
	remote *remote.Adapter

	in     *bufio.Reader
	out    io.Writer
	yes    bool
	closer func() error
}

func openApp(ctx context.Context, cfg *config.ClientConfig, in io.Reader, out io.Writer) (*app, error) {
	kv, closer, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		kv:       kv,
		settings: settings.New(kv),
		in:       bufio.NewReader(in),
		out:      out,
		closer:   closer,
	}

	var backend tasks.Backend
	switch cfg.Backend {
	case config.BackendRemote:
		if backend, err = a.remoteAdapter(); err != nil {
			closer()
			return nil, err
		}
	default:
		if backend, err = local.NewAdapter(kv); err != nil {
			closer()
			return nil, fmt.Errorf("failed to create local backend: %w", err)
		}
	}
	a.store = tasks.NewStore(backend)

	slog.DebugContext(ctx, "client ready", "backend", cfg.Backend, "storage", cfg.Storage.Driver)
	return a, nil
}

func openStorage(ctx context.Context, cfg config.DeviceStorageConfig) (storage.KeyValue, func() error, error) {
	switch cfg.Driver {
	case config.StorageSQLite:
		path, err := cfg.SQLiteFile()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := sqlite.NewStore(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return store, store.Close, nil

	case config.StorageGCS:
		store, err := gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gcs storage: %w", err)
		}
		return store, store.Close, nil

	default:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, nil, err
		}
		store, err := fs.NewStore(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return store, func() error { return nil }, nil
	}
}

func (a *app) remoteAdapter() (*remote.Adapter, error) {
	if a.remote != nil {
		return a.remote, nil
	}
	adapter, err := remote.NewAdapter(a.cfg.Remote.URL, a.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote backend: %w", err)
	}
	a.remote = adapter
	return adapter, nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// load fetches the collection, turning an ended session into a hint.
func (a *app) load(ctx context.Context) error {
	return a.explain(a.store.Load(ctx))
}

func (a *app) explain(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return fmt.Errorf("not signed in to %s, run \"godaily login <email>\": %w", a.cfg.Remote.URL, err)
	}
	return err
}

// confirm asks prompt on the terminal. --yes answers every prompt.
func (a *app) confirm(prompt string) bool {
	if a.yes {
		return true
	}
	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	answer, err := a.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(a.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine prints label and returns the trimmed reply.
func (a *app) readLine(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
