package main

import (
	"context"
	"io"
	"log/slog"
)

type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup returns the shutdown hook: drain pending last-used updates first,
// then close the store they are written to.
func newCleanup(ctx context.Context, authenticator shutdowner, store io.Closer) func() {
	return func() {
		if authenticator != nil {
			if err := authenticator.Shutdown(ctx); err != nil {
				slog.WarnContext(ctx, "authenticator shutdown incomplete", "error", err)
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close store", "error", err)
			}
		}
	}
}
