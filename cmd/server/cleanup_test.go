package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanup_ShutsDownAuthenticatorBeforeClosingStore(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey("test"), "marker")
	var callOrder []string

	authenticator := &fakeAuthenticator{calls: &callOrder}
	store := &fakeStore{calls: &callOrder}

	newCleanup(ctx, authenticator, store)()

	require.Equal(t, []string{"authShutdown", "storeClose"}, callOrder)
	require.Equal(t, "marker", authenticator.receivedCtx.Value(ctxKey("test")))
}

func TestNewCleanup_ToleratesNil(t *testing.T) {
	assert.NotPanics(t, newCleanup(context.Background(), nil, nil))
}

func TestMaskPassword(t *testing.T) {
	tests := map[string]string{
		"postgres://godaily:secret@db:5432/godaily": "postgres://godaily:xxxxxx@db:5432/godaily",
		"postgres://godaily@db/godaily":             "postgres://godaily@db/godaily",
		"postgres://db/godaily?sslmode=disable":     "postgres://db/godaily?sslmode=disable",
		"://bad":                                    "[REDACTED]",
	}
	for in, want := range tests {
		assert.Equal(t, want, maskPassword(in), in)
	}
}

type ctxKey string

type fakeAuthenticator struct {
	calls       *[]string
	receivedCtx context.Context
}

func (f *fakeAuthenticator) Shutdown(ctx context.Context) error {
	f.receivedCtx = ctx
	*f.calls = append(*f.calls, "authShutdown")
	return nil
}

type fakeStore struct {
	calls *[]string
}

func (s *fakeStore) Close() error {
	*s.calls = append(*s.calls, "storeClose")
	return nil
}
