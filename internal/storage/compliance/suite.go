package compliance

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godaily/godaily/internal/storage"
)

// RunStorageComplianceTest runs a standard set of tests against a KeyValue implementation.
// setup is a function that returns a fresh (clean) store for the test and a cleanup
// function to release its resources.
func RunStorageComplianceTest(t *testing.T, setup func() (storage.KeyValue, func())) {
	t.Run("SetAndGet", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := uniqueKey("godaily_tasks")
		value := `[{"id":"1","title":"Test task","completed":false}]`

		require.NoError(t, store.Set(ctx, key, value))

		got, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, value, got)
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		got, ok, err := store.Get(context.Background(), uniqueKey("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("OverwriteValue", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := uniqueKey("godaily_theme")
		require.NoError(t, store.Set(ctx, key, "light"))
		require.NoError(t, store.Set(ctx, key, "dark"))

		got, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", got)
	})

	t.Run("EmptyValueIsStored", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := uniqueKey("godaily_profile_email")
		require.NoError(t, store.Set(ctx, key, ""))

		got, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("RemoveAndKeys", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		a, b := uniqueKey("a"), uniqueKey("b")
		require.NoError(t, store.Set(ctx, a, "1"))
		require.NoError(t, store.Set(ctx, b, "2"))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, a)
		assert.Contains(t, keys, b)
		assert.IsIncreasing(t, keys)

		require.NoError(t, store.Remove(ctx, a))
		require.NoError(t, store.Remove(ctx, a), "removing twice is not an error")

		_, ok, err := store.Get(ctx, a)
		require.NoError(t, err)
		assert.False(t, ok)

		keys, err = store.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, a)
		assert.Contains(t, keys, b)
	})

	t.Run("RejectsInvalidKeys", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		for _, key := range []string{"", "../escape", "UPPER", strings.Repeat("k", 129)} {
			assert.ErrorIs(t, store.Set(ctx, key, "x"), storage.ErrInvalidKey, key)
			_, _, err := store.Get(ctx, key)
			assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
		}
	})
}

// uniqueKey suffixes name so suites sharing a bucket do not collide.
func uniqueKey(name string) string {
	return name + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
