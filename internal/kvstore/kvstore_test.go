package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinelog/internal/kvstore"
)

type backendCase struct {
	name string
	open func(t *testing.T, dir string) kvstore.Store
}

func backends() []backendCase {
	return []backendCase{
		{
			name: kvstore.BackendBadger,
			open: func(t *testing.T, dir string) kvstore.Store {
				store, err := kvstore.Open(context.Background(), kvstore.Options{
					Backend: kvstore.BackendBadger,
					Path:    filepath.Join(dir, "badger"),
				})
				require.NoError(t, err)
				return store
			},
		},
		{
			name: kvstore.BackendSQLite,
			open: func(t *testing.T, dir string) kvstore.Store {
				store, err := kvstore.Open(context.Background(), kvstore.Options{
					Backend: kvstore.BackendSQLite,
					Path:    filepath.Join(dir, "cinelog.db"),
				})
				require.NoError(t, err)
				return store
			},
		},
		{
			name: kvstore.BackendFile,
			open: func(t *testing.T, dir string) kvstore.Store {
				store, err := kvstore.Open(context.Background(), kvstore.Options{
					Backend: kvstore.BackendFile,
					Path:    filepath.Join(dir, "cinelog.json"),
				})
				require.NoError(t, err)
				return store
			},
		},
	}
}

func TestBackendsShareContract(t *testing.T) {
	ctx := context.Background()
	for _, tc := range backends() {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.open(t, t.TempDir())
			defer store.Close()

			_, found, err := store.Get(ctx, "user_movies_v1")
			require.NoError(t, err)
			assert.False(t, found, "fresh store should not contain key")

			require.NoError(t, store.Set(ctx, "user_movies_v1", []byte(`[{"movieId":1}]`)))
			value, found, err := store.Get(ctx, "user_movies_v1")
			require.NoError(t, err)
			require.True(t, found)
			assert.JSONEq(t, `[{"movieId":1}]`, string(value))

			require.NoError(t, store.Set(ctx, "user_movies_v1", []byte(`[]`)))
			value, _, err = store.Get(ctx, "user_movies_v1")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(value), "set replaces the whole value")

			require.NoError(t, store.Set(ctx, "reward_points_v1", []byte("50")))
			require.NoError(t, store.Delete(ctx, "user_movies_v1"))
			_, found, err = store.Get(ctx, "user_movies_v1")
			require.NoError(t, err)
			assert.False(t, found)

			value, found, err = store.Get(ctx, "reward_points_v1")
			require.NoError(t, err)
			require.True(t, found, "keys are independent")
			assert.Equal(t, "50", string(value))

			require.NoError(t, store.Delete(ctx, "never_set"), "deleting a missing key is not an error")
		})
	}
}

func TestBackendsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	for _, tc := range backends() {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			store := tc.open(t, dir)
			require.NoError(t, store.Set(ctx, "badges_v1", []byte(`{"watched_10":{"unlockedAt":"2025-01-02"}}`)))
			require.NoError(t, store.Close())

			reopened := tc.open(t, dir)
			defer reopened.Close()
			value, found, err := reopened.Get(ctx, "badges_v1")
			require.NoError(t, err)
			require.True(t, found)
			assert.JSONEq(t, `{"watched_10":{"unlockedAt":"2025-01-02"}}`, string(value))
		})
	}
}

func TestBackendsRejectUseAfterClose(t *testing.T) {
	ctx := context.Background()
	for _, tc := range backends() {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.open(t, t.TempDir())
			require.NoError(t, store.Close())

			_, _, err := store.Get(ctx, "k")
			assert.ErrorIs(t, err, kvstore.ErrClosed)
			assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), kvstore.ErrClosed)
		})
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	ctx := context.Background()
	for _, tc := range backends() {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.open(t, t.TempDir())
			defer store.Close()
			assert.Error(t, store.Set(ctx, "", []byte("v")))
		})
	}
}

func TestCancelledContextDoesNotWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, tc := range backends() {
		t.Run(tc.name, func(t *testing.T) {
			store := tc.open(t, t.TempDir())
			defer store.Close()
			assert.Error(t, store.Set(ctx, "k", []byte("v")))

			_, found, err := store.Get(context.Background(), "k")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestInMemoryBackends(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{kvstore.BackendBadger, kvstore.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			store, err := kvstore.Open(ctx, kvstore.Options{Backend: backend, InMemory: true})
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			value, found, err := store.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte("v"), value)
		})
	}

	_, err := kvstore.Open(ctx, kvstore.Options{Backend: kvstore.BackendFile, InMemory: true})
	assert.Error(t, err)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := kvstore.Open(context.Background(), kvstore.Options{Backend: "redis", Path: t.TempDir()})
	assert.Error(t, err)
}

func TestFileBackendRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinelog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := kvstore.OpenFile(path, nil)
	assert.Error(t, err)
}

func TestFileBackendLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cinelog.json")
	store, err := kvstore.OpenFile(path, nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", []byte{0x00, 0xff, 0x10}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be renamed away")
	assert.Equal(t, "cinelog.json", entries[0].Name())

	value, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, value)
}

func TestSQLiteSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cinelog.db")
	store, err := kvstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, kvstore.SetSchemaVersionForTest(ctx, path, 99))

	_, err = kvstore.OpenSQLite(ctx, path)
	assert.ErrorIs(t, err, kvstore.ErrSchemaMismatch)
}
