package testsupport

import (
	"context"
	"testing"

	"cinelog/internal/kvstore"
)

// NewKV opens an in-memory badger store and registers cleanup.
func NewKV(t testing.TB) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(context.Background(), kvstore.Options{
		Backend:  kvstore.BackendBadger,
		InMemory: true,
	})
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SetRaw writes value under key, bypassing every typed layer.
func SetRaw(t testing.TB, store kvstore.Store, key, value string) {
	t.Helper()

	if err := store.Set(context.Background(), key, []byte(value)); err != nil {
		t.Fatalf("store.Set(%s): %v", key, err)
	}
}

// GetRaw reads the raw value for key, failing the test when absent.
func GetRaw(t testing.TB, store kvstore.Store, key string) string {
	t.Helper()

	value, found, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store.Get(%s): %v", key, err)
	}
	if !found {
		t.Fatalf("store.Get(%s): key not found", key)
	}
	return string(value)
}

// FailingSets wraps a store so Set on any of keys returns Err. Reads and
// writes to other keys reach the wrapped store.
type FailingSets struct {
	kvstore.Store
	Keys []string
	Err  error
}

// Set implements kvstore.Store.
func (f *FailingSets) Set(ctx context.Context, key string, value []byte) error {
	for _, k := range f.Keys {
		if k == key {
			return f.Err
		}
	}
	return f.Store.Set(ctx, key, value)
}
