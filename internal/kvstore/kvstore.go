package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a durable key-value store with whole-value semantics.
type Store interface {
	// Get returns the value for key. found is false when the key was never
	// set or has been deleted.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set atomically replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is a directory for badger and a file path for sqlite and file.
	// Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

// Open constructs the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendBadger, "":
		cfg := DefaultBadgerConfig()
		cfg.Path = opts.Path
		cfg.InMemory = opts.InMemory
		cfg.SyncWrites = opts.SyncWrites && !opts.InMemory
		cfg.Logger = opts.Logger
		if opts.InMemory {
			cfg.GCInterval = 0
		}
		return OpenBadger(cfg)
	case BackendSQLite:
		path := opts.Path
		if opts.InMemory {
			path = ":memory:"
		}
		return OpenSQLite(ctx, path)
	case BackendFile:
		if opts.InMemory {
			return nil, errors.New("kvstore: file backend has no in-memory mode")
		}
		return OpenFile(opts.Path, opts.Logger)
	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", opts.Backend)
	}
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("kvstore: key must not be empty")
	}
	return nil
}
