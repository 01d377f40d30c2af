package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"cinelog/internal/fileutil"
	"cinelog/internal/logging"
)

// File is a Store holding every key in one JSON document. Values are kept
// base64-encoded so arbitrary bytes round-trip. Every mutation rewrites the
// document through a temp file and rename.
type File struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

// OpenFile loads the document at path, starting empty when it does not exist.
// An unreadable document is an error rather than silently discarded.
func OpenFile(path string, logger *slog.Logger) (*File, error) {
	if path == "" {
		return nil, errors.New("kvstore: file path is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	f := &File{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "kvstore.file"),
		entries: make(map[string][]byte),
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Store.
func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, false, ErrClosed
	}
	value, ok := f.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, value...), true, nil
}

// Set implements Store.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	prev, had := f.entries[key]
	f.entries[key] = append([]byte{}, value...)
	if err := f.save(); err != nil {
		if had {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return fmt.Errorf("persist %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	prev, had := f.entries[key]
	if !had {
		return nil
	}
	delete(f.entries, key)
	if err := f.save(); err != nil {
		f.entries[key] = prev
		return fmt.Errorf("persist delete %q: %w", key, err)
	}
	return nil
}

// Close marks the store closed. The document is already on disk.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var encoded map[string]string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("parse store file %s: %w", f.path, err)
	}
	for key, value := range encoded {
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}
		f.entries[key] = raw
	}

	f.logger.Debug("loaded store file",
		logging.Int("entry_count", len(f.entries)),
		logging.String("path", f.path))
	return nil
}

func (f *File) save() error {
	encoded := make(map[string]string, len(f.entries))
	for key, value := range f.entries {
		encoded[key] = base64.StdEncoding.EncodeToString(value)
	}
	// encoding/json sorts map keys, so output is deterministic.
	data, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	return fileutil.WriteAtomic(f.path, data, 0o644)
}
