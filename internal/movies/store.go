package movies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cinelog/internal/kvstore"
	"cinelog/internal/logging"
)

// CollectionKey is the key holding the whole collection.
const CollectionKey = "user_movies_v1"

// Store reads and writes the collection as one JSON array.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger
}

// NewStore wraps kv. A nil logger discards output.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logging.NewComponentLogger(logger, "movies")}
}

// All returns every record, sanitized and unique by id. A missing or
// malformed value reads as an empty collection.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	data, found, err := s.kv.Get(ctx, CollectionKey)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw []any
	if err := decoder.Decode(&raw); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "collection value malformed", "collection_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect or reset the user_movies_v1 value"),
			logging.String(logging.FieldImpact, "collection treated as empty until the next write"))
		return []Record{}, nil
	}

	list := make([]Record, 0, len(raw))
	dropped := 0
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		list = append(list, sanitizeObject(obj))
	}
	if dropped > 0 {
		s.logger.Debug("dropped non-object collection entries", logging.Int("dropped", dropped))
	}
	return dedupe(list), nil
}

// SetAll sanitizes list, keeps one record per id and replaces the stored
// collection in a single write.
func (s *Store) SetAll(ctx context.Context, list []Record) error {
	clean := make([]Record, 0, len(list))
	for _, r := range list {
		clean = append(clean, Sanitize(r))
	}
	data, err := json.Marshal(dedupe(clean))
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := s.kv.Set(ctx, CollectionKey, data); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

// Upsert replaces the record with the same id in place, or appends it.
func (s *Store) Upsert(ctx context.Context, r Record) (Record, error) {
	list, err := s.All(ctx)
	if err != nil {
		return Record{}, err
	}
	r = Sanitize(r)
	if i := Index(list, r.MovieID); i >= 0 {
		list[i] = r
	} else {
		list = append(list, r)
	}
	if err := s.SetAll(ctx, list); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Remove deletes id from the collection. Removing an absent id still
// rewrites the collection unchanged.
func (s *Store) Remove(ctx context.Context, id int64) error {
	list, err := s.All(ctx)
	if err != nil {
		return err
	}
	next := list[:0]
	for _, r := range list {
		if r.MovieID != id {
			next = append(next, r)
		}
	}
	return s.SetAll(ctx, next)
}

// Clear drops the persisted collection.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, CollectionKey); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	return nil
}

// Get returns the record for id.
func (s *Store) Get(ctx context.Context, id int64) (Record, bool, error) {
	list, err := s.All(ctx)
	if err != nil {
		return Record{}, false, err
	}
	r, ok := Find(list, id)
	return r, ok, nil
}

// Exists reports whether id is in the collection.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	list, err := s.All(ctx)
	if err != nil {
		return false, err
	}
	return Has(list, id), nil
}

// ByStatus lists records with status, newest first.
func (s *Store) ByStatus(ctx context.Context, status Status) ([]Record, error) {
	list, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByStatus(list, status), nil
}

// IDSet returns the ids with any of statuses, or every id when none given.
func (s *Store) IDSet(ctx context.Context, statuses ...Status) (map[int64]struct{}, error) {
	list, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return IDsByStatus(list, statuses...), nil
}

// WatchedCount counts WATCHED records.
func (s *Store) WatchedCount(ctx context.Context) (int, error) {
	list, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	return CountByStatus(list)[StatusWatched], nil
}

// dedupe keeps the first position of each id and the last value written to it.
func dedupe(list []Record) []Record {
	positions := make(map[int64]int, len(list))
	out := make([]Record, 0, len(list))
	for _, r := range list {
		if i, ok := positions[r.MovieID]; ok {
			out[i] = r
			continue
		}
		positions[r.MovieID] = len(out)
		out = append(out, r)
	}
	return out
}
