// Package genres caches the TMDB genre id → name map in the local store and
// resolves genre names for display.
package genres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/text/language"

	"cinelog/internal/kvstore"
	"cinelog/internal/logging"
	"cinelog/internal/tmdb"
)

// Map is genre id → localized name.
type Map map[int64]string

// Fetcher supplies the remote genre list.
type Fetcher interface {
	GenreList(ctx context.Context) ([]tmdb.Genre, error)
}

// Cache persists one genre map per base language.
type Cache struct {
	kv       kvstore.Store
	fetcher  Fetcher
	language string
	logger   *slog.Logger

	mu sync.Mutex
}

// NewCache builds a cache for languageTag. fetcher may be nil, in which case
// only persisted maps are served.
func NewCache(kv kvstore.Store, fetcher Fetcher, languageTag string, logger *slog.Logger) *Cache {
	return &Cache{
		kv:       kv,
		fetcher:  fetcher,
		language: languageTag,
		logger:   logging.NewComponentLogger(logger, "genres"),
	}
}

// Key returns the store key for languageTag, e.g. tmdb_genre_map_ko_v1.
func Key(languageTag string) string {
	return "tmdb_genre_map_" + baseLanguage(languageTag) + "_v1"
}

// FallbackLabel is the bucket name used for unknown genres.
func FallbackLabel(languageTag string) string {
	if baseLanguage(languageTag) == "ko" {
		return "기타"
	}
	return "Other"
}

// NameByID resolves id, returning fallback when unknown or blank.
func NameByID(m Map, id int64, fallback string) string {
	if name := m[id]; name != "" {
		return name
	}
	return fallback
}

// Fallback is the fallback label for the cache language.
func (c *Cache) Fallback() string {
	return FallbackLabel(c.language)
}

// Map returns the persisted map when it is non-empty. Otherwise it fetches,
// persists and returns the remote list.
func (c *Cache) Map(ctx context.Context) (Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return cached, nil
	}
	return c.fetch(ctx)
}

// Refresh drops the persisted map and fetches it again.
func (c *Cache) Refresh(ctx context.Context) (Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete(ctx, Key(c.language)); err != nil {
		return nil, fmt.Errorf("drop genre map: %w", err)
	}
	return c.fetch(ctx)
}

// Resolver returns a lookup bound to m and the cache fallback label.
func (c *Cache) Resolver(m Map) func(int64) string {
	fallback := c.Fallback()
	return func(id int64) string {
		return NameByID(m, id, fallback)
	}
}

func (c *Cache) load(ctx context.Context) (Map, error) {
	key := Key(c.language)
	data, found, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read genre map: %w", err)
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logging.WarnWithContext(c.logger, "genre map malformed", "genre_map_decode_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "genre map will be fetched again"))
		return nil, nil
	}
	out := make(Map, len(raw))
	for k, name := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = name
	}
	return out, nil
}

func (c *Cache) fetch(ctx context.Context) (Map, error) {
	if c.fetcher == nil {
		return Map{}, nil
	}
	list, err := c.fetcher.GenreList(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Map, len(list))
	raw := make(map[string]string, len(list))
	for _, g := range list {
		out[g.ID] = g.Name
		raw[strconv.FormatInt(g.ID, 10)] = g.Name
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode genre map: %w", err)
	}
	if err := c.kv.Set(ctx, Key(c.language), data); err != nil {
		return nil, fmt.Errorf("write genre map: %w", err)
	}
	c.logger.Info("genre map fetched",
		logging.String("language", c.language),
		logging.Int("genres", len(out)))
	return out, nil
}

func baseLanguage(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return "ko"
	}
	base, _ := parsed.Base()
	return base.String()
}
