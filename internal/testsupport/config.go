package testsupport

import (
	"path/filepath"
	"testing"

	"cinelog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// TMDB credentials are left empty unless an option sets them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.SyncWrites = false
	cfgVal.TMDB.Token = ""
	cfgVal.TMDB.APIKey = ""
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDBToken sets a bearer token and points the client at baseURL.
func WithTMDBToken(token, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.Token = token
		if baseURL != "" {
			b.cfg.TMDB.BaseURL = baseURL
		}
	}
}

// WithBackend selects the store backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithLanguage overrides the TMDB language tag.
func WithLanguage(tag string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.Language = tag
	}
}
