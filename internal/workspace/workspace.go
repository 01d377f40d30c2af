// Package workspace opens a locked data directory and wires the stores,
// reward services and transition engine on top of it.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"

	"cinelog/internal/badges"
	"cinelog/internal/collection"
	"cinelog/internal/config"
	"cinelog/internal/genres"
	"cinelog/internal/kvstore"
	"cinelog/internal/logging"
	"cinelog/internal/movies"
	"cinelog/internal/rewards"
	"cinelog/internal/tmdb"
)

// ErrLocked is returned when another process holds the data directory.
var ErrLocked = errors.New("another cinelog process is using the data directory")

// Workspace holds every collaborator for one opened data directory.
type Workspace struct {
	Config *config.Config
	KV     kvstore.Store
	Movies *movies.Store
	Ledger *rewards.Ledger
	Badges *badges.Unlocker
	Genres *genres.Cache
	// TMDB is nil when no credentials are configured.
	TMDB   *tmdb.Client
	Engine *collection.Engine

	logger    *slog.Logger
	lock      *flock.Flock
	closeOnce sync.Once
	closeErr  error
}

// Open takes the data directory lock and opens the configured backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if cfg == nil {
		return nil, errors.New("workspace requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, cfg.LockPath())
	}

	kv, err := kvstore.Open(ctx, kvstore.Options{
		Backend:    cfg.Store.Backend,
		Path:       cfg.StorePath(),
		SyncWrites: cfg.Store.SyncWrites,
		Logger:     logger,
	})
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	ws := &Workspace{
		Config: cfg,
		KV:     kv,
		Movies: movies.NewStore(kv, logger),
		Ledger: rewards.NewLedger(kv, logger),
		Badges: badges.NewUnlocker(kv, logger),
		logger: logging.NewComponentLogger(logger, "workspace"),
		lock:   lock,
	}

	engineOpts := []collection.Option{}
	var fetcher genres.Fetcher
	if cfg.HasTMDBCredentials() {
		client, err := tmdb.New(tmdb.Options{
			Token:    cfg.TMDB.Token,
			APIKey:   cfg.TMDB.APIKey,
			BaseURL:  cfg.TMDB.BaseURL,
			Language: cfg.TMDB.Language,
		})
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		ws.TMDB = client
		fetcher = client
		engineOpts = append(engineOpts, collection.WithMetadataSource(client))
	}
	ws.Genres = genres.NewCache(kv, fetcher, cfg.TMDB.Language, logger)
	ws.Engine = collection.NewEngine(ws.Movies, ws.Ledger, ws.Badges, logger, engineOpts...)

	ws.logger.Debug("workspace opened",
		logging.String("backend", cfg.Store.Backend),
		logging.String("path", cfg.StorePath()),
		logging.Bool("tmdb", ws.TMDB != nil))
	return ws, nil
}

// Close closes the store and releases the lock. It is safe to call twice.
func (w *Workspace) Close() error {
	w.closeOnce.Do(func() {
		var errs []error
		if w.KV != nil {
			if err := w.KV.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
		}
		if w.lock != nil {
			if err := w.lock.Unlock(); err != nil {
				w.logger.Warn("failed to release workspace lock", logging.Error(err))
				errs = append(errs, fmt.Errorf("release lock: %w", err))
			}
		}
		w.closeErr = errors.Join(errs...)
	})
	return w.closeErr
}
