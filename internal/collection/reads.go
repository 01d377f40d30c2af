package collection

import (
	"context"
	"fmt"

	"cinelog/internal/logging"
	"cinelog/internal/movies"
)

// Get returns the record for id.
func (e *Engine) Get(ctx context.Context, id int64) (movies.Record, bool, error) {
	return e.store.Get(ctx, id)
}

// List returns records with status, newest first. An empty status lists the
// whole collection in stored order.
func (e *Engine) List(ctx context.Context, status movies.Status) ([]movies.Record, error) {
	if status == "" {
		return e.store.All(ctx)
	}
	return e.store.ByStatus(ctx, status)
}

// Summary counts records and reads points and badges.
func (e *Engine) Summary(ctx context.Context) (Summary, error) {
	list, err := e.store.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	counts := movies.CountByStatus(list)
	points, err := e.ledger.Total(ctx)
	if err != nil {
		return Summary{}, err
	}
	held, err := e.unlocker.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Watchlist: counts[movies.StatusWatchlist],
		Watched:   counts[movies.StatusWatched],
		Points:    points,
		Badges:    held,
	}, nil
}

// Replace overwrites the whole collection, for imports. No rewards are
// granted for imported WATCHED records.
func (e *Engine) Replace(ctx context.Context, list []movies.Record) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SetAll(ctx, list); err != nil {
		return 0, err
	}
	stored, err := e.store.All(ctx)
	if err != nil {
		return 0, err
	}
	e.logger.Info("collection replaced", logging.Int("records", len(stored)))
	return len(stored), nil
}

// Reset clears the collection, reward total and badge unlocks.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return err
	}
	if err := e.ledger.Reset(ctx); err != nil {
		return err
	}
	if err := e.unlocker.Clear(ctx); err != nil {
		return fmt.Errorf("reset badges: %w", err)
	}
	e.logger.Info("collection reset")
	return nil
}

// Complete fills a MovieInput that lacks a title, first from the stored
// record and then from the metadata source.
func (e *Engine) Complete(ctx context.Context, in MovieInput) (MovieInput, error) {
	if in.Title != "" {
		return in, nil
	}
	if err := validateID(in.MovieID, "complete"); err != nil {
		return MovieInput{}, err
	}
	rec, ok, err := e.store.Get(ctx, in.MovieID)
	if err != nil {
		return MovieInput{}, err
	}
	if ok {
		return MovieInput{
			MovieID:     rec.MovieID,
			Title:       rec.Title,
			PosterPath:  rec.PosterPath,
			ReleaseDate: rec.ReleaseDate,
			Genres:      rec.Genres,
		}, nil
	}
	return e.Resolve(ctx, in.MovieID)
}
