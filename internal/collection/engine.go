package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cinelog/internal/badges"
	"cinelog/internal/logging"
	"cinelog/internal/movies"
	"cinelog/internal/rewards"
	"cinelog/internal/services"
	"cinelog/internal/tmdb"
)

// MetadataSource enriches a bare movie id.
type MetadataSource interface {
	MovieDetails(ctx context.Context, id int64) (tmdb.Movie, error)
}

// Engine serializes every collection mutation.
type Engine struct {
	mu       sync.Mutex
	store    *movies.Store
	ledger   *rewards.Ledger
	unlocker *badges.Unlocker
	metadata MetadataSource
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source for addedAt and watchedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMetadataSource enables Resolve.
func WithMetadataSource(source MetadataSource) Option {
	return func(e *Engine) {
		e.metadata = source
	}
}

// NewEngine wires the engine over its stores.
func NewEngine(store *movies.Store, ledger *rewards.Ledger, unlocker *badges.Unlocker, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		ledger:   ledger,
		unlocker: unlocker,
		logger:   logging.NewComponentLogger(logger, "collection"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddToWatchlist puts the movie on the watchlist with a fresh addedAt,
// resetting any review data.
func (e *Engine) AddToWatchlist(ctx context.Context, in MovieInput) (Result, error) {
	if err := validateID(in.MovieID, "add_to_watchlist"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "add_to_watchlist", in.MovieID)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	prior := statusOf(list, in.MovieID)
	list, rec := putRecord(list, watchlistRecord(in, e.timestamp()))
	return e.commit(ctx, list, prior, &rec)
}

// MarkWatched moves the movie to WATCHED, keeping addedAt and review data
// from an existing record.
func (e *Engine) MarkWatched(ctx context.Context, in MovieInput) (Result, error) {
	if err := validateID(in.MovieID, "mark_watched"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "mark_watched", in.MovieID)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	prior := statusOf(list, in.MovieID)
	existing, ok := movies.Find(list, in.MovieID)
	list, rec := putRecord(list, watchedRecord(in, existing, ok, e.timestamp()))
	return e.commit(ctx, list, prior, &rec)
}

// MoveToWatched flips an existing record to WATCHED without touching its
// metadata. It is a no-op for an absent id.
func (e *Engine) MoveToWatched(ctx context.Context, id int64) (Result, error) {
	if err := validateID(id, "move_to_watched"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "move_to_watched", id)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	idx := movies.Index(list, id)
	if idx < 0 {
		e.logger.Debug("move skipped, movie not in collection", logging.Int64(logging.FieldMovieID, id))
		return Result{}, nil
	}
	prior := list[idx].Status
	rec := list[idx]
	rec.Status = movies.StatusWatched
	rec.WatchedAt = movies.StringPtr(e.timestamp())
	rec = movies.Sanitize(rec)
	list[idx] = rec
	return e.commit(ctx, list, prior, &rec)
}

// SaveReview records rating, review and tags. A missing or watchlisted movie
// is marked watched first; a watchlisted one moves to the end of the
// collection with its addedAt preserved.
func (e *Engine) SaveReview(ctx context.Context, in MovieInput, review ReviewInput) (Result, error) {
	if err := validateID(in.MovieID, "save_review"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "save_review", in.MovieID)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	prior := statusOf(list, in.MovieID)
	existing, ok := movies.Find(list, in.MovieID)

	var rec movies.Record
	switch prior {
	case movies.StatusWatched:
		rec = overlayReview(existing, review)
		list, rec = putRecord(list, rec)
	case movies.StatusWatchlist:
		list = without(list, in.MovieID)
		rec = overlayReview(watchedRecord(in, existing, ok, e.timestamp()), review)
		list, rec = putRecord(list, rec)
	default:
		rec = overlayReview(watchedRecord(in, movies.Record{}, false, e.timestamp()), review)
		list, rec = putRecord(list, rec)
	}
	return e.commit(ctx, list, prior, &rec)
}

// ToggleWatchlist removes a watchlisted movie, otherwise adds it to the
// watchlist.
func (e *Engine) ToggleWatchlist(ctx context.Context, in MovieInput) (ToggleResult, error) {
	if err := validateID(in.MovieID, "toggle_watchlist"); err != nil {
		return ToggleResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "toggle_watchlist", in.MovieID)
	list, err := e.store.All(ctx)
	if err != nil {
		return ToggleResult{}, err
	}
	prior := statusOf(list, in.MovieID)

	if prior == movies.StatusWatchlist {
		res, err := e.commit(ctx, without(list, in.MovieID), prior, nil)
		return ToggleResult{Action: ActionRemovedFromWatchlist, Result: res}, err
	}

	action := ActionAddedToWatchlist
	if prior == movies.StatusWatched {
		action = ActionMovedToWatchlist
	}
	list, rec := putRecord(list, watchlistRecord(in, e.timestamp()))
	res, err := e.commit(ctx, list, prior, &rec)
	return ToggleResult{Action: action, Result: res}, err
}

// ToggleWatched removes a watched movie, otherwise marks it watched.
func (e *Engine) ToggleWatched(ctx context.Context, in MovieInput) (ToggleResult, error) {
	if err := validateID(in.MovieID, "toggle_watched"); err != nil {
		return ToggleResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "toggle_watched", in.MovieID)
	list, err := e.store.All(ctx)
	if err != nil {
		return ToggleResult{}, err
	}
	prior := statusOf(list, in.MovieID)

	if prior == movies.StatusWatched {
		res, err := e.commit(ctx, without(list, in.MovieID), prior, nil)
		return ToggleResult{Action: ActionRemovedFromWatched, Result: res}, err
	}

	action := ActionAddedToWatched
	if prior == movies.StatusWatchlist {
		action = ActionMovedToWatched
	}
	existing, ok := movies.Find(list, in.MovieID)
	list, rec := putRecord(list, watchedRecord(in, existing, ok, e.timestamp()))
	res, err := e.commit(ctx, list, prior, &rec)
	return ToggleResult{Action: action, Result: res}, err
}

// Remove deletes the movie. Removing an absent id is a no-op.
func (e *Engine) Remove(ctx context.Context, id int64) (Result, error) {
	if err := validateID(id, "remove"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "remove", id)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	prior := statusOf(list, id)
	if prior == "" {
		return Result{}, nil
	}
	return e.commit(ctx, without(list, id), prior, nil)
}

// UpdateMemo replaces the review text only. It is a no-op for an absent id.
func (e *Engine) UpdateMemo(ctx context.Context, id int64, memo string) (Result, error) {
	if err := validateID(id, "update_memo"); err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = opContext(ctx, "update_memo", id)
	list, err := e.store.All(ctx)
	if err != nil {
		return Result{}, err
	}
	idx := movies.Index(list, id)
	if idx < 0 {
		e.logger.Debug("memo skipped, movie not in collection", logging.Int64(logging.FieldMovieID, id))
		return Result{}, nil
	}
	rec := list[idx]
	rec.Review = memo
	list[idx] = rec
	return e.commit(ctx, list, rec.Status, &rec)
}

// Resolve builds a MovieInput from the metadata source. A fetch failure is
// returned as-is for configuration problems and as ErrExternal otherwise.
func (e *Engine) Resolve(ctx context.Context, id int64) (MovieInput, error) {
	if err := validateID(id, "resolve"); err != nil {
		return MovieInput{}, err
	}
	if e.metadata == nil {
		return MovieInput{}, services.Wrap(services.ErrConfiguration, "collection", "resolve", "no metadata source configured; set tmdb.token or tmdb.api_key", nil)
	}
	movie, err := e.metadata.MovieDetails(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrConfiguration) || errors.Is(err, services.ErrExternal) {
			return MovieInput{}, err
		}
		return MovieInput{}, services.Wrap(services.ErrExternal, "collection", "resolve", fmt.Sprintf("fetch movie %d", id), err)
	}
	return MovieInput{
		MovieID:     movie.ID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		Genres:      movie.GenreIDs(),
	}, nil
}

// commit writes list and runs first-watch side effects. The returned Result
// carries the record even when the reward step fails after a successful write.
func (e *Engine) commit(ctx context.Context, list []movies.Record, prior movies.Status, rec *movies.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := e.store.SetAll(ctx, list); err != nil {
		return Result{}, err
	}

	logger := logging.WithContext(ctx, e.logger)
	res := Result{Record: rec}
	if rec == nil {
		logger.Info("movie removed", logging.String("prior_status", string(prior)))
		return res, nil
	}
	logger.Info("collection updated",
		logging.String("prior_status", string(prior)),
		logging.String("status", string(rec.Status)))

	reward, err := e.settle(ctx, list, prior, *rec)
	res.Reward = reward
	return res, err
}

// settle is the single place a first-watch event is detected.
func (e *Engine) settle(ctx context.Context, list []movies.Record, prior movies.Status, rec movies.Record) (Reward, error) {
	if prior == movies.StatusWatched || rec.Status != movies.StatusWatched {
		return Reward{}, nil
	}

	reward := Reward{FirstWatch: true, Points: rewards.PointsPerFirstWatch}
	total, err := e.ledger.Add(ctx, rewards.PointsPerFirstWatch)
	if err != nil {
		return reward, fmt.Errorf("award points: %w", err)
	}
	reward.Total = total

	watched := movies.CountByStatus(list)[movies.StatusWatched]
	check, err := e.unlocker.CheckAndUnlock(ctx, watched)
	if err != nil {
		return reward, fmt.Errorf("check badges: %w", err)
	}
	reward.NewBadges = check.NewlyUnlocked

	logging.WithContext(ctx, e.logger).Info("first watch rewarded",
		logging.Int("points", reward.Points),
		logging.Int("total", total),
		logging.Int("watched_count", watched),
		logging.Int("new_badges", len(reward.NewBadges)))
	return reward, nil
}

func (e *Engine) timestamp() string {
	return movies.FormatTimestamp(e.now())
}

func opContext(ctx context.Context, op string, id int64) context.Context {
	return services.WithMovieID(services.WithOperation(ctx, op), id)
}

func validateID(id int64, op string) error {
	if id <= 0 {
		return services.Wrap(services.ErrValidation, "collection", op, fmt.Sprintf("invalid movie id %d", id), nil)
	}
	return nil
}
