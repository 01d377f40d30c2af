package collection

import (
	"cinelog/internal/badges"
	"cinelog/internal/movies"
)

// MovieInput carries the metadata used when a record is created or re-added.
type MovieInput struct {
	MovieID     int64   `json:"movieId" validate:"required,gt=0"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	Genres      []int64 `json:"genres"`
}

// ReviewInput is the part of a record a review overwrites.
type ReviewInput struct {
	Rating *float64 `json:"rating" validate:"omitnil,gte=0,lte=10"`
	Review string   `json:"review"`
	Tags   []string `json:"tags"`
}

// Reward describes side effects of a first-watch event. It is the zero value
// when the call did not move a record into WATCHED for the first time.
type Reward struct {
	FirstWatch bool              `json:"firstWatch"`
	Points     int               `json:"points"`
	Total      int               `json:"total"`
	NewBadges  []badges.Unlocked `json:"newBadges,omitempty"`
}

// Result is returned by every mutating operation. Record is nil when the
// movie was removed or the call was a no-op.
type Result struct {
	Record *movies.Record `json:"record"`
	Reward Reward         `json:"reward"`
}

// ToggleAction names what a toggle did.
type ToggleAction string

const (
	ActionAddedToWatchlist     ToggleAction = "ADDED_TO_WATCHLIST"
	ActionRemovedFromWatchlist ToggleAction = "REMOVED_FROM_WATCHLIST"
	ActionMovedToWatchlist     ToggleAction = "MOVED_TO_WATCHLIST"
	ActionAddedToWatched       ToggleAction = "ADDED_TO_WATCHED"
	ActionRemovedFromWatched   ToggleAction = "REMOVED_FROM_WATCHED"
	ActionMovedToWatched       ToggleAction = "MOVED_TO_WATCHED"
)

// ToggleResult is a Result tagged with the toggle outcome.
type ToggleResult struct {
	Action ToggleAction `json:"action"`
	Result
}

// Summary is a read-only snapshot for dashboards.
type Summary struct {
	Watchlist int               `json:"watchlist"`
	Watched   int               `json:"watched"`
	Points    int               `json:"points"`
	Badges    []badges.Unlocked `json:"badges"`
}
