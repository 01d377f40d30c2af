package movies

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a record in the collection.
type Status string

const (
	StatusWatchlist Status = "WATCHLIST"
	StatusWatched   Status = "WATCHED"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusWatchlist:
		return StatusWatchlist, true
	case StatusWatched:
		return StatusWatched, true
	default:
		return "", false
	}
}

// Record is one movie in the user's collection. JSON field names match the
// persisted collection value.
type Record struct {
	MovieID      int64    `json:"movieId" yaml:"movieId"`
	Title        string   `json:"title" yaml:"title"`
	PosterPath   *string  `json:"posterPath" yaml:"posterPath"`
	ReleaseDate  *string  `json:"releaseDate" yaml:"releaseDate"`
	Genres       []int64  `json:"genres" yaml:"genres"`
	Status       Status   `json:"status" yaml:"status"`
	AddedAt      string   `json:"addedAt" yaml:"addedAt"`
	WatchedAt    *string  `json:"watchedAt" yaml:"watchedAt"`
	Rating       *float64 `json:"rating" yaml:"rating"`
	Review       string   `json:"review" yaml:"review"`
	Tags         []string `json:"tags" yaml:"tags"`
	RewatchCount int      `json:"rewatchCount" yaml:"rewatchCount"`
}

// IsWatched reports whether the record is in the WATCHED state.
func (r Record) IsWatched() bool {
	return r.Status == StatusWatched
}

// timestampLayout matches JavaScript's Date.toISOString output.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the collection's timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a collection timestamp. RFC 3339 variants are
// accepted for imported data.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(timestampLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// StringPtr returns a pointer to value, for optional record fields.
func StringPtr(value string) *string {
	return &value
}
