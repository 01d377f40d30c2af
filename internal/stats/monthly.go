package stats

import (
	"fmt"
	"time"

	"cinelog/internal/movies"
)

// DefaultMonths is the window used by MonthlyWatched.
const DefaultMonths = 12

// MonthCount is the number of movies watched in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// MonthlyWatched returns the last months calendar months ending with the
// month of now, oldest first. Months are taken in now's location.
func MonthlyWatched(records []movies.Record, now time.Time, months int) []MonthCount {
	if months <= 0 {
		months = DefaultMonths
	}
	counts, ok := watchedByMonth(records, now.Location())
	if !ok {
		return []MonthCount{}
	}

	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]MonthCount, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := monthKey(end.AddDate(0, -i, 0))
		out = append(out, MonthCount{Month: month, Count: counts[month]})
	}
	return out
}

// YearMonths returns January through December of now's year.
func YearMonths(records []movies.Record, now time.Time) []MonthCount {
	counts, ok := watchedByMonth(records, now.Location())
	if !ok {
		return []MonthCount{}
	}
	out := make([]MonthCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		month := fmt.Sprintf("%04d-%02d", now.Year(), int(m))
		out = append(out, MonthCount{Month: month, Count: counts[month]})
	}
	return out
}

// watchedByMonth reports false when no record qualifies.
func watchedByMonth(records []movies.Record, loc *time.Location) (map[string]int, bool) {
	counts := make(map[string]int)
	seen := false
	for _, rec := range records {
		if rec.Status != movies.StatusWatched || rec.WatchedAt == nil || *rec.WatchedAt == "" {
			continue
		}
		seen = true
		at, ok := movies.ParseTimestamp(*rec.WatchedAt)
		if !ok {
			continue
		}
		counts[monthKey(at.In(loc))]++
	}
	return counts, seen
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}
