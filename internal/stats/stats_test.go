package stats_test

import (
	"reflect"
	"testing"
	"time"

	"cinelog/internal/movies"
	"cinelog/internal/stats"
)

func watched(id int64, watchedAt string, genres ...int64) movies.Record {
	return movies.Record{MovieID: id, Status: movies.StatusWatched, WatchedAt: movies.StringPtr(watchedAt), Genres: genres}
}

var names = map[int64]string{1: "Action", 2: "Drama", 3: "Comedy", 4: "Horror", 5: "Romance", 6: "Thriller"}

func resolve(id int64) string { return names[id] }

func TestGenreDistributionTopNAndFallback(t *testing.T) {
	records := []movies.Record{
		watched(1, "2025-01-01T00:00:00.000Z", 1, 2),
		watched(2, "2025-01-01T00:00:00.000Z", 1, 3),
		watched(3, "2025-01-01T00:00:00.000Z", 1, 4, 5),
		watched(4, "2025-01-01T00:00:00.000Z", 2, 6, 99),
		watched(5, "2025-01-01T00:00:00.000Z"),
		{MovieID: 6, Status: movies.StatusWatchlist, Genres: []int64{1, 1, 1}},
	}

	got := stats.GenreDistribution(records, resolve, "기타", 0)
	want := stats.Distribution{
		Data: []stats.Slice{
			{Name: "Action", Value: 3},
			{Name: "Drama", Value: 2},
			{Name: "Comedy", Value: 1},
			{Name: "Horror", Value: 1},
			{Name: "기타", Value: 4},
		},
		Total: 11,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected distribution:\n got %+v\nwant %+v", got, want)
	}
}

func TestGenreDistributionEmpty(t *testing.T) {
	got := stats.GenreDistribution(nil, resolve, "Other", 4)
	if len(got.Data) != 0 || got.Total != 0 {
		t.Fatalf("expected empty distribution, got %+v", got)
	}
}

func TestGenreDistributionNoFallbackSliceWhenUnused(t *testing.T) {
	got := stats.GenreDistribution([]movies.Record{watched(1, "2025-01-01T00:00:00.000Z", 1)}, resolve, "Other", 2)
	if len(got.Data) != 1 || got.Data[0].Name != "Action" {
		t.Fatalf("unexpected data: %+v", got.Data)
	}
}

func TestMonthlyWatchedWindow(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	records := []movies.Record{
		watched(1, "2025-03-01T00:00:00.000Z"),
		watched(2, "2025-03-20T00:00:00.000Z"),
		watched(3, "2025-01-31T23:00:00.000Z"),
		watched(4, "2024-12-05T00:00:00.000Z"),
		watched(5, "2023-01-01T00:00:00.000Z"),
		{MovieID: 6, Status: movies.StatusWatchlist},
	}

	got := stats.MonthlyWatched(records, now, 4)
	want := []stats.MonthCount{
		{Month: "2024-12", Count: 1},
		{Month: "2025-01", Count: 1},
		{Month: "2025-02", Count: 0},
		{Month: "2025-03", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected series: %+v", got)
	}

	if got := stats.MonthlyWatched(records, now, 0); len(got) != stats.DefaultMonths || got[0].Month != "2024-04" {
		t.Fatalf("default window wrong: %+v", got)
	}
}

func TestMonthlyWatchedUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	now := time.Date(2025, 2, 10, 0, 0, 0, 0, seoul)
	records := []movies.Record{watched(1, "2025-01-31T20:00:00.000Z")}

	got := stats.MonthlyWatched(records, now, 2)
	if got[1].Month != "2025-02" || got[1].Count != 1 {
		t.Fatalf("expected the watch to land in February local time: %+v", got)
	}
}

func TestYearMonths(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := stats.YearMonths([]movies.Record{watched(1, "2025-06-01T10:00:00.000Z"), watched(2, "2024-06-01T10:00:00.000Z")}, now)
	if len(got) != 12 || got[0].Month != "2025-01" || got[11].Month != "2025-12" || got[5].Count != 1 {
		t.Fatalf("unexpected year series: %+v", got)
	}
}

func TestMonthlyEmpty(t *testing.T) {
	now := time.Now()
	if got := stats.MonthlyWatched(nil, now, 12); len(got) != 0 {
		t.Fatalf("expected empty series, got %+v", got)
	}
	if got := stats.YearMonths([]movies.Record{{MovieID: 1, Status: movies.StatusWatched}}, now); len(got) != 0 {
		t.Fatalf("expected empty series without watchedAt, got %+v", got)
	}
}
