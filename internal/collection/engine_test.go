package collection_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"cinelog/internal/badges"
	"cinelog/internal/collection"
	"cinelog/internal/kvstore"
	"cinelog/internal/movies"
	"cinelog/internal/rewards"
	"cinelog/internal/services"
	"cinelog/internal/testsupport"
	"cinelog/internal/tmdb"
)

type harness struct {
	engine *collection.Engine
	store  *movies.Store
	ledger *rewards.Ledger
	kv     kvstore.Store
	clock  *testsupport.Clock
}

func newHarness(t *testing.T, opts ...collection.Option) *harness {
	t.Helper()
	kv := testsupport.NewKV(t)
	clock := testsupport.NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	store := movies.NewStore(kv, nil)
	ledger := rewards.NewLedger(kv, nil)
	unlocker := badges.NewUnlocker(kv, nil, badges.WithClock(clock.Now))
	opts = append([]collection.Option{collection.WithClock(clock.Now)}, opts...)
	return &harness{
		engine: collection.NewEngine(store, ledger, unlocker, nil, opts...),
		store:  store,
		ledger: ledger,
		kv:     kv,
		clock:  clock,
	}
}

func (h *harness) total(t *testing.T) int {
	t.Helper()
	total, err := h.ledger.Total(context.Background())
	if err != nil {
		t.Fatalf("ledger total: %v", err)
	}
	return total
}

func (h *harness) get(t *testing.T, id int64) (movies.Record, bool) {
	t.Helper()
	rec, ok, err := h.engine.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%d): %v", id, err)
	}
	return rec, ok
}

func input(id int64, genres ...int64) collection.MovieInput {
	return collection.MovieInput{
		MovieID:     id,
		Title:       fmt.Sprintf("Movie %d", id),
		PosterPath:  movies.StringPtr(fmt.Sprintf("/poster-%d.jpg", id)),
		ReleaseDate: movies.StringPtr("2020-01-01"),
		Genres:      genres,
	}
}

func TestAddToWatchlistHasNoWatchedAt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, id := range []int64{1, 77, 1234567} {
		res, err := h.engine.AddToWatchlist(ctx, input(id))
		if err != nil {
			t.Fatalf("AddToWatchlist(%d): %v", id, err)
		}
		if res.Reward.FirstWatch {
			t.Fatalf("watchlist add must not reward: %+v", res.Reward)
		}
		rec, ok := h.get(t, id)
		if !ok || rec.Status != movies.StatusWatchlist || rec.WatchedAt != nil {
			t.Fatalf("unexpected record for %d: %+v", id, rec)
		}
	}
	if h.total(t) != 0 {
		t.Fatalf("expected no points, got %d", h.total(t))
	}
}

func TestAddToWatchlistResetsWatchedRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rating := 7.0
	if _, err := h.engine.SaveReview(ctx, input(5), collection.ReviewInput{Rating: &rating, Review: "ok", Tags: []string{"x"}}); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	h.clock.Advance(time.Hour)

	res, err := h.engine.AddToWatchlist(ctx, input(5))
	if err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	rec := res.Record
	if rec.Status != movies.StatusWatchlist || rec.Rating != nil || rec.Review != "" || len(rec.Tags) != 0 || rec.WatchedAt != nil {
		t.Fatalf("expected reset watchlist record, got %+v", rec)
	}
	if rec.AddedAt != "2025-03-01T10:00:00.000Z" {
		t.Fatalf("expected fresh addedAt, got %q", rec.AddedAt)
	}
}

func TestMarkWatchedAwardsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.engine.MarkWatched(ctx, input(10))
	if err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	if !res.Reward.FirstWatch || res.Reward.Points != 50 || res.Reward.Total != 50 {
		t.Fatalf("unexpected reward: %+v", res.Reward)
	}
	firstWatchedAt := *res.Record.WatchedAt

	h.clock.Advance(time.Minute)
	res, err = h.engine.MarkWatched(ctx, input(10))
	if err != nil {
		t.Fatalf("second MarkWatched: %v", err)
	}
	if res.Reward.FirstWatch {
		t.Fatalf("re-mark must not reward: %+v", res.Reward)
	}
	if h.total(t) != 50 {
		t.Fatalf("expected total 50, got %d", h.total(t))
	}
	if *res.Record.WatchedAt == firstWatchedAt {
		t.Fatal("watchedAt should refresh on re-mark")
	}
}

func TestMarkWatchedPreservesExistingData(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.engine.AddToWatchlist(ctx, input(3, 18, 35)); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	if _, err := h.engine.UpdateMemo(ctx, 3, "must see"); err != nil {
		t.Fatalf("UpdateMemo: %v", err)
	}
	h.clock.Advance(24 * time.Hour)

	res, err := h.engine.MarkWatched(ctx, input(3))
	if err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	rec := res.Record
	if rec.AddedAt != "2025-03-01T09:00:00.000Z" {
		t.Fatalf("addedAt not preserved: %q", rec.AddedAt)
	}
	if rec.WatchedAt == nil || *rec.WatchedAt != "2025-03-02T09:00:00.000Z" {
		t.Fatalf("unexpected watchedAt: %v", rec.WatchedAt)
	}
	if rec.Review != "must see" {
		t.Fatalf("review not preserved: %q", rec.Review)
	}
	if !reflect.DeepEqual(rec.Genres, []int64{18, 35}) {
		t.Fatalf("genres should fall back to existing, got %v", rec.Genres)
	}
	if !res.Reward.FirstWatch {
		t.Fatal("watchlist to watched should reward")
	}
}

func TestMoveToWatched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.engine.MoveToWatched(ctx, 99)
	if err != nil || res.Record != nil {
		t.Fatalf("move on absent id should be a no-op: %+v, %v", res, err)
	}

	if _, err := h.engine.AddToWatchlist(ctx, input(99, 28)); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	h.clock.Advance(time.Hour)
	res, err = h.engine.MoveToWatched(ctx, 99)
	if err != nil {
		t.Fatalf("MoveToWatched: %v", err)
	}
	if res.Record.Status != movies.StatusWatched || res.Record.Title != "Movie 99" || res.Record.AddedAt != "2025-03-01T09:00:00.000Z" {
		t.Fatalf("unexpected record: %+v", res.Record)
	}
	if !res.Reward.FirstWatch || h.total(t) != 50 {
		t.Fatalf("expected first-watch reward, got %+v total=%d", res.Reward, h.total(t))
	}

	res, err = h.engine.MoveToWatched(ctx, 99)
	if err != nil {
		t.Fatalf("second MoveToWatched: %v", err)
	}
	if res.Reward.FirstWatch || h.total(t) != 50 {
		t.Fatalf("second move must not reward: %+v total=%d", res.Reward, h.total(t))
	}
}

func TestSaveReviewScenarioFromWatchlist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.engine.AddToWatchlist(ctx, input(7)); err != nil {
		t.Fatalf("AddToWatchlist 7: %v", err)
	}
	if _, err := h.engine.AddToWatchlist(ctx, input(42)); err != nil {
		t.Fatalf("AddToWatchlist 42: %v", err)
	}
	if _, err := h.engine.AddToWatchlist(ctx, input(8)); err != nil {
		t.Fatalf("AddToWatchlist 8: %v", err)
	}
	t0 := "2025-03-01T09:00:00.000Z"
	h.clock.Advance(2 * time.Hour)

	rating := 8.0
	res, err := h.engine.SaveReview(ctx, input(42), collection.ReviewInput{Rating: &rating, Review: "great", Tags: []string{"action"}})
	if err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	rec := res.Record
	if rec.Status != movies.StatusWatched || rec.AddedAt != t0 {
		t.Fatalf("unexpected status/addedAt: %+v", rec)
	}
	if rec.WatchedAt == nil || *rec.WatchedAt != "2025-03-01T11:00:00.000Z" {
		t.Fatalf("unexpected watchedAt: %v", rec.WatchedAt)
	}
	if rec.Rating == nil || *rec.Rating != 8 || rec.Review != "great" || !reflect.DeepEqual(rec.Tags, []string{"action"}) {
		t.Fatalf("review not applied: %+v", rec)
	}
	if !res.Reward.FirstWatch || res.Reward.Total != 50 {
		t.Fatalf("expected +50, got %+v", res.Reward)
	}
	if len(res.Reward.NewBadges) != 0 {
		t.Fatalf("watched_10 must not unlock below 10: %+v", res.Reward.NewBadges)
	}

	list, err := h.engine.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	order := []int64{list[0].MovieID, list[1].MovieID, list[2].MovieID}
	if !reflect.DeepEqual(order, []int64{7, 8, 42}) {
		t.Fatalf("reviewed watchlist record should move to the end, got %v", order)
	}
}

func TestSaveReviewOnWatchedOverlaysInPlace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.engine.MarkWatched(ctx, input(1)); err != nil {
		t.Fatalf("MarkWatched 1: %v", err)
	}
	if _, err := h.engine.MarkWatched(ctx, input(2)); err != nil {
		t.Fatalf("MarkWatched 2: %v", err)
	}
	watchedAt := "2025-03-01T09:00:00.000Z"
	h.clock.Advance(time.Hour)

	res, err := h.engine.SaveReview(ctx, input(1), collection.ReviewInput{Review: "second look"})
	if err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	if res.Reward.FirstWatch || h.total(t) != 100 {
		t.Fatalf("review on watched must not reward: %+v total=%d", res.Reward, h.total(t))
	}
	if res.Record.WatchedAt == nil || *res.Record.WatchedAt != watchedAt {
		t.Fatalf("watchedAt should be untouched: %v", res.Record.WatchedAt)
	}
	list, err := h.engine.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list[0].MovieID != 1 || list[0].Review != "second look" {
		t.Fatalf("expected in-place overlay, got %+v", list)
	}
}

func TestSaveReviewCreatesAbsentRecord(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.SaveReview(context.Background(), input(11, 12), collection.ReviewInput{Review: "fresh"})
	if err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	if res.Record.Status != movies.StatusWatched || res.Record.Review != "fresh" || !res.Reward.FirstWatch {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Record.AddedAt != *res.Record.WatchedAt {
		t.Fatalf("new record should share addedAt and watchedAt: %+v", res.Record)
	}
}

func TestToggleWatchlistSymmetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.engine.ToggleWatchlist(ctx, input(4))
	if err != nil || res.Action != collection.ActionAddedToWatchlist {
		t.Fatalf("first toggle: %+v, %v", res, err)
	}
	firstAdded := res.Record.AddedAt
	h.clock.Advance(time.Minute)

	res, err = h.engine.ToggleWatchlist(ctx, input(4))
	if err != nil || res.Action != collection.ActionRemovedFromWatchlist || res.Record != nil {
		t.Fatalf("second toggle: %+v, %v", res, err)
	}
	if _, ok := h.get(t, 4); ok {
		t.Fatal("record should be removed")
	}

	res, err = h.engine.ToggleWatchlist(ctx, input(4))
	if err != nil || res.Action != collection.ActionAddedToWatchlist {
		t.Fatalf("third toggle: %+v, %v", res, err)
	}
	if res.Record.AddedAt == firstAdded {
		t.Fatal("re-added record should have a fresh addedAt")
	}
}

func TestToggleWatchlistMovesWatched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.engine.MarkWatched(ctx, input(6)); err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	res, err := h.engine.ToggleWatchlist(ctx, input(6))
	if err != nil || res.Action != collection.ActionMovedToWatchlist || res.Record.Status != movies.StatusWatchlist {
		t.Fatalf("toggle watched→watchlist: %+v, %v", res, err)
	}
}

func TestToggleWatched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.engine.ToggleWatched(ctx, input(1))
	if err != nil || res.Action != collection.ActionAddedToWatched || !res.Reward.FirstWatch {
		t.Fatalf("absent toggle: %+v, %v", res, err)
	}

	res, err = h.engine.ToggleWatched(ctx, input(1))
	if err != nil || res.Action != collection.ActionRemovedFromWatched || res.Record != nil || res.Reward.FirstWatch {
		t.Fatalf("watched toggle: %+v, %v", res, err)
	}

	if _, err := h.engine.AddToWatchlist(ctx, input(2)); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	res, err = h.engine.ToggleWatched(ctx, input(2))
	if err != nil || res.Action != collection.ActionMovedToWatched || !res.Reward.FirstWatch {
		t.Fatalf("watchlist toggle: %+v, %v", res, err)
	}
	if h.total(t) != 100 {
		t.Fatalf("expected 100 points, got %d", h.total(t))
	}
}

func TestRemoveAndUpdateMemoOnAbsent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if res, err := h.engine.Remove(ctx, 5); err != nil || res.Record != nil {
		t.Fatalf("Remove absent: %+v, %v", res, err)
	}
	if res, err := h.engine.UpdateMemo(ctx, 5, "memo"); err != nil || res.Record != nil {
		t.Fatalf("UpdateMemo absent: %+v, %v", res, err)
	}
	if _, found, err := h.kv.Get(ctx, movies.CollectionKey); err != nil || found {
		t.Fatalf("no-ops must not write the collection: found=%v err=%v", found, err)
	}

	if _, err := h.engine.MarkWatched(ctx, input(5)); err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	res, err := h.engine.UpdateMemo(ctx, 5, "memo")
	if err != nil || res.Record.Review != "memo" || res.Record.Status != movies.StatusWatched {
		t.Fatalf("UpdateMemo: %+v, %v", res, err)
	}
	if _, err := h.engine.Remove(ctx, 5); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := h.get(t, 5); ok {
		t.Fatal("record should be removed")
	}
}

func TestBadgeScenarioNineToEleven(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for id := int64(1); id <= 9; id++ {
		res, err := h.engine.MarkWatched(ctx, input(id))
		if err != nil {
			t.Fatalf("MarkWatched %d: %v", id, err)
		}
		if len(res.Reward.NewBadges) != 0 {
			t.Fatalf("no badge expected at count %d: %+v", id, res.Reward.NewBadges)
		}
	}

	res, err := h.engine.MarkWatched(ctx, input(10))
	if err != nil {
		t.Fatalf("MarkWatched 10: %v", err)
	}
	if len(res.Reward.NewBadges) != 1 || res.Reward.NewBadges[0].ID != "watched_10" || res.Reward.NewBadges[0].Threshold != 10 {
		t.Fatalf("expected exactly watched_10, got %+v", res.Reward.NewBadges)
	}

	res, err = h.engine.MarkWatched(ctx, input(11))
	if err != nil {
		t.Fatalf("MarkWatched 11: %v", err)
	}
	if len(res.Reward.NewBadges) != 0 {
		t.Fatalf("expected no new badges at 11, got %+v", res.Reward.NewBadges)
	}

	for id := int64(1); id <= 11; id++ {
		if _, err := h.engine.Remove(ctx, id); err != nil {
			t.Fatalf("Remove %d: %v", id, err)
		}
	}
	summary, err := h.engine.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Watched != 0 || len(summary.Badges) != 1 || summary.Points != 550 {
		t.Fatalf("badge must survive removals: %+v", summary)
	}
}

func TestInvalidIDRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.MarkWatched(context.Background(), collection.MovieInput{MovieID: 0})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConcurrentMutationsDoNotLoseWrites(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := int64(1); id <= 20; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := h.engine.MarkWatched(ctx, input(id)); err != nil {
				t.Errorf("MarkWatched %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	summary, err := h.engine.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Watched != 20 || summary.Points != 1000 || len(summary.Badges) != 2 {
		t.Fatalf("lost writes under concurrency: %+v", summary)
	}
}

type fakeMetadata struct {
	movie tmdb.Movie
	err   error
}

func (f fakeMetadata) MovieDetails(context.Context, int64) (tmdb.Movie, error) {
	return f.movie, f.err
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t)
	if _, err := h.engine.Resolve(ctx, 1); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without source, got %v", err)
	}

	poster := "/p.jpg"
	h = newHarness(t, collection.WithMetadataSource(fakeMetadata{movie: tmdb.Movie{
		ID: 42, Title: "Heat", PosterPath: &poster, Genres: []tmdb.Genre{{ID: 28, Name: "Action"}},
	}}))
	in, err := h.engine.Resolve(ctx, 42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if in.MovieID != 42 || in.Title != "Heat" || !reflect.DeepEqual(in.Genres, []int64{28}) {
		t.Fatalf("unexpected input: %+v", in)
	}

	h = newHarness(t, collection.WithMetadataSource(fakeMetadata{err: errors.New("connection refused")}))
	if _, err := h.engine.Resolve(ctx, 42); !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}

func TestReplaceAndReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.engine.MarkWatched(ctx, input(1)); err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}

	n, err := h.engine.Replace(ctx, []movies.Record{
		{MovieID: 2, Status: movies.StatusWatched, AddedAt: "2024-01-01T00:00:00.000Z"},
		{MovieID: 3, Status: "watchlist"},
		{MovieID: 2, Status: movies.StatusWatchlist},
	})
	if err != nil || n != 2 {
		t.Fatalf("Replace: %d, %v", n, err)
	}
	if h.total(t) != 50 {
		t.Fatalf("import must not award points, got %d", h.total(t))
	}

	if err := h.engine.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	summary, err := h.engine.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Watched != 0 || summary.Watchlist != 0 || summary.Points != 0 || len(summary.Badges) != 0 {
		t.Fatalf("expected empty summary after reset, got %+v", summary)
	}
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, collection.WithMetadataSource(fakeMetadata{movie: tmdb.Movie{ID: 9, Title: "Remote"}}))

	in, err := h.engine.Complete(ctx, collection.MovieInput{MovieID: 9, Title: "Given"})
	if err != nil || in.Title != "Given" {
		t.Fatalf("explicit title should win: %+v, %v", in, err)
	}

	in, err = h.engine.Complete(ctx, collection.MovieInput{MovieID: 9})
	if err != nil || in.Title != "Remote" {
		t.Fatalf("expected remote lookup: %+v, %v", in, err)
	}

	if _, err := h.engine.AddToWatchlist(ctx, input(9, 12)); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	in, err = h.engine.Complete(ctx, collection.MovieInput{MovieID: 9})
	if err != nil || in.Title != "Movie 9" || !reflect.DeepEqual(in.Genres, []int64{12}) {
		t.Fatalf("stored record should win over remote: %+v, %v", in, err)
	}
}

func TestRewardFailureKeepsWatchedRecord(t *testing.T) {
	ctx := context.Background()
	diskFull := errors.New("disk full")
	kv := &testsupport.FailingSets{Store: testsupport.NewKV(t), Keys: []string{rewards.PointsKey}, Err: diskFull}
	store := movies.NewStore(kv, nil)
	engine := collection.NewEngine(store, rewards.NewLedger(kv, nil), badges.NewUnlocker(kv, nil), nil)

	res, err := engine.MarkWatched(ctx, input(5))
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected reward error, got %v", err)
	}
	if res.Record == nil || res.Record.Status != movies.StatusWatched {
		t.Fatalf("expected watched record despite reward failure, got %+v", res.Record)
	}
	if !res.Reward.FirstWatch {
		t.Fatalf("reward should report the first watch it attempted: %+v", res.Reward)
	}

	rec, ok, err := store.Get(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if rec.Status != movies.StatusWatched {
		t.Fatalf("persisted status = %s, want WATCHED", rec.Status)
	}

	kv.Keys = nil
	again, err := engine.MarkWatched(ctx, input(5))
	if err != nil {
		t.Fatalf("retry MarkWatched: %v", err)
	}
	if again.Reward.FirstWatch || again.Reward.Points != 0 {
		t.Fatalf("retry must not award again: %+v", again.Reward)
	}
}
