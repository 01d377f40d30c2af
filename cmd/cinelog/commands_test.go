package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinelog/internal/collection"
	"cinelog/internal/movies"
)

func TestWatchFlowThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out := mustRunCLI(t, env.configPath, "add", "42", "--title", "Heat", "--genre", "80")
	requireContains(t, out, "Heat")
	requireContains(t, out, "WATCHLIST")

	out = mustRunCLI(t, env.configPath, "--json", "review", "42", "--rating", "9", "--review", "classic", "--tag", "crime")
	var res collection.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode review output: %v\n%s", err, out)
	}
	if res.Record == nil || res.Record.Status != movies.StatusWatched || res.Record.Title != "Heat" {
		t.Fatalf("unexpected record: %+v", res.Record)
	}
	if !res.Reward.FirstWatch || res.Reward.Total != 50 {
		t.Fatalf("unexpected reward: %+v", res.Reward)
	}

	out = mustRunCLI(t, env.configPath, "points")
	requireContains(t, out, "Points:    50")
	requireContains(t, out, "Watched:   1")

	out = mustRunCLI(t, env.configPath, "toggle", "watched", "42")
	requireContains(t, out, "REMOVED_FROM_WATCHED: 42")

	out = mustRunCLI(t, env.configPath, "list")
	requireContains(t, out, "No movies")
}

func TestReviewRejectsRatingOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := runCLI(t, env.configPath, "review", "1", "--title", "x", "--rating", "11")
	if err == nil || !strings.Contains(err.Error(), "between 0 and 10") {
		t.Fatalf("expected rating error, got %v", err)
	}
}

func TestAddWithoutTitleNeedsTMDB(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := runCLI(t, env.configPath, "add", "7")
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "add", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestExportImportReset(t *testing.T) {
	env := setupCLITestEnv(t, "")
	mustRunCLI(t, env.configPath, "watched", "1", "--title", "One")
	mustRunCLI(t, env.configPath, "add", "2", "--title", "Two")

	exportPath := filepath.Join(env.baseDir, "backup.yaml")
	mustRunCLI(t, env.configPath, "export", "--output", exportPath)
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	requireContains(t, string(data), "movieId: 1")

	if _, _, err := runCLI(t, env.configPath, "reset"); err == nil {
		t.Fatal("reset without --yes should fail")
	}
	mustRunCLI(t, env.configPath, "reset", "--yes")
	requireContains(t, mustRunCLI(t, env.configPath, "points"), "Points:    0")

	out := mustRunCLI(t, env.configPath, "import", exportPath)
	requireContains(t, out, "Imported 2 movies")

	out = mustRunCLI(t, env.configPath, "--json", "list", "--status", "watched")
	var list []movies.Record
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].MovieID != 1 {
		t.Fatalf("unexpected watched list: %+v", list)
	}
	requireContains(t, mustRunCLI(t, env.configPath, "points"), "Points:    0")
}

func TestBadgesAndStats(t *testing.T) {
	env := setupCLITestEnv(t, "")
	mustRunCLI(t, env.configPath, "watched", "5", "--title", "Five", "--genre", "18")

	out := mustRunCLI(t, env.configPath, "badges")
	requireContains(t, out, "locked")

	out = mustRunCLI(t, env.configPath, "stats", "genres")
	requireContains(t, out, "기타")

	out = mustRunCLI(t, env.configPath, "--json", "stats", "monthly", "--months", "2")
	var series []map[string]any
	if err := json.Unmarshal([]byte(out), &series); err != nil {
		t.Fatalf("decode monthly: %v", err)
	}
	if len(series) != 2 || series[1]["count"].(float64) != 1 {
		t.Fatalf("unexpected series: %v", series)
	}
}

func TestSkinsWithoutConfig(t *testing.T) {
	out := mustRunCLI(t, "", "skins", "--target", "watched")
	requireContains(t, out, "watched_polaroid")
	if strings.Contains(out, "ticket_vanilla") {
		t.Fatalf("ticket skins should be filtered out: %s", out)
	}
	if _, _, err := runCLI(t, "", "skins", "--target", "poster"); err == nil {
		t.Fatal("expected invalid target error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out := mustRunCLI(t, env.configPath, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "file")

	target := filepath.Join(t.TempDir(), "config.toml")
	out = mustRunCLI(t, "", "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}
}

func TestSearchMarksSavedMovies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" || r.Header.Get("Authorization") != "Bearer secret" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"total_results":2,"results":[{"id":42,"title":"Heat","release_date":"1995-12-15","vote_average":7.9},{"id":43,"title":"Heat 2"}]}`))
	}))
	defer server.Close()

	env := setupCLITestEnv(t, "\n[tmdb]\ntoken = \"secret\"\nbase_url = \""+server.URL+"\"\n")
	mustRunCLI(t, env.configPath, "add", "42", "--title", "Heat")

	out := mustRunCLI(t, env.configPath, "search", "heat")
	requireContains(t, out, "Heat 2")
	requireContains(t, out, "✓")
	requireContains(t, out, "Page 1 of 1")
}
