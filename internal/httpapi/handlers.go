package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cinelog/internal/badges"
	"cinelog/internal/collection"
	"cinelog/internal/genres"
	"cinelog/internal/movies"
	"cinelog/internal/services"
	"cinelog/internal/skins"
	"cinelog/internal/stats"
)

type movieListResponse struct {
	Movies []movies.Record `json:"movies"`
}

type badgesResponse struct {
	Badges      []badges.Unlocked   `json:"badges"`
	Definitions []badges.Definition `json:"definitions"`
}

type pointsResponse struct {
	Points int `json:"points"`
}

type removeResponse struct {
	Removed bool `json:"removed"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, summary)
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	var status movies.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, ok := movies.ParseStatus(raw)
		if !ok {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "httpapi", "list", fmt.Sprintf("unknown status %q", raw), nil))
			return
		}
		status = parsed
	}
	list, err := s.engine.List(r.Context(), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, movieListResponse{Movies: list})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, ok, err := s.engine.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "httpapi", "get", fmt.Sprintf("movie %d not in collection", id), nil))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, rec)
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	s.runCreate(w, r, s.engine.AddToWatchlist)
}

func (s *Server) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	s.runCreate(w, r, s.engine.MarkWatched)
}

func (s *Server) runCreate(w http.ResponseWriter, r *http.Request, op func(context.Context, collection.MovieInput) (collection.Result, error)) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body movieRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.movieInput(r.Context(), id, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := op(r.Context(), in)
	s.respond(w, r, res, err)
}

func (s *Server) handleMoveToWatched(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.MoveToWatched(r.Context(), id)
	s.respond(w, r, res, err)
}

func (s *Server) handleSaveReview(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body reviewRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.movieInput(r.Context(), id, body.movieRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.SaveReview(r.Context(), in, collection.ReviewInput{
		Rating: body.Rating,
		Review: body.Review,
		Tags:   body.Tags,
	})
	s.respond(w, r, res, err)
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body memoRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.UpdateMemo(r.Context(), id, body.Memo)
	s.respond(w, r, res, err)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var toggle func(context.Context, collection.MovieInput) (collection.ToggleResult, error)
	switch chi.URLParam(r, "list") {
	case "watchlist":
		toggle = s.engine.ToggleWatchlist
	case "watched":
		toggle = s.engine.ToggleWatched
	default:
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "httpapi", "toggle", "unknown list", nil))
		return
	}
	var body movieRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.movieInput(r.Context(), id, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := toggle(r.Context(), in)
	if err != nil && res.Record == nil {
		s.writeError(w, r, err)
		return
	}
	if err != nil {
		s.logRewardFailure(r, err)
	}
	writeJSON(w, s.logger, http.StatusOK, res)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, existed, err := s.engine.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.engine.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, removeResponse{Removed: existed})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, badgesResponse{Badges: summary.Badges, Definitions: badges.Definitions()})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, pointsResponse{Points: summary.Points})
}

func (s *Server) handleGenreStats(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top", stats.DefaultTopGenres, 1, 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.engine.List(r.Context(), movies.StatusWatched)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resolve, fallback, err := s.genreResolver(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, stats.GenreDistribution(list, resolve, fallback, top))
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", stats.DefaultMonths, 1, 120)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.engine.List(r.Context(), movies.StatusWatched)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.now()
	if r.URL.Query().Get("year") == "true" || r.URL.Query().Get("year") == "1" {
		writeJSON(w, s.logger, http.StatusOK, stats.YearMonths(list, now))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, stats.MonthlyWatched(list, now, months))
}

func (s *Server) handleSkins(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("target"))
	if target == "" {
		writeJSON(w, s.logger, http.StatusOK, skins.All())
		return
	}
	if !skins.ValidTarget(target) {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "httpapi", "skins", fmt.Sprintf("unknown target %q", target), nil))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, skins.ByTargetSorted(skins.Target(target)))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeError(w, r, errNoCatalog)
		return
	}
	page, err := queryInt(r, "page", 1, 1, 500)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.catalog.SearchMovies(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeError(w, r, errNoCatalog)
		return
	}
	page, err := queryInt(r, "page", 1, 1, 500)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.catalog.TrendingMovies(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

var errNoCatalog = services.Wrap(services.ErrConfiguration, "httpapi", "catalog", "tmdb credentials not configured", nil)

func (s *Server) movieInput(ctx context.Context, id int64, body movieRequest) (collection.MovieInput, error) {
	return s.engine.Complete(ctx, body.input(id))
}

func (s *Server) genreResolver(ctx context.Context) (func(int64) string, string, error) {
	if s.genres == nil {
		fallback := genres.FallbackLabel("")
		return func(int64) string { return "" }, fallback, nil
	}
	m, err := s.genres.Map(ctx)
	if err != nil {
		return nil, "", err
	}
	return s.genres.Resolver(m), s.genres.Fallback(), nil
}

// respond reports a write that succeeded even when its reward step failed.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, res collection.Result, err error) {
	if err != nil && res.Record == nil {
		s.writeError(w, r, err)
		return
	}
	if err != nil {
		s.logRewardFailure(r, err)
	}
	writeJSON(w, s.logger, http.StatusOK, res)
}
