package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cinelog/internal/collection"
	"cinelog/internal/genres"
	"cinelog/internal/logging"
	"cinelog/internal/tmdb"
)

// Catalog serves remote movie listings.
type Catalog interface {
	SearchMovies(ctx context.Context, query string, page int) (tmdb.Page, error)
	TrendingMovies(ctx context.Context, page int) (tmdb.Page, error)
}

// Options wires the server. Genres and Catalog are optional; leave Catalog
// nil when no metadata credentials are configured.
type Options struct {
	Engine  *collection.Engine
	Genres  *genres.Cache
	Catalog Catalog
	Logger  *slog.Logger
	// Now defaults to time.Now; stats windows end at its month.
	Now func() time.Time
}

// Server is the HTTP adapter.
type Server struct {
	engine  *collection.Engine
	genres  *genres.Cache
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
	router  chi.Router

	listener net.Listener
	server   *http.Server
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("httpapi requires an engine")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		engine:  opts.Engine,
		genres:  opts.Genres,
		catalog: opts.Catalog,
		logger:  logging.NewComponentLogger(opts.Logger, "api-server"),
		now:     now,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMovie)
				r.Delete("/", s.handleRemove)
				r.Post("/watchlist", s.handleAddToWatchlist)
				r.Post("/watched", s.handleMarkWatched)
				r.Post("/move", s.handleMoveToWatched)
				r.Put("/review", s.handleSaveReview)
				r.Put("/memo", s.handleUpdateMemo)
				r.Post("/toggle/{list}", s.handleToggle)
			})
		})

		r.Get("/badges", s.handleBadges)
		r.Get("/points", s.handlePoints)
		r.Get("/stats/genres", s.handleGenreStats)
		r.Get("/stats/monthly", s.handleMonthlyStats)
		r.Get("/skins", s.handleSkins)
		r.Get("/search", s.handleSearch)
		r.Get("/trending", s.handleTrending)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.logger, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.logger, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

// Start listens on bind and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
