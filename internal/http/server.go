// Package http exposes search, stream resolution and playlists as a JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"soundbex/internal/core"
)

const shutdownTimeout = 10 * time.Second

// Searcher finds songs for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]core.SongResult, error)
}

// SongLookup fetches the metadata of a single video.
type SongLookup interface {
	Song(ctx context.Context, videoID string) (core.SongResult, error)
}

// StreamResolver turns a video id into a playable URL. It never fails.
type StreamResolver interface {
	Resolve(ctx context.Context, videoID string) core.ResolvedStream
}

// PlaylistStore keeps playlists and their cursors.
type PlaylistStore interface {
	Create(songs []core.SongEntry) (string, error)
	Next(id string) (core.PlaylistView, error)
	Previous(id string) (core.PlaylistView, error)
	Current(id string) (core.PlaylistView, error)
}

// Services are the operations behind the API.
type Services struct {
	Search    Searcher
	Songs     SongLookup
	Resolver  StreamResolver
	Playlists PlaylistStore
}

// Server is the HTTP facade.
type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	metrics  *Metrics
	services Services
	now      func() time.Time
}

// NewServer wires the routes. Metrics are served from gatherer.
func NewServer(
	config *core.ServerConfig,
	services Services,
	metrics *Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	s := &Server{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		services: services,
		now:      time.Now,
	}

	router := s.setupRoutes(gatherer)
	s.server = createHTTPServer(config, router)

	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		if s.config.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.config.RequestTimeout))
		}

		r.Get("/health", s.handleHealth)
		r.Get("/search", s.handleSearch)
		r.Get("/stream", s.handleStream)
		r.Get("/song/{videoID}", s.handleSong)

		r.With(bodySizeLimit(maxRequestBodyBytes)).Post("/playlist", s.handleCreatePlaylist)
		r.Get("/playlist/{id}/next", s.handlePlaylistNext)
		r.Get("/playlist/{id}/previous", s.handlePlaylistPrevious)
		r.Get("/playlist/{id}/current", s.handlePlaylistCurrent)
	})

	return r
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}
