package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"fpl-live-draft/internal/config"
	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/metrics"
	"fpl-live-draft/internal/middleware"
)

// LeagueTracker owns the poll loop.
type LeagueTracker interface {
	Start(leagueID string) (domain.View, error)
	Stop()
	Snapshot() (*domain.LeagueState, bool)
}

// ViewSource holds the latest published view and streams new ones.
type ViewSource interface {
	Latest() (domain.View, bool)
	Subscribe() (<-chan domain.View, func())
}

type DraftServer struct {
	tracker     LeagueTracker
	views       ViewSource
	relay       http.Handler
	liveOrigins []string
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewDraftServer(cfg *config.Config, tracker LeagueTracker, views ViewSource, relay http.Handler, m *metrics.Metrics, logger zerolog.Logger) *DraftServer {
	return &DraftServer{
		tracker:     tracker,
		views:       views,
		relay:       relay,
		liveOrigins: cfg.LiveOrigins,
		metrics:     m,
		logger:      logger.With().Str("component", "server").Logger(),
	}
}

func (s *DraftServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID(s.logger, s.metrics))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// The relay answers its own preflight and sets its own CORS headers.
	r.Handle("/api/*", s.relay)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	r.Route("/v1", func(r chi.Router) {
		r.Use(c.Handler)
		r.Get("/league", s.handleGetLeague)
		r.Put("/league", s.handleStartLeague)
		r.Delete("/league", s.handleStopLeague)
		r.Get("/league/export", s.handleExport)
		r.Get("/live", s.handleLive)
	})

	r.Group(func(r chi.Router) {
		r.Use(c.Handler)
		for procedure, h := range s.rpcHandlers() {
			r.Handle(procedure, h)
		}
	})

	return r
}
