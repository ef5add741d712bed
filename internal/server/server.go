package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/quote"
	"github.com/quotescope/quotescope/pkg/storage"
)

const gracefulShutdownTimeout = 10 * time.Second

// Service is the calculation API the server exposes. *orchestrator.Orchestrator
// implements it.
type Service interface {
	ListAvailableCompanies() []string
	Calculate(ctx context.Context, req quote.CalculationRequest, useCache bool) quote.ScraperResult
	CalculateMany(ctx context.Context, base quote.CalculationRequest, companies []string) []quote.ScraperResult
	ClearCache()
	CacheStats() cache.Stats
}

type Server struct {
	Service   Service
	History   *storage.DB
	Validator *quote.Validator
	Log       logger.Logger
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

func New(svc Service, history *storage.DB, log logger.Logger) *Server {
	return &Server{
		Service:   svc,
		History:   history,
		Validator: quote.NewValidator(),
		Log:       logger.OrNop(log),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}),
		chiMiddleware.RequestID,
		chiMiddleware.Recoverer,
	)

	router.Get("/healthz", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/insurance", func(r chi.Router) {
		r.Get("/companies", s.handleCompanies)
		r.Get("/stats", s.handleStats)
		r.Post("/cache/clear", s.handleClearCache)
		r.Get("/calculate", s.handleLegacyAction)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/calculate/multi", s.handleCalculateMulti)
		r.Get("/history", s.handleHistory)
		r.Get("/history/stats", s.handleHistoryStats)
	})
	return router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		s.Log.Infof("API server terminated")
	}()

	s.Log.Infof("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
