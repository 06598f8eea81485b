// Package api exposes the options analytics service over HTTP: market data
// passthrough, GEX/DEX analysis, payoff curves, backtests, and trade
// records. JSON in and out, all routes under /api.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"options-dashboard/internal/marketdata"
	"options-dashboard/internal/storage"
)

// maxListResults caps the persisted-record listings.
const maxListResults = 100

// Config holds server settings.
type Config struct {
	Port int
}

// Server is the analytics HTTP server.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	provider marketdata.Provider
	storage  storage.Interface
	logger   *logrus.Logger
	port     int
}

// NewServer wires the router, middleware, and handlers.
func NewServer(cfg Config, provider marketdata.Provider, store storage.Interface, logger *logrus.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		provider: provider,
		storage:  store,
		logger:   logger,
		port:     cfg.Port,
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(corsMiddleware)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/health", s.handleHealth)

		r.Get("/options/{symbol}", s.handleOptionsChain)
		r.Get("/market/{symbol}", s.handleMarketData)
		r.Get("/quotes", s.handleQuotes)

		r.Get("/analysis/gex/{symbol}", s.handleGEX)
		r.Get("/analysis/dex/{symbol}", s.handleDEX)

		r.Get("/strategies", s.handleStrategies)
		r.Post("/backtest/{strategyID}", s.handleRunBacktest)
		r.Get("/backtest/results", s.handleBacktestResults)

		r.Post("/calculate-strategy-pnl", s.handleCalculatePnL)
		r.Post("/submit-trade", s.handleSubmitTrade)
		r.Get("/trades", s.handleTrades)
	})
}

// requestLogger logs each completed request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request completed")
	})
}

// corsMiddleware allows cross-origin access from any dashboard frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting analytics server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
