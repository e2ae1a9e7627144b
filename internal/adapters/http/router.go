// SPDX-License-Identifier: AGPL-3.0-or-later

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/somcorpus/corpuswatch/internal/adapters/postgres"
	"github.com/somcorpus/corpuswatch/internal/app"
	"github.com/somcorpus/corpuswatch/internal/middleware"
	"github.com/somcorpus/corpuswatch/internal/services"
)

// RouterConfig holds the configuration for creating a new router.
type RouterConfig struct {
	Store         *postgres.Store
	RateLimiter   *middleware.RateLimiter
	StaleAfter    time.Duration
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// NewRouter creates a fully wired HTTP router with all handlers and middleware.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create repositories from store
	sourceRepo := cfg.Store.SourceRepository()
	recordRepo := cfg.Store.RecordRepository()
	recordReader := cfg.Store.RecordReader()

	// Create application services
	sourceSvc := app.NewSourceService(sourceRepo, logger)
	ingestSvc := app.NewIngestService(recordRepo, sourceRepo)
	analyticsSvc := app.NewAnalyticsService(recordReader)

	// Start background sweep of stale sources
	scheduler := services.NewScheduler(sourceRepo, cfg.StaleAfter, cfg.SweepInterval, logger)
	go scheduler.Start(context.Background())

	// Create HTTP handlers
	handlers := NewHandlers(sourceSvc, ingestSvc, analyticsSvc, logger)

	// Create auth middleware
	authMW := NewAuthMiddlewareFromService(sourceSvc, logger)

	mux := http.NewServeMux()

	// Health check (no auth, no rate limit)
	mux.HandleFunc("/api/v1/healthcheck", handlers.Healthcheck)

	rl := cfg.RateLimiter
	if rl != nil {
		// Pipeline endpoints
		mux.HandleFunc("/v1/register", rl.RegisterMiddleware(handlers.Register))
		mux.HandleFunc("/v1/activate", rl.RegisterMiddleware(authMW.RequireSignature(handlers.Activate)))
		mux.HandleFunc("/v1/telemetry", rl.TelemetryMiddleware(authMW.RequireSignature(handlers.Telemetry)))

		// Analytics endpoints
		mux.HandleFunc("/api/v1/analytics", rl.AnalyticsMiddleware(handlers.Analytics))
		mux.HandleFunc("/api/v1/rollup", rl.AnalyticsMiddleware(handlers.Rollup))
		mux.HandleFunc("/api/v1/summary", rl.AnalyticsMiddleware(handlers.Summary))
		mux.HandleFunc("/api/v1/history/", rl.AnalyticsMiddleware(handlers.History))

		// Badges
		mux.HandleFunc("/badge/", rl.AnalyticsMiddleware(handlers.Badge))
	} else {
		// No rate limiting (for testing)
		mux.HandleFunc("/v1/register", handlers.Register)
		mux.HandleFunc("/v1/activate", authMW.RequireSignature(handlers.Activate))
		mux.HandleFunc("/v1/telemetry", authMW.RequireSignature(handlers.Telemetry))
		mux.HandleFunc("/api/v1/analytics", handlers.Analytics)
		mux.HandleFunc("/api/v1/rollup", handlers.Rollup)
		mux.HandleFunc("/api/v1/summary", handlers.Summary)
		mux.HandleFunc("/api/v1/history/", handlers.History)
		mux.HandleFunc("/badge/", handlers.Badge)
	}

	return mux
}
