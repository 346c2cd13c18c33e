// Package api serves the janitor's HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/sydlexius/janitor/internal/api/middleware"
	"github.com/sydlexius/janitor/internal/cleanlog"
	"github.com/sydlexius/janitor/internal/history"
	"github.com/sydlexius/janitor/internal/janitor"
	"github.com/sydlexius/janitor/internal/logging"
	"github.com/sydlexius/janitor/internal/maintenance"
	"github.com/sydlexius/janitor/internal/settings"
)

// Runner starts cleaning runs.
type Runner interface {
	Run(ctx context.Context, req janitor.Request) (*janitor.Result, error)
	Running() bool
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Runner      Runner
	Settings    *settings.Service
	History     *history.Service
	CleanLog    *cleanlog.Log
	Maintenance *maintenance.Service // optional
	LogManager  *logging.Manager     // optional
	CORSOrigins []string
	APIToken    string
	Version     string
	// BaseContext outlives single requests; background runs use it.
	BaseContext context.Context
	Logger      *slog.Logger
}

// Router sets up all HTTP routes for the application.
type Router struct {
	runner      Runner
	settings    *settings.Service
	history     *history.Service
	cleanLog    *cleanlog.Log
	maintenance *maintenance.Service
	logManager  *logging.Manager
	corsOrigins []string
	apiToken    string
	version     string
	baseCtx     context.Context
	logger      *slog.Logger
}

// NewRouter creates a new Router.
func NewRouter(deps RouterDeps) *Router {
	ctx := deps.BaseContext
	if ctx == nil {
		ctx = context.Background()
	}
	return &Router{
		runner:      deps.Runner,
		settings:    deps.Settings,
		history:     deps.History,
		cleanLog:    deps.CleanLog,
		maintenance: deps.Maintenance,
		logManager:  deps.LogManager,
		corsOrigins: deps.CORSOrigins,
		apiToken:    deps.APIToken,
		version:     deps.Version,
		baseCtx:     ctx,
		logger:      deps.Logger.With(slog.String("component", "api")),
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Token(r.apiToken)
	limiter := middleware.NewRateLimiter(r.baseCtx, 10*time.Second, 3)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux.HandleFunc("GET /api/v1/health", r.handleHealth)

	mux.Handle("POST /api/v1/clean", auth(limiter.Middleware(http.HandlerFunc(r.handleClean))))

	mux.Handle("GET /api/v1/runs", protect(r.handleListRuns))
	mux.Handle("GET /api/v1/runs/{id}", protect(r.handleGetRun))

	mux.Handle("GET /api/v1/log", protect(r.handleGetLog))
	mux.Handle("DELETE /api/v1/log", protect(r.handleClearLog))
	mux.Handle("POST /api/v1/log/trim", protect(r.handleTrimLog))

	mux.Handle("GET /api/v1/settings", protect(r.handleGetSettings))
	mux.Handle("PUT /api/v1/settings", protect(r.handleUpdateSettings))
	mux.Handle("POST /api/v1/settings/reset-exclusions", protect(r.handleResetExclusions))

	mux.Handle("GET /api/v1/maintenance", protect(r.handleMaintenanceStatus))
	mux.Handle("POST /api/v1/maintenance/optimize", protect(r.handleMaintenanceOptimize))

	mux.Handle("GET /api/v1/logging", protect(r.handleGetLogging))
	mux.Handle("PUT /api/v1/logging", protect(r.handleUpdateLogging))

	var h http.Handler = middleware.SecurityHeaders(mux)
	// Cross-origin access stays off unless origins are configured.
	if len(r.corsOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: r.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Api-Key"},
		})
		h = c.Handler(h)
	}
	return middleware.Logging(r.logger)(h)
}
