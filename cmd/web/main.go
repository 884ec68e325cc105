package main

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hardware-sim/internal/cache"
	"hardware-sim/internal/config"
	"hardware-sim/internal/middleware"
	"hardware-sim/internal/observability"
	"hardware-sim/internal/server"
	"hardware-sim/internal/services"
	"hardware-sim/internal/simulation"
	"hardware-sim/internal/store"
	"hardware-sim/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	startupTimeout = 60 * time.Second
)

// dashboardHandler renders the page with slider positions taken from the
// configured defaults.
func dashboardHandler(cfg *config.Config) http.HandlerFunc {
	view := templates.DefaultDashboardView()
	view.Demand = cfg.Simulation.DefaultDemand
	view.Inflation = int(math.Round(cfg.Simulation.DefaultPriceIncrease * 100))
	view.ChurnThreshold = cfg.Analytics.ChurnThresholdDays
	view.ForecastWeeks = cfg.Analytics.ForecastWeeks

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := templates.Dashboard(view).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// loadInitialScenario loads the stored scenario, generating the default one
// when the store is empty and startup runs are enabled.
func loadInitialScenario(ctx context.Context, analytics *services.Analytics, cfg *config.Config, logger *slog.Logger) error {
	err := analytics.Reload(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, services.ErrNoData):
		return err
	case !cfg.Simulation.RunOnStartup:
		logger.Warn("no stored scenario, dashboard will ask for a simulation run")
		return nil
	}

	logger.Info("no stored scenario, running default simulation")
	_, err = analytics.Simulate(ctx, simulation.ParamsFromConfig(cfg.Simulation))
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"store_driver", cfg.Storage.Driver,
		"cache_enabled", cfg.Cache.Enabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	reportCache, err := cache.Connect(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Warn("report cache unavailable, continuing without it", "error", err)
		reportCache = cache.Disabled()
	}

	analytics := services.NewAnalytics(st, reportCache, services.OptionsFromConfig(cfg.Analytics), logger)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	start := time.Now()
	if err := loadInitialScenario(startCtx, analytics, cfg, logger); err != nil {
		cancel()
		logger.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}
	cancel()
	logger.Info("scenario loaded", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(cfg),
	}
	srv := server.NewServer(analytics, simulation.ParamsFromConfig(cfg.Simulation), logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.Metrics(srv.Routes()...),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("store", func(ctx context.Context) error {
		logger.Info("closing store")
		return st.Close()
	})
	gracefulServer.RegisterShutdownHook("cache", func(ctx context.Context) error {
		return reportCache.Close()
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
