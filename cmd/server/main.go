package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/radial/internal/chart"
	"github.com/JonMunkholm/radial/internal/config"
	"github.com/JonMunkholm/radial/internal/core"
	"github.com/JonMunkholm/radial/internal/logging"
	"github.com/JonMunkholm/radial/internal/sqlsource"
	"github.com/JonMunkholm/radial/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"templates_dir", cfg.Templates.Dir,
		"max_loads", cfg.Upload.MaxConcurrent,
		"max_draws", cfg.Render.MaxConcurrent,
		"max_rasters", cfg.Render.MaxRasters,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"database", cfg.Database.Enabled(),
	)

	ctx := context.Background()

	// The database is optional; without it the studio loads files only.
	var query core.QuerySource
	if cfg.Database.Enabled() {
		pool, err := sqlsource.Connect(ctx, sqlsource.PoolConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
		query = sqlsource.New(pool, cfg.Database.QueryTimeout, cfg.Database.MaxRows)
	}

	registry := chart.NewDirRegistry(cfg.Templates.Dir)
	names, err := registry.List()
	if err != nil {
		slog.Error("failed to list templates", "error", err)
		os.Exit(1)
	}
	slog.Info("templates registered", "count", len(names), "renderers", chart.RendererNames())

	service := core.NewService(registry, query, core.ServiceConfig{
		MaxSourceSize:   cfg.Upload.MaxFileSize,
		SessionTTL:      cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
		Workload: core.WorkloadConfig{
			MaxLoads:   cfg.Upload.MaxConcurrent,
			MaxDraws:   cfg.Render.MaxConcurrent,
			MaxRasters: cfg.Render.MaxRasters,
			Wait:       cfg.Upload.MaxWaitTime,
		},
		Defaults: core.RenderDefaults{
			Template:   cfg.Templates.Default,
			ShowLegend: cfg.Render.ShowLegend,
			YMin:       cfg.Render.YMin,
			YMax:       cfg.Render.YMax,
		},
	})

	server := web.NewServer(service, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartJanitor(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight loads and renders finish
		if status := service.Workload().Status(); status.InFlight() > 0 {
			slog.Info("waiting for work in flight",
				"loads", status.Load.Active,
				"draws", status.Draw.Active,
				"rasters", status.Raster.Active,
			)
			if err := service.Workload().Drain(shutdownCtx); err != nil {
				slog.Warn("work did not complete in time", "error", err)
			} else {
				slog.Info("all work completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
