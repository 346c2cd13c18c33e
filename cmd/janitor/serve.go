package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sydlexius/janitor/internal/api"
	"github.com/sydlexius/janitor/internal/config"
	"github.com/sydlexius/janitor/internal/janitor"
	"github.com/sydlexius/janitor/internal/maintenance"
	"github.com/sydlexius/janitor/internal/scheduler"
	"github.com/sydlexius/janitor/internal/watcher"
	"github.com/sydlexius/janitor/internal/webhook"
)

const optimizeInterval = 24 * time.Hour

func runServe() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.kodi.Ping(ctx); err != nil {
		logger.Warn("kodi not reachable yet", slog.String("url", cfg.Kodi.URL), slog.Any("error", err))
	}

	dispatcher := webhook.NewDispatcher(cfg.Webhook.URLs, cfg.Webhook.Events, logger)
	dispatcher.Register(a.bus)
	go a.bus.Start(ctx)

	maint := maintenance.NewService(a.db, cfg.Database.Path, logger)

	sched := scheduler.New(logger)
	if cfg.Schedule.Enabled {
		sched.Add(scheduler.Job{
			Name:     "clean",
			Interval: cfg.Schedule.Interval(),
			Run: func(ctx context.Context) error {
				_, err := a.runner.Run(ctx, janitor.Request{Trigger: janitor.TriggerScheduled})
				if errors.Is(err, janitor.ErrRunInProgress) {
					logger.Info("scheduled cleaning skipped, a run is in progress")
					return nil
				}
				return err
			},
		})
	}
	sched.Add(scheduler.Job{Name: "optimize", Interval: optimizeInterval, Run: maint.Optimize})
	go sched.Start(ctx)

	reload := func(context.Context) error {
		next, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.logManager.Reconfigure(next.Logging)
		logger.Info("logging configuration reloaded", slog.String("level", next.Logging.Level))
		return nil
	}
	go func() {
		if err := watcher.NewService(a.configPath, reload, logger).Start(ctx); err != nil {
			logger.Warn("config watcher not running", slog.Any("error", err))
		}
	}()

	router := api.NewRouter(api.RouterDeps{
		Runner:      a.runner,
		Settings:    a.settings,
		History:     a.history,
		CleanLog:    a.cleanLog,
		Maintenance: maint,
		LogManager:  a.logManager,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIToken:    cfg.Server.APIToken,
		Version:     version,
		BaseContext: ctx,
		Logger:      logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // ?wait=true runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	select {
	case <-a.bus.Drained():
	case <-shutdownCtx.Done():
		logger.Warn("event bus did not drain before shutdown")
	}
	dispatcher.Wait()
	return err
}
