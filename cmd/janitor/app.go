package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/sydlexius/janitor/internal/cleanlog"
	"github.com/sydlexius/janitor/internal/config"
	"github.com/sydlexius/janitor/internal/database"
	"github.com/sydlexius/janitor/internal/event"
	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/history"
	"github.com/sydlexius/janitor/internal/janitor"
	"github.com/sydlexius/janitor/internal/kodi"
	"github.com/sydlexius/janitor/internal/logging"
	"github.com/sydlexius/janitor/internal/settings"
)

// app holds the services every command shares.
type app struct {
	configPath string
	cfg        *config.Config
	logManager *logging.Manager
	logger     *slog.Logger
	db         *sql.DB
	settings   *settings.Service
	history    *history.Service
	cleanLog   *cleanlog.Log
	kodi       *kodi.Client
	bus        *event.Bus
	runner     *janitor.Service
}

func newApp() (*app, error) {
	a := &app{configPath: config.Path()}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.logManager, a.logger = logging.NewManager(cfg.Logging, os.Stderr)
	slog.SetDefault(a.logger)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		a.logManager.Close() //nolint:errcheck
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	if err := database.Migrate(db); err != nil {
		a.close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	a.settings = settings.NewService(db, a.logger)
	if err := a.settings.SeedDefaults(context.Background()); err != nil {
		a.close()
		return nil, fmt.Errorf("seeding settings: %w", err)
	}
	a.history = history.NewService(db)
	a.cleanLog = cleanlog.New(cfg.Cleaning.LogPath, a.logger)
	a.kodi = kodi.New(kodi.Options{
		URL:               cfg.Kodi.URL,
		Username:          cfg.Kodi.Username,
		Password:          cfg.Kodi.Password,
		Timeout:           cfg.Kodi.Timeout,
		RequestsPerSecond: cfg.Kodi.RequestsPerSecond,
	}, a.logger)
	a.bus = event.NewBus(a.logger, 256)
	a.runner = janitor.NewService(janitor.Options{
		Host:        a.kodi,
		Settings:    a.settings,
		FS:          filesystem.OS{},
		Log:         a.cleanLog,
		History:     a.history,
		Bus:         a.bus,
		Debug:       a.logManager,
		SettleDelay: cfg.Cleaning.SettleDelay,
		HistoryKeep: cfg.Cleaning.HistoryKeep,
	}, a.logger)
	janitor.NewNotifier(a.kodi, a.settings, a.logger).Register(a.bus)

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", "error", err)
		}
	}
	a.logManager.Close() //nolint:errcheck
}
