// Package watcher reloads the config file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Service watches a single file and calls reload after it settles.
type Service struct {
	path     string
	reload   func(ctx context.Context) error
	debounce time.Duration
	logger   *slog.Logger
}

// NewService creates a watcher for the file at path.
func NewService(path string, reload func(ctx context.Context) error, logger *slog.Logger) *Service {
	return &Service{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: 500 * time.Millisecond,
		logger:   logger.With(slog.String("component", "config-watcher")),
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled. The containing directory is watched
// rather than the file, so editors that replace the file on save are seen.
func (s *Service) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	s.logger.Info("watching config file", slog.String("path", s.path))

	// Starts stopped; reset on each relevant event.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", slog.Any("error", err))

		case <-timer.C:
			s.logger.Info("config file changed, reloading")
			if err := s.reload(ctx); err != nil {
				s.logger.Error("reloading config failed", slog.Any("error", err))
			}
		}
	}
}
