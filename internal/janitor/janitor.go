// Package janitor runs cleanings end to end: pre-run checks, the cleaning
// itself, bookkeeping and the follow-up library clean.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/janitor/internal/cleaner"
	"github.com/sydlexius/janitor/internal/disk"
	"github.com/sydlexius/janitor/internal/event"
	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/history"
	"github.com/sydlexius/janitor/internal/kodi"
	"github.com/sydlexius/janitor/internal/settings"
	"github.com/sydlexius/janitor/internal/video"
)

// ErrRunInProgress is returned when a run is requested while another is
// still going.
var ErrRunInProgress = errors.New("a cleaning run is already in progress")

// Trigger records what started a run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
	TriggerAPI       Trigger = "api"
)

// Skip reasons.
const (
	SkipPlaying       = "kodi is playing"
	SkipDiskSpaceOkay = "enough free disk space"
)

// Host is the part of the Kodi client a run uses.
type Host interface {
	video.QueryExecutor
	IsPlaying(ctx context.Context) (bool, error)
	IsScanningVideo(ctx context.Context) (bool, error)
	CleanLibrary(ctx context.Context) error
	Notify(ctx context.Context, n kodi.Notification) error
}

// SettingsLoader returns a fresh settings snapshot.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Recorder stores finished runs.
type Recorder interface {
	Record(ctx context.Context, r *history.Run) error
	Prune(ctx context.Context, keep int) (int64, error)
}

// CleanLog receives the files of every run.
type CleanLog interface {
	Prepend(files []string) error
}

// DebugSwitch raises logging to debug for the duration of a run.
type DebugSwitch interface {
	SetDebug(on bool)
}

// Options wires a Service.
type Options struct {
	Host        Host
	Settings    SettingsLoader
	FS          filesystem.FileSystem
	Log         CleanLog
	History     Recorder    // optional
	Bus         *event.Bus  // optional
	Debug       DebugSwitch // optional
	SettleDelay time.Duration
	HistoryKeep int
}

// Request describes a single run.
type Request struct {
	Trigger  Trigger
	Prompter cleaner.Prompter // optional
	Progress cleaner.Progress // optional
}

// Result is what a caller learns about a run.
type Result struct {
	RunID string `json:"run_id,omitempty"`
	// Skipped is set, and nothing else is, when a pre-run check declined
	// the run.
	Skipped string          `json:"skipped,omitempty"`
	Status  string          `json:"status,omitempty"`
	Summary map[string]int  `json:"summary,omitempty"`
	Message string          `json:"message,omitempty"`
	Outcome cleaner.Outcome `json:"-"`
}

// Service runs cleanings, one at a time.
type Service struct {
	opts      Options
	enum      *video.Enumerator
	running   atomic.Bool
	now       func() time.Time
	freeSpace func(path string, logger *slog.Logger) float64
	logger    *slog.Logger
}

// NewService creates a run service.
func NewService(opts Options, logger *slog.Logger) *Service {
	logger = logger.With(slog.String("component", "janitor"))
	return &Service{
		opts:      opts,
		enum:      video.NewEnumerator(opts.Host, logger),
		now:       time.Now,
		freeSpace: disk.FreePercent,
		logger:    logger,
	}
}

// Running reports whether a run is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Run performs one cleaning. It returns ErrRunInProgress when another run
// holds the service, and an error when settings, playback state or the
// library could not be read.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	st, err := s.opts.Settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if s.opts.Debug != nil && st.DebuggingEnabled {
		s.opts.Debug.SetDebug(true)
		defer s.opts.Debug.SetDebug(false)
	}

	if reason, err := s.precheck(ctx, st); err != nil || reason != "" {
		if reason != "" {
			s.logger.Info("skipping cleaning", slog.String("reason", reason))
			return &Result{Skipped: reason}, nil
		}
		return nil, err
	}

	runID := uuid.New().String()
	logger := s.logger.With(slog.String("run_id", runID))
	logger.Info("starting cleaning", slog.String("trigger", string(req.Trigger)), slog.String("cleaning_type", string(st.CleaningType)))

	rc := cleaner.RunContext{
		Settings: st,
		FS:       s.opts.FS,
		Prompter: req.Prompter,
		Progress: req.Progress,
		Logger:   logger,
	}
	if s.opts.Bus != nil {
		rc.Observer = busObserver{bus: s.opts.Bus, runID: runID}
	}

	started := s.now()
	outcome, runErr := cleaner.Run(ctx, rc, s.enum)
	finished := s.now()

	// Bookkeeping must survive a shutdown that canceled the run.
	bg := context.WithoutCancel(ctx)

	files := outcome.Files()
	if err := s.opts.Log.Prepend(files); err != nil {
		logger.Error("writing cleaning log", slog.Any("error", err))
	}

	res := &Result{
		RunID:   runID,
		Status:  outcome.Status.String(),
		Summary: map[string]int{},
		Outcome: outcome,
	}
	for c, n := range outcome.Summary() {
		res.Summary[c.String()] = n
	}
	if outcome.Status != cleaner.Aborted {
		res.Message = Summarize(outcome.Summary())
		if res.Message == "" {
			res.Message = NothingToDo
		}
	}
	if runErr != nil {
		res.Status = "failed"
	}

	s.record(bg, logger, st, req.Trigger, res, runErr, started, finished)
	s.publishFinished(res, runErr)

	if len(files) > 0 && st.CleanLibrary {
		s.cleanLibrary(ctx, logger)
	}

	if runErr != nil {
		logger.Error("cleaning failed", slog.Any("error", runErr))
		return res, runErr
	}
	logger.Info("cleaning finished", slog.String("status", res.Status), slog.String("summary", res.Message))
	return res, nil
}

// precheck returns a non-empty reason when the run should be skipped.
func (s *Service) precheck(ctx context.Context, st settings.Settings) (string, error) {
	if st.CleanWhenIdle {
		playing, err := s.opts.Host.IsPlaying(ctx)
		if err != nil {
			return "", fmt.Errorf("checking playback: %w", err)
		}
		if playing {
			return SkipPlaying, nil
		}
	}
	if st.CleanWhenLowDiskSpace {
		free := s.freeSpace(st.DiskSpaceCheckPath, s.logger)
		s.logger.Debug("free disk space", slog.String("path", st.DiskSpaceCheckPath), slog.Float64("percent", free))
		if free > float64(st.DiskSpaceThreshold) {
			return SkipDiskSpaceOkay, nil
		}
	}
	return "", nil
}

func (s *Service) record(ctx context.Context, logger *slog.Logger, st settings.Settings, trigger Trigger, res *Result, runErr error, started, finished time.Time) {
	if s.opts.History == nil {
		return
	}
	run := &history.Run{
		ID:           res.RunID,
		Trigger:      string(trigger),
		CleaningType: string(st.CleaningType),
		Status:       res.Status,
		StartedAt:    started,
		FinishedAt:   finished,
		Counts:       res.Summary,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, co := range res.Outcome.Categories {
		for _, f := range co.Files {
			run.Files = append(run.Files, history.File{Category: co.Category.String(), Path: f})
		}
	}
	if err := s.opts.History.Record(ctx, run); err != nil {
		logger.Error("recording run history", slog.Any("error", err))
		return
	}
	if s.opts.HistoryKeep > 0 {
		if n, err := s.opts.History.Prune(ctx, s.opts.HistoryKeep); err != nil {
			logger.Warn("pruning run history", slog.Any("error", err))
		} else if n > 0 {
			logger.Debug("pruned run history", slog.Int64("removed", n))
		}
	}
}

func (s *Service) publishFinished(res *Result, runErr error) {
	if s.opts.Bus == nil {
		return
	}
	e := event.Event{
		Type:  event.RunCompleted,
		RunID: res.RunID,
		Data: map[string]any{
			"status":  res.Status,
			"summary": res.Summary,
			"total":   res.Outcome.Total(),
			"message": res.Message,
		},
	}
	if res.Outcome.Status == cleaner.Aborted || runErr != nil {
		e.Type = event.RunAborted
	}
	if runErr != nil {
		e.Data["error"] = runErr.Error()
	}
	s.opts.Bus.Publish(e)
}

// cleanLibrary asks Kodi to drop entries whose files are gone, after giving
// the file system a moment to settle.
func (s *Service) cleanLibrary(ctx context.Context, logger *slog.Logger) {
	if s.opts.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.SettleDelay):
		}
	}
	scanning, err := s.opts.Host.IsScanningVideo(ctx)
	if err != nil {
		logger.Warn("checking library scan state", slog.Any("error", err))
		return
	}
	if scanning {
		logger.Warn("video library is being updated, skipping library cleanup")
		return
	}
	if err := s.opts.Host.CleanLibrary(ctx); err != nil {
		logger.Warn("cleaning video library", slog.Any("error", err))
		return
	}
	logger.Debug("video library clean requested")
}
