// Package logging builds the process logger and lets its level, format and
// destination change while the process runs.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging setup.
type Config struct {
	Level          string `yaml:"level" json:"level"`
	Format         string `yaml:"format" json:"format"`
	FilePath       string `yaml:"file_path" json:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" json:"file_max_size_mb"`
	FileMaxFiles   int    `yaml:"file_max_files" json:"file_max_files"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" json:"file_max_age_days"`
}

// DefaultConfig returns text logging at info level with rotation limits
// for when a file is configured.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "text",
		FileMaxSizeMB:  20,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// root is the handler all derived loggers resolve at record time.
type root struct {
	h atomic.Pointer[slog.Handler]
}

// handler applies the attrs and groups of a derived logger on top of the
// current root handler, so loggers created with With keep following swaps.
type handler struct {
	root *root
	ops  []func(slog.Handler) slog.Handler
}

func (h *handler) current() slog.Handler {
	cur := *h.root.h.Load()
	for _, op := range h.ops {
		cur = op(cur)
	}
	return cur
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*h.root.h.Load()).Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(in slog.Handler) slog.Handler { return in.WithAttrs(attrs) })
}

func (h *handler) WithGroup(name string) slog.Handler {
	return h.with(func(in slog.Handler) slog.Handler { return in.WithGroup(name) })
}

func (h *handler) with(op func(slog.Handler) slog.Handler) slog.Handler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &handler{root: h.root, ops: append(ops, op)}
}

// Manager owns the logger and applies configuration changes to it.
type Manager struct {
	mu       sync.Mutex
	root     *root
	levelVar *slog.LevelVar
	config   Config
	debug    bool
	console  io.Writer
	closer   io.Closer
}

// NewManager creates a Manager writing to console (and the configured file,
// if any) and returns it with a ready-to-use logger.
func NewManager(cfg Config, console io.Writer) (*Manager, *slog.Logger) {
	if console == nil {
		console = os.Stderr
	}
	m := &Manager{
		root:     &root{},
		levelVar: &slog.LevelVar{},
		console:  console,
	}
	m.apply(cfg, true)
	return m, slog.New(&handler{root: m.root})
}

// Reconfigure applies cfg. A level change takes effect immediately; format
// or file changes rebuild the output.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rebuild := cfg.Format != m.config.Format ||
		cfg.FilePath != m.config.FilePath ||
		cfg.FileMaxSizeMB != m.config.FileMaxSizeMB ||
		cfg.FileMaxFiles != m.config.FileMaxFiles ||
		cfg.FileMaxAgeDays != m.config.FileMaxAgeDays
	m.apply(cfg, rebuild)
}

// SetDebug forces debug level on or off regardless of the configured level.
func (m *Manager) SetDebug(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = on
	m.levelVar.Set(m.effectiveLevel())
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file, if one is open.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

// apply must be called with m.mu held (or before m is shared).
func (m *Manager) apply(cfg Config, rebuild bool) {
	m.config = cfg
	m.levelVar.Set(m.effectiveLevel())
	if !rebuild {
		return
	}

	if m.closer != nil {
		_ = m.closer.Close()
		m.closer = nil
	}
	w := m.console
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.FileMaxSizeMB, 20),
			MaxBackups: orDefault(cfg.FileMaxFiles, 3),
			MaxAge:     orDefault(cfg.FileMaxAgeDays, 30),
		}
		w = io.MultiWriter(m.console, lj)
		m.closer = lj
	}

	opts := &slog.HandlerOptions{Level: m.levelVar}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	m.root.h.Store(&h)
}

func (m *Manager) effectiveLevel() slog.Level {
	if m.debug {
		return slog.LevelDebug
	}
	return ParseLevel(m.config.Level)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// ValidLevel reports whether s is one of debug, info, warn or error.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is text or json.
func ValidFormat(s string) bool {
	switch strings.ToLower(s) {
	case "text", "json":
		return true
	}
	return false
}
