package cleaner

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sydlexius/janitor/internal/filesystem"
)

// Reaper removes directories that no longer hold anything worth keeping.
type Reaper struct {
	fs      filesystem.FileSystem
	enabled bool
	ignored []string
	logger  *slog.Logger
}

// NewReaper creates a Reaper. Files whose extension is in ignored (with the
// leading dot, lower case) do not keep a directory alive.
func NewReaper(fs filesystem.FileSystem, enabled bool, ignored []string, logger *slog.Logger) *Reaper {
	return &Reaper{fs: fs, enabled: enabled, ignored: ignored, logger: logger}
}

// Reap removes dir and everything below it if every file it directly holds
// is ignorable and every subdirectory can be reaped in turn. Every
// subdirectory is tried even when a sibling has to stay. It reports
// whether dir was removed. Errors are logged, never returned.
func (r *Reaper) Reap(dir string) bool {
	if !r.enabled {
		return false
	}
	return r.reap(dir)
}

func (r *Reaper) reap(dir string) bool {
	subdirs, files, err := r.fs.List(dir)
	if err != nil {
		r.logger.Warn("could not list folder", slog.String("path", dir), slog.Any("error", err))
		return false
	}

	for _, f := range files {
		if !r.ignorable(f) {
			r.logger.Debug("folder is not empty", slog.String("path", dir), slog.String("file", f))
			return false
		}
	}

	kept := false
	for _, d := range subdirs {
		if !r.reap(filepath.Join(dir, d)) {
			kept = true
		}
	}
	if kept {
		r.logger.Debug("folder keeps a subfolder", slog.String("path", dir))
		return false
	}
	for _, f := range files {
		if err := r.fs.Delete(filepath.Join(dir, f)); err != nil {
			r.logger.Warn("could not delete file", slog.String("path", filepath.Join(dir, f)), slog.Any("error", err))
			return false
		}
	}
	if err := r.fs.RemoveDir(dir); err != nil {
		r.logger.Warn("could not remove folder", slog.String("path", dir), slog.Any("error", err))
		return false
	}
	r.logger.Info("removed empty folder", slog.String("path", dir))
	return true
}

func (r *Reaper) ignorable(name string) bool {
	ext := filesystem.Ext(name)
	return ext == "" || slices.Contains(r.ignored, strings.ToLower(ext))
}
