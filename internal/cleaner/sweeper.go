package cleaner

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/stack"
)

// Sweeper handles the sidecar files of a cleaned video: subtitles, nfo
// files, artwork and anything else whose name starts with the video's.
type Sweeper struct {
	fs      filesystem.FileSystem
	enabled bool
	logger  *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(fs filesystem.FileSystem, enabled bool, logger *slog.Logger) *Sweeper {
	return &Sweeper{fs: fs, enabled: enabled, logger: logger}
}

// Sweep deletes the files related to source, or moves them into dest when
// dest is not empty. The match is a plain name prefix.
func (s *Sweeper) Sweep(source, dest string) {
	if !s.enabled {
		return
	}
	prefix := stack.RelatedPrefix(source)
	if prefix == "" {
		s.logger.Warn("no usable name prefix, not sweeping related files", slog.String("path", source))
		return
	}

	elements := stack.Split(source)
	dir := filepath.Dir(elements[0])
	_, files, err := s.fs.List(dir)
	if err != nil {
		s.logger.Warn("could not list folder", slog.String("path", dir), slog.Any("error", err))
		return
	}

	var movedTo []string
	if dest != "" {
		for _, e := range elements {
			movedTo = append(movedTo, filepath.Join(dest, filepath.Base(e)))
		}
	}

	for _, name := range files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		path := filepath.Join(dir, name)
		if slices.Contains(elements, path) {
			continue
		}
		if dest == "" {
			if err := s.fs.Delete(path); err != nil {
				s.logger.Warn("could not delete related file", slog.String("path", path), slog.Any("error", err))
				continue
			}
			s.logger.Debug("deleted related file", slog.String("path", path))
			continue
		}

		target := filepath.Join(dest, name)
		if slices.Contains(movedTo, target) {
			continue
		}
		if err := relocate(s.fs, path, target); err != nil {
			s.logger.Warn("could not move related file", slog.String("path", path), slog.String("to", target), slog.Any("error", err))
			continue
		}
		s.logger.Debug("moved related file", slog.String("path", path), slog.String("to", target))
	}
}

// relocate renames src to dst, copying and deleting when a rename is not
// possible (for example across devices).
func relocate(fs filesystem.FileSystem, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}
	if err := fs.Copy(src, dst); err != nil {
		return err
	}
	return fs.Delete(src)
}
