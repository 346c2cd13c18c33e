package cleaner

import (
	"log/slog"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/stack"
)

// Gatekeeper decides whether a video's files may be touched.
type Gatekeeper struct {
	fs             filesystem.FileSystem
	keepHardLinked bool
	logger         *slog.Logger
}

// NewGatekeeper creates a Gatekeeper. With keepHardLinked set, files that
// have more than one hard link are never approved.
func NewGatekeeper(fs filesystem.FileSystem, keepHardLinked bool, logger *slog.Logger) *Gatekeeper {
	return &Gatekeeper{fs: fs, keepHardLinked: keepHardLinked, logger: logger}
}

// Approve reports whether path still exists and, if required, is not hard
// linked elsewhere.
func (g *Gatekeeper) Approve(path string) bool {
	elements := stack.Split(path)
	if !g.fs.Exists(elements[0]) {
		g.logger.Warn("file no longer exists, skipping", slog.String("path", elements[0]))
		return false
	}
	if !g.keepHardLinked {
		return true
	}
	for _, p := range elements {
		n, err := g.fs.LinkCount(p)
		if err != nil {
			g.logger.Warn("could not read link count, skipping", slog.String("path", p), slog.Any("error", err))
			return false
		}
		if n != 1 {
			g.logger.Info("file is hard linked, skipping", slog.String("path", p), slog.Int("links", n))
			return false
		}
	}
	return true
}
