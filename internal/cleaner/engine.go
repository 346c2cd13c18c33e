package cleaner

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/settings"
	"github.com/sydlexius/janitor/internal/stack"
)

// ActResult is what a single action did.
type ActResult struct {
	Succeeded bool
	// Affected lists the original paths of every stack element that was
	// cleaned, in stack order. Empty unless Succeeded.
	Affected []string
	// Destination is the folder files were moved to; empty for deletes.
	Destination string
}

// Engine deletes or moves the files of a single video.
type Engine struct {
	fs       filesystem.FileSystem
	settings settings.Settings
	prompter Prompter
	sweeper  *Sweeper
	reaper   *Reaper
	logger   *slog.Logger
}

// NewEngine creates an Engine for one run.
func NewEngine(rc RunContext) *Engine {
	logger := rc.logger()
	s := rc.Settings
	return &Engine{
		fs:       rc.FS,
		settings: s,
		prompter: rc.Prompter,
		sweeper:  NewSweeper(rc.FS, s.CleanRelated, logger),
		reaper:   NewReaper(rc.FS, s.DeleteFolders, s.IgnoredExtensions(), logger),
		logger:   logger,
	}
}

// Act applies the configured cleaning type to the video at path.
//
// ErrNoDestination means the whole run must stop. Any other error is a
// failed move of this video only.
func (e *Engine) Act(path, title string) (ActResult, error) {
	if e.settings.CleaningType == settings.Move {
		return e.move(path, title)
	}
	return e.delete(path), nil
}

// delete succeeds when at least one element of the stack was removed.
func (e *Engine) delete(path string) ActResult {
	elements := stack.Split(path)
	deleted := 0
	for _, p := range elements {
		if !e.fs.Exists(p) {
			e.logger.Warn("file to delete does not exist", slog.String("path", p))
			continue
		}
		if err := e.fs.Delete(p); err != nil {
			e.logger.Error("could not delete file", slog.String("path", p), slog.Any("error", err))
			continue
		}
		e.logger.Info("deleted file", slog.String("path", p))
		deleted++
	}
	if deleted == 0 {
		return ActResult{}
	}

	e.sweeper.Sweep(path, "")
	e.reaper.Reap(stack.Dir(path))
	return ActResult{Succeeded: true, Affected: elements}
}

// move succeeds only when every element of the stack reached the
// destination.
func (e *Engine) move(path, title string) (ActResult, error) {
	holding := e.settings.HoldingFolder
	if holding == "" {
		e.logger.Warn("cleaning type is move but no holding folder is set")
		if e.prompter != nil && e.prompter.ConfirmDestinationSetup() {
			e.logger.Info("holding folder to be configured before the next run")
		}
		return ActResult{}, ErrNoDestination
	}

	dest := holding
	if e.settings.CreateSubdirs {
		dest = filepath.Join(holding, filesystem.LegalName(title))
	}

	elements := stack.Split(path)
	moved := 0
	for _, p := range elements {
		if !e.fs.Exists(p) {
			e.logger.Warn("file to move does not exist", slog.String("path", p))
			continue
		}
		if !e.fs.Exists(dest) {
			if err := e.fs.MkdirAll(dest); err != nil {
				return ActResult{}, fmt.Errorf("%w: %s: %v", ErrDestinationUnavailable, dest, err)
			}
		}

		target := filepath.Join(dest, filepath.Base(p))
		if e.fs.Exists(target) {
			if err := e.resolveCollision(p, target); err != nil {
				return ActResult{}, err
			}
			moved++
			continue
		}

		if err := e.fs.Rename(p, target); err != nil {
			e.logger.Debug("rename failed, copying instead", slog.String("path", p), slog.Any("error", err))
			if err := e.fs.Copy(p, target); err != nil {
				return ActResult{}, fmt.Errorf("%w: %s: %v", ErrCopyFailed, p, err)
			}
			if err := e.fs.Delete(p); err != nil {
				e.logger.Warn("copied file but could not delete the original; remove it manually",
					slog.String("path", p), slog.Any("error", err))
			}
		}
		e.logger.Info("moved file", slog.String("path", p), slog.String("to", target))
		moved++
	}

	if moved != len(elements) {
		return ActResult{}, fmt.Errorf("%w: moved %d of %d files of %s", ErrIncompleteMove, moved, len(elements), path)
	}

	e.sweeper.Sweep(path, dest)
	e.reaper.Reap(stack.Dir(path))
	return ActResult{Succeeded: true, Affected: elements, Destination: dest}, nil
}

// resolveCollision keeps the larger of source and target at target.
func (e *Engine) resolveCollision(source, target string) error {
	srcSize, err := e.fs.Size(source)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCollision, source, err)
	}
	dstSize, err := e.fs.Size(target)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCollision, target, err)
	}

	if srcSize > dstSize {
		e.logger.Info("replacing smaller file at destination",
			slog.String("path", source), slog.Int64("size", srcSize), slog.Int64("existing", dstSize))
		if err := e.fs.Delete(target); err != nil {
			return fmt.Errorf("%w: deleting %s: %v", ErrCollision, target, err)
		}
		if err := relocate(e.fs, source, target); err != nil {
			return fmt.Errorf("%w: moving %s: %v", ErrCollision, source, err)
		}
		return nil
	}

	e.logger.Info("destination already holds an equal or larger file, deleting source",
		slog.String("path", source), slog.Int64("size", srcSize), slog.Int64("existing", dstSize))
	if err := e.fs.Delete(source); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", ErrCollision, source, err)
	}
	return nil
}
