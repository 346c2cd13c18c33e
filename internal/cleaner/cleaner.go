// Package cleaner removes or relocates expired videos and tidies up what
// they leave behind.
package cleaner

import (
	"errors"
	"log/slog"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/settings"
	"github.com/sydlexius/janitor/internal/video"
)

var (
	// ErrNoDestination aborts a move run that has no holding folder.
	ErrNoDestination = errors.New("no holding folder configured")
	// ErrDestinationUnavailable means the destination folder could not be created.
	ErrDestinationUnavailable = errors.New("destination folder unavailable")
	// ErrCopyFailed means both the rename and the copy fallback failed.
	ErrCopyFailed = errors.New("copy to destination failed")
	// ErrCollision means an existing file at the destination could not be resolved.
	ErrCollision = errors.New("destination collision unresolved")
	// ErrIncompleteMove means some elements of a stack were not moved.
	ErrIncompleteMove = errors.New("not every file was moved")
)

// Status is the state of a run or category.
type Status int

const (
	Success Status = iota
	PartialFailure
	Aborted
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case PartialFailure:
		return "partial_failure"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Progress receives progress updates and is polled for cancellation
// between videos.
type Progress interface {
	Update(percent int, heading, message string)
	Canceled() bool
}

// Prompter asks the user questions the run cannot answer itself.
type Prompter interface {
	// ConfirmDestinationSetup tells the user no holding folder is set and
	// asks whether they want to configure one now.
	ConfirmDestinationSetup() bool
	// ReportMoveFailure describes a video that could not be moved.
	ReportMoveFailure(title string, err error)
}

// Observer is told about each video as it is handled.
type Observer interface {
	VideoCleaned(rec video.Record, files []string)
	MoveFailed(rec video.Record, err error)
}

// RunContext carries everything a single cleaning run needs.
type RunContext struct {
	Settings settings.Settings
	FS       filesystem.FileSystem
	Prompter Prompter // optional
	Progress Progress // optional
	Observer Observer // optional
	Logger   *slog.Logger
}

func (rc RunContext) logger() *slog.Logger {
	if rc.Logger == nil {
		return slog.Default()
	}
	return rc.Logger
}
