package cleaner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/sydlexius/janitor/internal/settings"
	"github.com/sydlexius/janitor/internal/video"
)

// Source produces the expired videos of a category.
type Source interface {
	Expired(ctx context.Context, s settings.Settings, c video.Category) (iter.Seq[video.Record], error)
}

// CategoryOutcome is the result of cleaning one category.
type CategoryOutcome struct {
	Category video.Category
	// Files lists every cleaned file path in the order it was handled.
	Files []string
	// Succeeded counts videos, not files.
	Succeeded int
	Status    Status
}

// Outcome is the result of a whole run.
type Outcome struct {
	Status     Status
	Categories []CategoryOutcome
}

// Summary maps each category to the number of videos cleaned. Categories
// with nothing cleaned are left out.
type Summary map[video.Category]int

// Summary returns the per-category counts of the run.
func (o Outcome) Summary() Summary {
	sum := Summary{}
	for _, c := range o.Categories {
		if c.Succeeded > 0 {
			sum[c.Category] += c.Succeeded
		}
	}
	return sum
}

// Files returns every cleaned file across categories in run order.
func (o Outcome) Files() []string {
	var files []string
	for _, c := range o.Categories {
		files = append(files, c.Files...)
	}
	return files
}

// Total returns the number of videos cleaned.
func (o Outcome) Total() int {
	n := 0
	for _, c := range o.Categories {
		n += c.Succeeded
	}
	return n
}

// Run cleans every category in turn. Cancellation through rc.Progress or
// ctx is honoured between videos and makes the run Aborted. An error is
// returned only when the library could not be queried; the outcome up to
// that point is returned with it.
func Run(ctx context.Context, rc RunContext, src Source) (Outcome, error) {
	logger := rc.logger()
	gate := NewGatekeeper(rc.FS, rc.Settings.KeepHardLinked, logger)
	engine := NewEngine(rc)

	out := Outcome{Status: Success}
	for i, cat := range video.Categories {
		if canceled(ctx, rc.Progress) {
			out.Status = Aborted
			return out, nil
		}
		if rc.Progress != nil {
			rc.Progress.Update(i*100/len(video.Categories), cat.String(), "")
		}

		seq, err := src.Expired(ctx, rc.Settings, cat)
		if err != nil {
			return out, fmt.Errorf("listing expired %s: %w", cat, err)
		}
		records := slices.Collect(seq)

		co := CategoryOutcome{Category: cat, Status: Success}
		aborted := false
		for j, rec := range records {
			if canceled(ctx, rc.Progress) {
				logger.Info("run canceled", slog.String("category", cat.String()))
				co.Status = Aborted
				aborted = true
				break
			}
			if rc.Progress != nil {
				rc.Progress.Update(percent(i, j, len(records)), cat.String(), rec.Title)
			}
			if !gate.Approve(rec.Path) {
				continue
			}

			res, err := engine.Act(rec.Path, rec.Title)
			if errors.Is(err, ErrNoDestination) {
				co.Status = Aborted
				aborted = true
				break
			}
			if err != nil {
				logger.Error("could not move video", slog.String("title", rec.Title), slog.String("path", rec.Path), slog.Any("error", err))
				co.Status = PartialFailure
				if rc.Prompter != nil {
					rc.Prompter.ReportMoveFailure(rec.Title, err)
				}
				if rc.Observer != nil {
					rc.Observer.MoveFailed(rec, err)
				}
				continue
			}
			if !res.Succeeded {
				logger.Error("nothing was removed", slog.String("title", rec.Title), slog.String("path", rec.Path))
				co.Status = PartialFailure
				continue
			}

			co.Files = append(co.Files, res.Affected...)
			co.Succeeded++
			if rc.Observer != nil {
				rc.Observer.VideoCleaned(rec, res.Affected)
			}
		}

		out.Categories = append(out.Categories, co)
		if aborted {
			out.Status = Aborted
			return out, nil
		}
		if co.Status == PartialFailure {
			out.Status = PartialFailure
		}
	}
	if rc.Progress != nil {
		rc.Progress.Update(100, "", "")
	}
	return out, nil
}

// percent is the overall progress when done of total videos in the
// category at index cat have been handled.
func percent(cat, done, total int) int {
	n := len(video.Categories)
	p := cat * 100 / n
	if total > 0 {
		p += done * 100 / (total * n)
	}
	return p
}

func canceled(ctx context.Context, p Progress) bool {
	if ctx.Err() != nil {
		return true
	}
	return p != nil && p.Canceled()
}
