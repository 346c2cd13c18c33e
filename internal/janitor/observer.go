package janitor

import (
	"github.com/sydlexius/janitor/internal/event"
	"github.com/sydlexius/janitor/internal/video"
)

// busObserver turns per-video outcomes into events.
type busObserver struct {
	bus   *event.Bus
	runID string
}

func (o busObserver) VideoCleaned(rec video.Record, files []string) {
	o.bus.Publish(event.Event{
		Type:  event.VideoCleaned,
		RunID: o.runID,
		Data: map[string]any{
			"category": rec.Category.String(),
			"title":    rec.Title,
			"path":     rec.Path,
			"files":    files,
		},
	})
}

func (o busObserver) MoveFailed(rec video.Record, err error) {
	o.bus.Publish(event.Event{
		Type:  event.MoveFailed,
		RunID: o.runID,
		Data: map[string]any{
			"category": rec.Category.String(),
			"title":    rec.Title,
			"path":     rec.Path,
			"error":    err.Error(),
			"message":  "could not move " + rec.Title,
		},
	})
}
