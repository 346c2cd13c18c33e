// Package event is an in-process publish/subscribe bus for cleaning
// activity.
package event

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Type identifies a category of event.
type Type string

// Known event types.
const (
	VideoCleaned Type = "video.cleaned"
	MoveFailed   Type = "move.failed"
	RunCompleted Type = "run.completed"
	RunAborted   Type = "run.aborted"
)

// Event represents something that happened during a run.
type Event struct {
	Type      Type           `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler processes an event.
type Handler func(Event)

// Bus delivers events to subscribers from a single goroutine, in publish
// order.
type Bus struct {
	ch      chan Event
	mu      sync.RWMutex
	subs    map[Type][]Handler
	logger  *slog.Logger
	done    chan struct{}
	drained chan struct{}
	stopped bool
}

// NewBus creates a bus with the given buffer size.
func NewBus(logger *slog.Logger, bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Bus{
		ch:      make(chan Event, bufSize),
		subs:    make(map[Type][]Handler),
		logger:  logger.With(slog.String("component", "event")),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], h)
}

// Publish queues e. It never blocks; when the buffer is full the event is
// dropped with a warning.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	select {
	case b.ch <- e:
	default:
		b.logger.Warn("event bus full, dropping event", slog.String("type", string(e.Type)))
	}
}

// Start dispatches events until ctx is done or Stop is called, then
// delivers whatever is still buffered and returns. Run it in a goroutine.
func (b *Bus) Start(ctx context.Context) {
	defer close(b.drained)
	for {
		select {
		case e := <-b.ch:
			b.dispatch(e)
		case <-ctx.Done():
			b.drain()
			return
		case <-b.done:
			b.drain()
			return
		}
	}
}

// Stop asks Start to finish after draining the buffer.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.stopped {
		b.stopped = true
		close(b.done)
	}
}

// Drained is closed once Start has returned.
func (b *Bus) Drained() <-chan struct{} {
	return b.drained
}

func (b *Bus) drain() {
	for {
		select {
		case e := <-b.ch:
			b.dispatch(e)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	handlers := b.subs[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panicked", slog.String("type", string(e.Type)), slog.Any("panic", r))
				}
			}()
			h(e)
		}()
	}
}
