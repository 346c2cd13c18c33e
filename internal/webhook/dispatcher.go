// Package webhook posts run events to operator-configured HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/sydlexius/janitor/internal/event"
)

const (
	maxRetries     = 3
	requestTimeout = 10 * time.Second
)

// DefaultEvents are delivered when no event filter is configured.
var DefaultEvents = []event.Type{event.RunCompleted, event.RunAborted, event.MoveFailed}

// Dispatcher sends events to every configured URL.
type Dispatcher struct {
	urls       []string
	events     []event.Type
	httpClient *http.Client
	backoff    time.Duration
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher. An empty events list selects
// DefaultEvents.
func NewDispatcher(urls, events []string, logger *slog.Logger) *Dispatcher {
	return NewDispatcherWithHTTPClient(urls, events, &http.Client{Timeout: requestTimeout}, logger)
}

// NewDispatcherWithHTTPClient creates a dispatcher with a custom HTTP client (for testing).
func NewDispatcherWithHTTPClient(urls, events []string, httpClient *http.Client, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		urls:       urls,
		httpClient: httpClient,
		backoff:    time.Second,
		logger:     logger.With(slog.String("component", "webhook-dispatcher")),
	}
	for _, e := range events {
		d.events = append(d.events, event.Type(e))
	}
	if len(d.events) == 0 {
		d.events = DefaultEvents
	}
	return d
}

// Events returns the event types the dispatcher delivers.
func (d *Dispatcher) Events() []event.Type {
	return d.events
}

// Register subscribes the dispatcher to its events on bus. It is a no-op
// when no URLs are configured.
func (d *Dispatcher) Register(bus *event.Bus) {
	if len(d.urls) == 0 {
		return
	}
	for _, t := range d.events {
		bus.Subscribe(t, d.HandleEvent)
	}
}

// HandleEvent is an event.Handler that delivers e to every URL in the
// background.
func (d *Dispatcher) HandleEvent(e event.Event) {
	if !slices.Contains(d.events, e.Type) {
		return
	}
	body := formatPayload(e)
	for _, u := range d.urls {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(u, e, body)
		}()
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(url string, e event.Event, body []byte) {
	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			time.Sleep(d.backoff * time.Duration(1<<uint(attempt-1)))
		}

		lastErr = d.send(url, body)
		if lastErr == nil {
			d.logger.Debug("webhook delivered",
				"url", url,
				"event", string(e.Type),
				"attempt", attempt+1,
			)
			return
		}

		d.logger.Warn("webhook delivery failed",
			"url", url,
			"event", string(e.Type),
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	d.logger.Error("webhook delivery exhausted retries",
		"url", url,
		"event", string(e.Type),
		"error", lastErr,
	)
}

func (d *Dispatcher) send(url string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Janitor-Webhook/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()        //nolint:errcheck
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
