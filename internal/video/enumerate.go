package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/sydlexius/janitor/internal/kodi"
	"github.com/sydlexius/janitor/internal/settings"
)

// ErrMalformedResponse means Kodi answered with an unexpected shape.
var ErrMalformedResponse = errors.New("malformed library response")

// QueryExecutor runs a JSON-RPC request and returns its result member.
type QueryExecutor interface {
	Execute(ctx context.Context, req kodi.Request) (json.RawMessage, error)
}

// Record is one expired video.
type Record struct {
	Category Category
	Path     string
	Title    string
}

// Enumerator lists expired videos per category.
type Enumerator struct {
	exec   QueryExecutor
	logger *slog.Logger
}

// NewEnumerator creates an Enumerator backed by exec.
func NewEnumerator(exec QueryExecutor, logger *slog.Logger) *Enumerator {
	return &Enumerator{exec: exec, logger: logger.With(slog.String("component", "enumerator"))}
}

// Expired returns the videos of category c that match the user's cleaning
// conditions. A disabled category or a response without the category's
// list yields an empty sequence. The response is validated before
// returning, so iteration cannot fail; the sequence may be ranged over
// once.
func (e *Enumerator) Expired(ctx context.Context, s settings.Settings, c Category) (iter.Seq[Record], error) {
	if !c.Enabled(s) {
		e.logger.Debug("category disabled", slog.String("category", c.String()))
		return empty, nil
	}

	req := Query(s, c)
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		if b, err := json.Marshal(req.Params); err == nil {
			e.logger.Debug("querying library", slog.String("method", req.Method), slog.String("params", string(b)))
		}
	}

	raw, err := e.exec.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c, err)
	}

	records, err := parse(raw, c)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("expired videos found", slog.String("category", c.String()), slog.Int("count", len(records)))

	used := false
	return func(yield func(Record) bool) {
		if used {
			return
		}
		used = true
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}, nil
}

func empty(func(Record) bool) {}

func parse(raw json.RawMessage, c Category) ([]Record, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var limits struct {
		Total *int `json:"total"`
	}
	rawLimits, ok := result["limits"]
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, "limits")
	}
	if err := json.Unmarshal(rawLimits, &limits); err != nil || limits.Total == nil {
		return nil, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, "limits.total")
	}

	rawList, ok := result[c.String()]
	if !ok {
		return nil, nil
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, c, err)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		path, err := stringProperty(item, "file")
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedResponse, c, i, err)
		}
		title, err := stringProperty(item, c.TitleProperty())
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedResponse, c, i, err)
		}
		records = append(records, Record{Category: c, Path: path, Title: title})
	}
	return records, nil
}

// stringProperty reads a string property; lists of strings (the artist of
// a music video) are joined with ", ".
func stringProperty(item map[string]json.RawMessage, key string) (string, error) {
	raw, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", "), nil
	}
	return "", fmt.Errorf("key %q is not a string", key)
}
