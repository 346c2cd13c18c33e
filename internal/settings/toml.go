package settings

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Export writes the current settings as a TOML document.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}

// Import reads a TOML document and stores every key it contains. The
// document is validated as a whole before anything is written. It returns
// the number of keys imported.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("decoding settings: %w", err)
	}

	values := make(map[string]string, len(doc))
	for k, v := range doc {
		str, err := tomlString(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, k, err)
		}
		values[k] = str
	}
	if err := s.SetMany(ctx, values); err != nil {
		return 0, err
	}
	return len(values), nil
}

func tomlString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported TOML type %T", v)
	}
}
