package settings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
)

// Service reads and writes settings in the key-value table.
type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewService creates a settings service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger.With(slog.String("component", "settings"))}
}

// SeedDefaults inserts the default value of every key that has no row yet.
// Existing values are left untouched.
func (s *Service) SeedDefaults(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	for _, d := range definitions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
			d.key, d.def,
		); err != nil {
			return fmt.Errorf("seeding %s: %w", d.key, err)
		}
	}
	return tx.Commit()
}

// Values returns the stored value of every known key. Keys without a row
// report their default.
func (s *Service) Values(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	stored := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		stored[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating settings: %w", err)
	}

	out := make(map[string]string, len(definitions))
	for _, d := range definitions {
		if v, ok := stored[d.key]; ok {
			out[d.key] = v
		} else {
			out[d.key] = d.def
		}
	}
	return out, nil
}

// Load returns a fresh typed snapshot. Stored values that no longer parse
// fall back to their default and are logged.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	values, err := s.Values(ctx)
	if err != nil {
		return Settings{}, err
	}
	for k, v := range values {
		if _, err := Normalize(k, v); err != nil {
			s.logger.Warn("ignoring invalid stored setting", slog.String("key", k), slog.String("value", v))
		}
	}
	return fromValues(values), nil
}

// Set validates and stores a single value.
func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany validates every value first and then stores them all in one
// transaction, so either every key is written or none is.
func (s *Service) SetMany(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		n, err := Normalize(k, v)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		normalized[k] = n
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
			k, normalized[k],
		); err != nil {
			return fmt.Errorf("storing %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	s.logger.Debug("settings updated", slog.Any("keys", keys))
	return nil
}

// ResetExclusions blanks all five path exclusions.
func (s *Service) ResetExclusions(ctx context.Context) error {
	values := make(map[string]string, len(ExclusionKeys))
	for _, k := range ExclusionKeys {
		values[k] = ""
	}
	if err := s.SetMany(ctx, values); err != nil {
		return fmt.Errorf("resetting exclusions: %w", err)
	}
	s.logger.Info("path exclusions reset")
	return nil
}
