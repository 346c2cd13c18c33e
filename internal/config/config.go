// Package config loads the janitor's process configuration from a YAML file
// and JANITOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/janitor/internal/logging"
)

// DefaultPath is used when JANITOR_CONFIG_PATH is not set.
const DefaultPath = "/data/config.yaml"

// Config holds all process configuration. User cleaning preferences are
// not here; they live in the settings table.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Kodi     KodiConfig     `yaml:"kodi"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	// APIToken, when set, is required as a bearer token on every API call
	// except the health check.
	APIToken string `yaml:"api_token"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// KodiConfig points at the Kodi JSON-RPC endpoint.
type KodiConfig struct {
	URL               string        `yaml:"url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// CleaningConfig holds run plumbing that is not a user preference.
type CleaningConfig struct {
	LogPath      string        `yaml:"log_path"`
	LogKeepLines int           `yaml:"log_keep_lines"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	HistoryKeep  int           `yaml:"history_keep"`
}

// ScheduleConfig controls periodic runs in serve mode.
type ScheduleConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalHours int  `yaml:"interval_hours"`
}

// WebhookConfig lists endpoints that receive run events as JSON.
type WebhookConfig struct {
	URLs   []string `yaml:"urls"`
	Events []string `yaml:"events"`
}

// Interval returns the schedule period.
func (s ScheduleConfig) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8089},
		Database: DatabaseConfig{Path: "/data/janitor.db"},
		Kodi: KodiConfig{
			URL:               "http://localhost:8080",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
		},
		Cleaning: CleaningConfig{
			LogPath:      "/data/cleaner.log",
			LogKeepLines: 25,
			SettleDelay:  2 * time.Second,
			HistoryKeep:  500,
		},
		Schedule: ScheduleConfig{Enabled: true, IntervalHours: 24},
		Logging:  logging.DefaultConfig(),
	}
}

// Path returns the config file location from JANITOR_CONFIG_PATH.
func Path() string {
	if p := os.Getenv("JANITOR_CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads config from a YAML file (if it exists) and overrides it with
// environment variables, which take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	str := map[string]*string{
		"JANITOR_API_TOKEN":     &c.Server.APIToken,
		"JANITOR_DB_PATH":       &c.Database.Path,
		"JANITOR_KODI_URL":      &c.Kodi.URL,
		"JANITOR_KODI_USERNAME": &c.Kodi.Username,
		"JANITOR_KODI_PASSWORD": &c.Kodi.Password,
		"JANITOR_CLEAN_LOG":     &c.Cleaning.LogPath,
		"JANITOR_LOG_LEVEL":     &c.Logging.Level,
		"JANITOR_LOG_FORMAT":    &c.Logging.Format,
		"JANITOR_LOG_FILE":      &c.Logging.FilePath,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"JANITOR_PORT":           &c.Server.Port,
		"JANITOR_SCHEDULE_HOURS": &c.Schedule.IntervalHours,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("JANITOR_SCHEDULE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JANITOR_SCHEDULE_ENABLED: %w", err)
		}
		c.Schedule.Enabled = b
	}
	if v := os.Getenv("JANITOR_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("JANITOR_WEBHOOK_URLS"); v != "" {
		c.Webhook.URLs = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Cleaning.LogPath == "" {
		return errors.New("cleaning log path is required")
	}
	u, err := url.Parse(c.Kodi.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid kodi url: %q", c.Kodi.URL)
	}
	if c.Kodi.Timeout <= 0 {
		return fmt.Errorf("invalid kodi timeout: %s", c.Kodi.Timeout)
	}
	if c.Schedule.Enabled && c.Schedule.IntervalHours < 1 {
		return fmt.Errorf("invalid schedule interval: %d hours", c.Schedule.IntervalHours)
	}
	if c.Cleaning.SettleDelay < 0 {
		return fmt.Errorf("invalid settle delay: %s", c.Cleaning.SettleDelay)
	}
	for _, raw := range c.Webhook.URLs {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid webhook url: %q", raw)
		}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}
