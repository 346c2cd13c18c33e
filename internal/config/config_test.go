package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8089 || cfg.Cleaning.SettleDelay != 2*time.Second || cfg.Schedule.IntervalHours != 24 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
server:
  port: 9000
  cors_origins: ["http://kodi.lan"]
kodi:
  url: http://htpc:8080
  username: kodi
  timeout: 3s
cleaning:
  settle_delay: 500ms
schedule:
  interval_hours: 6
logging:
  level: debug
  format: json
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || !slices.Equal(cfg.Server.CORSOrigins, []string{"http://kodi.lan"}) {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Kodi.URL != "http://htpc:8080" || cfg.Kodi.Username != "kodi" || cfg.Kodi.Timeout != 3*time.Second {
		t.Errorf("kodi = %+v", cfg.Kodi)
	}
	if cfg.Cleaning.SettleDelay != 500*time.Millisecond || cfg.Schedule.Interval() != 6*time.Hour {
		t.Errorf("cleaning/schedule = %+v %+v", cfg.Cleaning, cfg.Schedule)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Database.Path != "/data/janitor.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("JANITOR_PORT", "9100")
	t.Setenv("JANITOR_KODI_URL", "https://kodi.example:8443")
	t.Setenv("JANITOR_KODI_PASSWORD", "s3cret")
	t.Setenv("JANITOR_SCHEDULE_ENABLED", "false")
	t.Setenv("JANITOR_CORS_ORIGINS", "http://a, http://b")
	t.Setenv("JANITOR_WEBHOOK_URLS", "http://hooks.lan/janitor")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 || cfg.Kodi.URL != "https://kodi.example:8443" || cfg.Kodi.Password != "s3cret" {
		t.Errorf("overrides not applied: %+v %+v", cfg.Server, cfg.Kodi)
	}
	if cfg.Schedule.Enabled {
		t.Error("schedule should be disabled")
	}
	if !slices.Equal(cfg.Server.CORSOrigins, []string{"http://a", "http://b"}) {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
	if !slices.Equal(cfg.Webhook.URLs, []string{"http://hooks.lan/janitor"}) {
		t.Errorf("webhook urls = %v", cfg.Webhook.URLs)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "port", body: "server:\n  port: 0\n", want: "invalid port"},
		{name: "kodi url", body: "kodi:\n  url: localhost\n", want: "invalid kodi url"},
		{name: "interval", body: "schedule:\n  enabled: true\n  interval_hours: 0\n", want: "invalid schedule interval"},
		{name: "level", body: "logging:\n  level: loud\n", want: "invalid log level"},
		{name: "webhook", body: "webhook:\n  urls: [\"ftp://x\"]\n", want: "invalid webhook url"},
		{name: "bad env int", body: "", env: map[string]string{"JANITOR_PORT": "eighty"}, want: "JANITOR_PORT"},
		{name: "yaml", body: "server: [", want: "loading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("JANITOR_CONFIG_PATH", "")
	if Path() != DefaultPath {
		t.Errorf("Path() = %q", Path())
	}
	t.Setenv("JANITOR_CONFIG_PATH", "/etc/janitor.yaml")
	if Path() != "/etc/janitor.yaml" {
		t.Errorf("Path() = %q", Path())
	}
}
