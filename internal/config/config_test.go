package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.ResumePolicy != ResumeNextTick {
		t.Fatalf("ResumePolicy = %q, want %q", cfg.ResumePolicy, ResumeNextTick)
	}
	if cfg.SuspendOnError || cfg.RefetchOnCountryChange {
		t.Fatalf("policies should default off: %+v", cfg)
	}
	if !cfg.PauseOnModal {
		t.Fatalf("PauseOnModal should default on")
	}
	if cfg.CacheBackend != CacheSQLite {
		t.Fatalf("CacheBackend = %q, want sqlite", cfg.CacheBackend)
	}
	got := cfg.Viewport.Region()
	if got.MinLat != 30 || got.MaxLat != 50 || got.MinLon != -10 || got.MaxLon != 10 {
		t.Fatalf("default region = %+v", got)
	}
}

func TestLoad_ParsesAllKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_base_url = "http://localhost:9000/api/"
user_agent = "test-agent"
poll_interval = "250ms"
request_timeout = "2s"
resume_policy = "IMMEDIATE"
suspend_on_error = true
refetch_on_country_change = true
pause_on_modal = false
cache_backend = "file"
cache_path = "~/cache-dir"
log_level = "debug"
log_format = "json"
log_file = "~/logs/skytrack.log"
listen_addr = ":9999"

[region]
center_lat = 10.0
center_lon = 20.0
span_lat = 4.0
span_lon = 6.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:9000/api" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.UserAgent != "test-agent" {
		t.Fatalf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.PollInterval != 250*time.Millisecond || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("durations = %v / %v", cfg.PollInterval, cfg.RequestTimeout)
	}
	if cfg.ResumePolicy != ResumeImmediate {
		t.Fatalf("ResumePolicy = %q", cfg.ResumePolicy)
	}
	if !cfg.SuspendOnError || !cfg.RefetchOnCountryChange || cfg.PauseOnModal {
		t.Fatalf("policies not applied: %+v", cfg)
	}
	if cfg.CacheBackend != CacheFile || cfg.CachePath != filepath.Join(home, "cache-dir") {
		t.Fatalf("cache = %q %q", cfg.CacheBackend, cfg.CachePath)
	}
	if cfg.LogFile != filepath.Join(home, "logs/skytrack.log") || cfg.TUILogPath() != cfg.LogFile {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	region := cfg.Viewport.Region()
	if region.MinLat != 8 || region.MaxLat != 12 || region.MinLon != 17 || region.MaxLon != 23 {
		t.Fatalf("region = %+v", region)
	}
}

func TestLoad_FileBackendGetsDirectoryDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(writeConfig(t, `cache_backend = "file"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.CachePath, home) || filepath.Ext(cfg.CachePath) != "" {
		t.Fatalf("CachePath = %q, want a directory under %q", cfg.CachePath, home)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid toml", `api_base_url = [`, "parse config"},
		{"bad poll interval", `poll_interval = "soon"`, "poll_interval"},
		{"negative timeout", `request_timeout = "-1s"`, "request_timeout"},
		{"unknown resume policy", `resume_policy = "later"`, "resume_policy"},
		{"unknown cache backend", `cache_backend = "redis"`, "cache_backend"},
		{"region off globe", "[region]\ncenter_lat = 89.0\nspan_lat = 10.0", "region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTUILogPath_DefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := Default().TUILogPath()
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, "skytrack.log") {
		t.Fatalf("TUILogPath = %q", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
