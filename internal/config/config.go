package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/skytrack/internal/flight"
)

// Resume policies for a suspended watch session.
const (
	ResumeNextTick  = "next_tick"
	ResumeImmediate = "immediate"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheFile   = "file"
	CacheMemory = "memory"
)

// Config captures everything skytrack reads from config.toml.
type Config struct {
	APIBaseURL     string
	UserAgent      string
	PollInterval   time.Duration
	RequestTimeout time.Duration

	ResumePolicy           string
	SuspendOnError         bool
	RefetchOnCountryChange bool
	PauseOnModal           bool // TUI suspends polling while a dialog is open

	CacheBackend string
	CachePath    string

	LogLevel  string
	LogFormat string
	LogFile   string

	ListenAddr string

	Viewport flight.Viewport
}

const (
	defaultConfigPath     = "~/.config/skytrack/config.toml"
	defaultDataDir        = "~/.local/share/skytrack"
	defaultAPIBaseURL     = "https://opensky-network.org/api"
	defaultUserAgent      = "skytrack/0.1"
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 15 * time.Second
	defaultListenAddr     = "127.0.0.1:8787"
)

var defaultViewport = flight.Viewport{CenterLat: 40, CenterLon: 0, SpanLat: 20, SpanLon: 20}

type rawConfig struct {
	APIBaseURL             string  `toml:"api_base_url"`
	UserAgent              string  `toml:"user_agent"`
	PollInterval           string  `toml:"poll_interval"`
	RequestTimeout         string  `toml:"request_timeout"`
	ResumePolicy           string  `toml:"resume_policy"`
	SuspendOnError         *bool   `toml:"suspend_on_error"`
	RefetchOnCountryChange *bool   `toml:"refetch_on_country_change"`
	PauseOnModal           *bool   `toml:"pause_on_modal"`
	CacheBackend           string  `toml:"cache_backend"`
	CachePath              string  `toml:"cache_path"`
	LogLevel               string  `toml:"log_level"`
	LogFormat              string  `toml:"log_format"`
	LogFile                string  `toml:"log_file"`
	ListenAddr             string  `toml:"listen_addr"`
	Region                 *region `toml:"region"`
}

type region struct {
	CenterLat *float64 `toml:"center_lat"`
	CenterLon *float64 `toml:"center_lon"`
	SpanLat   *float64 `toml:"span_lat"`
	SpanLon   *float64 `toml:"span_lon"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:     defaultAPIBaseURL,
		UserAgent:      defaultUserAgent,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		ResumePolicy:   ResumeNextTick,
		PauseOnModal:   true,
		CacheBackend:   CacheSQLite,
		CachePath:      mustExpand(defaultDataDir + "/cache.db"),
		LogLevel:       "info",
		LogFormat:      "console",
		ListenAddr:     defaultListenAddr,
		Viewport:       defaultViewport,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(raw.PollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("parse poll_interval %q: must be a positive duration", v)
		}
		c.PollInterval = d
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("parse request_timeout %q: must be a positive duration", v)
		}
		c.RequestTimeout = d
	}

	switch v := strings.ToLower(strings.TrimSpace(raw.ResumePolicy)); v {
	case "":
	case ResumeNextTick, ResumeImmediate:
		c.ResumePolicy = v
	default:
		return fmt.Errorf("unknown resume_policy %q", raw.ResumePolicy)
	}
	if raw.SuspendOnError != nil {
		c.SuspendOnError = *raw.SuspendOnError
	}
	if raw.RefetchOnCountryChange != nil {
		c.RefetchOnCountryChange = *raw.RefetchOnCountryChange
	}
	if raw.PauseOnModal != nil {
		c.PauseOnModal = *raw.PauseOnModal
	}

	switch v := strings.ToLower(strings.TrimSpace(raw.CacheBackend)); v {
	case "":
	case CacheSQLite, CacheFile, CacheMemory:
		c.CacheBackend = v
	default:
		return fmt.Errorf("unknown cache_backend %q", raw.CacheBackend)
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		c.CachePath = mustExpand(v)
	} else if c.CacheBackend == CacheFile {
		c.CachePath = mustExpand(defaultDataDir + "/cache")
	}

	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		c.LogFormat = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.ListenAddr); v != "" {
		c.ListenAddr = v
	}

	if r := raw.Region; r != nil {
		if r.CenterLat != nil {
			c.Viewport.CenterLat = *r.CenterLat
		}
		if r.CenterLon != nil {
			c.Viewport.CenterLon = *r.CenterLon
		}
		if r.SpanLat != nil {
			c.Viewport.SpanLat = *r.SpanLat
		}
		if r.SpanLon != nil {
			c.Viewport.SpanLon = *r.SpanLon
		}
		if !c.Viewport.Region().Valid() {
			return fmt.Errorf("region %v is outside the globe", c.Viewport.Region())
		}
	}
	return nil
}

// TUILogPath is where logs go while the terminal UI owns stdout/stderr.
func (c Config) TUILogPath() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return c.LogFile
	}
	return mustExpand(defaultDataDir + "/skytrack.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
