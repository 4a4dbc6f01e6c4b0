package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultTargetURL is the page that renders the bonbast rate table.
const DefaultTargetURL = "https://www.bonbast.com/"

// DiagnosticsMode controls how a failed ancestor-table lookup affects a fetch.
type DiagnosticsMode string

const (
	// DiagnosticsStrict aborts the whole fetch when the lookup fails.
	DiagnosticsStrict DiagnosticsMode = "strict"
	// DiagnosticsBestEffort logs the failure and returns the rates anyway.
	DiagnosticsBestEffort DiagnosticsMode = "best-effort"
	// DiagnosticsOff skips the lookup entirely.
	DiagnosticsOff DiagnosticsMode = "off"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Extract ExtractConfig `yaml:"extract"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// BrowserConfig controls the Rod browser instance launched for each fetch.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `yaml:"headless"` // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"`

	// Bin overrides the Chromium binary path.
	Bin string `yaml:"bin"`

	// Proxy is passed to Chromium as --proxy-server.
	Proxy string `yaml:"proxy"`

	// Stealth injects go-rod/stealth before navigation.
	Stealth bool `yaml:"stealth"`

	// BlockedResources lists resource types the page never loads.
	// default: ["Image", "Font", "Media"]
	BlockedResources []string `yaml:"blocked_resources"`

	// BlockedHosts lists hosts (and their subdomains) whose requests are failed.
	BlockedHosts []string `yaml:"blocked_hosts"`

	// AcceptLanguage is sent as an extra request header.
	AcceptLanguage string `yaml:"accept_language"`
}

// ExtractConfig controls the extraction workflow.
type ExtractConfig struct {
	// TargetURL is the page to navigate to.
	TargetURL string `yaml:"url"`

	// NavigationTimeout bounds navigation plus the load event.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"` // default: 60s

	// WaitTimeout bounds each visibility wait individually.
	WaitTimeout time.Duration `yaml:"wait_timeout"` // default: 30s

	// DebugID names the element whose enclosing table is captured.
	DebugID string `yaml:"debug_id"` // default: "eur1"

	// Diagnostics selects the ancestor-table lookup policy.
	Diagnostics DiagnosticsMode `yaml:"diagnostics"` // default: best-effort

	// ConcurrentWaits fans the four visibility waits out in parallel.
	ConcurrentWaits bool `yaml:"concurrent_waits"` // default: true
}

// OutputConfig controls the console report.
type OutputConfig struct {
	Unit           string `yaml:"unit"`             // default: "Toman"
	ShowDebugTable bool   `yaml:"show_debug_table"` // default: false
	DebugFormat    string `yaml:"debug_format"`     // "html", "markdown", "text"; default: "html"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "warn"
	Format string `yaml:"format"` // "json" or "text"; default: "text"
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:         true,
			BlockedResources: []string{"Image", "Font", "Media"},
			BlockedHosts: []string{
				"google-analytics.com",
				"googletagmanager.com",
				"doubleclick.net",
				"googlesyndication.com",
			},
			AcceptLanguage: "en-US,en;q=0.9",
		},
		Extract: ExtractConfig{
			TargetURL:         DefaultTargetURL,
			NavigationTimeout: 60 * time.Second,
			WaitTimeout:       30 * time.Second,
			DebugID:           "eur1",
			Diagnostics:       DiagnosticsBestEffort,
			ConcurrentWaits:   true,
		},
		Output: OutputConfig{
			Unit:        "Toman",
			DebugFormat: "html",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads configuration from .env, an optional YAML file named by
// BONRATE_CONFIG and environment variables, in that order of precedence
// (later wins), on top of Defaults. The result is validated.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	cfg := Defaults()
	if path := os.Getenv("BONRATE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	b := &c.Browser
	b.Headless = envBoolOr("BONRATE_HEADLESS", b.Headless)
	b.NoSandbox = envBoolOr("BONRATE_NO_SANDBOX", b.NoSandbox)
	b.Stealth = envBoolOr("BONRATE_STEALTH", b.Stealth)
	b.Bin = envOr("BONRATE_BROWSER_BIN", b.Bin)
	b.Proxy = envOr("BONRATE_PROXY", b.Proxy)
	b.BlockedResources = envSliceOr("BONRATE_BLOCKED_RESOURCES", b.BlockedResources)
	b.BlockedHosts = envSliceOr("BONRATE_BLOCKED_HOSTS", b.BlockedHosts)
	b.AcceptLanguage = envOr("BONRATE_ACCEPT_LANGUAGE", b.AcceptLanguage)

	e := &c.Extract
	e.TargetURL = envOr("BONRATE_URL", e.TargetURL)
	e.NavigationTimeout = envDurationOr("BONRATE_NAV_TIMEOUT", e.NavigationTimeout)
	e.WaitTimeout = envDurationOr("BONRATE_WAIT_TIMEOUT", e.WaitTimeout)
	e.DebugID = envOr("BONRATE_DEBUG_ID", e.DebugID)
	e.Diagnostics = DiagnosticsMode(envOr("BONRATE_DIAGNOSTICS", string(e.Diagnostics)))
	e.ConcurrentWaits = envBoolOr("BONRATE_CONCURRENT_WAITS", e.ConcurrentWaits)

	o := &c.Output
	o.Unit = envOr("BONRATE_UNIT", o.Unit)
	o.ShowDebugTable = envBoolOr("BONRATE_SHOW_DEBUG_TABLE", o.ShowDebugTable)
	o.DebugFormat = envOr("BONRATE_DEBUG_FORMAT", o.DebugFormat)

	c.Log.Level = envOr("BONRATE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("BONRATE_LOG_FORMAT", c.Log.Format)
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Extract.TargetURL)
	if err != nil {
		return fmt.Errorf("extract.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("extract.url must be an absolute http(s) URL, got %q", c.Extract.TargetURL)
	}
	if c.Extract.NavigationTimeout <= 0 {
		return fmt.Errorf("extract.navigation_timeout must be positive")
	}
	if c.Extract.WaitTimeout <= 0 {
		return fmt.Errorf("extract.wait_timeout must be positive")
	}
	if strings.TrimSpace(c.Extract.DebugID) == "" {
		return fmt.Errorf("extract.debug_id is required")
	}
	switch c.Extract.Diagnostics {
	case DiagnosticsStrict, DiagnosticsBestEffort, DiagnosticsOff:
	default:
		return fmt.Errorf("extract.diagnostics must be one of strict, best-effort, off; got %q", c.Extract.Diagnostics)
	}
	switch c.Output.DebugFormat {
	case "html", "markdown", "text":
	default:
		return fmt.Errorf("output.debug_format must be one of html, markdown, text; got %q", c.Output.DebugFormat)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text; got %q", c.Log.Format)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
