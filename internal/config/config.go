package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Agent backends.
const (
	AgentHTTP   = "http"
	AgentDirect = "direct"
)

// Config represents the scribe configuration.
type Config struct {
	Agent          string        `json:"agent"`
	AgentURL       string        `json:"agentURL"`
	Provider       string        `json:"provider"`
	Model          string        `json:"model"`
	Format         string        `json:"format"`
	ContextLines   int           `json:"contextLines"`
	Include        []string      `json:"include"`
	Exclude        []string      `json:"exclude"`
	MaxDiffBytes   int           `json:"maxDiffBytes"`
	PollIntervalMs int           `json:"pollIntervalMs"`
	MaxConcurrency int           `json:"maxConcurrency"`
	SearchDepth    int           `json:"searchDepth"`
	Cache          CacheConfig   `json:"cache"`
	Privacy        PrivacyConfig `json:"privacy"`

	// AgentToken is read from SCRIBE_AGENT_TOKEN only and never saved.
	AgentToken string `json:"-"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Agent:          AgentHTTP,
		AgentURL:       "http://127.0.0.1:8787",
		Provider:       "anthropic",
		Model:          "claude-sonnet-4-20250514",
		Format:         "text",
		ContextLines:   3,
		Include:        []string{"**/*"},
		Exclude:        []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		MaxDiffBytes:   500000,
		PollIntervalMs: 2000,
		MaxConcurrency: 8,
		SearchDepth:    2,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// PollInterval returns PollIntervalMs as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Agent {
	case AgentHTTP:
		if c.AgentURL == "" {
			return fmt.Errorf("agentURL is required when agent is %q", AgentHTTP)
		}
	case AgentDirect:
		if c.Provider == "" {
			return fmt.Errorf("provider is required when agent is %q", AgentDirect)
		}
	default:
		return fmt.Errorf("agent must be %q or %q, got %q", AgentHTTP, AgentDirect, c.Agent)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	for name, v := range map[string]int{
		"contextLines":   c.ContextLines,
		"maxDiffBytes":   c.MaxDiffBytes,
		"pollIntervalMs": c.PollIntervalMs,
		"maxConcurrency": c.MaxConcurrency,
		"searchDepth":    c.SearchDepth,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for scribe.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "scribe"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "scribe"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "scribe"), nil
	default:
		return filepath.Join(home, ".config", "scribe"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	// An empty file keeps every default, booleans included.
	if reflect.DeepEqual(src, Config{}) {
		return
	}
	if src.Agent != "" {
		dst.Agent = src.Agent
	}
	if src.AgentURL != "" {
		dst.AgentURL = src.AgentURL
	}
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if src.PollIntervalMs > 0 {
		dst.PollIntervalMs = src.PollIntervalMs
	}
	if src.MaxConcurrency > 0 {
		dst.MaxConcurrency = src.MaxConcurrency
	}
	if src.SearchDepth > 0 {
		dst.SearchDepth = src.SearchDepth
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// JSON can't distinguish an unset bool from false, so a non-empty file's
	// booleans are taken as written.
	dst.Cache.Enabled = src.Cache.Enabled
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

// envKeys maps environment variables to config keys understood by SetField.
var envKeys = []struct{ env, key string }{
	{"SCRIBE_AGENT", "agent"},
	{"SCRIBE_AGENT_URL", "agentURL"},
	{"SCRIBE_PROVIDER", "provider"},
	{"SCRIBE_MODEL", "model"},
	{"SCRIBE_FORMAT", "format"},
	{"SCRIBE_CONTEXT_LINES", "contextLines"},
	{"SCRIBE_MAX_DIFF_BYTES", "maxDiffBytes"},
	{"SCRIBE_POLL_INTERVAL_MS", "pollIntervalMs"},
	{"SCRIBE_MAX_CONCURRENCY", "maxConcurrency"},
	{"SCRIBE_SEARCH_DEPTH", "searchDepth"},
	{"SCRIBE_CACHE", "cache.enabled"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	cfg.AgentToken = os.Getenv("SCRIBE_AGENT_TOKEN")
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
var Keys = []string{
	"agent", "agentURL", "provider", "model", "format",
	"contextLines", "maxDiffBytes", "pollIntervalMs", "maxConcurrency", "searchDepth",
	"include", "exclude",
	"cache.enabled", "cache.dir", "cache.ttlSeconds", "privacy.redactSecrets", "privacy.redactPaths",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "agent":
		cfg.Agent = value
	case "agentURL":
		cfg.AgentURL = value
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "include":
		cfg.Include = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "contextLines":
		return setInt(&cfg.ContextLines, key, value)
	case "maxDiffBytes":
		return setInt(&cfg.MaxDiffBytes, key, value)
	case "pollIntervalMs":
		return setInt(&cfg.PollIntervalMs, key, value)
	case "maxConcurrency":
		return setInt(&cfg.MaxConcurrency, key, value)
	case "searchDepth":
		return setInt(&cfg.SearchDepth, key, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
