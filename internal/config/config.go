// Package config loads client settings. Sources are applied in order, each
// overriding the previous one:
//
//  1. built-in defaults
//  2. a TOML file: $TODO_CONFIG, else ./todo.toml, else ~/.tada/config.toml
//  3. environment variables (TODO_*)
//  4. root command-line flags, applied by the caller through Override
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the client reads at startup.
type Config struct {
	// APIURL is the server root; the todos collection is APIURL/todos.
	APIURL    string `toml:"api_url"`
	TimeoutMS int    `toml:"timeout_ms"`
	// LogErrors turns client-side error logging on or off.
	LogErrors bool   `toml:"log_errors"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	// LogFile receives log lines while the interactive list is on screen.
	// Empty drops them.
	LogFile string `toml:"log_file"`
	Theme     string `toml:"theme"`

	// File is the config file that was read, if any.
	File string `toml:"-"`
}

const (
	DefaultAPIURL    = "http://localhost:4001"
	DefaultTimeoutMS = 5000
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		TimeoutMS: DefaultTimeoutMS,
		LogErrors: true,
		LogLevel:  "info",
		LogFormat: "text",
		Theme:     "classic",
	}
}

// Load applies defaults, the config file and the environment. Validate is
// left to the caller so flags can still override.
func Load() (*Config, error) {
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadConfigFile(&cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.File = path
	}
	if err := loadFromEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// Override applies non-zero flag values.
func (c *Config) Override(apiURL string, timeoutMS int, theme string) {
	if apiURL != "" {
		c.APIURL = apiURL
	}
	if timeoutMS != 0 {
		c.TimeoutMS = timeoutMS
	}
	if theme != "" {
		c.Theme = theme
	}
}

// Validate checks the final settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q: want an absolute http(s) url", c.APIURL)
	}
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be greater than zero, got %d", c.TimeoutMS)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format %q: want text, json or logfmt", c.LogFormat)
	}
	return nil
}

// Timeout is TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TODO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TODO_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TODO_TIMEOUT_MS: %w", err)
		}
		cfg.TimeoutMS = n
	}
	if v := os.Getenv("TODO_LOG_ERRORS"); v != "" {
		cfg.LogErrors = boolFromString(v)
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TODO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.Theme = v
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv("TODO_CONFIG"); p != "" {
		return p
	}
	candidates := []string{"todo.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tada", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		} else if !errors.Is(err, os.ErrNotExist) {
			return p
		}
	}
	return ""
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
