// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/idilsaglam/todoview/internal/gateway"
)

// Default values.
const (
	DefaultEndpoint  = gateway.DefaultEndpoint
	DefaultTimeout   = 10 * time.Second
	DefaultTheme     = "classic"
	DefaultStartPath = "/"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	projectConfigFile = "todo.toml"
	dotenvFile        = ".env"
)

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the full configuration.
type Config struct {
	Endpoint   string   `toml:"endpoint"`
	Timeout    Duration `toml:"timeout"`
	Theme      string   `toml:"theme"`
	StartPath  string   `toml:"start_path"`
	StaleGuard bool     `toml:"stale_guard"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	// File is the config file that was read, if any.
	File string `toml:"-"`
}

// flagValues collects root flags before they are applied.
type flagValues struct {
	config     string
	endpoint   string
	timeout    time.Duration
	theme      string
	path       string
	staleGuard bool
	logLevel   string
	logFormat  string
	logFile    string
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (-config, ./todo.toml, or the user config dir)
// 3. Environment variables, after loading ./.env
// 4. CLI flags
//
// Arguments after the flags are left in fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	var fv flagValues
	registerFlags(fs, &fv)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := &Config{}
	setDefaults(cfg)

	path := fv.config
	if path == "" {
		path = os.Getenv("TODO_CONFIG")
	}
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", dotenvFile, err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg, fs, &fv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func registerFlags(fs *flag.FlagSet, fv *flagValues) {
	fs.StringVar(&fv.config, "config", "", "path to a TOML config file")
	fs.StringVar(&fv.endpoint, "endpoint", "", "todos endpoint (http(s):// or file://)")
	fs.DurationVar(&fv.timeout, "timeout", 0, "per-request timeout")
	fs.StringVar(&fv.theme, "theme", "", "color theme: classic, neon or mono")
	fs.StringVar(&fv.path, "path", "", "initial route, e.g. /todo/1")
	fs.BoolVar(&fv.staleGuard, "stale-guard", false, "ignore results of superseded fetches")
	fs.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&fv.logFormat, "log-format", "", "text, json or logfmt")
	fs.StringVar(&fv.logFile, "log-file", "", "write logs to this file")
}

// applyFlags copies only the flags that were set on the command line.
func applyFlags(cfg *Config, fs *flag.FlagSet, fv *flagValues) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = fv.endpoint
		case "timeout":
			cfg.Timeout = Duration{fv.timeout}
		case "theme":
			cfg.Theme = fv.theme
		case "path":
			cfg.StartPath = fv.path
		case "stale-guard":
			cfg.StaleGuard = fv.staleGuard
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "log-format":
			cfg.LogFormat = fv.logFormat
		case "log-file":
			cfg.LogFile = fv.logFile
		}
	})
}

func setDefaults(cfg *Config) {
	cfg.Endpoint = DefaultEndpoint
	cfg.Timeout = Duration{DefaultTimeout}
	cfg.Theme = DefaultTheme
	cfg.StartPath = DefaultStartPath
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TODO_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TODO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TODO_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = Duration{d}
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TODO_START_PATH"); v != "" {
		cfg.StartPath = v
	}
	if v := os.Getenv("TODO_STALE_GUARD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TODO_STALE_GUARD %q: %w", v, err)
		}
		cfg.StaleGuard = b
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
	return nil
}

// Validate rejects values the program cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is empty")
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if !strings.HasPrefix(c.StartPath, "/") {
		return fmt.Errorf("start path must begin with /, got %q", c.StartPath)
	}
	return nil
}

// findConfigFile returns ./todo.toml if present, else the user-level
// file, else "".
func findConfigFile() string {
	if _, err := os.Stat(projectConfigFile); err == nil {
		return projectConfigFile
	}
	if dir := userConfigDir(); dir != "" {
		p := filepath.Join(dir, "todo", "todo.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}
