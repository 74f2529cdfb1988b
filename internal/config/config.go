// Package config resolves server settings from defaults, an optional YAML
// file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mcp-mini/internal/manifest"
	"mcp-mini/internal/weather"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "mcp-mini.yaml"

// DefaultPort is the listen port used when PORT is unset.
const DefaultPort = 4200

// Config contains server configuration values.
type Config struct {
	Port           int           `yaml:"port"`
	ManifestPath   string        `yaml:"manifest_path"`
	WeatherBaseURL string        `yaml:"weather_base_url"`
	WeatherTimeout time.Duration `yaml:"weather_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		ManifestPath:   manifest.DefaultPath,
		WeatherBaseURL: weather.DefaultBaseURL,
		WeatherTimeout: weather.DefaultTimeout,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load layers the YAML file at path (or DefaultFile when path is empty and
// the file exists), then .env, then environment variables over Default.
func Load(path string) (Config, error) {
	cfg := Default()

	file := strings.TrimSpace(path)
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	if err := cfg.mergeFile(file); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	// A missing .env is normal; existing variables are never overridden.
	_ = godotenv.Load()

	if err := cfg.mergeEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = p
	}
	if v := getenv("MANIFEST_PATH"); v != "" {
		c.ManifestPath = v
	}
	if v := getenv("WEATHER_BASE_URL"); v != "" {
		c.WeatherBaseURL = v
	}
	if v := getenv("WEATHER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WEATHER_TIMEOUT %q: %w", v, err)
		}
		c.WeatherTimeout = d
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ManifestPath == "" {
		return errors.New("manifest path is empty")
	}
	if c.WeatherTimeout <= 0 {
		return fmt.Errorf("weather timeout must be positive, got %s", c.WeatherTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Logger builds the process logger described by LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	lvl, err := c.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
