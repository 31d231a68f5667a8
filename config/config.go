// Package config resolves settings from built-in defaults, then
// ~/.blogscraper/config.yaml, then BLOGSCRAPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pevans/blogscraper/discovery"
	"github.com/pevans/blogscraper/imageinfo"
	"github.com/pevans/blogscraper/scraper"
)

var (
	// ErrInvalidDuration is returned for a delay or timeout that is not a Go
	// duration string.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidLogLevel is returned for a level other than debug, info,
	// warn or error.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Duration is a time.Duration written as a Go duration string ("1s",
// "500ms") in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML writes the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func parseDuration(s string) (Duration, error) {
	v, err := time.ParseDuration(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return Duration(v), nil
}

// StorageConfig locates the article store, its frontend mirror and the run
// history database.
type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`
	MirrorPath string `yaml:"mirror_path"`
	RunlogDSN  string `yaml:"runlog_dsn"`
}

// ScrapeConfig controls how pages are requested.
type ScrapeConfig struct {
	Delay     Duration `yaml:"delay"`
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
	BaseURL   string   `yaml:"base_url"`
}

// APIConfig controls the HTTP API.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the full set of settings.
type Config struct {
	Storage StorageConfig  `yaml:"storage"`
	Scrape  ScrapeConfig   `yaml:"scrape"`
	API     APIConfig      `yaml:"api"`
	Log     LogConfig      `yaml:"log"`
	Scraper scraper.Config `yaml:"scraper"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:    "data",
			MirrorPath: filepath.Join("frontend", "public", "articles.json"),
		},
		Scrape: ScrapeConfig{
			Delay:     Duration(time.Second),
			Timeout:   Duration(discovery.DefaultTimeout),
			UserAgent: discovery.DefaultUserAgent,
			BaseURL:   imageinfo.DefaultBaseURL,
		},
		API: APIConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.blogscraper/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".blogscraper", "config.yaml"), nil
}

// Load resolves the configuration from path (DefaultPath when empty) and the
// environment. A missing file is not an error; an unparseable one is.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage.DataDir, "BLOGSCRAPER_DATA_DIR")
	setString(&c.Storage.RunlogDSN, "BLOGSCRAPER_RUNLOG_DSN")
	setString(&c.Scrape.UserAgent, "BLOGSCRAPER_USER_AGENT")
	setString(&c.Scrape.BaseURL, "BLOGSCRAPER_BASE_URL")
	setString(&c.API.Addr, "BLOGSCRAPER_API_ADDR")
	setString(&c.Log.Level, "BLOGSCRAPER_LOG_LEVEL")

	// An explicitly empty mirror path disables the mirror.
	if v, ok := os.LookupEnv("BLOGSCRAPER_MIRROR_PATH"); ok {
		c.Storage.MirrorPath = v
	}

	if err := setDuration(&c.Scrape.Delay, "BLOGSCRAPER_DELAY"); err != nil {
		return err
	}
	return setDuration(&c.Scrape.Timeout, "BLOGSCRAPER_TIMEOUT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// finish fills derived values and validates the result.
func (c *Config) finish() error {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.RunlogDSN == "" {
		c.Storage.RunlogDSN = filepath.Join(c.Storage.DataDir, "runs.db")
	}
	if c.Scrape.BaseURL == "" {
		c.Scrape.BaseURL = imageinfo.DefaultBaseURL
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the configured zerolog level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
}

// ScraperConfig returns the extractor selectors with the configured base URL
// and defaults for every list the file left empty.
func (c *Config) ScraperConfig() *scraper.Config {
	sc := c.Scraper
	sc.BaseURL = c.Scrape.BaseURL
	return sc.WithDefaults()
}

// Delay is the pause between article requests.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Scrape.Delay)
}

// Timeout bounds each request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Scrape.Timeout)
}
