// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/contacts/internal/contacts"
)

// Config holds all contacts configuration.
type Config struct {
	Store Store `yaml:"store"`
	UI    UI    `yaml:"ui"`
	Log   Log   `yaml:"log"`
}

// Store holds the remote contact collection settings.
type Store struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // Per-request timeout
}

// UI holds display settings.
type UI struct {
	Locale      string `yaml:"locale"`       // BCP 47 tag used for name/email ordering
	DefaultSort string `yaml:"default_sort"` // "none" | "name" | "email" | "time"
}

// Log holds logging settings.
type Log struct {
	File  string `yaml:"file"`  // Empty means logging.DefaultFile()
	Level string `yaml:"level"` // zap level name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			BaseURL: "http://localhost:3001/",
			Timeout: 10 * time.Second,
		},
		UI: UI{
			Locale:      "en",
			DefaultSort: "none",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Store.BaseURL)
	if err != nil {
		return fmt.Errorf("config: store.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: store.base_url must be an absolute http(s) URL, got %q", c.Store.BaseURL)
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("config: store.timeout must be positive, got %v", c.Store.Timeout)
	}
	if _, err := language.Parse(c.UI.Locale); err != nil {
		return fmt.Errorf("config: ui.locale %q: %w", c.UI.Locale, err)
	}
	if _, err := contacts.ParseSortKey(c.UI.DefaultSort); err != nil {
		return fmt.Errorf("config: ui.default_sort: %w", err)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// LocaleTag returns the parsed ui.locale, falling back to English.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.UI.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// SortKey returns the parsed ui.default_sort, falling back to no sorting.
func (c *Config) SortKey() contacts.SortKey {
	key, err := contacts.ParseSortKey(c.UI.DefaultSort)
	if err != nil {
		return contacts.SortNone
	}
	return key
}

// envOverrides lists the supported environment variables. Pointer fields
// stay nil when the variable is unset.
type envOverrides struct {
	BaseURL  *string        `env:"CONTACTS_BASE_URL"`
	Timeout  *time.Duration `env:"CONTACTS_TIMEOUT"`
	Locale   *string        `env:"CONTACTS_LOCALE"`
	LogFile  *string        `env:"CONTACTS_LOG_FILE"`
	LogLevel *string        `env:"CONTACTS_LOG_LEVEL"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTS_BASE_URL, CONTACTS_TIMEOUT, CONTACTS_LOCALE,
// CONTACTS_LOG_FILE, CONTACTS_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.BaseURL != nil {
		c.Store.BaseURL = *o.BaseURL
	}
	if o.Timeout != nil {
		c.Store.Timeout = *o.Timeout
	}
	if o.Locale != nil {
		c.UI.Locale = *o.Locale
	}
	if o.LogFile != nil {
		c.Log.File = *o.LogFile
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store *rawStore `yaml:"store"`
	UI    *rawUI    `yaml:"ui"`
	Log   *rawLog   `yaml:"log"`
}

type rawStore struct {
	BaseURL *string        `yaml:"base_url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawUI struct {
	Locale      *string `yaml:"locale"`
	DefaultSort *string `yaml:"default_sort"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Store != nil {
		if layer.Store.BaseURL != nil {
			c.Store.BaseURL = *layer.Store.BaseURL
		}
		if layer.Store.Timeout != nil {
			c.Store.Timeout = *layer.Store.Timeout
		}
	}
	if layer.UI != nil {
		if layer.UI.Locale != nil {
			c.UI.Locale = *layer.UI.Locale
		}
		if layer.UI.DefaultSort != nil {
			c.UI.DefaultSort = *layer.UI.DefaultSort
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
}
