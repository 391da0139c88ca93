package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. LLMSETTINGS_ADDR.
const EnvPrefix = "LLMSETTINGS_"

// Catalog kinds.
const (
	KindHTTP   = "http"
	KindOpenAI = "openai"
	KindDir    = "dir"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`

	Store StoreConfig `json:"store" yaml:"store" toml:"store" envPrefix:"STORE_"`
	CORS  CORSConfig  `json:"cors" yaml:"cors" toml:"cors" envPrefix:"CORS_"`

	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	// FetchTimeout bounds a single catalog fetch, e.g. "30s". Empty disables.
	FetchTimeout string `json:"fetch_timeout" yaml:"fetch_timeout" toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	// RequestTimeout bounds how long an HTTP handler waits on the store or a
	// catalog fetch. Empty disables.
	RequestTimeout string `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout" env:"REQUEST_TIMEOUT"`
	// RefreshTimeout bounds one scheduled refresh run. Empty disables.
	RefreshTimeout string `json:"refresh_timeout" yaml:"refresh_timeout" toml:"refresh_timeout" env:"REFRESH_TIMEOUT"`
	// RefreshCron schedules revalidation of enabled providers, e.g. "*/30 * * * *".
	RefreshCron string `json:"refresh_cron" yaml:"refresh_cron" toml:"refresh_cron" env:"REFRESH_CRON"`

	// Providers configures model catalogs keyed by provider.
	Providers map[string]CatalogConfig `json:"providers" yaml:"providers" toml:"providers"`
}

// StoreConfig selects the settings persistence backend.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver" toml:"driver" env:"DRIVER"`
	Path   string `json:"path" yaml:"path" toml:"path" env:"PATH"`
}

// CORSConfig is opt-in; nothing is mounted unless Enabled.
type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods" env:"ALLOWED_METHODS" envSeparator:","`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers" env:"ALLOWED_HEADERS" envSeparator:","`
}

// CatalogConfig describes where one provider's model list comes from.
type CatalogConfig struct {
	// Kind is http, openai or dir.
	Kind    string `json:"kind" yaml:"kind" toml:"kind"`
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string            `json:"api_key_env" yaml:"api_key_env" toml:"api_key_env"`
	Headers   map[string]string `json:"headers" yaml:"headers" toml:"headers"`
	// Dir and Extensions apply to kind dir.
	Dir        string   `json:"dir" yaml:"dir" toml:"dir"`
	Extensions []string `json:"extensions" yaml:"extensions" toml:"extensions"`
}

// APIKey resolves the key from the named environment variable.
func (c CatalogConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays LLMSETTINGS_* environment variables onto cfg. Unset
// variables leave the field alone.
func ApplyEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

// WithDefaults fills unspecified fields.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverFile
	}
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case DriverSQLite:
			c.Store.Path = "~/.llmsettings/settings.db"
		default:
			c.Store.Path = "~/.llmsettings/settings.json"
		}
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	for k, p := range c.Providers {
		if p.Kind == "" {
			p.Kind = KindHTTP
		}
		c.Providers[k] = p
	}
	return c
}

// FetchTimeoutDuration parses FetchTimeout. Empty means no timeout.
func (c Config) FetchTimeoutDuration() (time.Duration, error) {
	return parseTimeout("fetch_timeout", c.FetchTimeout)
}

// RequestTimeoutDuration parses RequestTimeout. Empty means no timeout.
func (c Config) RequestTimeoutDuration() (time.Duration, error) {
	return parseTimeout("request_timeout", c.RequestTimeout)
}

// RefreshTimeoutDuration parses RefreshTimeout. Empty means no timeout.
func (c Config) RefreshTimeoutDuration() (time.Duration, error) {
	return parseTimeout("refresh_timeout", c.RefreshTimeout)
}

func parseTimeout(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", field, d)
	}
	return d, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("store.driver: unsupported %q", c.Store.Driver)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported %q", c.LogFormat)
	}
	for _, parse := range []func() (time.Duration, error){
		c.FetchTimeoutDuration, c.RequestTimeoutDuration, c.RefreshTimeoutDuration,
	} {
		if _, err := parse(); err != nil {
			return err
		}
	}
	for k, p := range c.Providers {
		switch p.Kind {
		case KindHTTP, KindOpenAI:
			if p.Kind == KindHTTP && p.BaseURL == "" {
				return fmt.Errorf("providers.%s: base_url required for kind http", k)
			}
		case KindDir:
			if p.Dir == "" {
				return fmt.Errorf("providers.%s: dir required for kind dir", k)
			}
		default:
			return fmt.Errorf("providers.%s: unsupported kind %q", k, p.Kind)
		}
	}
	return nil
}
