package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`

	// Persistence
	DBPath string `envconfig:"DB_PATH" default:"workspace.db"`

	// HTTP surface
	APIKey      string `envconfig:"API_KEY"` // empty disables the key check
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Projections
	PinnedLimit    int `envconfig:"PINNED_LIMIT" default:"10"`
	GridVisibleCap int `envconfig:"GRID_VISIBLE_CAP" default:"3"`
	GridCacheSize  int `envconfig:"GRID_CACHE_SIZE" default:"16"`

	// Optional YAML file overriding the duration-label table.
	DurationTablePath string `envconfig:"DURATION_TABLE_PATH"`
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

// CORSOriginList returns the parsed list of allowed CORS origins.
// Returns nil if not configured.
func (c *Config) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, o := range parts {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %s: %w", prefix, err)
	}
	return &cfg, nil
}
