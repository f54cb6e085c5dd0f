package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Logging     LoggingConfig     `toml:"logging"`
	Cache       CacheConfig       `toml:"cache"`
	Nominatim   NominatimConfig   `toml:"nominatim"`
	Foursquare  FoursquareConfig  `toml:"foursquare"`
	TripAdvisor TripAdvisorConfig `toml:"tripadvisor"`
	Claude      ClaudeConfig      `toml:"claude"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// CacheConfig bounds the shared result caches. Failure entries always use
// the shorter FailureTTL so transient upstream errors retry sooner.
type CacheConfig struct {
	Capacity   int           `toml:"capacity"`
	TTL        time.Duration `toml:"ttl"`
	FailureTTL time.Duration `toml:"failure_ttl"`
	AddressTTL time.Duration `toml:"address_ttl"` // fallback geocoder address cache
}

// NominatimConfig configures the geocoding provider. UserAgent is a hard
// requirement of the provider's usage policy, not optional.
type NominatimConfig struct {
	BaseURL        string        `toml:"base_url"`
	UserAgent      string        `toml:"user_agent"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      time.Duration `toml:"rate_limit"` // minimum spacing between requests
}

// FoursquareConfig configures the primary POI search provider.
type FoursquareConfig struct {
	BaseURL        string        `toml:"base_url"`
	APIKey         string        `toml:"api_key"`
	APIVersion     string        `toml:"api_version"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxResults     int           `toml:"max_results"`
}

// TripAdvisorConfig configures the secondary, category-based POI provider.
type TripAdvisorConfig struct {
	BaseURL        string        `toml:"base_url"`
	APIKey         string        `toml:"api_key"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	GeocodePause   time.Duration `toml:"geocode_pause"` // spacing between uncached fallback geocodes
}

// ClaudeConfig contains configuration for the Claude chat agent
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"` // ANTHROPIC_API_KEY env var also honored
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	MaxTurns    int     `toml:"max_turns"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Cache: CacheConfig{
			Capacity:   200,
			TTL:        10 * time.Minute,
			FailureTTL: 2 * time.Minute,
			AddressTTL: 24 * time.Hour,
		},
		Nominatim: NominatimConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			UserAgent:      "carto/" + Version + " (map assistant)",
			RequestTimeout: 30 * time.Second,
			RateLimit:      1100 * time.Millisecond, // free-tier etiquette: ~1 req/s
		},
		Foursquare: FoursquareConfig{
			BaseURL:        "https://api.foursquare.com/v3",
			APIKey:         "", // user must provide API key in config file
			APIVersion:     "2023-06-01",
			RequestTimeout: 30 * time.Second,
			MaxResults:     50, // provider ceiling regardless of caller limit
		},
		TripAdvisor: TripAdvisorConfig{
			BaseURL:        "https://api.content.tripadvisor.com/api/v1",
			APIKey:         "",
			RequestTimeout: 30 * time.Second,
			GeocodePause:   1100 * time.Millisecond,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			MaxTurns:    10,
			Timeout:     "2m",
			Temperature: 0.7,
		},
	}
}

// LoadFromFile loads configuration from a TOML file, falling back to
// defaults for anything the file does not set, then applies environment
// variable overrides. An empty path loads defaults plus env overrides.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks constraints the rest of the system relies on.
func (c *Config) Validate() error {
	if c.Nominatim.UserAgent == "" {
		return fmt.Errorf("nominatim.user_agent is required by the provider usage policy")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Cache.FailureTTL > c.Cache.TTL {
		return fmt.Errorf("cache.failure_ttl must not exceed cache.ttl")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CARTO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("CARTO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CARTO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("CARTO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CARTO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if ua := os.Getenv("CARTO_NOMINATIM_USER_AGENT"); ua != "" {
		config.Nominatim.UserAgent = ua
	}
	if base := os.Getenv("CARTO_NOMINATIM_BASE_URL"); base != "" {
		config.Nominatim.BaseURL = base
	}
	if key := os.Getenv("CARTO_FOURSQUARE_API_KEY"); key != "" {
		config.Foursquare.APIKey = key
	}
	if key := os.Getenv("CARTO_TRIPADVISOR_API_KEY"); key != "" {
		config.TripAdvisor.APIKey = key
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("CARTO_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if model := os.Getenv("CARTO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
}
