package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	FixturesEmbedded = "embedded"
	FixturesPostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Display  DisplayConfig  `yaml:"display"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Search   SearchConfig   `yaml:"search"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	Booking  BookingConfig  `yaml:"booking"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address            string   `yaml:"address"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location resolves the display timezone. Validate guarantees it loads.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type UpstreamConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessKey      string `yaml:"access_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	BackoffMS      int    `yaml:"backoff_ms"`
}

type SearchConfig struct {
	MaskUpstreamErrors *bool `yaml:"mask_upstream_errors"`
	CacheTTLSeconds    int   `yaml:"cache_ttl_seconds"`
	ResultsTTLMinutes  int   `yaml:"results_ttl_minutes"`
	MinFallbackPrice   int   `yaml:"min_fallback_price"`
	MaxFallbackPrice   int   `yaml:"max_fallback_price"`
}

// MaskErrors reports the error-masking policy; unset means masked.
func (s SearchConfig) MaskErrors() bool {
	return s.MaskUpstreamErrors == nil || *s.MaskUpstreamErrors
}

type FixturesConfig struct {
	Source string `yaml:"source"`
}

type BookingConfig struct {
	HandoffTTLMinutes int `yaml:"handoff_ttl_minutes"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	SelectionsTopic string   `yaml:"selections_topic"`
	GroupID         string   `yaml:"group_id"`
}

type WorkerConfig struct {
	PurgeIntervalMinutes    int `yaml:"purge_interval_minutes"`
	SelectionRetentionHours int `yaml:"selection_retention_hours"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.HTTP.CORSAllowedOrigins) == 0 {
		c.HTTP.CORSAllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = "Asia/Kolkata"
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.aviationstack.com/v1"
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = 10
	}
	if c.Upstream.Retries < 0 {
		c.Upstream.Retries = 0
	}
	if c.Upstream.BackoffMS <= 0 {
		c.Upstream.BackoffMS = 300
	}
	if c.Search.CacheTTLSeconds <= 0 {
		c.Search.CacheTTLSeconds = 60
	}
	if c.Search.ResultsTTLMinutes <= 0 {
		c.Search.ResultsTTLMinutes = 30
	}
	if c.Search.MinFallbackPrice == 0 && c.Search.MaxFallbackPrice == 0 {
		c.Search.MinFallbackPrice = 3000
		c.Search.MaxFallbackPrice = 6000
	}
	if c.Fixtures.Source == "" {
		c.Fixtures.Source = FixturesEmbedded
	}
	if c.Booking.HandoffTTLMinutes <= 0 {
		c.Booking.HandoffTTLMinutes = 30
	}
	if c.Worker.PurgeIntervalMinutes <= 0 {
		c.Worker.PurgeIntervalMinutes = 60
	}
	if c.Worker.SelectionRetentionHours <= 0 {
		c.Worker.SelectionRetentionHours = 24 * 30
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("invalid display timezone %q: %w", c.Display.Timezone, err)
	}
	switch c.Fixtures.Source {
	case FixturesEmbedded, FixturesPostgres:
	default:
		return fmt.Errorf("invalid fixtures source: %s (must be embedded or postgres)", c.Fixtures.Source)
	}
	if c.Search.MinFallbackPrice <= 0 || c.Search.MaxFallbackPrice <= c.Search.MinFallbackPrice {
		return fmt.Errorf("invalid fallback price range [%d, %d)", c.Search.MinFallbackPrice, c.Search.MaxFallbackPrice)
	}
	return nil
}
