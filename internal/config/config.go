// Package config loads service settings from environment variables. Provider
// credentials are opaque strings supplied by the environment; a missing
// credential disables that provider rather than failing startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Resolution behavior.
	ResolveTimeout time.Duration
	VenueTTL       time.Duration
	CacheSize      int
	GridCellMeters float64

	// Provider credentials. Empty means the provider is disabled.
	GooglePlacesAPIKey  string
	GooglePlacesTimeout time.Duration
	FoursquareAPIKey    string
	FoursquareTimeout   time.Duration

	// Outbound call discipline, shared by every provider adapter.
	ProviderRateCapacity  int
	ProviderRatePerSecond float64
	ProviderMaxRetries    int
	ProviderRetryBase     time.Duration

	// Kafka event sink. No brokers means the sink is disabled.
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	resolveTimeout, err := envDuration("RESOLVE_TIMEOUT", 4*time.Second)
	if err != nil {
		return nil, err
	}
	venueTTL, err := envDuration("VENUE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	googleTimeout, err := envDuration("GOOGLE_PLACES_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	foursquareTimeout, err := envDuration("FOURSQUARE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	retryBase, err := envDuration("PROVIDER_RETRY_BASE", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}

	cacheSize, err := envInt("CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	rateCapacity, err := envInt("PROVIDER_RATE_CAPACITY", 5)
	if err != nil {
		return nil, err
	}
	maxRetries, err := envInt("PROVIDER_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	cellMeters, err := envFloat("GRID_CELL_METERS", 250)
	if err != nil {
		return nil, err
	}
	ratePerSecond, err := envFloat("PROVIDER_RATE_PER_SECOND", 2.0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ResolveTimeout: resolveTimeout,
		VenueTTL:       venueTTL,
		CacheSize:      cacheSize,
		GridCellMeters: cellMeters,

		GooglePlacesAPIKey:  os.Getenv("GOOGLE_PLACES_API_KEY"),
		GooglePlacesTimeout: googleTimeout,
		FoursquareAPIKey:    os.Getenv("FOURSQUARE_API_KEY"),
		FoursquareTimeout:   foursquareTimeout,

		ProviderRateCapacity:  rateCapacity,
		ProviderRatePerSecond: ratePerSecond,
		ProviderMaxRetries:    maxRetries,
		ProviderRetryBase:     retryBase,

		KafkaBrokers:   parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "venue-classifications"),
	}

	if cfg.CacheSize < 1 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if cfg.GridCellMeters <= 0 {
		return nil, errors.New("GRID_CELL_METERS must be positive")
	}
	if cfg.ProviderRateCapacity < 1 {
		return nil, errors.New("PROVIDER_RATE_CAPACITY must be positive")
	}
	if cfg.ProviderRatePerSecond <= 0 {
		return nil, errors.New("PROVIDER_RATE_PER_SECOND must be positive")
	}
	if cfg.ProviderMaxRetries < 0 {
		return nil, errors.New("PROVIDER_MAX_RETRIES must not be negative")
	}
	return cfg, nil
}

// SinkEnabled reports whether the Kafka event sink is configured.
func (c *Config) SinkEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
