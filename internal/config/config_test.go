package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGoogleKey     = "AIza-test-key"
	testFoursquareKey = "fsq-test-key"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 5*time.Minute, cfg.VenueTTL)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, 250.0, cfg.GridCellMeters)
	assert.Empty(t, cfg.GooglePlacesAPIKey)
	assert.Equal(t, 3*time.Second, cfg.GooglePlacesTimeout)
	assert.Empty(t, cfg.FoursquareAPIKey)
	assert.Equal(t, 3*time.Second, cfg.FoursquareTimeout)
	assert.Equal(t, 5, cfg.ProviderRateCapacity)
	assert.Equal(t, 2.0, cfg.ProviderRatePerSecond)
	assert.Equal(t, 2, cfg.ProviderMaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.ProviderRetryBase)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "venue-classifications", cfg.KafkaSinkTopic)
	assert.False(t, cfg.SinkEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("RESOLVE_TIMEOUT", "2s")
	t.Setenv("VENUE_TTL", "10m")
	t.Setenv("CACHE_SIZE", "500")
	t.Setenv("GRID_CELL_METERS", "100")
	t.Setenv("GOOGLE_PLACES_API_KEY", testGoogleKey)
	t.Setenv("GOOGLE_PLACES_TIMEOUT", "5s")
	t.Setenv("FOURSQUARE_API_KEY", testFoursquareKey)
	t.Setenv("FOURSQUARE_TIMEOUT", "6s")
	t.Setenv("PROVIDER_RATE_CAPACITY", "10")
	t.Setenv("PROVIDER_RATE_PER_SECOND", "4.5")
	t.Setenv("PROVIDER_MAX_RETRIES", "3")
	t.Setenv("PROVIDER_RETRY_BASE", "100ms")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 10*time.Minute, cfg.VenueTTL)
	assert.Equal(t, 500, cfg.CacheSize)
	assert.Equal(t, 100.0, cfg.GridCellMeters)
	assert.Equal(t, testGoogleKey, cfg.GooglePlacesAPIKey)
	assert.Equal(t, 5*time.Second, cfg.GooglePlacesTimeout)
	assert.Equal(t, testFoursquareKey, cfg.FoursquareAPIKey)
	assert.Equal(t, 6*time.Second, cfg.FoursquareTimeout)
	assert.Equal(t, 10, cfg.ProviderRateCapacity)
	assert.Equal(t, 4.5, cfg.ProviderRatePerSecond)
	assert.Equal(t, 3, cfg.ProviderMaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.ProviderRetryBase)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaSinkTopic)
	assert.True(t, cfg.SinkEnabled())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeResolveTimeout(t *testing.T) {
	t.Setenv("RESOLVE_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOLVE_TIMEOUT")
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	t.Setenv("CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_SIZE")
}

func TestLoad_InvalidGridCellMeters(t *testing.T) {
	t.Setenv("GRID_CELL_METERS", "-250")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRID_CELL_METERS")
}

func TestLoad_InvalidRateCapacity(t *testing.T) {
	t.Setenv("PROVIDER_RATE_CAPACITY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_RATE_CAPACITY")
}

func TestLoad_InvalidRatePerSecond(t *testing.T) {
	t.Setenv("PROVIDER_RATE_PER_SECOND", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_RATE_PER_SECOND")
}

func TestLoad_NegativeMaxRetries(t *testing.T) {
	t.Setenv("PROVIDER_MAX_RETRIES", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_MAX_RETRIES")
}

func TestLoad_BrokersWithoutTopic(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "")
	cfg, err := Load()
	require.NoError(t, err, "an empty topic falls back to the default")
	assert.Equal(t, "venue-classifications", cfg.KafkaSinkTopic)
}
