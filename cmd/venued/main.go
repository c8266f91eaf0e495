// Command venued serves the venue resolution API: given a coordinate it
// queries every configured location provider, fuses their answers into one
// classified venue, and returns it over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/venue-resolution/internal/adapter/foursquare"
	"github.com/couchcryptid/venue-resolution/internal/adapter/googleplaces"
	httpadapter "github.com/couchcryptid/venue-resolution/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/venue-resolution/internal/adapter/kafka"
	"github.com/couchcryptid/venue-resolution/internal/config"
	"github.com/couchcryptid/venue-resolution/internal/observability"
	"github.com/couchcryptid/venue-resolution/internal/provider"
	"github.com/couchcryptid/venue-resolution/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	guardCfg := provider.GuardConfig{
		RateCapacity:  cfg.ProviderRateCapacity,
		RatePerSecond: cfg.ProviderRatePerSecond,
		MaxRetries:    cfg.ProviderMaxRetries,
		RetryBase:     cfg.ProviderRetryBase,
		FetchTimeout:  cfg.ResolveTimeout,
		CellMeters:    cfg.GridCellMeters,
		CacheSize:     cfg.CacheSize,
	}

	// Assemble the adapter list once from configuration. A provider without a
	// credential is simply absent; zero providers means every resolution
	// returns the GPS fallback.
	var adapters []resolver.Adapter
	if cfg.GooglePlacesAPIKey != "" {
		client := googleplaces.NewClient(cfg.GooglePlacesAPIKey, cfg.GooglePlacesTimeout, logger)
		adapters = append(adapters, provider.NewGuard(client, guardCfg, metrics, logger))
		logger.Info("google places provider enabled", "timeout", cfg.GooglePlacesTimeout)
	} else {
		logger.Info("google places provider disabled")
	}
	if cfg.FoursquareAPIKey != "" {
		client := foursquare.NewClient(cfg.FoursquareAPIKey, cfg.FoursquareTimeout, logger)
		adapters = append(adapters, provider.NewGuard(client, guardCfg, metrics, logger))
		logger.Info("foursquare provider enabled", "timeout", cfg.FoursquareTimeout)
	} else {
		logger.Info("foursquare provider disabled")
	}

	var opts []resolver.Option
	var sink *kafkaadapter.Writer
	if cfg.SinkEnabled() {
		sink = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, resolver.WithSink(sink))
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	res := resolver.New(adapters, resolver.Config{
		VenueTTL:       cfg.VenueTTL,
		ResolveTimeout: cfg.ResolveTimeout,
		CellMeters:     cfg.GridCellMeters,
		CacheSize:      cfg.CacheSize,
	}, metrics, logger, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, res, res, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Error("kafka sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
