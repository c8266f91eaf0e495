// Command classify performs a one-shot venue resolution from the command line
// and prints the result as JSON. Useful for poking at provider behavior and
// taxonomy decisions without running the service.
//
// Usage:
//
//	GOOGLE_PLACES_API_KEY=... FOURSQUARE_API_KEY=... \
//	  go run ./cmd/classify -lat 30.2672 -lng -97.7431
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/venue-resolution/internal/adapter/foursquare"
	"github.com/couchcryptid/venue-resolution/internal/adapter/googleplaces"
	"github.com/couchcryptid/venue-resolution/internal/config"
	"github.com/couchcryptid/venue-resolution/internal/observability"
	"github.com/couchcryptid/venue-resolution/internal/provider"
	"github.com/couchcryptid/venue-resolution/internal/resolver"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude of the point to classify")
	lng := flag.Float64("lng", 0, "longitude of the point to classify")
	verbose := flag.Bool("v", false, "log provider traffic to stderr")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	metrics := observability.NewMetricsForTesting()

	guardCfg := provider.GuardConfig{
		RateCapacity:  cfg.ProviderRateCapacity,
		RatePerSecond: cfg.ProviderRatePerSecond,
		MaxRetries:    cfg.ProviderMaxRetries,
		RetryBase:     cfg.ProviderRetryBase,
		FetchTimeout:  cfg.ResolveTimeout,
		CellMeters:    cfg.GridCellMeters,
		CacheSize:     cfg.CacheSize,
	}

	var adapters []resolver.Adapter
	if cfg.GooglePlacesAPIKey != "" {
		adapters = append(adapters, provider.NewGuard(
			googleplaces.NewClient(cfg.GooglePlacesAPIKey, cfg.GooglePlacesTimeout, logger),
			guardCfg, metrics, logger))
	}
	if cfg.FoursquareAPIKey != "" {
		adapters = append(adapters, provider.NewGuard(
			foursquare.NewClient(cfg.FoursquareAPIKey, cfg.FoursquareTimeout, logger),
			guardCfg, metrics, logger))
	}
	if len(adapters) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no provider credentials configured; result will be the GPS fallback")
	}

	res := resolver.New(adapters, resolver.Config{
		VenueTTL:       cfg.VenueTTL,
		ResolveTimeout: cfg.ResolveTimeout,
		CellMeters:     cfg.GridCellMeters,
		CacheSize:      cfg.CacheSize,
	}, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ResolveTimeout)
	defer cancel()

	venue, err := res.ClassifyVenue(ctx, *lat, *lng)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(venue)
}
