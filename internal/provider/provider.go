// Package provider defines the port every location source implements and the
// Guard decorator that wraps a source with the full outbound-call discipline:
// grid-keyed caching, duplicate-fetch coalescing, token-bucket rate limiting,
// jittered retries, and HTTP revalidation. Past a Guard, a provider can only
// ever produce a result or nothing — never an error.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/venue-resolution/internal/cache"
	"github.com/couchcryptid/venue-resolution/internal/domain"
	"github.com/couchcryptid/venue-resolution/internal/observability"
	"github.com/couchcryptid/venue-resolution/internal/ratelimit"
	"github.com/couchcryptid/venue-resolution/internal/retry"
)

// ErrNotModified signals that the provider answered 304 for the validator the
// source sent: the previously cached body is still current.
var ErrNotModified = errors.New("provider response not modified")

// Source is one external location provider, stripped to its essentials:
// request shape, response parsing, and a freshness horizon. Fetch returns
// (nil, nil) for an empty-but-valid response and ErrNotModified when the
// provider confirms the validator; any other error is considered transient
// and retryable.
type Source interface {
	Name() string
	TTL() time.Duration
	Fetch(ctx context.Context, lat, lng float64, validator string) (*domain.ProviderResult, error)
}

// GuardConfig carries the per-provider call-discipline knobs.
type GuardConfig struct {
	RateCapacity  int
	RatePerSecond float64
	MaxRetries    int
	RetryBase     time.Duration
	FetchTimeout  time.Duration
	CellMeters    float64
	CacheSize     int
}

// Guard decorates a Source. All concurrent resolutions share one Guard per
// provider, which is the point: the rate limiter and cache are per-provider
// process-wide state.
type Guard struct {
	source  Source
	limiter *ratelimit.Limiter
	store   *cache.Store[*domain.ProviderResult]
	flights cache.Group[*domain.ProviderResult]
	cfg     GuardConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewGuard wraps source with the standard call discipline.
func NewGuard(source Source, cfg GuardConfig, metrics *observability.Metrics, logger *slog.Logger) *Guard {
	return &Guard{
		source:  source,
		limiter: ratelimit.New(cfg.RateCapacity, cfg.RatePerSecond),
		store:   cache.NewStore[*domain.ProviderResult](cfg.CacheSize, nil),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With("provider", source.Name()),
	}
}

// Name returns the wrapped source's provider tag.
func (g *Guard) Name() string { return g.source.Name() }

// Nearby resolves the provider's best answer for a coordinate. It returns nil
// for any unrecoverable failure or empty response; errors never escape this
// boundary.
//
// The coalesced fetch runs on a context detached from the caller so that if
// one caller's deadline expires mid-flight, the job still completes and every
// other waiter on the same grid cell gets its result.
func (g *Guard) Nearby(ctx context.Context, lat, lng float64) *domain.ProviderResult {
	key := fmt.Sprintf("%s:%s", g.source.Name(), domain.GridKey(lat, lng, g.cfg.CellMeters))

	if result, ok := g.store.Get(key); ok {
		g.metrics.ProviderCache.WithLabelValues(g.source.Name(), "hit").Inc()
		return result
	}
	g.metrics.ProviderCache.WithLabelValues(g.source.Name(), "miss").Inc()

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.FetchTimeout)
	defer cancel()

	ran := false
	result, err := g.flights.Do(key, func() (*domain.ProviderResult, error) {
		ran = true
		return g.fetch(fetchCtx, key, lat, lng)
	})
	if !ran {
		// Joined a fetch some earlier caller started.
		g.metrics.CoalescedCalls.Inc()
	}
	if err != nil {
		g.logger.Warn("provider fetch failed", "error", err, "lat", lat, "lng", lng)
		return nil
	}
	return result
}

// fetch performs one rate-limited, retried call and caches its outcome.
func (g *Guard) fetch(ctx context.Context, key string, lat, lng float64) (*domain.ProviderResult, error) {
	waitStart := time.Now()
	if err := g.limiter.Take(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	g.metrics.RateLimitWait.WithLabelValues(g.source.Name()).Observe(time.Since(waitStart).Seconds())

	validator := g.store.Validator(key)

	var revalidated bool
	callStart := time.Now()
	result, err := retry.Do(ctx, func() (*domain.ProviderResult, error) {
		res, err := g.source.Fetch(ctx, lat, lng, validator)
		if errors.Is(err, ErrNotModified) {
			if stale, ok := g.store.GetStale(key); ok {
				revalidated = true
				return stale, nil
			}
			// Validator survived without its body; refetch unconditionally.
			return g.source.Fetch(ctx, lat, lng, "")
		}
		return res, err
	}, g.cfg.MaxRetries, g.cfg.RetryBase)
	g.metrics.ProviderDuration.WithLabelValues(g.source.Name()).Observe(time.Since(callStart).Seconds())

	switch {
	case err != nil:
		g.metrics.ProviderRequests.WithLabelValues(g.source.Name(), "error").Inc()
		return nil, err
	case result == nil:
		g.metrics.ProviderRequests.WithLabelValues(g.source.Name(), "empty").Inc()
		return nil, nil
	case revalidated:
		g.metrics.ProviderRequests.WithLabelValues(g.source.Name(), "not_modified").Inc()
	default:
		g.metrics.ProviderRequests.WithLabelValues(g.source.Name(), "success").Inc()
	}

	g.store.Set(key, result, g.source.TTL(), result.Validator)
	return result, nil
}
