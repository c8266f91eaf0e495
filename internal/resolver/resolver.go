// Package resolver fuses the answers of every configured location provider
// into one confidence-scored venue classification.
package resolver

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/venue-resolution/internal/cache"
	"github.com/couchcryptid/venue-resolution/internal/domain"
	"github.com/couchcryptid/venue-resolution/internal/observability"
)

// Adapter is a guarded provider: it answers with a result or nil, never an
// error. See provider.Guard.
type Adapter interface {
	Name() string
	Nearby(ctx context.Context, lat, lng float64) *domain.ProviderResult
}

// Sink receives every resolved venue, e.g. for downstream event consumers.
type Sink interface {
	Publish(ctx context.Context, venue domain.VenueClass) error
}

// Config carries the resolver-level knobs.
type Config struct {
	VenueTTL       time.Duration // freshness of a fused VenueClass
	ResolveTimeout time.Duration // bound on one full provider fan-out
	CellMeters     float64
	CacheSize      int
}

// Resolver owns the lifecycle of VenueClass results: it runs the provider
// fan-out, classifies and ranks the candidates, and caches winners per grid
// cell. The cache and in-flight registry are the only process-wide mutable
// state, both held here so independent Resolver instances (as in tests) never
// share anything.
type Resolver struct {
	adapters []Adapter
	cfg      Config
	store    *cache.Store[domain.VenueClass]
	flights  cache.Group[domain.VenueClass]
	sink     Sink
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures optional collaborators on a Resolver.
type Option func(*Resolver)

// WithSink publishes every resolution to sink, fire-and-forget.
func WithSink(sink Sink) Option {
	return func(r *Resolver) { r.sink = sink }
}

// WithClock swaps the time source, for deterministic tests.
func WithClock(c clockwork.Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// New creates a Resolver over a fixed adapter list. The list is assembled once
// at startup from validated configuration; an unconfigured provider is simply
// absent from it. Adapter order matters: it breaks confidence ties.
func New(adapters []Adapter, cfg Config, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		adapters: adapters,
		cfg:      cfg,
		store:    cache.NewStore[domain.VenueClass](cfg.CacheSize, nil),
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	metrics.ProvidersEnabled.Set(float64(len(adapters)))
	return r
}

// CheckReadiness reports whether the resolver can serve traffic. Resolution
// is stateless, so the process is ready as soon as its adapters are wired.
func (r *Resolver) CheckReadiness(_ context.Context) error {
	return nil
}

// ClassifyVenue resolves what place a coordinate is. It fails only for
// invalid coordinates; every provider-originated failure degrades, at worst
// to the low-confidence GPS fallback. Concurrent callers inside one grid cell
// share a single resolution, and a fresh result inside the TTL window returns
// the cached value untouched.
func (r *Resolver) ClassifyVenue(ctx context.Context, lat, lng float64) (domain.VenueClass, error) {
	if err := domain.ValidateCoordinates(lat, lng); err != nil {
		return domain.VenueClass{}, err
	}

	key := domain.GridKey(lat, lng, r.cfg.CellMeters)

	if venue, ok := r.store.Get(key); ok {
		r.metrics.VenueCache.WithLabelValues("hit").Inc()
		return venue, nil
	}
	r.metrics.VenueCache.WithLabelValues("miss").Inc()

	// The fan-out runs on a context detached from this caller: if the caller
	// gives up, other waiters coalesced onto the same cell still get the
	// result, and provider caches still warm up.
	resolveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.ResolveTimeout)

	venue, _ := r.flights.Do(key, func() (domain.VenueClass, error) {
		defer cancel()
		return r.resolve(resolveCtx, key, lat, lng), nil
	})
	cancel()
	return venue, nil
}

// resolve runs the provider fan-out and fuses the candidates.
func (r *Resolver) resolve(ctx context.Context, key string, lat, lng float64) domain.VenueClass {
	start := time.Now()

	type indexed struct {
		idx    int
		result *domain.ProviderResult
	}

	results := make(chan indexed, len(r.adapters))
	var wg sync.WaitGroup
	for i, adapter := range r.adapters {
		wg.Add(1)
		go func(idx int, a Adapter) {
			defer wg.Done()
			results <- indexed{idx: idx, result: a.Nearby(ctx, lat, lng)}
		}(i, adapter)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect until every adapter answered or the resolve deadline passed.
	// Stragglers keep running in the background and warm their own caches.
	collected := make([]*domain.ProviderResult, len(r.adapters))
	pending := len(r.adapters)
collect:
	for pending > 0 {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			collected[res.idx] = res.result
			pending--
		case <-ctx.Done():
			r.logger.Warn("resolution timed out waiting for providers",
				"pending", pending, "lat", lat, "lng", lng)
			break collect
		}
	}

	venue := r.fuse(collected, lat, lng)

	r.metrics.Resolutions.WithLabelValues(venue.Provider).Inc()
	r.metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	r.logger.Debug("venue resolved",
		"grid_key", key,
		"provider", venue.Provider,
		"type", venue.Type,
		"confidence", venue.Confidence,
	)

	// The fallback is not cached: the next caller should retry providers
	// rather than be served "no data" for a full TTL window.
	if venue.Provider != domain.ProviderGPS {
		r.store.Set(key, venue, r.cfg.VenueTTL, "")
	}

	r.publish(venue)
	return venue
}

// fuse classifies each provider answer and picks the candidate with the
// highest confidence. Ties resolve to the earlier-registered adapter.
func (r *Resolver) fuse(results []*domain.ProviderResult, lat, lng float64) domain.VenueClass {
	var candidates []domain.VenueClass
	for _, res := range results {
		if res == nil {
			continue
		}
		classified := domain.MapCategories(domain.SourcesFromResult(res))
		candidates = append(candidates, domain.VenueClass{
			Type:          classified.Type,
			Energy:        domain.EnergyFor(classified.Type),
			Name:          res.Name,
			Provider:      res.Provider,
			Lat:           res.Lat,
			Lng:           res.Lng,
			DistanceM:     res.DistanceM,
			RawCategories: res.Categories,
			Confidence:    classified.Confidence,
			ResolvedAt:    r.clock.Now().UTC(),
		})
	}

	if len(candidates) == 0 {
		return domain.VenueClass{
			Type:       domain.VenueGeneral,
			Energy:     domain.EnergyFor(domain.VenueGeneral),
			Provider:   domain.ProviderGPS,
			Lat:        lat,
			Lng:        lng,
			Confidence: domain.FallbackConfidence,
			ResolvedAt: r.clock.Now().UTC(),
		}
	}

	// Stable sort preserves adapter registration order among equals.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates[0]
}

// publish hands the resolution to the sink without blocking or failing the
// caller.
func (r *Resolver) publish(venue domain.VenueClass) {
	if r.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.sink.Publish(ctx, venue); err != nil {
			r.metrics.SinkErrors.Inc()
			r.logger.Warn("sink publish failed", "error", err)
			return
		}
		r.metrics.SinkPublished.Inc()
	}()
}
