package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/venue-resolution/internal/cache"
	"github.com/couchcryptid/venue-resolution/internal/domain"
	"github.com/couchcryptid/venue-resolution/internal/observability"
)

// fakeSource scripts a provider's behavior and counts fetches.
type fakeSource struct {
	result     *domain.ProviderResult
	err        error
	failures   int // fail this many times before succeeding
	fetches    atomic.Int32
	validators []string
	mu         sync.Mutex
}

func (f *fakeSource) Name() string       { return "fake" }
func (f *fakeSource) TTL() time.Duration { return time.Minute }

func (f *fakeSource) Fetch(_ context.Context, _, _ float64, validator string) (*domain.ProviderResult, error) {
	n := f.fetches.Add(1)
	f.mu.Lock()
	f.validators = append(f.validators, validator)
	f.mu.Unlock()
	if int(n) <= f.failures {
		return nil, errors.New("transient provider error")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGuardConfig() GuardConfig {
	return GuardConfig{
		RateCapacity:  100,
		RatePerSecond: 1000,
		MaxRetries:    2,
		RetryBase:     time.Millisecond,
		FetchTimeout:  2 * time.Second,
		CellMeters:    250,
		CacheSize:     100,
	}
}

func newTestGuard(src Source, clock clockwork.Clock) *Guard {
	g := NewGuard(src, testGuardConfig(), observability.NewMetricsForTesting(), discardLogger())
	if clock != nil {
		g.store = cache.NewStore[*domain.ProviderResult](100, clock)
	}
	return g
}

func barResult() *domain.ProviderResult {
	return &domain.ProviderResult{
		Provider:   "fake",
		Name:       "The Tipsy Crow",
		Lat:        30.2672,
		Lng:        -97.7431,
		Categories: []string{"bar", "point_of_interest"},
		DistanceM:  12,
	}
}

func TestGuard_FetchesAndCaches(t *testing.T) {
	src := &fakeSource{result: barResult()}
	g := newTestGuard(src, nil)

	first := g.Nearby(context.Background(), 30.2672, -97.7431)
	require.NotNil(t, first)
	assert.Equal(t, "The Tipsy Crow", first.Name)

	second := g.Nearby(context.Background(), 30.2672, -97.7431)
	require.NotNil(t, second)

	assert.Equal(t, int32(1), src.fetches.Load(), "second call must be served from cache")
}

func TestGuard_CacheExpiryTriggersRefetch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{result: barResult()}
	g := newTestGuard(src, clock)

	require.NotNil(t, g.Nearby(context.Background(), 30.2672, -97.7431))
	require.Equal(t, int32(1), src.fetches.Load())

	clock.Advance(2 * time.Minute) // past the source's one-minute TTL

	require.NotNil(t, g.Nearby(context.Background(), 30.2672, -97.7431))
	assert.Equal(t, int32(2), src.fetches.Load(), "stale entry must trigger a fresh fetch")
}

func TestGuard_TransientFailuresAreRetried(t *testing.T) {
	src := &fakeSource{result: barResult(), failures: 2}
	g := newTestGuard(src, nil)

	result := g.Nearby(context.Background(), 30.2672, -97.7431)
	require.NotNil(t, result)
	assert.Equal(t, int32(3), src.fetches.Load())
}

func TestGuard_ExhaustedRetriesDegradeToNil(t *testing.T) {
	src := &fakeSource{err: errors.New("hard down")}
	g := newTestGuard(src, nil)

	assert.Nil(t, g.Nearby(context.Background(), 30.2672, -97.7431),
		"errors never escape the guard")
	assert.Equal(t, int32(3), src.fetches.Load(), "initial call plus two retries")
}

func TestGuard_EmptyResponseIsNil(t *testing.T) {
	src := &fakeSource{result: nil}
	g := newTestGuard(src, nil)

	assert.Nil(t, g.Nearby(context.Background(), 30.2672, -97.7431))

	// Empty responses are not cached; the next call asks again.
	g.Nearby(context.Background(), 30.2672, -97.7431)
	assert.Equal(t, int32(2), src.fetches.Load())
}

func TestGuard_CoalescesConcurrentCallers(t *testing.T) {
	gate := make(chan struct{})
	src := &gatedSource{result: barResult(), gate: gate}
	g := newTestGuard(src, nil)

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*domain.ProviderResult, callers)
	for i := range callers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = g.Nearby(context.Background(), 30.2672, -97.7431)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.fetches.Load(),
		"N concurrent callers in one grid cell cost one upstream round trip")
	for _, r := range results {
		assert.NotNil(t, r)
	}
}

func TestGuard_NotModifiedReusesStaleBody(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &fakeSource{result: barResult()}
	src.result.Validator = `W/"v1"`
	g := newTestGuard(src, clock)

	require.NotNil(t, g.Nearby(context.Background(), 30.2672, -97.7431))

	clock.Advance(2 * time.Minute)
	src.err = ErrNotModified

	revalidated := g.Nearby(context.Background(), 30.2672, -97.7431)
	require.NotNil(t, revalidated, "304 must resurrect the stale body")
	assert.Equal(t, "The Tipsy Crow", revalidated.Name)

	src.mu.Lock()
	sent := append([]string(nil), src.validators...)
	src.mu.Unlock()
	require.Len(t, sent, 2)
	assert.Empty(t, sent[0], "first fetch has no validator yet")
	assert.Equal(t, `W/"v1"`, sent[1], "revalidation must send the stored validator")
}

func TestGuard_DistinctCellsFetchSeparately(t *testing.T) {
	src := &fakeSource{result: barResult()}
	g := newTestGuard(src, nil)

	require.NotNil(t, g.Nearby(context.Background(), 30.2672, -97.7431)) // Austin
	require.NotNil(t, g.Nearby(context.Background(), 32.7767, -96.7970)) // Dallas

	assert.Equal(t, int32(2), src.fetches.Load())
}

// gatedSource blocks fetches on a gate channel so tests can pile up callers.
type gatedSource struct {
	result  *domain.ProviderResult
	gate    chan struct{}
	fetches atomic.Int32
}

func (s *gatedSource) Name() string       { return "gated" }
func (s *gatedSource) TTL() time.Duration { return time.Minute }

func (s *gatedSource) Fetch(_ context.Context, _, _ float64, _ string) (*domain.ProviderResult, error) {
	s.fetches.Add(1)
	<-s.gate
	return s.result, nil
}
