// Package googleplaces adapts the Google Places Nearby Search API into the
// provider.Source port.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/venue-resolution/internal/domain"
	"github.com/couchcryptid/venue-resolution/internal/provider"
)

// ProviderName tags results produced by this adapter.
const ProviderName = "google_places"

// defaultTTL is short because a rank-by-distance top result is volatile: the
// nearest place flips as the caller moves within a cell.
const defaultTTL = 2 * time.Minute

// searchRadiusM bounds the nearby search around the query point.
const searchRadiusM = 150

// Client implements provider.Source against the Places Nearby Search endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Google Places adapter.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/place/nearbysearch/json",
		logger:  logger,
	}
}

func (c *Client) Name() string       { return ProviderName }
func (c *Client) TTL() time.Duration { return defaultTTL }

// Fetch asks for the nearest place to a coordinate, ranked by distance.
// A validator from a previous response is sent as If-None-Match; a 304 reply
// surfaces as provider.ErrNotModified.
func (c *Client) Fetch(ctx context.Context, lat, lng float64, validator string) (*domain.ProviderResult, error) {
	params := url.Values{
		"location": {fmt.Sprintf("%.6f,%.6f", lat, lng)},
		"radius":   {fmt.Sprintf("%d", searchRadiusM)},
		"rankby":   {"prominence"},
		"key":      {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if validator != "" {
		req.Header.Set("If-None-Match", validator)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, provider.ErrNotModified
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("places API error: status %d: %s", resp.StatusCode, body)
	}

	var placesResp response
	if err := json.NewDecoder(resp.Body).Decode(&placesResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// ZERO_RESULTS is a valid empty answer; other non-OK statuses are provider
	// faults and retryable.
	switch placesResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("places API status %q: %s", placesResp.Status, placesResp.ErrorMessage)
	}
	if len(placesResp.Results) == 0 {
		return nil, nil
	}

	r := placesResp.Results[0]
	result := &domain.ProviderResult{
		Provider:   ProviderName,
		Name:       r.Name,
		Lat:        r.Geometry.Location.Lat,
		Lng:        r.Geometry.Location.Lng,
		Categories: r.Types,
		Label:      r.Vicinity,
		Rating:     r.Rating,
		Popularity: float64(r.UserRatingsTotal),
		Validator:  resp.Header.Get("ETag"),
	}
	result.DistanceM = domain.HaversineMeters(lat, lng, result.Lat, result.Lng)
	return result, nil
}

// Places API response types, reduced to the fields this adapter reads.
// Missing fields decode to their zero values, which downstream treats as
// absent signals.

type response struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type placeResult struct {
	Name             string   `json:"name"`
	Geometry         geometry `json:"geometry"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
