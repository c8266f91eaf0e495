// Package foursquare adapts the Foursquare Place Search API into the
// provider.Source port.
package foursquare

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
const ProviderName = "foursquare"

// defaultTTL is longer than the nearby-search adapters': Foursquare's curated
// place records change slowly.
const defaultTTL = 10 * time.Minute

// searchRadiusM bounds the place search around the query point.
const searchRadiusM = 150

// Client implements provider.Source against the Foursquare Place Search endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Foursquare adapter.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.foursquare.com/v3/places/search",
		logger:  logger,
	}
}

func (c *Client) Name() string       { return ProviderName }
func (c *Client) TTL() time.Duration { return defaultTTL }

// Fetch asks for the closest place to a coordinate. Credentials travel in the
// Authorization header rather than the query string. A 304 reply for a sent
// validator surfaces as provider.ErrNotModified.
func (c *Client) Fetch(ctx context.Context, lat, lng float64, validator string) (*domain.ProviderResult, error) {
	params := url.Values{
		"ll":     {fmt.Sprintf("%.6f,%.6f", lat, lng)},
		"radius": {fmt.Sprintf("%d", searchRadiusM)},
		"limit":  {"1"},
		"sort":   {"DISTANCE"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if validator != "" {
		req.Header.Set("If-None-Match", validator)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, provider.ErrNotModified
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("foursquare API error: status %d: %s", resp.StatusCode, body)
	}

	var searchResp response
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(searchResp.Results) == 0 {
		return nil, nil
	}

	p := searchResp.Results[0]
	categories := make([]string, 0, len(p.Categories))
	for _, cat := range p.Categories {
		categories = append(categories, cat.Name)
	}

	result := &domain.ProviderResult{
		Provider:   ProviderName,
		Name:       p.Name,
		Lat:        p.Geocodes.Main.Latitude,
		Lng:        p.Geocodes.Main.Longitude,
		Categories: categories,
		Label:      p.Location.FormattedAddress,
		DistanceM:  float64(p.Distance),
		Rating:     p.Rating,
		Popularity: p.Popularity,
		Validator:  resp.Header.Get("ETag"),
	}
	if result.DistanceM == 0 && (result.Lat != 0 || result.Lng != 0) {
		result.DistanceM = domain.HaversineMeters(lat, lng, result.Lat, result.Lng)
	}
	return result, nil
}

// Foursquare API response types, reduced to the fields this adapter reads.

type response struct {
	Results []place `json:"results"`
}

type place struct {
	Name       string     `json:"name"`
	Distance   int        `json:"distance"` // meters from the query point
	Categories []category `json:"categories"`
	Geocodes   geocodes   `json:"geocodes"`
	Location   placeLoc   `json:"location"`
	Rating     float64    `json:"rating"`
	Popularity float64    `json:"popularity"`
}

type category struct {
	Name string `json:"name"`
}

type geocodes struct {
	Main latLng `json:"main"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type placeLoc struct {
	FormattedAddress string `json:"formatted_address"`
}
