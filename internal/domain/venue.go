package domain

import "time"

// VenueType is the canonical classification of a place. The set is closed;
// anything that cannot be classified maps to VenueGeneral.
type VenueType string

const (
	VenueNightclub  VenueType = "nightclub"
	VenueBar        VenueType = "bar"
	VenueCoffee     VenueType = "coffee"
	VenueRestaurant VenueType = "restaurant"
	VenueGym        VenueType = "gym"
	VenuePark       VenueType = "park"
	VenueOffice     VenueType = "office"
	VenueSchool     VenueType = "school"
	VenueMuseum     VenueType = "museum"
	VenueTheater    VenueType = "theater"
	VenueMusicVenue VenueType = "music_venue"
	VenueStadium    VenueType = "stadium"
	VenueHotel      VenueType = "hotel"
	VenueStore      VenueType = "store"
	VenueTransit    VenueType = "transit"
	VenueHome       VenueType = "home"
	VenueGeneral    VenueType = "general"
)

// VenueTypes lists every venue type in declaration order. Scoring ties in the
// category mapper resolve to the type that appears first in this slice, so the
// order is part of the mapper's contract.
var VenueTypes = []VenueType{
	VenueNightclub, VenueBar, VenueCoffee, VenueRestaurant, VenueGym,
	VenuePark, VenueOffice, VenueSchool, VenueMuseum, VenueTheater,
	VenueMusicVenue, VenueStadium, VenueHotel, VenueStore, VenueTransit,
	VenueHome, VenueGeneral,
}

// ProviderGPS tags the synthetic fallback result produced when no provider
// returned usable data.
const ProviderGPS = "gps"

// ProviderResult is one provider's raw answer for a coordinate, normalized out
// of the provider's own response shape. It lives for a single resolution call,
// except the cached copy, which lives until its TTL expires.
type ProviderResult struct {
	Provider   string   `json:"provider"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Categories []string `json:"categories"` // provider-vocabulary type/category labels
	Label      string   `json:"label,omitempty"` // free-text label, less structured than Categories
	DistanceM  float64  `json:"distance_m"`
	Rating     float64  `json:"rating,omitempty"`
	Popularity float64  `json:"popularity,omitempty"`
	Validator  string   `json:"-"` // opaque cache validator (ETag), never serialized
}

// VenueTypeResult is the category mapper's decision for one set of raw labels.
type VenueTypeResult struct {
	Type       VenueType `json:"type"`
	Confidence float64   `json:"confidence"` // 0 only when no token matched any keyword
	Reasons    []string  `json:"reasons"`
	Tokens     []string  `json:"tokens"` // the matched tokens that drove the decision
}

// VenueClass is the terminal artifact of a resolution. A fresh resolution
// produces a fresh VenueClass; instances are never mutated after construction.
type VenueClass struct {
	Type          VenueType `json:"type"`
	Energy        float64   `json:"energy"` // expected ambient energy in [0,1]
	Name          string    `json:"name,omitempty"`
	Provider      string    `json:"provider"` // originating provider, or "gps" for the fallback
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	DistanceM     float64   `json:"distance_m"`
	RawCategories []string  `json:"raw_categories,omitempty"` // debug only
	Confidence    float64   `json:"confidence"`
	ResolvedAt    time.Time `json:"resolved_at"`
}

// FallbackConfidence is the fixed confidence of the GPS-only fallback result.
const FallbackConfidence = 0.3

// ValidateCoordinates rejects coordinates outside the WGS84 domain. This is
// the only caller-visible failure in the resolution path; everything
// downstream degrades instead of erroring.
func ValidateCoordinates(lat, lng float64) error {
	if lat != lat || lng != lng { // NaN
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
