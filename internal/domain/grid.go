package domain

import (
	"fmt"
	"math"
)

// metersPerDegreeLat is the approximate north-south span of one degree of
// latitude. Longitude degrees shrink toward the poles by cos(lat).
const metersPerDegreeLat = 111_320.0

// GridKey buckets a coordinate into a square cell of roughly cellMeters per
// side and returns a stable string key for it. Nearby queries collapse onto
// one cache entry and one coalescing group. The longitude step is widened by
// 1/cos(lat) so cells stay approximately square away from the equator.
func GridKey(lat, lng float64, cellMeters float64) string {
	latStep := cellMeters / metersPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		// Near the poles longitude degenerates; clamp so the step stays finite.
		cosLat = 0.01
	}
	lngStep := cellMeters / (metersPerDegreeLat * cosLat)

	latCell := math.Floor(lat / latStep)
	lngCell := math.Floor(lng / lngStep)
	return fmt.Sprintf("%.0f:%.0f", latCell, lngCell)
}

// HaversineMeters returns the great-circle distance between two coordinates.
// Used by adapters whose providers don't report a distance themselves.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6_371_000.0

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
