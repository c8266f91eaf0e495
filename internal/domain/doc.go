// Package domain models venue resolution: the types, classification taxonomy,
// and spatial bucketing shared by the provider adapters and the fusion resolver.
//
// # Classification
//
// Providers answer "what is at this coordinate" in their own category
// vocabularies (Google Places types, Foursquare categories, free-text labels).
// [MapCategories] reconciles those vocabularies against a closed set of
// canonical [VenueType] values by keyword scoring:
//
//   - labels are tokenized into single words plus the whole phrase
//     ("night_club" → "night", "club", "night club")
//   - stopwords with no category signal are dropped
//     ("point_of_interest" contributes nothing)
//   - surviving tokens accumulate per-type weights, scaled by a per-source
//     trust weight (structured category lists 1.0, free text 0.6)
//   - confidence is the winner's margin over the runner-up,
//     best/(best+second+ε), so a landslide approaches 1 and a photo finish
//     approaches 0.5
//
// Ties resolve to the type listed first in [VenueTypes]. Zero keyword matches
// always yield VenueGeneral with confidence exactly 0, regardless of anything
// else: no evidence must never look like weak evidence.
//
// # Energy
//
// Downstream mood-matching wants a scalar "expected ambient energy" per venue.
// [EnergyFor] derives it from a hand-authored venue-type → vibe probability
// distribution, weighting each vibe's canonical energy by its mass. It is a
// fixed lookup, not a learned value.
//
// # Spatial bucketing
//
// [GridKey] rounds coordinates to ~250m cells (cosine-corrected for latitude)
// so nearby queries share one cache entry and one coalescing group.
package domain
