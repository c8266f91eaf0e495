package domain

// Vibe is an ambient mood bucket used by downstream mood-matching. Each vibe
// carries a canonical energy level; a venue type's expected energy is the
// probability-weighted average over its vibe distribution.
type Vibe string

const (
	VibeHype     Vibe = "hype"
	VibeSocial   Vibe = "social"
	VibeFlowing  Vibe = "flowing"
	VibeOpen     Vibe = "open"
	VibeCurious  Vibe = "curious"
	VibeRomantic Vibe = "romantic"
	VibeChill    Vibe = "chill"
	VibeSolo     Vibe = "solo"
	VibeDown     Vibe = "down"
)

// vibes lists every vibe in a fixed order so weighted sums accumulate the same
// way on every call.
var vibes = []Vibe{
	VibeHype, VibeSocial, VibeFlowing, VibeOpen, VibeCurious,
	VibeRomantic, VibeChill, VibeSolo, VibeDown,
}

// vibeEnergy is the canonical energy level of each vibe, in [0,1].
var vibeEnergy = map[Vibe]float64{
	VibeHype:     0.95,
	VibeSocial:   0.75,
	VibeFlowing:  0.7,
	VibeOpen:     0.6,
	VibeCurious:  0.55,
	VibeRomantic: 0.5,
	VibeChill:    0.3,
	VibeSolo:     0.25,
	VibeDown:     0.1,
}

// venueVibes is the hand-authored venue-type → vibe probability distribution.
// Masses need not sum to 1; EnergyFor normalizes.
var venueVibes = map[VenueType]map[Vibe]float64{
	VenueNightclub:  {VibeHype: 0.6, VibeSocial: 0.25, VibeFlowing: 0.15},
	VenueBar:        {VibeSocial: 0.5, VibeHype: 0.2, VibeChill: 0.2, VibeRomantic: 0.1},
	VenueCoffee:     {VibeChill: 0.4, VibeSolo: 0.25, VibeCurious: 0.2, VibeSocial: 0.15},
	VenueRestaurant: {VibeSocial: 0.4, VibeRomantic: 0.3, VibeChill: 0.2, VibeOpen: 0.1},
	VenueGym:        {VibeFlowing: 0.45, VibeHype: 0.3, VibeSolo: 0.25},
	VenuePark:       {VibeOpen: 0.35, VibeChill: 0.3, VibeFlowing: 0.2, VibeSocial: 0.15},
	VenueOffice:     {VibeSolo: 0.4, VibeFlowing: 0.3, VibeCurious: 0.2, VibeDown: 0.1},
	VenueSchool:     {VibeCurious: 0.45, VibeSocial: 0.3, VibeFlowing: 0.25},
	VenueMuseum:     {VibeCurious: 0.5, VibeSolo: 0.2, VibeChill: 0.2, VibeRomantic: 0.1},
	VenueTheater:    {VibeCurious: 0.35, VibeRomantic: 0.3, VibeChill: 0.2, VibeSocial: 0.15},
	VenueMusicVenue: {VibeHype: 0.45, VibeFlowing: 0.3, VibeSocial: 0.25},
	VenueStadium:    {VibeHype: 0.6, VibeSocial: 0.3, VibeOpen: 0.1},
	VenueHotel:      {VibeChill: 0.35, VibeRomantic: 0.3, VibeSolo: 0.2, VibeOpen: 0.15},
	VenueStore:      {VibeCurious: 0.35, VibeFlowing: 0.3, VibeSolo: 0.2, VibeSocial: 0.15},
	VenueTransit:    {VibeSolo: 0.4, VibeDown: 0.25, VibeFlowing: 0.2, VibeCurious: 0.15},
	VenueHome:       {VibeChill: 0.5, VibeSolo: 0.3, VibeDown: 0.1, VibeRomantic: 0.1},
	VenueGeneral:    {VibeOpen: 0.3, VibeChill: 0.25, VibeSocial: 0.25, VibeCurious: 0.2},
}

// EnergyFor returns the expected ambient energy for a venue type: the
// vibe-distribution lookup weighted by each vibe's canonical energy,
// normalized by total probability mass. Unknown types fall back to the
// general distribution. Pure and deterministic.
func EnergyFor(vt VenueType) float64 {
	dist, ok := venueVibes[vt]
	if !ok {
		dist = venueVibes[VenueGeneral]
	}
	var weighted, mass float64
	for _, vibe := range vibes {
		p, hit := dist[vibe]
		if !hit {
			continue
		}
		weighted += vibeEnergy[vibe] * p
		mass += p
	}
	if mass == 0 {
		return vibeEnergy[VibeOpen]
	}
	return weighted / mass
}
