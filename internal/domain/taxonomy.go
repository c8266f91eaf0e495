package domain

import (
	"fmt"
	"sort"
	"strings"
)

// LabelSource is one bundle of raw labels with a trust weight. Structured
// provider type/category lists are trusted at 1.0; free-text labels at a
// lower weight because they carry more noise.
type LabelSource struct {
	Labels []string
	Weight float64
}

// Trust weights for the standard label sources.
const (
	StructuredWeight = 1.0
	FreeTextWeight   = 0.6
)

// confidenceEpsilon prevents division by zero when only one venue type scored.
const confidenceEpsilon = 0.01

// stopwords are tokens that carry no category signal and are discarded before
// scoring. Multi-word phrases cover whole normalized labels like
// "point of interest".
var stopwords = map[string]struct{}{
	"place": {}, "establishment": {}, "venue": {}, "point": {}, "of": {},
	"interest": {}, "point of interest": {}, "the": {}, "and": {}, "a": {},
	"in": {}, "at": {}, "local": {}, "spot": {}, "business": {},
	"location": {}, "area": {}, "other": {}, "misc": {}, "general": {},
}

// keywordWeights maps a token to the venue types it supports and how strongly.
// A token may support several types: "dance" is evidence for both a nightclub
// and a music venue, at different strengths. Whole-phrase tokens (from
// multi-word labels) score higher than their parts because they are less
// ambiguous.
var keywordWeights = map[string]map[VenueType]float64{
	// nightlife
	"nightclub":   {VenueNightclub: 1.5},
	"night club":  {VenueNightclub: 1.5},
	"night":       {VenueNightclub: 0.6},
	"club":        {VenueNightclub: 0.8, VenueMusicVenue: 0.25, VenueGym: 0.15},
	"disco":       {VenueNightclub: 1.2},
	"dance":       {VenueNightclub: 0.7, VenueMusicVenue: 0.4},
	"dancing":     {VenueNightclub: 0.7},
	"lounge":      {VenueNightclub: 0.4, VenueBar: 0.5},
	"dj":          {VenueNightclub: 0.6, VenueMusicVenue: 0.4},
	"rave":        {VenueNightclub: 1.0},
	"nightlife":   {VenueNightclub: 0.8, VenueBar: 0.4},

	// bar
	"bar":        {VenueBar: 1.0, VenueNightclub: 0.2},
	"pub":        {VenueBar: 1.2},
	"tavern":     {VenueBar: 1.2},
	"brewery":    {VenueBar: 1.0},
	"beer":       {VenueBar: 0.8},
	"wine":       {VenueBar: 0.6, VenueRestaurant: 0.3},
	"cocktail":   {VenueBar: 1.0},
	"speakeasy":  {VenueBar: 1.1},
	"taproom":    {VenueBar: 1.1},
	"wine bar":   {VenueBar: 1.3},
	"sports bar": {VenueBar: 1.3},

	// coffee
	"coffee":       {VenueCoffee: 1.2},
	"cafe":         {VenueCoffee: 1.0, VenueRestaurant: 0.3},
	"espresso":     {VenueCoffee: 1.1},
	"tea":          {VenueCoffee: 0.8},
	"roastery":     {VenueCoffee: 1.0},
	"coffee shop":  {VenueCoffee: 1.5},
	"coffee house": {VenueCoffee: 1.5},
	"bakery":       {VenueCoffee: 0.6, VenueRestaurant: 0.4},

	// restaurant
	"restaurant":   {VenueRestaurant: 1.2},
	"dining":       {VenueRestaurant: 0.9},
	"diner":        {VenueRestaurant: 1.0},
	"food":         {VenueRestaurant: 0.6},
	"pizza":        {VenueRestaurant: 0.9},
	"sushi":        {VenueRestaurant: 0.9},
	"bistro":       {VenueRestaurant: 1.0},
	"grill":        {VenueRestaurant: 0.8, VenueBar: 0.2},
	"steakhouse":   {VenueRestaurant: 1.1},
	"takeaway":     {VenueRestaurant: 0.7},
	"meal":         {VenueRestaurant: 0.5},
	"meal takeaway": {VenueRestaurant: 1.0},
	"fast food":    {VenueRestaurant: 1.1},
	"eatery":       {VenueRestaurant: 1.0},

	// gym
	"gym":         {VenueGym: 1.3},
	"fitness":     {VenueGym: 1.1},
	"yoga":        {VenueGym: 0.9},
	"crossfit":    {VenueGym: 1.1},
	"pilates":     {VenueGym: 0.9},
	"workout":     {VenueGym: 0.8},
	"health club": {VenueGym: 1.2},
	"climbing":    {VenueGym: 0.7, VenuePark: 0.2},

	// park
	"park":        {VenuePark: 1.2},
	"garden":      {VenuePark: 0.9},
	"trail":       {VenuePark: 0.9},
	"beach":       {VenuePark: 0.9},
	"playground":  {VenuePark: 0.8},
	"nature":      {VenuePark: 0.8},
	"outdoors":    {VenuePark: 0.7},
	"recreation":  {VenuePark: 0.6, VenueGym: 0.2},
	"dog park":    {VenuePark: 1.3},
	"state park":  {VenuePark: 1.4},

	// office
	"office":    {VenueOffice: 1.2},
	"coworking": {VenueOffice: 1.2},
	"corporate": {VenueOffice: 0.9},
	"workplace": {VenueOffice: 1.0},
	"agency":    {VenueOffice: 0.6},
	"headquarters": {VenueOffice: 1.0},

	// school
	"school":     {VenueSchool: 1.2},
	"university": {VenueSchool: 1.2},
	"college":    {VenueSchool: 1.1},
	"campus":     {VenueSchool: 0.8},
	"library":    {VenueSchool: 0.8, VenueMuseum: 0.2},
	"academy":    {VenueSchool: 0.9},

	// museum
	"museum":     {VenueMuseum: 1.4},
	"gallery":    {VenueMuseum: 1.0},
	"art":        {VenueMuseum: 0.6, VenueTheater: 0.2},
	"exhibit":    {VenueMuseum: 0.9},
	"historical": {VenueMuseum: 0.6},
	"art gallery": {VenueMuseum: 1.3},

	// theater
	"theater":      {VenueTheater: 1.2, VenueMusicVenue: 0.2},
	"theatre":      {VenueTheater: 1.2, VenueMusicVenue: 0.2},
	"cinema":       {VenueTheater: 1.2},
	"movie":        {VenueTheater: 1.0},
	"playhouse":    {VenueTheater: 1.1},
	"movie theater": {VenueTheater: 1.5},

	// music venue
	"concert":      {VenueMusicVenue: 1.2},
	"music":        {VenueMusicVenue: 0.8, VenueNightclub: 0.2},
	"live":         {VenueMusicVenue: 0.5},
	"amphitheater": {VenueMusicVenue: 1.1, VenueStadium: 0.3},
	"jazz":         {VenueMusicVenue: 0.9, VenueBar: 0.3},
	"karaoke":      {VenueMusicVenue: 0.7, VenueBar: 0.4},
	"live music":   {VenueMusicVenue: 1.3},
	"concert hall": {VenueMusicVenue: 1.4},

	// stadium
	"stadium":  {VenueStadium: 1.4},
	"arena":    {VenueStadium: 1.2, VenueMusicVenue: 0.3},
	"ballpark": {VenueStadium: 1.2},
	"sports":   {VenueStadium: 0.6, VenueGym: 0.3},
	"field":    {VenueStadium: 0.4, VenuePark: 0.3},
	"court":    {VenueStadium: 0.3, VenueGym: 0.2},

	// hotel
	"hotel":   {VenueHotel: 1.3},
	"motel":   {VenueHotel: 1.2},
	"hostel":  {VenueHotel: 1.1},
	"resort":  {VenueHotel: 1.1},
	"lodging": {VenueHotel: 1.1},
	"inn":     {VenueHotel: 0.9},
	"bed and breakfast": {VenueHotel: 1.3},

	// store
	"store":          {VenueStore: 1.0},
	"shop":           {VenueStore: 0.7},
	"shopping":       {VenueStore: 0.9},
	"mall":           {VenueStore: 1.0},
	"market":         {VenueStore: 0.8},
	"supermarket":    {VenueStore: 1.1},
	"grocery":        {VenueStore: 1.0},
	"boutique":       {VenueStore: 0.9},
	"retail":         {VenueStore: 1.0},
	"convenience":    {VenueStore: 0.8},
	"shopping mall":  {VenueStore: 1.3},
	"grocery store":  {VenueStore: 1.3},

	// transit
	"transit":     {VenueTransit: 1.2},
	"station":     {VenueTransit: 0.9},
	"airport":     {VenueTransit: 1.3},
	"subway":      {VenueTransit: 1.0, VenueRestaurant: 0.1},
	"metro":       {VenueTransit: 1.0},
	"terminal":    {VenueTransit: 0.8},
	"platform":    {VenueTransit: 0.6},
	"train":       {VenueTransit: 0.9},
	"bus":         {VenueTransit: 0.9},
	"train station": {VenueTransit: 1.4},
	"bus station":   {VenueTransit: 1.4},

	// home
	"home":        {VenueHome: 1.2},
	"residence":   {VenueHome: 1.1},
	"residential": {VenueHome: 1.0},
	"apartment":   {VenueHome: 1.0},
	"house":       {VenueHome: 0.7},
	"condo":       {VenueHome: 0.9},
}

// MapCategories scores raw label sources against the venue-type taxonomy and
// picks the best-supported type.
//
// Each source is tokenized independently: lowercased, punctuation collapsed to
// spaces, split into single words, with the whole normalized phrase kept as one
// extra token, then deduplicated within the source. Surviving tokens look up
// keywordWeights and accumulate per-type scores multiplied by the source's
// trust weight. Confidence is the margin of the winner over the runner-up,
// best/(best+second+ε), clamped to [0,1]. Ties resolve to the type listed
// first in VenueTypes. If nothing matched at all, the result is VenueGeneral
// with confidence exactly 0: zero evidence must never report non-zero
// confidence.
//
// The function is pure and deterministic for identical inputs.
func MapCategories(sources []LabelSource) VenueTypeResult {
	scores := make(map[VenueType]float64)
	var matched []string
	var reasons []string

	for _, src := range sources {
		for _, token := range tokenizeSource(src.Labels) {
			if _, skip := stopwords[token]; skip {
				continue
			}
			weights, ok := keywordWeights[token]
			if !ok {
				continue
			}
			matched = append(matched, token)
			for _, vt := range VenueTypes {
				if w, hit := weights[vt]; hit {
					scores[vt] += w * src.Weight
				}
			}
		}
	}

	if len(scores) == 0 {
		return VenueTypeResult{
			Type:       VenueGeneral,
			Confidence: 0,
			Reasons:    []string{"no recognized category keywords"},
		}
	}

	// Walk types in declaration order so ties break deterministically.
	var best, second float64
	winner := VenueGeneral
	for _, vt := range VenueTypes {
		s, ok := scores[vt]
		if !ok {
			continue
		}
		if s > best {
			second = best
			best = s
			winner = vt
		} else if s > second {
			second = s
		}
	}

	confidence := best / (best + second + confidenceEpsilon)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	sort.Strings(matched)
	matched = dedupe(matched)
	reasons = append(reasons,
		fmt.Sprintf("%s scored %.2f against runner-up %.2f", winner, best, second))

	return VenueTypeResult{
		Type:       winner,
		Confidence: confidence,
		Reasons:    reasons,
		Tokens:     matched,
	}
}

// SourcesFromResult assembles the standard label sources for one provider
// result: structured categories at full trust, the free-text label lower.
func SourcesFromResult(r *ProviderResult) []LabelSource {
	sources := []LabelSource{{Labels: r.Categories, Weight: StructuredWeight}}
	if r.Label != "" {
		sources = append(sources, LabelSource{Labels: []string{r.Label}, Weight: FreeTextWeight})
	}
	return sources
}

// tokenizeSource normalizes one source's labels into a deduplicated, sorted
// token list. "Coffee_Shop" yields "coffee", "shop", and "coffee shop".
// Sorted output keeps score accumulation order-independent of the caller's
// label order, which keeps the mapper bit-for-bit deterministic.
func tokenizeSource(labels []string) []string {
	seen := make(map[string]struct{})
	for _, label := range labels {
		phrase := normalizeLabel(label)
		if phrase == "" {
			continue
		}
		words := strings.Fields(phrase)
		for _, w := range words {
			seen[w] = struct{}{}
		}
		if len(words) > 1 {
			seen[phrase] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// normalizeLabel lowercases a label and collapses punctuation and separators
// into single spaces.
func normalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	lastSpace := true
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
