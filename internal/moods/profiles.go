package moods

import "sort"

// Feature identifies one numeric audio descriptor of a track.
type Feature string

const (
	Danceability     Feature = "danceability"
	Energy           Feature = "energy"
	Valence          Feature = "valence"
	Acousticness     Feature = "acousticness"
	Instrumentalness Feature = "instrumentalness"
	Liveness         Feature = "liveness"
	Loudness         Feature = "loudness"
)

// Range is a {min, max, target} triple over one audio feature. Min and Max
// act as a hard filter downstream, Target as a soft ranking goal.
type Range struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Target float64 `json:"target"`
}

// Domain is the declared bound of one feature's values.
type Domain struct {
	Min float64
	Max float64
}

// Midpoint returns the center of the domain, used as the neutral target.
func (d Domain) Midpoint() float64 {
	return (d.Min + d.Max) / 2
}

func (d Domain) clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// MarginFraction is the bound-widening margin as a fraction of the domain
// width: 0.1 on unit-domain features, proportionally larger on wider domains
// such as loudness.
const MarginFraction = 0.1

func (d Domain) margin() float64 {
	return MarginFraction * (d.Max - d.Min)
}

// domains declares the value bound for every supported feature. Loudness is
// log-scale dB; everything else is normalized.
var domains = map[Feature]Domain{
	Danceability:     {0, 1},
	Energy:           {0, 1},
	Valence:          {0, 1},
	Acousticness:     {0, 1},
	Instrumentalness: {0, 1},
	Liveness:         {0, 1},
	Loudness:         {-60, 0},
}

// Profile is a named preset: one Range per feature.
type Profile map[Feature]Range

// profiles is the fixed mood table. Bounds were tuned against the Spotify
// audio-features distribution; every entry satisfies min ≤ target ≤ max
// inside its feature domain (enforced by tests).
var profiles = map[string]Profile{
	"happy": {
		Danceability:     {Min: 0.7, Max: 0.95, Target: 0.8},
		Energy:           {Min: 0.75, Max: 0.95, Target: 0.85},
		Valence:          {Min: 0.8, Max: 1.0, Target: 0.9},
		Acousticness:     {Min: 0.0, Max: 0.3, Target: 0.1},
		Instrumentalness: {Min: 0.0, Max: 0.4, Target: 0.1},
		Liveness:         {Min: 0.0, Max: 0.45, Target: 0.15},
		Loudness:         {Min: -12, Max: -3, Target: -7},
	},
	"party": {
		Danceability:     {Min: 0.75, Max: 1.0, Target: 0.9},
		Energy:           {Min: 0.8, Max: 1.0, Target: 0.9},
		Valence:          {Min: 0.8, Max: 1.0, Target: 0.85},
		Acousticness:     {Min: 0.0, Max: 0.25, Target: 0.08},
		Instrumentalness: {Min: 0.0, Max: 0.3, Target: 0.05},
		Liveness:         {Min: 0.05, Max: 0.6, Target: 0.25},
		Loudness:         {Min: -10, Max: -2, Target: -5},
	},
	"chill": {
		Danceability:     {Min: 0.2, Max: 0.6, Target: 0.4},
		Energy:           {Min: 0.1, Max: 0.5, Target: 0.3},
		Valence:          {Min: 0.3, Max: 0.7, Target: 0.5},
		Acousticness:     {Min: 0.4, Max: 1.0, Target: 0.7},
		Instrumentalness: {Min: 0.1, Max: 0.8, Target: 0.4},
		Liveness:         {Min: 0.0, Max: 0.3, Target: 0.1},
		Loudness:         {Min: -30, Max: -10, Target: -18},
	},
	"sad": {
		Danceability:     {Min: 0.1, Max: 0.5, Target: 0.3},
		Energy:           {Min: 0.05, Max: 0.4, Target: 0.2},
		Valence:          {Min: 0.0, Max: 0.35, Target: 0.15},
		Acousticness:     {Min: 0.3, Max: 0.9, Target: 0.6},
		Instrumentalness: {Min: 0.0, Max: 0.6, Target: 0.25},
		Liveness:         {Min: 0.0, Max: 0.3, Target: 0.1},
		Loudness:         {Min: -35, Max: -12, Target: -20},
	},
	"energetic": {
		Danceability:     {Min: 0.6, Max: 0.95, Target: 0.8},
		Energy:           {Min: 0.85, Max: 1.0, Target: 0.95},
		Valence:          {Min: 0.5, Max: 0.9, Target: 0.7},
		Acousticness:     {Min: 0.0, Max: 0.2, Target: 0.05},
		Instrumentalness: {Min: 0.0, Max: 0.5, Target: 0.15},
		Liveness:         {Min: 0.05, Max: 0.6, Target: 0.2},
		Loudness:         {Min: -9, Max: -2, Target: -5},
	},
	"focus": {
		Danceability:     {Min: 0.2, Max: 0.55, Target: 0.35},
		Energy:           {Min: 0.2, Max: 0.6, Target: 0.4},
		Valence:          {Min: 0.3, Max: 0.6, Target: 0.45},
		Acousticness:     {Min: 0.3, Max: 0.8, Target: 0.55},
		Instrumentalness: {Min: 0.5, Max: 1.0, Target: 0.8},
		Liveness:         {Min: 0.0, Max: 0.25, Target: 0.08},
		Loudness:         {Min: -30, Max: -12, Target: -20},
	},
}

// Names returns the supported mood names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the profile for a mood name, reporting whether it exists.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Features returns the supported features in sorted order.
func Features() []Feature {
	features := make([]Feature, 0, len(domains))
	for f := range domains {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}

// DomainOf returns the declared domain for a feature, reporting whether the
// feature is known.
func DomainOf(f Feature) (Domain, bool) {
	d, ok := domains[f]
	return d, ok
}
