// Package moods composes named mood presets into blended audio-feature filter ranges.
//
// # Profiles
//
// Each mood is a fixed, immutable [Profile]: a {min, max, target} triple per
// audio feature, loaded once at init and never mutated. Every profile bound
// lies within its feature's declared domain ([0,1] for normalized features,
// [-60,0] dB for loudness), and min ≤ target ≤ max holds per feature.
//
// # Composition
//
// [Compose] blends one or more profiles into a single [Filters] value: the
// hard bounds are the union of the profile bounds widened by a fixed margin
// and clamped to the domain, and the soft target is a weighted mean that
// double-weights each profile's target against one unit of implicit neutral
// weight (2·Σtargets / (N+1)), damping outliers as more moods are combined.
//
// Unknown mood names are dropped silently; composing nothing yields a neutral
// full-domain range with a midpoint target. Composition is pure and safe for
// concurrent use with no synchronization.
package moods
