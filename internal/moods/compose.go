package moods

import (
	"sort"
	"strings"
)

// Filters maps each audio feature to its composite filter range. This is the
// shape consumed by the recommendation service as mood_filters.
type Filters map[Feature]Range

// Neutral returns the fixed default range: full domain bounds with a midpoint
// target for every feature. Used when no valid moods survive input filtering.
func Neutral() Filters {
	out := make(Filters, len(domains))
	for f, d := range domains {
		out[f] = Range{Min: d.Min, Max: d.Max, Target: d.Midpoint()}
	}
	return out
}

// Compose blends the named mood profiles into one filter range per feature.
//
// Names are case-insensitive; unknown names are dropped silently and
// duplicates count once. If nothing survives, the neutral default is
// returned. Per feature the composite bounds are the union of the profile
// bounds widened by the domain margin and clamped to the domain, and the
// target is the double-weighted mean 2·Σtargets/(N+1), clamped into the
// composite window so the output is always internally consistent.
func Compose(names []string) Filters {
	surviving := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := profiles[name]; ok {
			surviving = append(surviving, name)
		}
	}

	if len(surviving) == 0 {
		return Neutral()
	}

	// Accumulate in a canonical order so float rounding cannot make the
	// result depend on how the caller ordered the names.
	sort.Strings(surviving)
	selected := make([]Profile, 0, len(surviving))
	for _, name := range surviving {
		selected = append(selected, profiles[name])
	}

	out := make(Filters, len(domains))
	for f, d := range domains {
		var lo, hi, sum float64
		for i, p := range selected {
			r := p[f]
			if i == 0 || r.Min < lo {
				lo = r.Min
			}
			if i == 0 || r.Max > hi {
				hi = r.Max
			}
			sum += r.Target
		}

		m := d.margin()
		compositeMin := d.clamp(lo - m)
		compositeMax := d.clamp(hi + m)

		// Double-weight each profile target against one unit of implicit
		// neutral weight. High-target combinations can push the raw value
		// past the widened bounds, so the window clamp keeps the invariant
		// min ≤ target ≤ max.
		target := 2 * sum / float64(len(selected)+1)
		if target < compositeMin {
			target = compositeMin
		}
		if target > compositeMax {
			target = compositeMax
		}

		out[f] = Range{Min: compositeMin, Max: compositeMax, Target: target}
	}

	return out
}
