// Package periodization splits a plan into base, specific and taper blocks
// and computes the weekly distance targets across them.
package periodization

import "math"

// Phase names.
const (
	PhaseBase     = "base"
	PhaseSpecific = "specific"
	PhaseTaper    = "taper"
)

// Blocks holds the length in weeks of each phase.
type Blocks struct {
	Base     int `json:"base"`
	Specific int `json:"specific"`
	Taper    int `json:"taper"`
}

// Total returns the sum of all block lengths.
func (b Blocks) Total() int { return b.Base + b.Specific + b.Taper }

// Length returns the length of the named phase.
func (b Blocks) Length(phase string) int {
	switch phase {
	case PhaseBase:
		return b.Base
	case PhaseSpecific:
		return b.Specific
	case PhaseTaper:
		return b.Taper
	}
	return 0
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// BlockLengths allocates 4-6 week base and specific blocks and a 2-3 week
// taper. The blocks always sum to totalWeeks: leftover weeks are split
// between base and specific, and short plans shrink the longer of the two
// (base on ties) until they fit.
func BlockLengths(totalWeeks int) Blocks {
	if totalWeeks <= 0 {
		return Blocks{}
	}

	taper := clamp(int(math.Round(float64(totalWeeks)*0.15)), 2, 3)
	remaining := max(totalWeeks-taper, 0)

	var base, specific int
	if remaining > 0 {
		base = clamp(remaining/2, 4, 6)
		specific = remaining - base
		if specific < 4 && base > 4 {
			transfer := min(base-4, 4-specific)
			base -= transfer
			specific += transfer
		}
		specific = clamp(specific, 4, 6)
		base = clamp(totalWeeks-taper-specific, 4, 6)
	}

	b := Blocks{Base: base, Specific: specific, Taper: taper}
	if sum := b.Total(); sum < totalWeeks {
		leftover := totalWeeks - sum
		b.Base += leftover / 2
		b.Specific += leftover - leftover/2
	}

	for b.Total() > totalWeeks {
		switch {
		case b.Base > 0 && b.Base >= b.Specific:
			b.Base--
		case b.Specific > 0:
			b.Specific--
		default:
			b.Taper--
		}
	}
	return b
}

// PhaseFor returns the phase of a week and its 1-based position in that
// phase. Weeks past the end of the plan stay in the taper.
func PhaseFor(week int, b Blocks) (string, int) {
	baseEnd := b.Base
	specificEnd := baseEnd + b.Specific
	switch {
	case week <= baseEnd:
		return PhaseBase, week
	case week <= specificEnd:
		return PhaseSpecific, week - baseEnd
	default:
		return PhaseTaper, week - specificEnd
	}
}
