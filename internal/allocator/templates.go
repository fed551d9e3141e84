package allocator

import (
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/periodization"
)

// Role is what a day slot contributes to the week.
type Role int

const (
	RoleRest Role = iota
	RoleEasy
	// RoleQuality is the single rotating quality day of beginner weeks.
	RoleQuality
	// RoleQualityA is the early-week speed session of advanced weeks.
	RoleQualityA
	// RoleQualityB is the mid-week threshold or race-pace session.
	RoleQualityB
	RoleLong
)

// Tier selects the template family.
type Tier int

const (
	TierBeginner Tier = iota
	TierAdvanced
)

// Slot is one weekday of a template. Share is the fraction of the weekly
// distance; for the long run it is the minimum share, the long run takes
// whatever the other slots leave.
type Slot struct {
	Role       Role
	Share      float64
	BaseScale  float64
	TaperScale float64
}

// Template describes a week shape for one (days per week, tier) pair.
type Template struct {
	Days [7]Slot

	// QualityGateWeeks is how many opening weeks run quality slots easy.
	QualityGateWeeks int
	// QualityRotation picks the beginner quality type by week % len.
	QualityRotation []string
	// ProgressiveLong enables the progressive long run every third week.
	ProgressiveLong bool
}

type templateKey struct {
	days int
	tier Tier
}

var rest = Slot{Role: RoleRest}

func easy(share float64) Slot { return Slot{Role: RoleEasy, Share: share} }

func long(minShare, taper float64) Slot {
	return Slot{Role: RoleLong, Share: minShare, TaperScale: taper}
}

func quality(role Role, share, base, taper float64) Slot {
	return Slot{Role: role, Share: share, BaseScale: base, TaperScale: taper}
}

// templates is indexed Monday..Sunday.
var templates = map[templateKey]Template{
	{3, TierBeginner}: {
		Days: [7]Slot{
			rest, easy(0.30), rest, quality(RoleQuality, 0.25, 1, 1), rest, long(0.35, 1), rest,
		},
		QualityGateWeeks: 3,
		QualityRotation:  []string{models.TypeTempoRun},
	},
	{4, TierBeginner}: {
		Days: [7]Slot{
			rest, easy(0.22), rest, quality(RoleQuality, 0.23, 1, 1), easy(0.20), rest, long(0.25, 1),
		},
		QualityGateWeeks: 2,
		QualityRotation:  []string{models.TypeIntervalTraining, models.TypeTempoRun},
		ProgressiveLong:  true,
	},
	{5, TierBeginner}: {
		Days: [7]Slot{
			easy(0.20), easy(0.18), rest, quality(RoleQuality, 0.20, 1, 1), easy(0.15), rest, long(0.22, 1),
		},
		QualityGateWeeks: 2,
		QualityRotation:  []string{models.TypeIntervalTraining, models.TypeTempoRun},
	},
	{6, TierBeginner}: {
		Days: [7]Slot{
			easy(0.18), easy(0.16), quality(RoleQuality, 0.18, 1, 1), easy(0.14), easy(0.12), rest, long(0.18, 1),
		},
		QualityGateWeeks: 2,
		QualityRotation:  []string{models.TypeFartlek, models.TypeIntervalTraining, models.TypeTempoRun},
	},

	{3, TierAdvanced}: {
		Days: [7]Slot{
			rest, quality(RoleQualityA, 0.25, 0.9, 0.7), rest, quality(RoleQualityB, 0.30, 0.95, 0.7), rest, long(0.35, 0.9), rest,
		},
		QualityGateWeeks: 2,
		ProgressiveLong:  true,
	},
	{4, TierAdvanced}: {
		Days: [7]Slot{
			rest, quality(RoleQualityA, 0.22, 0.9, 0.65), rest, quality(RoleQualityB, 0.26, 0.9, 0.65), easy(0.15), rest, long(0.25, 0.9),
		},
		QualityGateWeeks: 2,
		ProgressiveLong:  true,
	},
	{5, TierAdvanced}: {
		Days: [7]Slot{
			easy(0.17), quality(RoleQualityA, 0.19, 0.9, 0.65), rest, quality(RoleQualityB, 0.23, 0.9, 0.65), easy(0.12), rest, long(0.22, 0.9),
		},
		QualityGateWeeks: 2,
		ProgressiveLong:  true,
	},
	{6, TierAdvanced}: {
		Days: [7]Slot{
			easy(0.15), quality(RoleQualityA, 0.17, 0.9, 0.65), easy(0.13), quality(RoleQualityB, 0.21, 0.9, 0.65), easy(0.11), rest, long(0.18, 0.9),
		},
		QualityGateWeeks: 2,
		ProgressiveLong:  true,
	},
}

// Lookup returns the template for a day count and tier.
func Lookup(days int, tier Tier) (Template, bool) {
	t, ok := templates[templateKey{days, tier}]
	return t, ok
}

// scaled returns the phase-adjusted share of every slot, normalised to sum
// to one. Rest slots get zero.
func (t Template) scaled(phase string) [7]float64 {
	var others float64
	for _, s := range t.Days {
		if s.Role != RoleRest && s.Role != RoleLong {
			others += s.Share
		}
	}

	var out [7]float64
	var sum float64
	for i, s := range t.Days {
		var v float64
		switch s.Role {
		case RoleRest:
			continue
		case RoleLong:
			v = max(1-others, s.Share)
		default:
			v = s.Share
		}
		switch {
		case phase == periodization.PhaseBase && s.BaseScale > 0:
			v *= s.BaseScale
		case phase == periodization.PhaseTaper && s.TaperScale > 0:
			v *= s.TaperScale
		}
		out[i] = v
		sum += v
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}
