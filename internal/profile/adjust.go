package profile

import (
	"strings"
)

// Injury risk levels.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// DefaultMaxWeeklyIncrease is the 10% week-over-week progression cap.
const DefaultMaxWeeklyIncrease = 0.10

// FeedbackPrompt is added to every week when the athlete asked for
// feedback-driven adjustments.
const FeedbackPrompt = "Conservative plan (10% rule, recovery weeks). Share weekly pain/fatigue feedback so the remaining weeks can be adjusted."

const (
	injuryPlantarFasciitis = "plantar_fasciitis"
	injuryShinSplints      = "shin_splints"
	injuryITBand           = "it_band"
	injuryAchilles         = "achilles"
)

// injuryAliases maps lowercased injury names (English and Portuguese) to a
// canonical key.
var injuryAliases = map[string]string{
	"plantar fasciitis":            injuryPlantarFasciitis,
	"fascite plantar":              injuryPlantarFasciitis,
	"shin splints":                 injuryShinSplints,
	"medial tibial stress":         injuryShinSplints,
	"canelite":                     injuryShinSplints,
	"canelite (periostite tibial)": injuryShinSplints,
	"it band syndrome":             injuryITBand,
	"iliotibial band syndrome":     injuryITBand,
	"síndrome da banda iliotibial": injuryITBand,
	"sindrome da banda iliotibial": injuryITBand,
	"achilles tendinitis":          injuryAchilles,
	"tendinite de aquiles":         injuryAchilles,
}

var injuryNotes = map[string][]string{
	injuryPlantarFasciitis: {"Avoid short, fast intervals", "Prioritise easy runs"},
	injuryShinSplints:      {"Reduce running volume on hard surfaces", "Consider cross-training (swimming, cycling)"},
	injuryITBand:           {"Avoid steep downhills", "Strengthen glutes and core"},
	injuryAchilles:         {"Avoid intense speed work", "Build calf strength gradually"},
}

func canonicalInjury(name string) string {
	return injuryAliases[strings.ToLower(strings.TrimSpace(name))]
}

// Adjustments are the multiplicative factors and constraints a profile
// imposes on plan generation.
type Adjustments struct {
	RiskLevel         string   `json:"risk_level"`
	VolumeFactor      float64  `json:"volume_factor"`
	ProgressionFactor float64  `json:"progression_factor"`
	MaxSessionMinutes int      `json:"max_session_minutes,omitempty"`
	StartingVolumeKm  *float64 `json:"starting_volume_km,omitempty"`
	PeakWeeklyKm      float64  `json:"peak_weekly_km,omitempty"`
	MaxWeeklyIncrease float64  `json:"max_weekly_increase"`
	InjuryNotes       []string `json:"injury_notes,omitempty"`
	RestDayNotes      []string `json:"rest_day_notes,omitempty"`
	ImpactLimitations []string `json:"impact_limitations,omitempty"`
	RedZones          []string `json:"red_zones,omitempty"`
	StrengthRoutines  []string `json:"strength_routines,omitempty"`
	FeedbackPrompt    string   `json:"feedback_prompt,omitempty"`
}

// Neutral returns adjustments that leave the plan unchanged.
func Neutral() Adjustments {
	return Adjustments{
		RiskLevel:         RiskLow,
		VolumeFactor:      1,
		ProgressionFactor: 1,
		MaxWeeklyIncrease: DefaultMaxWeeklyIncrease,
	}
}

// RiskScore sums the injury risk points for the profile.
func (p *Profile) RiskScore() int {
	score := 0
	if len(p.CurrentInjuries) > 0 {
		score += 3
	}
	if len(p.PreviousInjuries) > 2 {
		score += 2
	}
	if p.BMI() > 28 {
		score += 2
	}
	if p.YearsRunning < 2 && p.CurrentWeeklyKm > 40 {
		score += 2
	}
	return score
}

// RiskLevel classifies RiskScore.
func (p *Profile) RiskLevel() string {
	switch s := p.RiskScore(); {
	case s >= 5:
		return RiskHigh
	case s >= 3:
		return RiskModerate
	default:
		return RiskLow
	}
}

// ComputeAdjustments derives plan adjustments from a profile. A nil
// profile yields Neutral.
func ComputeAdjustments(p *Profile) Adjustments {
	adj := Neutral()
	if p == nil {
		return adj
	}

	if p.HoursPerDay > 0 {
		adj.MaxSessionMinutes = int(p.HoursPerDay * 60)
	}

	start := startingVolume(p)
	adj.StartingVolumeKm = &start
	adj.PeakWeeklyKm = p.RecentPeakWeeklyKm

	adj.RiskLevel = p.RiskLevel()
	switch adj.RiskLevel {
	case RiskHigh:
		adj.VolumeFactor, adj.ProgressionFactor = 0.75, 0.8
	case RiskModerate:
		adj.VolumeFactor, adj.ProgressionFactor = 0.9, 0.9
	}

	if p.BMI() > 28 {
		adj.VolumeFactor *= 0.85
		adj.ProgressionFactor *= 0.85
	}
	if p.YearsRunning < 1 {
		adj.VolumeFactor *= 0.8
		adj.ProgressionFactor *= 0.85
	}

	seen := map[string]bool{}
	for _, name := range p.CurrentInjuries {
		kind := canonicalInjury(name)
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		adj.InjuryNotes = append(adj.InjuryNotes, injuryNotes[kind]...)
	}

	if len(p.ImpactLimitations) > 0 {
		adj.ImpactLimitations = append(adj.ImpactLimitations, p.ImpactLimitations...)
		adj.InjuryNotes = append(adj.InjuryNotes, "Limit impact: "+strings.Join(p.ImpactLimitations, ", "))
	}
	if len(p.RedZones) > 0 {
		adj.RedZones = append(adj.RedZones, p.RedZones...)
		adj.InjuryNotes = append(adj.InjuryNotes, "Red zones defined: "+strings.Join(p.RedZones, ", "))
	}
	if len(p.InjuryTriggers) > 0 {
		adj.InjuryNotes = append(adj.InjuryNotes, "Watch triggers: "+strings.Join(p.InjuryTriggers, ", "))
	}

	if adj.RiskLevel == RiskHigh {
		adj.RestDayNotes = []string{
			"Consider adding an extra rest day",
			"Replace 1-2 runs with cross-training",
		}
	}

	adj.StrengthRoutines = append(adj.StrengthRoutines, p.StrengthRoutines...)
	if p.FeedbackRequired {
		adj.FeedbackPrompt = FeedbackPrompt
	}
	return adj
}

// startingVolume picks week one's distance. An explicit initial volume
// wins; otherwise the recent baseline plus 10%, never below 110% of the
// current volume and never above 110% of the recent peak.
func startingVolume(p *Profile) float64 {
	if p.InitialWeeklyKm > 0 {
		return p.InitialWeeklyKm
	}

	baseline := max(p.AverageWeeklyKm, p.CurrentWeeklyKm)
	if p.RecentPeakWeeklyKm > 0 {
		if baseline == 0 {
			baseline = p.RecentPeakWeeklyKm
		}
		baseline = min(baseline, p.RecentPeakWeeklyKm)
	}
	if baseline <= 0 {
		return p.InitialVolumeKm()
	}

	start := max(baseline*1.1, p.CurrentWeeklyKm*1.1)
	return min(start, peakCap(p.RecentPeakWeeklyKm, DefaultMaxWeeklyIncrease))
}
