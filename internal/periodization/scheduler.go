package periodization

import (
	"fmt"
	"strings"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/profile"
)

// Goal race labels.
const (
	Goal5K           = "5K"
	Goal10K          = "10K"
	GoalHalfMarathon = "Half Marathon"
	GoalMarathon     = "Marathon"
)

// defaultTarget is the peak weekly km for unknown goals or levels.
const defaultTarget = 30.0

// goalTargets is the peak weekly distance (km) per goal and level.
var goalTargets = map[string]map[string]float64{
	Goal5K:           {profile.LevelBeginner: 20, profile.LevelIntermediate: 30, profile.LevelAdvanced: 40},
	Goal10K:          {profile.LevelBeginner: 30, profile.LevelIntermediate: 45, profile.LevelAdvanced: 60},
	GoalHalfMarathon: {profile.LevelBeginner: 40, profile.LevelIntermediate: 60, profile.LevelAdvanced: 80},
	GoalMarathon:     {profile.LevelBeginner: 50, profile.LevelIntermediate: 75, profile.LevelAdvanced: 100},
}

var defaultWeeks = map[string]int{
	Goal5K:           8,
	Goal10K:          10,
	GoalHalfMarathon: 12,
	GoalMarathon:     16,
}

// Ramp fractions of the peak target.
const (
	basePeakFraction = 0.9
	taperStart       = 0.7
	taperEnd         = 0.5
	recoveryFactor   = 0.75
)

// NormalizeGoal maps common spellings ("half", "21k", "10k") to the
// canonical goal labels. Unknown goals are returned trimmed.
func NormalizeGoal(goal string) string {
	switch g := strings.ToLower(strings.TrimSpace(goal)); g {
	case "5k":
		return Goal5K
	case "10k":
		return Goal10K
	case "half marathon", "half", "half-marathon", "21k", "21.1k":
		return GoalHalfMarathon
	case "marathon", "42k", "42.2k", "full":
		return GoalMarathon
	default:
		return strings.TrimSpace(goal)
	}
}

// GoalTarget returns the peak weekly km for a goal and level.
func GoalTarget(goal, level string) float64 {
	levels, ok := goalTargets[NormalizeGoal(goal)]
	if !ok {
		return defaultTarget
	}
	if t, ok := levels[strings.ToLower(level)]; ok {
		return t
	}
	return defaultTarget
}

// DefaultWeeks returns the default plan length for a goal.
func DefaultWeeks(goal string) int {
	if w, ok := defaultWeeks[NormalizeGoal(goal)]; ok {
		return w
	}
	return 12
}

// IsRaceSpecificWindow reports whether a week falls between six and two
// weeks before the end of the plan.
func IsRaceSpecificWindow(week, totalWeeks int) bool {
	return week > totalWeeks-6 && week <= totalWeeks-2
}

// Scheduler computes weekly distance targets for one plan.
type Scheduler struct {
	Goal       string
	Level      string
	TotalWeeks int
	Blocks     Blocks
	Adj        profile.Adjustments

	targets map[int]float64
}

// NewScheduler builds a scheduler for the given plan shape.
func NewScheduler(goal, level string, totalWeeks int, adj profile.Adjustments) *Scheduler {
	if adj.VolumeFactor == 0 {
		adj.VolumeFactor = 1
	}
	if adj.ProgressionFactor == 0 {
		adj.ProgressionFactor = 1
	}
	if adj.MaxWeeklyIncrease <= 0 {
		adj.MaxWeeklyIncrease = profile.DefaultMaxWeeklyIncrease
	}
	return &Scheduler{
		Goal:       NormalizeGoal(goal),
		Level:      level,
		TotalWeeks: totalWeeks,
		Blocks:     BlockLengths(totalWeeks),
		Adj:        adj,
		targets:    make(map[int]float64),
	}
}

// Phase returns the phase and week-in-phase for a week.
func (s *Scheduler) Phase(week int) (string, int) {
	return PhaseFor(week, s.Blocks)
}

// IsRecoveryWeek reports whether the week gets the 25% recovery cut.
func (s *Scheduler) IsRecoveryWeek(week int) bool {
	return week%4 == 0 && week < s.TotalWeeks-2
}

// PeakTarget is the goal/level table value scaled by the volume factor.
func (s *Scheduler) PeakTarget() float64 {
	return GoalTarget(s.Goal, s.Level) * s.Adj.VolumeFactor
}

// rawTarget is the ramp value for a week before the progression and peak
// caps and rounding.
func (s *Scheduler) rawTarget(week int) float64 {
	var km float64
	if week == 1 && s.Adj.StartingVolumeKm != nil {
		km = *s.Adj.StartingVolumeKm
	} else {
		target := s.PeakTarget()
		phase, inPhase := s.Phase(week)
		progress := float64(inPhase) / float64(max(s.Blocks.Length(phase), 1))
		switch phase {
		case PhaseBase:
			km = target * basePeakFraction * progress * s.Adj.ProgressionFactor
		case PhaseSpecific:
			km = (target*basePeakFraction + target*(1-basePeakFraction)*progress) * s.Adj.ProgressionFactor
		default:
			km = target * (taperStart - (taperStart-taperEnd)*progress) * s.Adj.ProgressionFactor
		}
	}
	if s.IsRecoveryWeek(week) {
		km *= recoveryFactor
	}
	return max(km, 0)
}

// WeeklyTarget returns the planned distance for a week, rounded to 5 km.
// Increases are capped at MaxWeeklyIncrease over the previous week's
// target and at the same margin over the declared recent peak.
func (s *Scheduler) WeeklyTarget(week int) float64 {
	if t, ok := s.targets[week]; ok {
		return t
	}

	km := s.rawTarget(week)
	if week > 1 {
		prev := s.WeeklyTarget(week - 1)
		km = min(km, prev*(1+s.Adj.MaxWeeklyIncrease))
	}
	if s.Adj.PeakWeeklyKm > 0 {
		km = min(km, s.Adj.PeakWeeklyKm*(1+s.Adj.MaxWeeklyIncrease))
	}

	t := models.RoundTo5Km(km)
	s.targets[week] = t
	return t
}

// Targets returns the targets for every week in order.
func (s *Scheduler) Targets() []float64 {
	out := make([]float64, 0, s.TotalWeeks)
	for w := 1; w <= s.TotalWeeks; w++ {
		out = append(out, s.WeeklyTarget(w))
	}
	return out
}

// phaseLabel renders "Base", "Specific" or "Taper".
func phaseLabel(phase string) string {
	if phase == "" {
		return ""
	}
	return strings.ToUpper(phase[:1]) + phase[1:]
}

// Notes returns the headline notes for a week. Week one also carries the
// injury and rest-day recommendations.
func (s *Scheduler) Notes(week int) string {
	phase, inPhase := s.Phase(week)
	note := fmt.Sprintf("Phase: %s (week %d/%d)", phaseLabel(phase), inPhase, s.Blocks.Length(phase))

	switch {
	case week == 1:
		note += "\nWelcome to your training plan! Start easy and focus on consistency."
		if len(s.Adj.InjuryNotes) > 0 {
			note += "\n\nInjury modifications:" + bulletList(s.Adj.InjuryNotes)
		}
		if len(s.Adj.RestDayNotes) > 0 {
			note += "\n\nRest recommendations:" + bulletList(s.Adj.RestDayNotes)
		}
	case week == s.TotalWeeks:
		note = "Race week! Keep runs short and easy. Trust your training!"
	case week == s.TotalWeeks-1:
		note = "Taper week - reduce volume to arrive fresh for race day."
	case s.IsRecoveryWeek(week):
		note = "Recovery week - volume reduced by 25% to absorb training and prevent overtraining."
	}
	return note
}

// SafetySections returns the notes repeated on every week: impact limits,
// red zones, strength routines and the feedback prompt.
func SafetySections(adj profile.Adjustments) []string {
	var out []string
	if len(adj.ImpactLimitations) > 0 {
		out = append(out, "Impact limits:"+bulletList(adj.ImpactLimitations))
	}
	if len(adj.RedZones) > 0 {
		out = append(out, "Red zones (avoid overload):"+bulletList(adj.RedZones))
	}
	if len(adj.StrengthRoutines) > 0 {
		out = append(out, "Keep strength/prevention work:"+bulletList(adj.StrengthRoutines))
	}
	if adj.FeedbackPrompt != "" {
		out = append(out, "Weekly feedback: "+adj.FeedbackPrompt)
	}
	return out
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("\n  • ")
		b.WriteString(it)
	}
	return b.String()
}
