// Package profile holds the athlete profile and derives the plan
// adjustments (volume/progression factors, time limits, safety notes) from it.
package profile

import (
	"math"
	"strings"
	"time"

	"github.com/claude/runplan/internal/models"
)

// Experience levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// RaceGoal is a main or test race.
type RaceGoal struct {
	Distance   string `json:"distance" yaml:"distance"`
	Date       string `json:"date" yaml:"date"` // YYYY-MM-DD
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	TargetTime string `json:"target_time,omitempty" yaml:"target_time,omitempty"`
}

// ParsedDate returns the race date, if it parses.
func (g RaceGoal) ParsedDate() (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(g.Date))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ScheduleBlock is an available time window on a weekday.
type ScheduleBlock struct {
	Start      string   `json:"start,omitempty" yaml:"start,omitempty"`
	End        string   `json:"end,omitempty" yaml:"end,omitempty"`
	MaxMinutes int      `json:"max_minutes,omitempty" yaml:"max_minutes,omitempty"`
	Surfaces   []string `json:"surfaces,omitempty" yaml:"surfaces,omitempty"`
}

// Profile is the athlete input to plan generation. The planner only reads it.
type Profile struct {
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Age      int     `json:"age,omitempty" yaml:"age,omitempty"`
	WeightKg float64 `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty"`
	HeightCm float64 `json:"height_cm,omitempty" yaml:"height_cm,omitempty"`

	YearsRunning          float64 `json:"years_running" yaml:"years_running"`
	CurrentWeeklyKm       float64 `json:"current_weekly_km" yaml:"current_weekly_km"`
	AverageWeeklyKm       float64 `json:"average_weekly_km,omitempty" yaml:"average_weekly_km,omitempty"`
	RecentPeakWeeklyKm    float64 `json:"recent_peak_weekly_km,omitempty" yaml:"recent_peak_weekly_km,omitempty"`
	ConsistentDaysPerWeek int     `json:"consistent_days_per_week,omitempty" yaml:"consistent_days_per_week,omitempty"`
	ExperienceLevel       string  `json:"experience_level" yaml:"experience_level"`

	MainRace  *RaceGoal  `json:"main_race,omitempty" yaml:"main_race,omitempty"`
	TestRaces []RaceGoal `json:"test_races,omitempty" yaml:"test_races,omitempty"`

	DaysPerWeek              int                        `json:"days_per_week" yaml:"days_per_week"`
	HoursPerDay              float64                    `json:"hours_per_day" yaml:"hours_per_day"`
	PreferredLocation        []string                   `json:"preferred_location,omitempty" yaml:"preferred_location,omitempty"`
	StressfulBlocks          map[string][]string        `json:"stressful_blocks,omitempty" yaml:"stressful_blocks,omitempty"`
	LongRunPreferenceDays    []string                   `json:"long_run_preference_days,omitempty" yaml:"long_run_preference_days,omitempty"`
	UseAlternatingWeeks      bool                       `json:"use_alternating_weeks,omitempty" yaml:"use_alternating_weeks,omitempty"`
	AlternateStressfulBlocks map[string][]string        `json:"alternate_stressful_blocks,omitempty" yaml:"alternate_stressful_blocks,omitempty"`
	AlternateLongRunDays     []string                   `json:"alternate_long_run_days,omitempty" yaml:"alternate_long_run_days,omitempty"`
	WeeklySchedule           map[string][]ScheduleBlock `json:"weekly_schedule,omitempty" yaml:"weekly_schedule,omitempty"`

	DefaultWarmupMinutes   int `json:"default_warmup_minutes" yaml:"default_warmup_minutes"`
	DefaultCooldownMinutes int `json:"default_cooldown_minutes" yaml:"default_cooldown_minutes"`
	CommuteMinutes         int `json:"commute_minutes,omitempty" yaml:"commute_minutes,omitempty"`

	RecentRaceTimes    map[string]string  `json:"recent_race_times,omitempty" yaml:"recent_race_times,omitempty"`
	ZonesMethod        string             `json:"zones_calculation_method,omitempty" yaml:"zones_calculation_method,omitempty"`
	ZoneMixPreference  map[string]float64 `json:"zone_mix_preference,omitempty" yaml:"zone_mix_preference,omitempty"`
	InitialWeeklyKm    float64            `json:"initial_weekly_km,omitempty" yaml:"initial_weekly_km,omitempty"`
	SessionPreferences map[string]bool    `json:"session_preferences,omitempty" yaml:"session_preferences,omitempty"`
	HRMax              int                `json:"hr_max,omitempty" yaml:"hr_max,omitempty"`

	PreviousInjuries  []string `json:"previous_injuries,omitempty" yaml:"previous_injuries,omitempty"`
	CurrentInjuries   []string `json:"current_injuries,omitempty" yaml:"current_injuries,omitempty"`
	InjuryTriggers    []string `json:"injury_triggers,omitempty" yaml:"injury_triggers,omitempty"`
	RedZones          []string `json:"red_zones,omitempty" yaml:"red_zones,omitempty"`
	StrengthRoutines  []string `json:"strength_routines,omitempty" yaml:"strength_routines,omitempty"`
	ImpactLimitations []string `json:"impact_limitations,omitempty" yaml:"impact_limitations,omitempty"`
	FeedbackRequired  bool     `json:"feedback_required" yaml:"feedback_required"`
}

// New returns a profile with the documented defaults.
func New() *Profile {
	return &Profile{
		ExperienceLevel:        LevelBeginner,
		DaysPerWeek:            4,
		HoursPerDay:            1,
		DefaultWarmupMinutes:   10,
		DefaultCooldownMinutes: 10,
		ZonesMethod:            models.MethodVDOT,
		ZoneMixPreference:      map[string]float64{"easy": 0.55, "tempo": 0.25, "interval": 0.20},
		FeedbackRequired:       true,
	}
}

// BMI returns body-mass index rounded to one decimal, or 0 when unknown.
func (p *Profile) BMI() float64 {
	if p.WeightKg <= 0 || p.HeightCm <= 0 {
		return 0
	}
	h := p.HeightCm / 100
	return models.Round1(p.WeightKg / (h * h))
}

// EstimateHRMax returns the declared max heart rate or the Tanaka estimate.
func (p *Profile) EstimateHRMax() int {
	if p.HRMax > 0 {
		return p.HRMax
	}
	if p.Age > 0 {
		return int(208 - float64(7*p.Age)/10)
	}
	return 0
}

// InitialVolumeKm returns the explicit starting volume, else 110% of the
// current volume, else a default for the experience level.
func (p *Profile) InitialVolumeKm() float64 {
	if p.InitialWeeklyKm > 0 {
		return p.InitialWeeklyKm
	}
	if p.CurrentWeeklyKm > 0 {
		return models.Round1(p.CurrentWeeklyKm * 1.1)
	}
	switch p.ExperienceLevel {
	case LevelIntermediate:
		return 30
	case LevelAdvanced:
		return 40
	default:
		return 20
	}
}

// WeeklyTimeBudget returns days × hours.
func (p *Profile) WeeklyTimeBudget() float64 {
	return float64(p.DaysPerWeek) * p.HoursPerDay
}

// ZoneMix returns the zone-mix preference normalised to sum to 1.
func (p *Profile) ZoneMix() map[string]float64 {
	var total float64
	for _, v := range p.ZoneMixPreference {
		total += v
	}
	if total == 0 {
		total = 1
	}
	out := make(map[string]float64, len(p.ZoneMixPreference))
	for k, v := range p.ZoneMixPreference {
		out[k] = models.Round2(v / total)
	}
	return out
}

// SessionPrefs says which session families the athlete wants.
type SessionPrefs struct {
	Intervals     bool `json:"intervals"`
	Tempo         bool `json:"tempo"`
	LongRun       bool `json:"long_run"`
	CrossTraining bool `json:"cross_training"`
}

// Prefs returns session preferences merged over the defaults. Intervals
// are switched off for high-risk profiles.
func (p *Profile) Prefs() SessionPrefs {
	prefs := SessionPrefs{Intervals: true, Tempo: true, LongRun: true}
	if v, ok := p.SessionPreferences["intervals"]; ok {
		prefs.Intervals = v
	}
	if v, ok := p.SessionPreferences["tempo"]; ok {
		prefs.Tempo = v
	}
	if v, ok := p.SessionPreferences["long_run"]; ok {
		prefs.LongRun = v
	}
	if v, ok := p.SessionPreferences["cross_training"]; ok {
		prefs.CrossTraining = v
	}
	if p.RiskLevel() == RiskHigh {
		prefs.Intervals = false
	}
	return prefs
}

// RecommendedDaysPerWeek caps the requested days by experience level.
func (p *Profile) RecommendedDaysPerWeek() int {
	switch p.ExperienceLevel {
	case LevelBeginner:
		return min(p.DaysPerWeek, 4)
	case LevelIntermediate:
		return min(p.DaysPerWeek, 5)
	default:
		return p.DaysPerWeek
	}
}

// daySchedule returns the blocks for a day, accepting localized names.
func (p *Profile) daySchedule(day string) []ScheduleBlock {
	want, _ := models.NormalizeDay(day)
	for k, blocks := range p.WeeklySchedule {
		if d, _ := models.NormalizeDay(k); d == want {
			return blocks
		}
	}
	return nil
}

// MaxSessionMinutes returns the tightest block limit for the day, falling
// back to hours per day. Zero means unlimited.
func (p *Profile) MaxSessionMinutes(day string) int {
	limit := 0
	for _, b := range p.daySchedule(day) {
		if b.MaxMinutes > 0 && (limit == 0 || b.MaxMinutes < limit) {
			limit = b.MaxMinutes
		}
	}
	if limit > 0 {
		return limit
	}
	if p.HoursPerDay > 0 {
		return int(p.HoursPerDay * 60)
	}
	return 0
}

// SurfacesForDay lists the surfaces available on a day, falling back to
// the general location preference. Duplicates are removed.
func (p *Profile) SurfacesForDay(day string) []string {
	var raw []string
	for _, b := range p.daySchedule(day) {
		raw = append(raw, b.Surfaces...)
	}
	if len(raw) == 0 {
		raw = p.PreferredLocation
	}
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, s := range raw {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// RaceResults returns the declared race times keyed by distance label.
func (p *Profile) RaceResults() map[string]string {
	return p.RecentRaceTimes
}

// NeedsModifiedPlan lists the reasons the plan should be more conservative.
func (p *Profile) NeedsModifiedPlan() (bool, []string) {
	var reasons []string
	if len(p.CurrentInjuries) > 0 {
		reasons = append(reasons, "Current injuries: "+strings.Join(p.CurrentInjuries, ", "))
	}
	if p.hadInjury(injuryShinSplints) {
		reasons = append(reasons, "History of shin splints: reduce starting volume")
	}
	if p.hadInjury(injuryPlantarFasciitis) {
		reasons = append(reasons, "History of plantar fasciitis: include more rest")
	}
	if p.BMI() > 28 {
		reasons = append(reasons, "High BMI: more gradual progression")
	}
	if p.YearsRunning < 1 {
		reasons = append(reasons, "Little running experience: conservative plan")
	}
	if p.WeeklyTimeBudget() < 3 {
		reasons = append(reasons, "Limited time available: shorter sessions")
	}
	if len(p.RedZones) > 0 {
		reasons = append(reasons, "Red zones to respect: "+strings.Join(p.RedZones, ", "))
	}
	if len(p.ImpactLimitations) > 0 {
		reasons = append(reasons, "Impact limits: "+strings.Join(p.ImpactLimitations, ", "))
	}
	return len(reasons) > 0, reasons
}

func (p *Profile) hadInjury(kind string) bool {
	for _, list := range [][]string{p.PreviousInjuries, p.CurrentInjuries} {
		for _, name := range list {
			if canonicalInjury(name) == kind {
				return true
			}
		}
	}
	return false
}

// peakCap returns peak×(1+increase), or +Inf without a declared peak.
func peakCap(peak, increase float64) float64 {
	if peak <= 0 {
		return math.Inf(1)
	}
	return peak * (1 + increase)
}
