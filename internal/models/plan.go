package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Plan is a complete multi-week training schedule. A Plan owns its weeks;
// callers must not share one Plan between goroutines that mutate it.
type Plan struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Goal           string               `json:"goal"`
	Level          string               `json:"level"`
	Weeks          int                  `json:"weeks"`
	DaysPerWeek    int                  `json:"days_per_week"`
	StartDate      *time.Time           `json:"start_date"`
	CreatedDate    time.Time            `json:"created_date"`
	Schedule       []Week               `json:"schedule"`
	WeeklyCheckins []WeeklyCheckIn      `json:"weekly_checkins"`
	AdjustmentsLog []AdjustmentLogEntry `json:"adjustments_log"`
	Zones          *FitnessZones        `json:"zones,omitempty"`
	FitnessUpdates []FitnessUpdate      `json:"fitness_updates,omitempty"`
}

// Week is one training week. Workouts holds exactly one entry per weekday.
type Week struct {
	WeekNumber      int       `json:"week_number"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	Notes           string    `json:"notes"`
	Phase           string    `json:"phase,omitempty"`
	PhaseWeek       int       `json:"phase_week,omitempty"`
	Workouts        []Workout `json:"workouts"`
}

// Workout is a single day's session.
type Workout struct {
	Day                string           `json:"day"`
	Type               string           `json:"type"`
	DistanceKm         *float64         `json:"distance_km"`
	DurationMinutes    *int             `json:"duration_minutes"`
	Description        string           `json:"description"`
	TargetPace         string           `json:"target_pace,omitempty"`
	TrainingZone       string           `json:"training_zone,omitempty"`
	Segments           []WorkoutSegment `json:"segments"`
	TotalTimeEstimated string           `json:"total_time_estimated,omitempty"`
	TotalMinutes       int              `json:"total_minutes,omitempty"`
	WarmupMinutes      int              `json:"warmup_minutes,omitempty"`
	CooldownMinutes    int              `json:"cooldown_minutes,omitempty"`
	CommuteMinutes     int              `json:"commute_minutes,omitempty"`
	MaxSessionMinutes  int              `json:"max_session_minutes,omitempty"`
	SurfaceOptions     []string         `json:"surface_options,omitempty"`
}

// WorkoutSegment is one phase of a structured session.
type WorkoutSegment struct {
	Name            string   `json:"name"`
	DistanceKm      *float64 `json:"distance_km"`
	DurationMinutes *int     `json:"duration_minutes"`
	PacePerKm       string   `json:"pace_per_km,omitempty"`
	Repetitions     int      `json:"repetitions"`
	Description     string   `json:"description"`
}

// WeeklyCheckIn is the athlete's subjective report for a week.
type WeeklyCheckIn struct {
	WeekNumber          int       `json:"week_number"`
	EnergyLevel         int       `json:"energy_level"`
	MuscleSoreness      int       `json:"muscle_soreness"`
	SleepHours          float64   `json:"sleep_hours"`
	Motivation          int       `json:"motivation"`
	Notes               string    `json:"notes,omitempty"`
	FatigueSignals      int       `json:"fatigue_signals"`
	FatigueFlag         bool      `json:"fatigue_flag"`
	UpdatedFitnessScore *float64  `json:"updated_fitness_score,omitempty"`
	RecordedAt          time.Time `json:"recorded_at"`
}

// Adjustment log kinds.
const (
	AdjustmentFatigue       = "fatigue"
	AdjustmentFitnessUpdate = "fitness_update"
)

// AdjustmentLogEntry records a change applied to an existing plan.
type AdjustmentLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	Kind           string    `json:"kind"`
	WeekNumber     int       `json:"week_number"`
	Description    string    `json:"description"`
	DistanceFactor float64   `json:"distance_factor,omitempty"`
	DurationFactor float64   `json:"duration_factor,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Distance returns the workout distance, or 0 when unset.
func (w Workout) Distance() float64 {
	if w.DistanceKm == nil {
		return 0
	}
	return *w.DistanceKm
}

// IsRest reports whether the workout is a rest day.
func (w Workout) IsRest() bool {
	return w.Type == TypeRest
}

// CalculateTotalDistance recomputes and stores the week's total distance,
// rounded to one decimal.
func (wk *Week) CalculateTotalDistance() float64 {
	var total float64
	for _, w := range wk.Workouts {
		total += w.Distance()
	}
	wk.TotalDistanceKm = math.Round(total*10) / 10
	return wk.TotalDistanceKm
}

// GetWeek returns a pointer to the week with the given number, or nil.
func (p *Plan) GetWeek(number int) *Week {
	for i := range p.Schedule {
		if p.Schedule[i].WeekNumber == number {
			return &p.Schedule[i]
		}
	}
	return nil
}

// RaceDate returns the start date plus the plan duration, when a start
// date is set.
func (p *Plan) RaceDate() *time.Time {
	if p.StartDate == nil {
		return nil
	}
	d := p.StartDate.AddDate(0, 0, 7*p.Weeks)
	return &d
}

// WorkoutDate returns the calendar date of a workout in the given week.
// The start date is treated as the Monday of week one.
func (p *Plan) WorkoutDate(weekNumber int, day string) (time.Time, bool) {
	if p.StartDate == nil {
		return time.Time{}, false
	}
	idx := DayIndex(day)
	if idx < 0 {
		return time.Time{}, false
	}
	return p.StartDate.AddDate(0, 0, 7*(weekNumber-1)+idx), true
}
