// Package feedback adapts an existing plan to the athlete's weekly
// check-ins and to new race results.
package feedback

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

// Fatigue thresholds. A check-in is flagged when at least
// fatigueSignalThreshold of them trip.
const (
	lowEnergy              = 4
	highSoreness           = 7
	shortSleepHours        = 6.0
	lowMotivation          = 4
	fatigueSignalThreshold = 2

	fatigueDistanceFactor = 0.85
	fatigueDurationFactor = 0.9

	reducedPrefix = "(reduced for fatigue) "
)

// ErrInvalidCheckIn is returned by Validate for out-of-range scores.
var ErrInvalidCheckIn = errors.New("invalid check-in")

// CheckInInput is the athlete's subjective report for one week. Scores are
// on a 1-10 scale.
type CheckInInput struct {
	WeekNumber int     `json:"week_number"`
	Energy     int     `json:"energy_level"`
	Soreness   int     `json:"muscle_soreness"`
	SleepHours float64 `json:"sleep_hours"`
	Motivation int     `json:"motivation"`
	Notes      string  `json:"notes,omitempty"`
}

// Validate checks the input ranges. RecordCheckIn does not call it; the
// API layer does before handing input over.
func (in CheckInInput) Validate() error {
	if in.WeekNumber < 1 {
		return fmt.Errorf("%w: week_number must be positive", ErrInvalidCheckIn)
	}
	for name, v := range map[string]int{
		"energy_level":    in.Energy,
		"muscle_soreness": in.Soreness,
		"motivation":      in.Motivation,
	} {
		if v < 1 || v > 10 {
			return fmt.Errorf("%w: %s must be between 1 and 10", ErrInvalidCheckIn, name)
		}
	}
	if in.SleepHours < 0 || in.SleepHours > 24 {
		return fmt.Errorf("%w: sleep_hours must be between 0 and 24", ErrInvalidCheckIn)
	}
	return nil
}

// FatigueSignals counts the fatigue markers in a check-in.
func FatigueSignals(in CheckInInput) int {
	n := 0
	if in.Energy <= lowEnergy {
		n++
	}
	if in.Soreness >= highSoreness {
		n++
	}
	if in.SleepHours < shortSleepHours {
		n++
	}
	if in.Motivation <= lowMotivation {
		n++
	}
	return n
}

// RecordCheckIn stores the check-in on the plan. A flagged check-in
// reduces the following week's load. The returned check-in is the stored
// copy.
func RecordCheckIn(plan *models.Plan, in CheckInInput, at time.Time) models.WeeklyCheckIn {
	signals := FatigueSignals(in)
	ci := models.WeeklyCheckIn{
		WeekNumber:     in.WeekNumber,
		EnergyLevel:    in.Energy,
		MuscleSoreness: in.Soreness,
		SleepHours:     in.SleepHours,
		Motivation:     in.Motivation,
		Notes:          in.Notes,
		FatigueSignals: signals,
		FatigueFlag:    signals >= fatigueSignalThreshold,
		RecordedAt:     at,
	}
	plan.WeeklyCheckins = append(plan.WeeklyCheckins, ci)

	if ci.FatigueFlag {
		ApplyFatigueAdjustment(plan, in.WeekNumber+1, at)
	}
	return ci
}

// ApplyFatigueAdjustment cuts distance by 15% and duration by 10% for every
// session of the given week. It reports whether the week existed.
func ApplyFatigueAdjustment(plan *models.Plan, weekNumber int, at time.Time) bool {
	wk := plan.GetWeek(weekNumber)
	if wk == nil {
		return false
	}

	for i := range wk.Workouts {
		w := &wk.Workouts[i]
		if w.IsRest() {
			continue
		}
		matched := w.DistanceKm != nil && len(w.Segments) > 0 &&
			math.Abs(segmentKm(w.Segments)-*w.DistanceKm) < 0.05
		if w.DistanceKm != nil {
			w.DistanceKm = models.Float(math.Max(0, models.Round1(*w.DistanceKm*fatigueDistanceFactor)))
		}
		if w.DurationMinutes != nil {
			w.DurationMinutes = models.Int(int(float64(*w.DurationMinutes) * fatigueDurationFactor))
		}
		reduceSegments(w.Segments)
		if matched {
			balanceSegments(w.Segments, *w.DistanceKm)
		}
		if w.TotalMinutes > 0 {
			w.TotalMinutes = int(float64(w.TotalMinutes) * fatigueDurationFactor)
			w.TotalTimeEstimated = zones.FormatMinutes(w.TotalMinutes)
		}
		if models.IsQualityType(w.Type) && !strings.HasPrefix(w.Description, reducedPrefix) {
			w.Description = reducedPrefix + w.Description
		}
	}
	wk.CalculateTotalDistance()

	note := fmt.Sprintf("Load reduced (distance -15%%, duration -10%%) after fatigue reported in week %d.", weekNumber-1)
	if wk.Notes == "" {
		wk.Notes = note
	} else {
		wk.Notes += "\n" + note
	}

	plan.AdjustmentsLog = append(plan.AdjustmentsLog, models.AdjustmentLogEntry{
		Timestamp:      at,
		Kind:           models.AdjustmentFatigue,
		WeekNumber:     weekNumber,
		Description:    "fatigue check-in: reduced next week's load",
		DistanceFactor: fatigueDistanceFactor,
		DurationFactor: fatigueDurationFactor,
	})
	return true
}

// reduceSegments applies the fatigue factors to every step of a session.
// Repeated steps keep two decimals, single steps one.
func reduceSegments(segs []models.WorkoutSegment) {
	for i := range segs {
		sg := &segs[i]
		if sg.DistanceKm != nil {
			km := *sg.DistanceKm * fatigueDistanceFactor
			if sg.Repetitions > 1 {
				km = models.Round2(km)
			} else {
				km = models.Round1(km)
			}
			sg.DistanceKm = models.Float(math.Max(0, km))
		}
		if sg.DurationMinutes != nil {
			sg.DurationMinutes = models.Int(int(float64(*sg.DurationMinutes) * fatigueDurationFactor))
		}
	}
}

// segmentKm sums segment distances including repetitions.
func segmentKm(segs []models.WorkoutSegment) float64 {
	var km float64
	for _, sg := range segs {
		if sg.DistanceKm != nil {
			km += *sg.DistanceKm * float64(max(1, sg.Repetitions))
		}
	}
	return km
}

// balanceSegments moves the rounding difference between the steps and the
// session total onto the last single step that carries a distance, so the
// steps keep adding up to the session.
func balanceSegments(segs []models.WorkoutSegment, total float64) {
	for i := len(segs) - 1; i >= 0; i-- {
		sg := &segs[i]
		if sg.DistanceKm == nil || sg.Repetitions > 1 {
			continue
		}
		diff := total - segmentKm(segs)
		sg.DistanceKm = models.Float(math.Max(0, models.Round2(*sg.DistanceKm+diff)))
		return
	}
}

// UpdateFitness records a new reference result, stores the recalculated
// zones on the plan and logs the change. A nil model is rebuilt from the
// plan's stored zones. The latest check-in, if any, gets the new score.
func UpdateFitness(plan *models.Plan, m *zones.Model, label, timeStr, source string) (models.FitnessUpdate, error) {
	if m == nil {
		m = zones.FromZones(plan.Zones)
	}
	upd, err := m.UpdateReferenceResult(label, timeStr, source)
	if err != nil {
		return models.FitnessUpdate{}, fmt.Errorf("updating fitness: %w", err)
	}

	plan.Zones = m.Snapshot()
	plan.FitnessUpdates = append(plan.FitnessUpdates, upd)
	if n := len(plan.WeeklyCheckins); n > 0 {
		plan.WeeklyCheckins[n-1].UpdatedFitnessScore = models.Float(*upd.NewScore)
	}

	desc := fmt.Sprintf("%s %s (%s): fitness score %.1f", label, timeStr, source, *upd.NewScore)
	if upd.PreviousScore != nil {
		desc = fmt.Sprintf("%s %s (%s): fitness score %.1f -> %.1f", label, timeStr, source, *upd.PreviousScore, *upd.NewScore)
	}
	plan.AdjustmentsLog = append(plan.AdjustmentsLog, models.AdjustmentLogEntry{
		Timestamp:   upd.Timestamp,
		Kind:        models.AdjustmentFitnessUpdate,
		Description: desc,
	})
	return upd, nil
}
