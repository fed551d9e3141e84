// Package allocator turns a weekly distance target into seven day-specific
// workouts. Week shapes are data (see templates.go); one interpreter maps
// slots to structured sessions.
package allocator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/periodization"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/zones"
)

// ErrUnsupportedDaysPerWeek is returned for day counts without a template.
var ErrUnsupportedDaysPerWeek = errors.New("unsupported days per week")

// unitKm is the granularity of every workout distance.
const unitKm = 5.0

// Catalog supplies canned session descriptions.
type Catalog interface {
	SelectTemplate(category, level, phase string) (models.WorkoutTemplate, bool)
}

// Allocator builds the workouts of one plan.
type Allocator struct {
	Goal       string
	Level      string
	TotalWeeks int

	zones   *zones.Model
	catalog Catalog
}

// New returns an allocator. A nil or empty zone model selects plain mode;
// catalog may be nil.
func New(goal, level string, totalWeeks int, z *zones.Model, catalog Catalog) *Allocator {
	if z != nil && !z.HasZones() {
		z = nil
	}
	return &Allocator{
		Goal:       periodization.NormalizeGoal(goal),
		Level:      strings.ToLower(level),
		TotalWeeks: totalWeeks,
		zones:      z,
		catalog:    catalog,
	}
}

// Tier returns the template family used for this plan.
func (a *Allocator) Tier() Tier {
	if a.zones != nil && (a.Level == profile.LevelIntermediate || a.Level == profile.LevelAdvanced) {
		return TierAdvanced
	}
	return TierBeginner
}

func (a *Allocator) raceSpecific(week int) bool {
	return periodization.IsRaceSpecificWindow(week, a.TotalWeeks)
}

func (a *Allocator) shortRaceGoal() bool {
	return a.Goal == periodization.Goal5K || a.Goal == periodization.Goal10K
}

func (a *Allocator) enduranceGoal() bool {
	return a.Goal == periodization.GoalHalfMarathon || a.Goal == periodization.GoalMarathon
}

// Allocate distributes weeklyKm over the week. The returned workouts are in
// weekday order and their distances sum to weeklyKm rounded to 5 km.
func (a *Allocator) Allocate(week int, weeklyKm float64, phase string, days int) ([]models.Workout, error) {
	tpl, ok := Lookup(days, a.Tier())
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDaysPerWeek, days)
	}

	units := largestRemainder(int(math.Round(weeklyKm/unitKm)), tpl.scaled(phase), tpl.Days)
	workouts := make([]models.Workout, 0, len(models.Weekdays))
	for i, day := range models.Weekdays {
		slot := tpl.Days[i]
		switch {
		case slot.Role == RoleRest:
			workouts = append(workouts, restDay(day, ""))
		case units[i] == 0:
			workouts = append(workouts, restDay(day, "Extra rest: weekly volume too low for this session"))
		default:
			km := float64(units[i]) * unitKm
			workouts = append(workouts, a.Build(a.slotType(tpl, slot, week), day, km, week, phase))
		}
	}
	return workouts, nil
}

// rolePriority breaks remainder ties: long run first, then quality.
func rolePriority(r Role) int {
	switch r {
	case RoleLong:
		return 0
	case RoleQuality, RoleQualityA, RoleQualityB:
		return 1
	default:
		return 2
	}
}

// largestRemainder splits total units by share so the parts sum to total.
func largestRemainder(total int, shares [7]float64, slots [7]Slot) [7]int {
	var out [7]int
	if total <= 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	var rems []rem
	assigned := 0
	for i, s := range shares {
		if s <= 0 {
			continue
		}
		q := float64(total) * s
		f := math.Floor(q + 1e-9)
		out[i] = int(f)
		assigned += out[i]
		rems = append(rems, rem{idx: i, frac: q - f})
	}

	sort.SliceStable(rems, func(i, j int) bool {
		if math.Abs(rems[i].frac-rems[j].frac) > 1e-9 {
			return rems[i].frac > rems[j].frac
		}
		return rolePriority(slots[rems[i].idx].Role) < rolePriority(slots[rems[j].idx].Role)
	})
	for i := 0; assigned < total && len(rems) > 0; i++ {
		out[rems[i%len(rems)].idx]++
		assigned++
	}
	return out
}

// slotType decides the workout type of a slot for a given week.
func (a *Allocator) slotType(tpl Template, slot Slot, week int) string {
	window := a.raceSpecific(week)
	hasZones := a.zones != nil

	switch slot.Role {
	case RoleEasy:
		return models.TypeEasyRun

	case RoleQuality:
		switch {
		case week <= tpl.QualityGateWeeks:
			return models.TypeEasyRun
		case window && hasZones && a.shortRaceGoal():
			return models.TypeRacePaceIntervals
		case len(tpl.QualityRotation) > 0:
			return tpl.QualityRotation[week%len(tpl.QualityRotation)]
		default:
			return models.TypeTempoRun
		}

	case RoleQualityA:
		switch {
		case week <= tpl.QualityGateWeeks:
			return models.TypeEasyRun
		case a.enduranceGoal():
			return models.TypeLongIntervals
		default:
			return models.TypeShortIntervals
		}

	case RoleQualityB:
		switch {
		case week <= tpl.QualityGateWeeks:
			return models.TypeEasyRun
		case window && a.shortRaceGoal():
			return models.TypeRacePaceIntervals
		case week%2 == 0:
			return models.TypeLongIntervals
		default:
			return models.TypeTempoRun
		}

	case RoleLong:
		switch {
		case window && hasZones && a.Goal == periodization.GoalMarathon:
			return models.TypeMarathonPaceRun
		case tpl.ProgressiveLong && hasZones && week%3 == 0 && week > 3 && !window:
			return models.TypeProgressiveLongRun
		default:
			return models.TypeLongRun
		}
	}
	return models.TypeRest
}

func restDay(day, note string) models.Workout {
	desc := "Rest day"
	if note != "" {
		desc = note
	}
	return models.Workout{Day: day, Type: models.TypeRest, Description: desc}
}

// Build creates a single workout of the given type. Catalog prose, when a
// catalog is configured, is appended to the description.
func (a *Allocator) Build(workoutType, day string, km float64, week int, phase string) models.Workout {
	var w models.Workout
	switch workoutType {
	case models.TypeEasyRun:
		w = a.easyRun(day, km)
	case models.TypeLongRun:
		w = a.longRun(day, km)
	case models.TypeProgressiveLongRun:
		w = a.progressiveLongRun(day, km)
	case models.TypeMarathonPaceRun:
		w = a.marathonPaceRun(day, km)
	case models.TypeTempoRun:
		w = a.tempoRun(day, km)
	case models.TypeIntervalTraining:
		w = a.intervalTraining(day, km, week)
	case models.TypeShortIntervals:
		w = a.shortIntervals(day, km)
	case models.TypeLongIntervals:
		w = a.longIntervals(day, km)
	case models.TypeRacePaceIntervals:
		w = a.racePaceIntervals(day, km)
	case models.TypeFartlek:
		w = a.fartlek(day, km)
	default:
		return restDay(day, "")
	}

	if a.catalog != nil {
		if t, ok := a.catalog.SelectTemplate(models.CategoryForType(workoutType), a.Level, phase); ok {
			w.Description = fmt.Sprintf("%s. Suggested session: %s - %s", w.Description, t.Name, t.Description)
		}
	}
	return w
}
