// Package agenda moves long runs and key sessions around the athlete's
// week: long runs to preferred days, hard sessions away from busy days.
package agenda

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/profile"
)

// Preferences is the athlete's weekly agenda. Day names may be English or
// Portuguese; StressBlocks maps a day to its busy periods.
type Preferences struct {
	StressBlocks          map[string][]string
	AlternateStressBlocks map[string][]string
	LongRunDays           []string
	AlternateLongRunDays  []string
	// Alternating switches even weeks to the alternate (week B) agenda.
	Alternating bool
}

// FromProfile extracts the agenda preferences of a profile. A nil profile
// gives empty preferences.
func FromProfile(p *profile.Profile) Preferences {
	if p == nil {
		return Preferences{}
	}
	return Preferences{
		StressBlocks:          p.StressfulBlocks,
		AlternateStressBlocks: p.AlternateStressfulBlocks,
		LongRunDays:           p.LongRunPreferenceDays,
		AlternateLongRunDays:  p.AlternateLongRunDays,
		Alternating:           p.UseAlternatingWeeks,
	}
}

func canonicalDay(day string) string {
	d, _ := models.NormalizeDay(day)
	return d
}

// StressMap returns the active busy periods for a week keyed by canonical
// day name.
func (p Preferences) StressMap(week int) map[string][]string {
	src := p.StressBlocks
	if p.Alternating && week%2 == 0 && len(p.AlternateStressBlocks) > 0 {
		src = p.AlternateStressBlocks
	}
	out := make(map[string][]string, len(src))
	for day, periods := range src {
		out[canonicalDay(day)] = periods
	}
	return out
}

// LongRunPreference returns the preferred long-run days for a week.
func (p Preferences) LongRunPreference(week int) []string {
	src := p.LongRunDays
	if p.Alternating && week%2 == 0 && len(p.AlternateLongRunDays) > 0 {
		src = p.AlternateLongRunDays
	}
	out := make([]string, 0, len(src))
	for _, d := range src {
		out = append(out, canonicalDay(d))
	}
	return out
}

func indexOfDay(ws []models.Workout, day string) int {
	return slices.IndexFunc(ws, func(w models.Workout) bool { return w.Day == day })
}

// moveTo puts ws[i] on day, exchanging with whatever is scheduled there.
// It returns the day the workout came from.
func moveTo(ws []models.Workout, i int, day string) string {
	from := ws[i].Day
	if j := indexOfDay(ws, day); j >= 0 {
		ws[j].Day = from
	}
	ws[i].Day = day
	return from
}

// relocationDay picks a non-busy day: a rest day first, then an easy run,
// then any other session except a long run.
func relocationDay(ws []models.Workout, busy map[string][]string) (string, bool) {
	free := func(w models.Workout) bool {
		_, isBusy := busy[w.Day]
		return !isBusy
	}
	for _, w := range ws {
		if free(w) && w.Type == models.TypeRest {
			return w.Day, true
		}
	}
	for _, w := range ws {
		if free(w) && w.Type == models.TypeEasyRun {
			return w.Day, true
		}
	}
	for _, w := range ws {
		if free(w) && !models.IsLongRunType(w.Type) {
			return w.Day, true
		}
	}
	return "", false
}

// Resolve applies the agenda to one week. It returns the workouts sorted by
// weekday and one note per move. The input slice is not modified.
func Resolve(workouts []models.Workout, prefs Preferences, week int) ([]models.Workout, []string) {
	busy := prefs.StressMap(week)
	longDays := prefs.LongRunPreference(week)
	if len(busy) == 0 && len(longDays) == 0 {
		return workouts, nil
	}

	ws := slices.Clone(workouts)
	var notes []string

	preferred := ""
	for _, d := range longDays {
		if _, isBusy := busy[d]; !isBusy {
			preferred = d
			break
		}
	}

	for i := range ws {
		if !models.IsLongRunType(ws[i].Type) {
			continue
		}
		if _, onBusyDay := busy[ws[i].Day]; preferred != "" && ws[i].Day != preferred {
			from := moveTo(ws, i, preferred)
			notes = append(notes, fmt.Sprintf("Long run moved from %s to %s, the day with the most free time.", from, preferred))
		} else if onBusyDay {
			if day, ok := relocationDay(ws, busy); ok && day != ws[i].Day {
				from := moveTo(ws, i, day)
				notes = append(notes, fmt.Sprintf("Long run moved to %s to avoid a busy block on %s.", day, from))
			}
		}
	}

	for i := range ws {
		if !models.IsKeyWorkoutType(ws[i].Type) {
			continue
		}
		if _, onBusyDay := busy[ws[i].Day]; !onBusyDay {
			continue
		}
		day, ok := relocationDay(ws, busy)
		if !ok || day == ws[i].Day {
			continue
		}
		from := moveTo(ws, i, day)
		label := ""
		if periods := busy[from]; len(periods) > 0 {
			label = " (" + strings.Join(periods, ", ") + ")"
		}
		notes = append(notes, fmt.Sprintf("Key session (%s) moved from %s%s to %s because of a full schedule.", ws[i].Type, from, label, day))
	}

	sort.SliceStable(ws, func(i, j int) bool {
		return models.DayIndex(ws[i].Day) < models.DayIndex(ws[j].Day)
	})
	return ws, notes
}
