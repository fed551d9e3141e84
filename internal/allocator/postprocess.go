package allocator

import (
	"strings"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/zones"
)

const speedSurfaceHint = "Use hill repeats or fartlek if no track or treadmill is available."

var speedSurfaces = []string{"pista", "track", "esteira", "treadmill"}

var speedWorkTypes = map[string]bool{
	models.TypeIntervalTraining: true,
	models.TypeShortIntervals:   true,
	models.TypeLongIntervals:    true,
}

// ApplySessionPreferences swaps sessions the athlete opted out of for easy
// runs of the same distance, then converts quality days (in weekday order)
// until the easy share of the week reaches zoneMix["easy"].
func (a *Allocator) ApplySessionPreferences(workouts []models.Workout, prefs profile.SessionPrefs, zoneMix map[string]float64) []models.Workout {
	out := make([]models.Workout, len(workouts))
	for i, w := range workouts {
		out[i] = w
		if w.IsRest() {
			continue
		}
		t := strings.ToLower(w.Type)
		switch {
		case strings.Contains(t, "interval") && !prefs.Intervals,
			strings.Contains(t, "tempo") && !prefs.Tempo,
			strings.Contains(t, "long run") && !prefs.LongRun:
			out[i] = a.toEasy(w)
		}
	}

	want := zoneMix[models.ZoneEasy]
	if want <= 0 {
		return out
	}
	var total, easyKm float64
	for _, w := range out {
		if w.IsRest() {
			continue
		}
		total += w.Distance()
		if strings.EqualFold(w.TrainingZone, models.ZoneEasy) {
			easyKm += w.Distance()
		}
	}
	if total == 0 || easyKm/total >= want {
		return out
	}
	for i, w := range out {
		if w.IsRest() || strings.EqualFold(w.TrainingZone, models.ZoneEasy) {
			continue
		}
		out[i] = a.toEasy(w)
		easyKm += w.Distance()
		if easyKm/total >= want {
			break
		}
	}
	return out
}

func (a *Allocator) toEasy(w models.Workout) models.Workout {
	if w.Distance() <= 0 {
		return w
	}
	return a.easyRun(w.Day, w.Distance())
}

// segmentMinutes sums the segment durations, falling back to the segment
// pace or the workout zone when a duration is missing.
func (a *Allocator) segmentMinutes(w models.Workout) float64 {
	var total float64
	for _, s := range w.Segments {
		total += a.minutesOf(s, w.TrainingZone)
	}
	return total
}

func (a *Allocator) minutesOf(s models.WorkoutSegment, zone string) float64 {
	reps := float64(max(1, s.Repetitions))
	if s.DurationMinutes != nil && *s.DurationMinutes > 0 {
		return float64(*s.DurationMinutes) * reps
	}
	if s.DistanceKm == nil {
		return 0
	}
	if p, ok := zones.ParsePace(s.PacePerKm); ok {
		return *s.DistanceKm * p / 60 * reps
	}
	if a.zones != nil {
		if zone == "" {
			zone = models.ZoneEasy
		}
		return *s.DistanceKm * a.pace(zone, zones.TargetMiddle) / 60 * reps
	}
	return 0
}

func isWarmup(s models.WorkoutSegment) bool {
	return strings.Contains(strings.ToLower(s.Name), "warmup")
}

func isCooldown(s models.WorkoutSegment) bool {
	return strings.Contains(strings.ToLower(s.Name), "cooldown")
}

func supportsSpeedWork(surfaces []string) bool {
	for _, s := range surfaces {
		for _, want := range speedSurfaces {
			if s == want {
				return true
			}
		}
	}
	return false
}

// mainMinutes estimates the running time of a workout without segments.
func (a *Allocator) mainMinutes(w models.Workout) float64 {
	if a.zones != nil && w.Distance() > 0 {
		zone := w.TrainingZone
		if zone == "" {
			zone = models.ZoneEasy
		}
		return w.Distance() * a.pace(zone, zones.TargetMiddle) / 60
	}
	if w.DurationMinutes != nil {
		return float64(*w.DurationMinutes)
	}
	return 0
}

// ApplyTimeComponents adds warmup, cooldown and commute time to every
// workout, clamps the total to the day's session limit and rounds it to
// 5 minutes. p may be nil; defaultMax is used when the profile sets no
// limit for a day.
func (a *Allocator) ApplyTimeComponents(workouts []models.Workout, p *profile.Profile, defaultMax int) {
	for i := range workouts {
		w := &workouts[i]

		dayMax := defaultMax
		var surfaces []string
		if p != nil {
			if m := p.MaxSessionMinutes(w.Day); m > 0 {
				dayMax = m
			}
			for _, s := range p.SurfacesForDay(w.Day) {
				surfaces = append(surfaces, strings.ToLower(s))
			}
		}
		w.MaxSessionMinutes = dayMax

		if w.IsRest() {
			w.TotalMinutes = 0
			continue
		}

		w.SurfaceOptions = surfaces
		if p != nil && speedWorkTypes[w.Type] && !supportsSpeedWork(surfaces) {
			w.Description = strings.TrimSpace(w.Description + " " + speedSurfaceHint)
		}

		var warm, cool, run, commute float64
		if len(w.Segments) > 0 {
			for _, s := range w.Segments {
				m := a.minutesOf(s, w.TrainingZone)
				switch {
				case isWarmup(s):
					warm += m
				case isCooldown(s):
					cool += m
				default:
					run += m
				}
			}
		} else {
			if p != nil {
				warm = float64(p.DefaultWarmupMinutes)
				cool = float64(p.DefaultCooldownMinutes)
			}
			run = a.mainMinutes(*w)
		}
		if p != nil {
			commute = float64(p.CommuteMinutes)
		}

		total := warm + run + cool + commute
		if total <= 0 {
			continue
		}
		if dayMax > 0 {
			total = min(total, float64(dayMax))
		}

		w.WarmupMinutes = int(warm + 0.5)
		w.CooldownMinutes = int(cool + 0.5)
		w.CommuteMinutes = int(commute + 0.5)
		w.TotalMinutes = int(models.RoundTo5Min(total))
		w.TotalTimeEstimated = zones.FormatMinutes(w.TotalMinutes)
	}
}
