package allocator

import (
	"fmt"
	"math"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/periodization"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/zones"
)

// Split constants for structured sessions.
const (
	// intervalWorkFraction of an interval block is hard running, the rest
	// is recovery jogging (60/40).
	intervalWorkFraction     = 0.60
	longIntervalWorkFraction = 0.65
	// progressiveEasyFraction of a progressive long run is easy; the last
	// quarter finishes at threshold.
	progressiveEasyFraction = 0.75

	segWarmup   = "Warmup"
	segCooldown = "Cooldown"
)

// recoveryRatios is recovery time per unit of work time by level.
var recoveryRatios = map[string]float64{
	profile.LevelBeginner:     1.0,
	profile.LevelIntermediate: 0.75,
	profile.LevelAdvanced:     0.5,
}

func (a *Allocator) recoveryRatio() float64 {
	if r, ok := recoveryRatios[a.Level]; ok {
		return r
	}
	return 0.75
}

// pace returns a zone pace in sec/km. Zones are complete whenever the
// allocator has a model, so lookups do not fail.
func (a *Allocator) pace(zone, target string) float64 {
	p, _ := a.zones.ZonePace(zone, target)
	return p
}

func (a *Allocator) paceStr(zone, target string) string {
	return zones.FormatPace(a.pace(zone, target))
}

// minutesFor returns whole minutes to run km at pace (truncated).
func minutesFor(km, pace float64) int {
	return int(km * pace / 60)
}

// clampByTime keeps a distance inside a duration window at the given pace.
func clampByTime(pace, km float64, minMinutes, maxMinutes int) float64 {
	lo := float64(minMinutes*60) / pace
	hi := float64(maxMinutes*60) / pace
	return min(hi, max(lo, km))
}

func plain(day, workoutType string, km float64, zone, desc string) models.Workout {
	return models.Workout{
		Day:          day,
		Type:         workoutType,
		DistanceKm:   models.Float(km),
		Description:  desc,
		TrainingZone: zone,
	}
}

func segment(name string, km float64, minutes int, pace, desc string) models.WorkoutSegment {
	return models.WorkoutSegment{
		Name:            name,
		DistanceKm:      models.Float(km),
		DurationMinutes: models.Int(minutes),
		PacePerKm:       pace,
		Repetitions:     1,
		Description:     desc,
	}
}

func (a *Allocator) warmup(km float64, desc string) models.WorkoutSegment {
	return segment(segWarmup, km, minutesFor(km, a.pace(models.ZoneEasy, zones.TargetMiddle)),
		a.paceStr(models.ZoneEasy, zones.TargetMiddle), desc)
}

func (a *Allocator) cooldown(km float64, desc string) models.WorkoutSegment {
	km = max(0, models.Round1(km))
	return segment(segCooldown, km, minutesFor(km, a.pace(models.ZoneEasy, zones.TargetMiddle)),
		a.paceStr(models.ZoneEasy, zones.TargetMiddle), desc)
}

// repeats builds the work and recovery segments of an interval set.
func (a *Allocator) repeats(name string, repKm float64, reps int, zone, desc string) []models.WorkoutSegment {
	p := a.pace(zone, zones.TargetMiddle)
	workMin := minutesFor(repKm, p)
	recMin := int(float64(workMin) * a.recoveryRatio())

	work := segment(name, models.Round2(repKm), workMin, zones.FormatPace(p), desc)
	work.Repetitions = reps
	rec := models.WorkoutSegment{
		Name:            "Recovery jog",
		DurationMinutes: models.Int(recMin),
		PacePerKm:       a.paceStr(models.ZoneEasy, zones.TargetMiddle),
		Repetitions:     reps,
		Description:     "Active recovery between repeats",
	}
	return []models.WorkoutSegment{work, rec}
}

// finish sets the workout duration from its segments.
func (a *Allocator) finish(w models.Workout) models.Workout {
	w.DurationMinutes = models.Int(int(a.segmentMinutes(w)))
	return w
}

func (a *Allocator) easyRun(day string, km float64) models.Workout {
	w := plain(day, models.TypeEasyRun, km, models.ZoneEasy, "Comfortable pace, conversational effort")
	if a.zones == nil {
		return w
	}
	p := a.pace(models.ZoneEasy, zones.TargetMiddle)
	w.TargetPace = zones.FormatPace(p)
	w.DurationMinutes = models.Int(int(models.RoundTo30Min(km * p / 60)))
	return w
}

func (a *Allocator) longRun(day string, km float64) models.Workout {
	w := plain(day, models.TypeLongRun, km, models.ZoneEasy, "Build endurance at an easy pace")
	if a.zones == nil {
		return w
	}
	p := a.pace(models.ZoneEasy, zones.TargetMax)
	w.TargetPace = zones.FormatPace(p)
	w.DurationMinutes = models.Int(int(models.RoundTo30Min(km * p / 60)))
	return w
}

func (a *Allocator) tempoRun(day string, km float64) models.Workout {
	w := plain(day, models.TypeTempoRun, km, models.ZoneThreshold, "Sustained effort at threshold pace")
	if a.zones == nil {
		return w
	}

	wu := models.Round1(km * 0.18)
	tp := a.pace(models.ZoneThreshold, zones.TargetMiddle)
	tempoKm := clampByTime(tp, models.Round1(km*0.60), 20, 40)
	tempoKm = models.Round2(min(tempoKm, max(0, km-wu-0.5)))

	w.TargetPace = zones.FormatPace(tp)
	w.Segments = []models.WorkoutSegment{
		a.warmup(wu, "Easy running to get ready"),
		segment("Tempo", tempoKm, minutesFor(tempoKm, tp), zones.FormatPace(tp), "Threshold pace, controlled and sustained"),
		a.cooldown(km-wu-tempoKm, "Easy running to recover"),
	}
	return a.finish(w)
}

func (a *Allocator) intervalTraining(day string, km float64, week int) models.Workout {
	progress := float64(week) / float64(max(a.TotalWeeks, 1))
	var baseKm float64
	var focus string
	switch {
	case progress <= 0.30:
		baseKm, focus = 0.4, "short intervals for speed and technique"
	case progress <= 0.70:
		baseKm, focus = 1.0, "classic VO2max intervals"
	default:
		baseKm, focus = 1.6, "long intervals for race rhythm"
	}

	w := plain(day, models.TypeIntervalTraining, km, models.ZoneInterval, "Speed session: "+focus)
	if a.zones == nil {
		return w
	}

	wu := models.Round1(km * 0.20)
	block := km * 0.60
	workKm := models.Round1(block * intervalWorkFraction)
	ip := a.pace(models.ZoneInterval, zones.TargetMiddle)

	baseKm = clampByTime(ip, baseKm, 3, 5)
	reps := max(4, min(10, int(workKm/baseKm)))
	perRep := clampByTime(ip, models.Round2(workKm/float64(reps)), 3, 5)

	w.TargetPace = zones.FormatPace(ip)
	w.Segments = append([]models.WorkoutSegment{a.warmup(wu, "Easy running to get ready")},
		a.repeats("Intervals", perRep, reps, models.ZoneInterval, "5K effort, hard")...)
	w.Segments = append(w.Segments, a.cooldown(km-wu-block, "Easy jog to finish"))
	return a.finish(w)
}

func (a *Allocator) shortIntervals(day string, km float64) models.Workout {
	w := plain(day, models.TypeShortIntervals, km, models.ZoneRepetition, "Short repeats for speed and running form")
	if a.zones == nil {
		return w
	}

	repKm := 0.4
	if a.Level == profile.LevelBeginner {
		repKm = 0.3
	}
	wu := models.Round1(km * 0.25)
	workKm := models.Round1(km * 0.50 * intervalWorkFraction)
	reps := max(8, min(12, int(workKm/repKm)))

	w.TargetPace = a.paceStr(models.ZoneRepetition, zones.TargetMiddle)
	w.Segments = append([]models.WorkoutSegment{a.warmup(wu, "Gradual build-up")},
		a.repeats(fmt.Sprintf("Short repeats (%dm)", int(math.Round(repKm*1000))), repKm, reps, models.ZoneRepetition, "Fast but relaxed, focus on form")...)
	w.Segments = append(w.Segments, a.cooldown(km-wu-repKm*float64(reps), "Easy jog to finish"))
	return a.finish(w)
}

func (a *Allocator) longIntervals(day string, km float64) models.Workout {
	w := plain(day, models.TypeLongIntervals, km, models.ZoneThreshold, "Long repeats for aerobic strength")
	if a.zones == nil {
		return w
	}

	wu := models.Round1(km * 0.20)
	workKm := models.Round1(km * 0.60 * longIntervalWorkFraction)
	tp := a.pace(models.ZoneThreshold, zones.TargetMiddle)
	repKm := clampByTime(tp, 1.0, 3, 5)
	reps := max(2, min(8, int(workKm/repKm)))

	w.TargetPace = zones.FormatPace(tp)
	w.Segments = append([]models.WorkoutSegment{a.warmup(wu, "Gradual build-up")},
		a.repeats("Long repeats", repKm, reps, models.ZoneThreshold, "Threshold pace, strong and even")...)
	w.Segments = append(w.Segments, a.cooldown(km-wu-repKm*float64(reps), "Easy jog to finish"))
	return a.finish(w)
}

func (a *Allocator) racePaceIntervals(day string, km float64) models.Workout {
	repKm, maxReps, zone := 1.0, 6, models.ZoneThreshold
	desc := "Threshold-pace repeats"
	switch a.Goal {
	case periodization.Goal5K:
		repKm, maxReps, zone = 0.8, 6, models.ZoneInterval
		desc = "Repeats at 5K race pace"
	case periodization.Goal10K:
		repKm, maxReps, zone = 1.0, 8, models.ZoneThreshold
		desc = "Repeats at 10K race pace"
	}

	w := plain(day, models.TypeRacePaceIntervals, km, zone, desc)
	if a.zones == nil {
		return w
	}

	wu := models.Round1(km * 0.20)
	rp := a.pace(zone, zones.TargetMiddle)
	repKm = clampByTime(rp, repKm, 3, 5)
	reps := min(maxReps, max(2, int((km-wu-0.5)/repKm)))

	w.TargetPace = zones.FormatPace(rp)
	w.Segments = append([]models.WorkoutSegment{a.warmup(wu, "Gradual build-up")},
		a.repeats(a.Goal+" race pace", repKm, reps, zone, "Goal race rhythm")...)
	w.Segments = append(w.Segments, a.cooldown(km-wu-repKm*float64(reps), "Easy jog to finish"))
	return a.finish(w)
}

func (a *Allocator) fartlek(day string, km float64) models.Workout {
	w := plain(day, models.TypeFartlek, km, models.ZoneThreshold, "Speed play: change pace freely")
	if a.zones == nil {
		return w
	}

	easyPace := a.paceStr(models.ZoneEasy, zones.TargetMiddle)
	fastPace := a.paceStr(models.ZoneInterval, zones.TargetMiddle)
	wu := models.Round1(km * 0.20)
	playKm := models.Round1(km * 0.65)

	w.TargetPace = easyPace + " - " + fastPace
	w.Segments = []models.WorkoutSegment{
		a.warmup(wu, "Start slowly"),
		{
			Name:        "Fartlek",
			DistanceKm:  models.Float(playKm),
			Repetitions: 1,
			Description: fmt.Sprintf("Alternate 1-3 min fast (%s) with 1-2 min easy (%s)", fastPace, easyPace),
		},
		a.cooldown(km-wu-playKm, "Finish relaxed"),
	}
	return a.finish(w)
}

func (a *Allocator) progressiveLongRun(day string, km float64) models.Workout {
	w := plain(day, models.TypeProgressiveLongRun, km, models.ZoneEasy, "Progressive long run: start easy, finish at a moderate pace")
	if a.zones == nil {
		return w
	}

	ep := a.pace(models.ZoneEasy, zones.TargetMiddle)
	fp := a.pace(models.ZoneThreshold, zones.TargetMin)
	easyKm := models.Round1(km * progressiveEasyFraction)
	fastKm := models.Round1(km * (1 - progressiveEasyFraction))

	w.TargetPace = zones.FormatPace(ep) + " → " + zones.FormatPace(fp)
	w.Segments = []models.WorkoutSegment{
		segment("Easy start", easyKm, minutesFor(easyKm, ep), zones.FormatPace(ep), "Comfortable, relaxed start"),
		segment("Fast finish", fastKm, minutesFor(fastKm, fp), zones.FormatPace(fp), "Build the pace over the final quarter"),
	}
	return a.finish(w)
}

func (a *Allocator) marathonPaceRun(day string, km float64) models.Workout {
	w := plain(day, models.TypeMarathonPaceRun, km, models.ZoneMarathon, "Long run at marathon race pace")
	if a.zones == nil {
		return w
	}

	mp := a.pace(models.ZoneMarathon, zones.TargetMiddle)
	wu := models.Round1(km * 0.10)
	mpKm := models.Round1(km * 0.80)

	w.TargetPace = zones.FormatPace(mp)
	w.Segments = []models.WorkoutSegment{
		a.warmup(wu, "Start slowly"),
		segment("Marathon pace", mpKm, minutesFor(mpKm, mp), zones.FormatPace(mp), "Race rhythm, sustainable and controlled"),
		a.cooldown(km-wu-mpKm, "Finish relaxed"),
	}
	return a.finish(w)
}
