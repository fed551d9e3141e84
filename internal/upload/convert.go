package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/runplan/internal/export"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

// Event is one calendar entry in the bulk events format.
type Event struct {
	StartDateLocal string `json:"start_date_local"`
	Category       string `json:"category"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	MovingTime     int    `json:"moving_time,omitempty"`
	Distance       int    `json:"distance,omitempty"`
	ExternalID     string `json:"external_id,omitempty"`
	Steps          []Step `json:"steps,omitempty"`
}

// Step is one structured segment of a workout event.
type Step struct {
	Duration    string `json:"duration,omitempty"`
	Distance    string `json:"distance,omitempty"`
	Zone        string `json:"zone"`
	Pace        string `json:"pace,omitempty"`
	Reps        int    `json:"reps,omitempty"`
	Description string `json:"description"`
}

// zoneKeywords is checked in order; the first keyword contained in a
// segment name or workout type wins, so specific phrases come first.
var zoneKeywords = []struct {
	keyword string
	zone    string
}{
	{"z1", "Z1"},
	{"z2", "Z2"},
	{"z3", "Z3"},
	{"z4", "Z4"},
	{"z5", "Z5"},
	{"warmup", "Z1"},
	{"warm-up", "Z1"},
	{"cooldown", "Z1"},
	{"cool-down", "Z1"},
	{"easy", "Z1"},
	{"recovery", "Z1"},
	{"long run", "Z1"},
	{"moderate", "Z2"},
	{"race pace", "Z4"},
	{"marathon", "Z2"},
	{"tempo", "Z3"},
	{"threshold", "Z3"},
	{"long repeats", "Z3"},
	{"long intervals", "Z3"},
	{"fartlek", "Z3"},
	{"short repeats", "Z5"},
	{"short intervals", "Z5"},
	{"interval", "Z4"},
	{"repeats", "Z4"},
	{"fast", "Z4"},
	{"vo2max", "Z5"},
	{"sprint", "Z5"},
}

// trainingZones maps plan training zones to calendar zones.
var trainingZones = map[string]string{
	models.ZoneEasy:       "Z1",
	models.ZoneMarathon:   "Z2",
	models.ZoneThreshold:  "Z3",
	models.ZoneInterval:   "Z4",
	models.ZoneRepetition: "Z5",
}

func matchZone(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range zoneKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.zone, true
		}
	}
	return "", false
}

// ZoneForSegment maps a segment name to a calendar zone, defaulting to Z1.
func ZoneForSegment(name string) string {
	if z, ok := matchZone(name); ok {
		return z
	}
	return "Z1"
}

// WorkoutZone is the calendar zone of a whole session: its training zone
// when set, otherwise a keyword match on the workout type.
func WorkoutZone(w models.Workout) string {
	if z, ok := trainingZones[w.TrainingZone]; ok {
		return z
	}
	if z, ok := matchZone(w.Type); ok {
		return z
	}
	return "Z1"
}

// stepZone prefers the segment name and falls back to the session zone.
// Race pace depends on the goal, so it always takes the session zone.
func stepZone(seg models.WorkoutSegment, w models.Workout) string {
	if strings.Contains(strings.ToLower(seg.Name), "race pace") {
		return WorkoutZone(w)
	}
	if z, ok := matchZone(seg.Name); ok {
		return z
	}
	return WorkoutZone(w)
}

// eventType maps a workout type to the calendar's activity type.
func eventType(workoutType string) string {
	if workoutType == models.TypeRest {
		return "Rest"
	}
	return "Run"
}

func convertSegment(seg models.WorkoutSegment, w models.Workout) Step {
	step := Step{
		Zone:        stepZone(seg, w),
		Pace:        seg.PacePerKm,
		Description: seg.Description,
	}
	if step.Description == "" {
		step.Description = seg.Name
	}
	if seg.DurationMinutes != nil && *seg.DurationMinutes > 0 {
		step.Duration = fmt.Sprintf("%dm", *seg.DurationMinutes)
	}
	if seg.DistanceKm != nil && *seg.DistanceKm > 0 {
		step.Distance = fmt.Sprintf("%dm", int(*seg.DistanceKm*1000))
	}
	if step.Duration == "" && step.Distance == "" {
		step.Duration = "0m"
	}
	if seg.Repetitions > 1 {
		step.Reps = seg.Repetitions
	}
	return step
}

// sessionStep describes an unstructured workout as a single step.
func sessionStep(w models.Workout) Step {
	seg := models.WorkoutSegment{
		Name:            w.Type,
		DistanceKm:      w.DistanceKm,
		DurationMinutes: w.DurationMinutes,
		PacePerKm:       w.TargetPace,
		Description:     w.Description,
	}
	step := convertSegment(seg, w)
	step.Zone = WorkoutZone(w)
	return step
}

func movingSeconds(w models.Workout) int {
	if w.DurationMinutes != nil && *w.DurationMinutes > 0 {
		return *w.DurationMinutes * 60
	}
	if w.TotalMinutes > 0 {
		return w.TotalMinutes * 60
	}
	if pace, ok := zones.ParsePace(w.TargetPace); ok && w.Distance() > 0 {
		return int(zones.TimeForDistance(w.Distance(), pace))
	}
	return 0
}

func convertWorkout(planID string, week int, w models.Workout, date time.Time) Event {
	ev := Event{
		StartDateLocal: date.Format("2006-01-02") + "T00:00:00",
		Category:       "WORKOUT",
		Name:           w.Type,
		Description:    w.Description,
		Type:           eventType(w.Type),
		MovingTime:     movingSeconds(w),
		Distance:       int(w.Distance() * 1000),
		ExternalID:     fmt.Sprintf("%s-w%d-%s", planID, week, strings.ToLower(w.Day)),
	}
	for _, seg := range w.Segments {
		ev.Steps = append(ev.Steps, convertSegment(seg, w))
	}
	if len(w.Segments) == 0 && !w.IsRest() && w.Distance() > 0 {
		ev.Steps = []Step{sessionStep(w)}
	}
	return ev
}

// ConvertPlan turns every dated workout into a calendar event. Rest days
// are skipped unless includeRest is set.
func ConvertPlan(plan *models.Plan, includeRest bool) ([]Event, error) {
	if plan.StartDate == nil {
		return nil, export.ErrNoStartDate
	}
	var events []Event
	for _, wk := range plan.Schedule {
		for _, w := range wk.Workouts {
			if w.IsRest() && !includeRest {
				continue
			}
			date, ok := plan.WorkoutDate(wk.WeekNumber, w.Day)
			if !ok {
				continue
			}
			events = append(events, convertWorkout(plan.ID.String(), wk.WeekNumber, w, date))
		}
	}
	return events, nil
}
