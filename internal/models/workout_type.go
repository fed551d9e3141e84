package models

import "strings"

// Workout type names.
const (
	TypeEasyRun            = "Easy Run"
	TypeLongRun            = "Long Run"
	TypeProgressiveLongRun = "Progressive Long Run"
	TypeMarathonPaceRun    = "Marathon Pace Run"
	TypeTempoRun           = "Tempo Run"
	TypeIntervalTraining   = "Interval Training"
	TypeShortIntervals     = "Short Intervals"
	TypeLongIntervals      = "Long Intervals"
	TypeRacePaceIntervals  = "Race Pace Intervals"
	TypeFartlek            = "Fartlek"
	TypeRest               = "Rest"
)

// Weekdays in schedule order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var longRunTypes = map[string]bool{
	TypeLongRun:            true,
	TypeProgressiveLongRun: true,
	TypeMarathonPaceRun:    true,
}

var keyWorkoutTypes = map[string]bool{
	TypeLongRun:            true,
	TypeProgressiveLongRun: true,
	TypeMarathonPaceRun:    true,
	TypeTempoRun:           true,
	TypeIntervalTraining:   true,
	TypeShortIntervals:     true,
	TypeLongIntervals:      true,
	TypeRacePaceIntervals:  true,
}

// IsLongRunType reports whether t is one of the long-run variants.
func IsLongRunType(t string) bool { return longRunTypes[t] }

// IsKeyWorkoutType reports whether t is a session that should not land on
// a high-stress day.
func IsKeyWorkoutType(t string) bool { return keyWorkoutTypes[t] }

// IsQualityType reports whether t is an interval or tempo session.
func IsQualityType(t string) bool {
	lower := strings.ToLower(t)
	return strings.Contains(lower, "interval") || strings.Contains(lower, "tempo")
}

// dayMap maps lowercased day names to their canonical English name.
// Covers English and Portuguese, with and without accents.
var dayMap = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",

	"mon": "Monday",
	"tue": "Tuesday",
	"wed": "Wednesday",
	"thu": "Thursday",
	"fri": "Friday",
	"sat": "Saturday",
	"sun": "Sunday",

	"segunda":       "Monday",
	"segunda-feira": "Monday",
	"terca":         "Tuesday",
	"terça":         "Tuesday",
	"terca-feira":   "Tuesday",
	"terça-feira":   "Tuesday",
	"quarta":        "Wednesday",
	"quarta-feira":  "Wednesday",
	"quinta":        "Thursday",
	"quinta-feira":  "Thursday",
	"sexta":         "Friday",
	"sexta-feira":   "Friday",
	"sabado":        "Saturday",
	"sábado":        "Saturday",
	"domingo":       "Sunday",
}

// NormalizeDay maps a possibly-localized day name to its canonical English
// name. Returns the canonical name and true if recognized, or the original
// string and false if unknown.
func NormalizeDay(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := dayMap[lower]; ok {
		return canonical, true
	}
	return raw, false
}

// DayIndex returns the Monday-based index of a day name, or -1.
func DayIndex(day string) int {
	canonical, ok := NormalizeDay(day)
	if !ok {
		return -1
	}
	for i, d := range Weekdays {
		if d == canonical {
			return i
		}
	}
	return -1
}
