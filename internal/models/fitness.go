package models

import "time"

// Zone names, slowest to fastest.
const (
	ZoneEasy       = "easy"
	ZoneMarathon   = "marathon"
	ZoneThreshold  = "threshold"
	ZoneInterval   = "interval"
	ZoneRepetition = "repetition"
)

// ZoneOrder lists zones from slowest to fastest.
var ZoneOrder = []string{ZoneEasy, ZoneMarathon, ZoneThreshold, ZoneInterval, ZoneRepetition}

// Zone calculation methods.
const (
	MethodVDOT             = "vdot"
	MethodCriticalVelocity = "critical_velocity"
)

// RacePerformance is a single race or time-trial result.
type RacePerformance struct {
	Label       string  `json:"label,omitempty"`
	DistanceKm  float64 `json:"distance_km"`
	TimeSeconds int     `json:"time_seconds"`
}

// PacePerKm returns the average pace in seconds per kilometre.
func (r RacePerformance) PacePerKm() float64 {
	if r.DistanceKm <= 0 {
		return 0
	}
	return float64(r.TimeSeconds) / r.DistanceKm
}

// PaceRange is a zone's pace band in seconds per km. MinPace is the faster
// (numerically smaller) end.
type PaceRange struct {
	MinPace float64 `json:"min_pace"`
	MaxPace float64 `json:"max_pace"`
}

// Middle returns the midpoint of the band.
func (r PaceRange) Middle() float64 {
	return (r.MinPace + r.MaxPace) / 2
}

// FitnessZones is the output of a zone calculation.
type FitnessZones struct {
	Method       string               `json:"method"`
	FitnessScore *float64             `json:"fitness_score"`
	Zones        map[string]PaceRange `json:"zones"`
	Results      []RacePerformance    `json:"results,omitempty"`
}

// FitnessUpdate records a reference-result change and its effect on the
// fitness score.
type FitnessUpdate struct {
	Timestamp     time.Time `json:"timestamp"`
	DistanceLabel string    `json:"distance_label"`
	Time          string    `json:"time"`
	Source        string    `json:"source"`
	PreviousScore *float64  `json:"previous_vdot"`
	NewScore      *float64  `json:"new_vdot"`
}
