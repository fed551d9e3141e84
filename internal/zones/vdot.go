package zones

import (
	"math"

	"github.com/claude/runplan/internal/models"
)

// Coefficients of the oxygen-cost curve VO2(v) = a + b·v + c·v², with v in
// metres per minute.
const (
	vo2A = -4.60
	vo2B = 0.182258
	vo2C = 0.000104
)

// newtonIterations is the fixed iteration count for inverting VO2(v).
const newtonIterations = 10

// vdotBands maps each zone to its (low, high) fraction of the fitness score.
var vdotBands = map[string][2]float64{
	models.ZoneEasy:       {0.59, 0.74},
	models.ZoneMarathon:   {0.75, 0.84},
	models.ZoneThreshold:  {0.83, 0.88},
	models.ZoneInterval:   {0.95, 1.00},
	models.ZoneRepetition: {1.05, 1.20},
}

// Newton runs a fixed number of Newton-Raphson steps on f starting at x0.
// It stops early if the derivative vanishes.
func Newton(f, df func(float64) float64, x0 float64, iterations int) float64 {
	x := x0
	for range iterations {
		d := df(x)
		if d == 0 {
			break
		}
		x -= f(x) / d
	}
	return x
}

// OxygenCost returns VO2 (ml/kg/min) at velocity v (m/min).
func OxygenCost(v float64) float64 {
	return vo2A + vo2B*v + vo2C*v*v
}

// PercentMax returns the fraction of VO2max sustainable for t minutes.
func PercentMax(t float64) float64 {
	return 0.8 + 0.1894393*math.Exp(-0.012778*t) + 0.2989558*math.Exp(-0.1932605*t)
}

// ScoreForResult returns the VDOT-equivalent score of one performance.
func ScoreForResult(distanceKm float64, timeSeconds int) float64 {
	if distanceKm <= 0 || timeSeconds <= 0 {
		return 0
	}
	minutes := float64(timeSeconds) / 60
	v := distanceKm * 1000 / minutes
	return OxygenCost(v) / PercentMax(minutes)
}

// VelocityForVO2 inverts OxygenCost, returning metres per minute.
func VelocityForVO2(target float64) float64 {
	f := func(v float64) float64 { return OxygenCost(v) - target }
	df := func(v float64) float64 { return vo2B + 2*vo2C*v }
	return Newton(f, df, (target-vo2A)/vo2B, newtonIterations)
}

// paceForFraction returns the pace (sec/km) that demands pct of score.
func paceForFraction(score, pct float64) float64 {
	v := VelocityForVO2(score * pct)
	if v <= 0 {
		return 0
	}
	return 60000 / v
}

// PredictRaceTime estimates the finishing time in seconds for distanceKm at
// the given fitness score. It bisects on time, since the score implied by a
// fixed distance falls monotonically as the time grows.
func PredictRaceTime(score, distanceKm float64) float64 {
	if score <= 0 || distanceKm <= 0 {
		return 0
	}
	lo, hi := 1.0, 3000.0 // minutes
	for range 100 {
		mid := (lo + hi) / 2
		v := distanceKm * 1000 / mid
		if OxygenCost(v)/PercentMax(mid) > score {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2 * 60
}

// ScoreLabel returns a coarse descriptor for a fitness score.
func ScoreLabel(score float64) string {
	switch {
	case score >= 75:
		return "Elite"
	case score >= 60:
		return "Excellent"
	case score >= 50:
		return "Very good"
	case score >= 40:
		return "Good"
	case score >= 30:
		return "Fair"
	default:
		return "Novice"
	}
}
