package models

import "math"

// RoundTo5Km rounds a distance to the nearest multiple of 5 km. Any
// positive distance rounds to at least 5; zero and negative values give 0.
func RoundTo5Km(km float64) float64 {
	if km <= 0 {
		return 0
	}
	r := math.Round(km/5) * 5
	if r < 5 {
		return 5
	}
	return r
}

// RoundTo30Min rounds minutes to a multiple of 30. Exact halves go to the
// odd multiple, so 45 gives 30 and 75 gives 90.
func RoundTo30Min(minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	q := minutes / 30
	f := math.Floor(q)
	switch frac := q - f; {
	case frac > 0.5:
		f++
	case frac == 0.5 && int64(f)%2 == 0:
		f++
	}
	return f * 30
}

// RoundTo5Min rounds minutes to the nearest multiple of 5.
func RoundTo5Min(minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return math.Round(minutes/5) * 5
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
