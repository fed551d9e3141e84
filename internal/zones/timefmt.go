package zones

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseTime converts "MM:SS" or "HH:MM:SS" into seconds.
func ParseTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		return nums[0]*60 + nums[1], nil
	}
	return nums[0]*3600 + nums[1]*60 + nums[2], nil
}

// FormatPace renders seconds per km as "M:SS".
func FormatPace(secPerKm float64) string {
	total := int(math.Round(secPerKm))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ParsePace is the inverse of FormatPace. A trailing "/km" is accepted.
func ParsePace(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/km")
	secs, err := ParseTime(s)
	if err != nil || strings.Count(s, ":") != 1 {
		return 0, false
	}
	return float64(secs), true
}

// FormatDuration renders seconds as "H:MM:SS", or "MM:SS" under an hour.
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatMinutes renders whole minutes as "45min", "1h" or "1h15m".
func FormatMinutes(total int) string {
	if total >= 60 {
		h, m := total/60, total%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dmin", total)
}

// TimeForDistance returns seconds to cover distanceKm at the given pace.
func TimeForDistance(distanceKm, secPerKm float64) float64 {
	return distanceKm * secPerKm
}

var kmLabelRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[kK]$`)

var distanceLabels = map[string]float64{
	"5k":            5,
	"10k":           10,
	"15k":           15,
	"half marathon": 21.0975,
	"21k":           21.0975,
	"marathon":      42.195,
	"42k":           42.195,
}

// DistanceKmForLabel maps a race label such as "10K" or "Half Marathon" to
// kilometres. Unknown labels return false.
func DistanceKmForLabel(label string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(label))
	if km, ok := distanceLabels[lower]; ok {
		return km, true
	}
	if m := kmLabelRe.FindStringSubmatch(lower); m != nil {
		km, err := strconv.ParseFloat(m[1], 64)
		if err == nil && km > 0 {
			return km, true
		}
	}
	return 0, false
}
