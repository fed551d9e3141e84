package results

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/runplan/internal/zones"
)

const sampleResults = `distance;time;source
# spring races
5K;21:40;parkrun

"Half Marathon";"1:38:12";"city half"
12k;58:30;
`

func TestParse(t *testing.T) {
	lines, err := Parse(strings.NewReader(sampleResults))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	tests := []struct {
		label  string
		km     float64
		time   string
		source string
		number int
	}{
		{"5K", 5, "21:40", "parkrun", 3},
		{"Half Marathon", 21.0975, "1:38:12", "city half", 5},
		{"12k", 12, "58:30", DefaultSource, 6},
	}
	for i, tt := range tests {
		got := lines[i]
		if got.Label != tt.label || got.Time != tt.time || got.Source != tt.source || got.Number != tt.number {
			t.Errorf("line %d = %+v, want %+v", i, got, tt)
		}
		if got.DistanceKm != tt.km {
			t.Errorf("line %d distance = %v, want %v", i, got.DistanceKm, tt.km)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"single column", "5K\n", ErrMalformedLine},
		{"too many columns", "5K;20:00;a;b\n", ErrMalformedLine},
		{"unknown distance", "mile;6:00\n", ErrMalformedLine},
		{"bad time", "5K;twenty\n", zones.ErrInvalidTimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "line 1:") {
				t.Errorf("error %q does not name the line", err)
			}
		})
	}
}
