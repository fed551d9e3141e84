// Package results imports race results and feeds them into a plan's
// fitness model.
package results

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/claude/runplan/internal/zones"
)

// DefaultSource is used when a line leaves the source column empty.
const DefaultSource = "race"

// ErrMalformedLine is returned for lines that are not distance;time[;source].
var ErrMalformedLine = errors.New("malformed result line")

// Line is one parsed race result.
type Line struct {
	Number     int
	Label      string
	DistanceKm float64
	Time       string
	Source     string
}

// Parse reads semicolon-separated race results:
//
//	distance;time;source
//	5K;21:40;parkrun
//	"Half Marathon";1:38:12;city half
//
// Blank lines and lines starting with # are skipped, as is a header line
// whose first column is "distance". Fields may be double-quoted.
func Parse(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	var lines []Line
	n := 0
	for scanner.Scan() {
		n++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		fields := strings.Split(raw, ";")
		for i, f := range fields {
			fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
		}
		if strings.EqualFold(fields[0], "distance") {
			continue
		}
		if len(fields) < 2 || len(fields) > 3 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("line %d: %w: %q", n, ErrMalformedLine, raw)
		}

		km, ok := zones.DistanceKmForLabel(fields[0])
		if !ok {
			return nil, fmt.Errorf("line %d: %w: unknown distance %q", n, ErrMalformedLine, fields[0])
		}
		if _, err := zones.ParseTime(fields[1]); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}

		l := Line{Number: n, Label: fields[0], DistanceKm: km, Time: fields[1], Source: DefaultSource}
		if len(fields) == 3 && fields[2] != "" {
			l.Source = fields[2]
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	return lines, nil
}
