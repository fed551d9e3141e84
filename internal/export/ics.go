package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/claude/runplan/internal/models"
)

// ErrNoStartDate is returned when a calendar is requested for a plan
// without a start date.
var ErrNoStartDate = errors.New("plan has no start date")

const icsLineLimit = 75

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// icsWriter emits CRLF-terminated, folded content lines.
type icsWriter struct {
	w   *bufio.Writer
	err error
}

func (iw *icsWriter) line(s string) {
	if iw.err != nil {
		return
	}
	for len(s) > icsLineLimit {
		cut := icsLineLimit
		// Never split a UTF-8 sequence.
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		if _, iw.err = iw.w.WriteString(s[:cut] + "\r\n"); iw.err != nil {
			return
		}
		s = " " + s[cut:]
	}
	_, iw.err = iw.w.WriteString(s + "\r\n")
}

func (iw *icsWriter) prop(name, value string) {
	iw.line(name + ":" + icsEscaper.Replace(value))
}

// WriteICS writes one all-day event per non-rest workout.
func WriteICS(w io.Writer, plan *models.Plan, stamp time.Time) error {
	if plan.StartDate == nil {
		return ErrNoStartDate
	}
	iw := &icsWriter{w: bufio.NewWriter(w)}
	dtstamp := stamp.UTC().Format("20060102T150405Z")

	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:-//runplan//training plan//EN")
	iw.line("CALSCALE:GREGORIAN")
	iw.prop("X-WR-CALNAME", plan.Name)

	for _, wk := range plan.Schedule {
		for _, wo := range wk.Workouts {
			if wo.IsRest() {
				continue
			}
			date, ok := plan.WorkoutDate(wk.WeekNumber, wo.Day)
			if !ok {
				continue
			}
			iw.line("BEGIN:VEVENT")
			iw.line(fmt.Sprintf("UID:%s-w%d-%s@runplan", plan.ID, wk.WeekNumber, strings.ToLower(wo.Day)))
			iw.line("DTSTAMP:" + dtstamp)
			iw.line("DTSTART;VALUE=DATE:" + date.Format("20060102"))
			iw.line("DTEND;VALUE=DATE:" + date.AddDate(0, 0, 1).Format("20060102"))
			iw.prop("SUMMARY", eventSummary(wo))
			iw.prop("DESCRIPTION", eventDescription(wk, wo))
			iw.prop("CATEGORIES", wo.Type)
			iw.line("END:VEVENT")
		}
	}
	iw.line("END:VCALENDAR")

	if iw.err != nil {
		return fmt.Errorf("writing calendar: %w", iw.err)
	}
	return iw.w.Flush()
}

func eventSummary(w models.Workout) string {
	if d := w.Distance(); d > 0 {
		return fmt.Sprintf("%s %g km", w.Type, d)
	}
	return w.Type
}

func eventDescription(wk models.Week, w models.Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %d", wk.WeekNumber)
	if wk.Phase != "" {
		fmt.Fprintf(&b, " (%s)", wk.Phase)
	}
	b.WriteString("\n" + w.Description)
	if w.TargetPace != "" {
		fmt.Fprintf(&b, "\nPace: %s/km", w.TargetPace)
	}
	if w.TotalTimeEstimated != "" {
		fmt.Fprintf(&b, "\nTime: %s", w.TotalTimeEstimated)
	}
	for _, s := range w.Segments {
		b.WriteString("\n- " + s.Name)
		if s.Repetitions > 1 {
			fmt.Fprintf(&b, " %dx", s.Repetitions)
		}
		if s.DistanceKm != nil {
			fmt.Fprintf(&b, " %g km", *s.DistanceKm)
		}
		if s.PacePerKm != "" {
			fmt.Fprintf(&b, " @ %s", s.PacePerKm)
		}
	}
	return b.String()
}
