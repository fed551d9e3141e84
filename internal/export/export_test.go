package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/claude/runplan/internal/models"
)

func testPlan(withStart bool) *models.Plan {
	plan := &models.Plan{
		ID:          uuid.MustParse("7f1c9d2e-4b7a-4c1e-9a51-0d2f6c3b8e10"),
		Name:        "Spring 10K",
		Goal:        "10K",
		Level:       "intermediate",
		Weeks:       2,
		DaysPerWeek: 3,
		CreatedDate: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Zones: &models.FitnessZones{
			Method:       models.MethodVDOT,
			FitnessScore: models.Float(45.3),
			Zones: map[string]models.PaceRange{
				models.ZoneEasy:      {MinPace: 320, MaxPace: 360},
				models.ZoneThreshold: {MinPace: 262, MaxPace: 272},
			},
		},
	}
	if withStart {
		start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		plan.StartDate = &start
	}
	for n := 1; n <= 2; n++ {
		wk := models.Week{WeekNumber: n, Phase: "base", PhaseWeek: n}
		for _, day := range models.Weekdays {
			wk.Workouts = append(wk.Workouts, models.Workout{Day: day, Type: models.TypeRest, Description: "Rest day"})
		}
		wk.Workouts[1] = models.Workout{
			Day: "Tuesday", Type: models.TypeTempoRun, DistanceKm: models.Float(10),
			Description: "Sustained effort at threshold pace, with warmup; then cooldown",
			TargetPace:  "4:25", TrainingZone: models.ZoneThreshold, TotalTimeEstimated: "50min",
			Segments: []models.WorkoutSegment{
				{Name: "Warmup", DistanceKm: models.Float(2), PacePerKm: "5:40", Repetitions: 1},
				{Name: "Tempo", DistanceKm: models.Float(6), PacePerKm: "4:25", Repetitions: 1},
			},
		}
		wk.Workouts[3] = models.Workout{Day: "Thursday", Type: models.TypeEasyRun, DistanceKm: models.Float(5), TrainingZone: models.ZoneEasy, Description: "Easy"}
		wk.Workouts[6] = models.Workout{Day: "Sunday", Type: models.TypeLongRun, DistanceKm: models.Float(15), TrainingZone: models.ZoneEasy, Description: "Long"}
		wk.CalculateTotalDistance()
		plan.Schedule = append(plan.Schedule, wk)
	}
	return plan
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testPlan(true)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetOverview, SheetSchedule, SheetVolume, SheetZones}, f.GetSheetList())

	title, err := f.GetCellValue(SheetOverview, "A1")
	require.NoError(t, err)
	assert.Equal(t, "SPRING 10K", title)

	rows, err := f.GetRows(SheetSchedule)
	require.NoError(t, err)
	require.Len(t, rows, 1+14)
	assert.Equal(t, scheduleHeaders, rows[0])
	assert.Equal(t, []string{"1", "base", "Tuesday", "2026-03-03", models.TypeTempoRun, "10", "50min", "4:25", "threshold"}, rows[2][:9])
	assert.Equal(t, "2026-03-08", rows[7][3], "week 1 Sunday")
	assert.Equal(t, "2026-03-09", rows[8][3], "week 2 Monday")

	vol, err := f.GetRows(SheetVolume)
	require.NoError(t, err)
	require.Len(t, vol, 3)
	assert.Equal(t, []string{"2", "base", "30"}, vol[2])

	zoneRows, err := f.GetRows(SheetZones)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "20", "0", "10", "0", "0"}, zoneRows[1])
	assert.Contains(t, zoneRows, []string{"easy", "5:20/km", "6:00/km"})
}

func TestWriteXLSXWithoutStartDate(t *testing.T) {
	plan := testPlan(false)
	plan.Zones = nil

	f, err := Workbook(plan)
	require.NoError(t, err)
	defer f.Close()

	date, err := f.GetCellValue(SheetSchedule, "D2")
	require.NoError(t, err)
	assert.Empty(t, date)
	start, err := f.GetCellValue(SheetOverview, "B7")
	require.NoError(t, err)
	assert.Equal(t, "-", start)
}

func TestWriteICS(t *testing.T) {
	stamp := time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, testPlan(true), stamp))
	out := buf.String()
	unfolded := strings.ReplaceAll(out, "\r\n ", "")

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 6, strings.Count(out, "BEGIN:VEVENT"), "three sessions per week, rest days skipped")
	assert.Contains(t, out, "UID:7f1c9d2e-4b7a-4c1e-9a51-0d2f6c3b8e10-w1-tuesday@runplan\r\n")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260303\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20260304\r\n")
	assert.Contains(t, out, "DTSTAMP:20260220T080000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Long Run 15 km\r\n")
	assert.Contains(t, unfolded, `threshold pace\, with warmup\; then cooldown`)
	assert.Contains(t, unfolded, `\n- Tempo 6 km @ 4:25`)

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), icsLineLimit+1, "line %q", line)
	}
}

func TestWriteICSNeedsStartDate(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteICS(&buf, testPlan(false), time.Now()), ErrNoStartDate)
	assert.Zero(t, buf.Len())
}
