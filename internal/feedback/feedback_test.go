package feedback

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

var at = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

func samplePlan() *models.Plan {
	mk := func(n int) models.Week {
		wk := models.Week{
			WeekNumber: n,
			Notes:      "Phase: Base",
			Workouts: []models.Workout{
				{Day: "Monday", Type: models.TypeRest, DistanceKm: models.Float(0)},
				{Day: "Tuesday", Type: models.TypeTempoRun, DistanceKm: models.Float(10), DurationMinutes: models.Int(55), Description: "Threshold work", TotalMinutes: 55},
				{Day: "Wednesday", Type: models.TypeEasyRun, DistanceKm: models.Float(6), DurationMinutes: models.Int(43), Description: "Easy"},
				{Day: "Thursday", Type: models.TypeShortIntervals, DistanceKm: models.Float(8.3), DurationMinutes: models.Int(47), Description: "Speed session"},
				{Day: "Friday", Type: models.TypeRest},
				{Day: "Saturday", Type: models.TypeEasyRun, DistanceKm: models.Float(5)},
				{Day: "Sunday", Type: models.TypeLongRun, DistanceKm: models.Float(20), DurationMinutes: models.Int(121), Description: "Long"},
			},
		}
		wk.CalculateTotalDistance()
		return wk
	}
	return &models.Plan{Name: "test", Weeks: 2, Schedule: []models.Week{mk(1), mk(2)}}
}

func TestFatigueSignals(t *testing.T) {
	tests := []struct {
		name string
		in   CheckInInput
		want int
	}{
		{"fresh", CheckInInput{Energy: 8, Soreness: 3, SleepHours: 8, Motivation: 8}, 0},
		{"boundaries trip", CheckInInput{Energy: 4, Soreness: 7, SleepHours: 5.9, Motivation: 4}, 4},
		{"boundaries pass", CheckInInput{Energy: 5, Soreness: 6, SleepHours: 6, Motivation: 5}, 0},
		{"two signals", CheckInInput{Energy: 3, Soreness: 8, SleepHours: 7, Motivation: 9}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FatigueSignals(tt.in))
		})
	}
}

func TestRecordCheckInFlaggedReducesNextWeek(t *testing.T) {
	plan := samplePlan()
	ci := RecordCheckIn(plan, CheckInInput{WeekNumber: 1, Energy: 3, Soreness: 8, SleepHours: 5, Motivation: 3}, at)

	assert.Equal(t, 4, ci.FatigueSignals)
	assert.True(t, ci.FatigueFlag)
	assert.Equal(t, at, ci.RecordedAt)
	require.Len(t, plan.WeeklyCheckins, 1)

	next := plan.GetWeek(2)
	ws := next.Workouts
	assert.Equal(t, 0.0, ws[0].Distance(), "rest stays at zero")
	assert.Equal(t, 8.5, ws[1].Distance())
	assert.Equal(t, 49, *ws[1].DurationMinutes, "55 * 0.9 truncates to 49")
	assert.Equal(t, 49, ws[1].TotalMinutes)
	assert.Equal(t, "49min", ws[1].TotalTimeEstimated)
	assert.Equal(t, "(reduced for fatigue) Threshold work", ws[1].Description)
	assert.Equal(t, 5.1, ws[2].Distance())
	assert.Equal(t, "Easy", ws[2].Description)
	assert.Equal(t, 7.1, ws[3].Distance(), "8.3 * 0.85 = 7.055 rounds to 7.1")
	assert.True(t, strings.HasPrefix(ws[3].Description, reducedPrefix))
	assert.Nil(t, ws[4].DistanceKm)
	assert.Equal(t, 4.3, ws[5].Distance())
	assert.Nil(t, ws[5].DurationMinutes)
	assert.Equal(t, 17.0, ws[6].Distance())
	assert.Equal(t, 108, *ws[6].DurationMinutes)
	assert.Equal(t, "Long", ws[6].Description)

	assert.Equal(t, 42.0, next.TotalDistanceKm)
	assert.Contains(t, next.Notes, "Phase: Base\nLoad reduced")

	require.Len(t, plan.AdjustmentsLog, 1)
	entry := plan.AdjustmentsLog[0]
	assert.Equal(t, models.AdjustmentFatigue, entry.Kind)
	assert.Equal(t, 2, entry.WeekNumber)
	assert.Equal(t, 0.85, entry.DistanceFactor)
	assert.Equal(t, 0.9, entry.DurationFactor)

	// The reported week itself is untouched.
	assert.Equal(t, 10.0, plan.GetWeek(1).Workouts[1].Distance())
}

func TestRecordCheckInNotFlagged(t *testing.T) {
	plan := samplePlan()
	ci := RecordCheckIn(plan, CheckInInput{WeekNumber: 1, Energy: 3, Soreness: 2, SleepHours: 8, Motivation: 9}, at)

	assert.Equal(t, 1, ci.FatigueSignals)
	assert.False(t, ci.FatigueFlag)
	assert.Empty(t, plan.AdjustmentsLog)
	assert.Equal(t, 10.0, plan.GetWeek(2).Workouts[1].Distance())
}

func TestRecordCheckInLastWeek(t *testing.T) {
	plan := samplePlan()
	ci := RecordCheckIn(plan, CheckInInput{WeekNumber: 2, Energy: 1, Soreness: 10, SleepHours: 4, Motivation: 1}, at)

	assert.True(t, ci.FatigueFlag)
	assert.Len(t, plan.WeeklyCheckins, 1)
	assert.Empty(t, plan.AdjustmentsLog, "no week 3 to adjust")
}

func TestApplyFatigueAdjustmentTwice(t *testing.T) {
	plan := samplePlan()
	require.True(t, ApplyFatigueAdjustment(plan, 2, at))
	require.True(t, ApplyFatigueAdjustment(plan, 2, at))

	tempo := plan.GetWeek(2).Workouts[1]
	assert.Equal(t, 7.2, tempo.Distance())
	assert.Equal(t, 1, strings.Count(tempo.Description, reducedPrefix))
	assert.Len(t, plan.AdjustmentsLog, 2)
	assert.False(t, ApplyFatigueAdjustment(plan, 9, at))
}

func seg(name string, km float64, minutes, reps int) models.WorkoutSegment {
	s := models.WorkoutSegment{Name: name, Repetitions: reps}
	if km > 0 {
		s.DistanceKm = models.Float(km)
	}
	if minutes > 0 {
		s.DurationMinutes = models.Int(minutes)
	}
	return s
}

func structuredWeek() *models.Plan {
	wk := models.Week{
		WeekNumber: 1,
		Workouts: []models.Workout{
			{Day: "Tuesday", Type: models.TypeTempoRun, DistanceKm: models.Float(10), DurationMinutes: models.Int(65), Segments: []models.WorkoutSegment{
				seg("Warmup", 1.8, 24, 1), seg("Tempo", 6.0, 28, 1), seg("Cooldown", 2.2, 13, 1),
			}},
			{Day: "Thursday", Type: models.TypeShortIntervals, DistanceKm: models.Float(8.3), DurationMinutes: models.Int(60), Segments: []models.WorkoutSegment{
				seg("Warmup", 2.1, 15, 1), seg("Short repeats (400m)", 0.4, 2, 10), seg("Recovery jog", 0, 2, 10), seg("Cooldown", 2.2, 13, 1),
			}},
			{Day: "Friday", Type: models.TypeIntervalTraining, DistanceKm: models.Float(10), DurationMinutes: models.Int(62), Segments: []models.WorkoutSegment{
				seg("Warmup", 2, 14, 1), seg("Intervals", 1.0, 4, 4), seg("Recovery jog", 0, 3, 4), seg("Cooldown", 2, 14, 1),
			}},
			{Day: "Sunday", Type: models.TypeProgressiveLongRun, DistanceKm: models.Float(20), DurationMinutes: models.Int(118), Segments: []models.WorkoutSegment{
				seg("Easy start", 15, 94, 1), seg("Fast finish", 5, 24, 1),
			}},
		},
	}
	return &models.Plan{Name: "structured", Weeks: 1, Schedule: []models.Week{wk}}
}

func TestApplyFatigueAdjustmentScalesSegments(t *testing.T) {
	plan := structuredWeek()
	require.True(t, ApplyFatigueAdjustment(plan, 1, at))
	ws := plan.GetWeek(1).Workouts

	// Sessions whose steps covered the whole distance still do.
	for _, i := range []int{0, 1, 3} {
		assert.InDelta(t, ws[i].Distance(), segmentKm(ws[i].Segments), 0.001, ws[i].Type)
	}
	assert.Equal(t, 8.5, ws[0].Distance())
	assert.Equal(t, []int{21, 25, 11}, segmentMinutes(ws[0].Segments))
	assert.Equal(t, 7.1, ws[1].Distance())
	assert.Equal(t, 0.34, *ws[1].Segments[1].DistanceKm)
	assert.Equal(t, 10, ws[1].Segments[1].Repetitions)
	assert.Equal(t, []int{13, 1, 1, 11}, segmentMinutes(ws[1].Segments))

	// 12.75 and 4.25 both round up, so the last step gives back 0.1 km.
	assert.Equal(t, 12.8, *ws[3].Segments[0].DistanceKm)
	assert.Equal(t, 4.2, *ws[3].Segments[1].DistanceKm)

	// Recovery jogs carry no distance, so interval steps are only scaled.
	iv := ws[2]
	assert.Equal(t, 8.5, iv.Distance())
	assert.Equal(t, 1.7, *iv.Segments[0].DistanceKm)
	assert.Equal(t, 0.85, *iv.Segments[1].DistanceKm)
	assert.Nil(t, iv.Segments[2].DistanceKm)
	assert.Equal(t, 1.7, *iv.Segments[3].DistanceKm)
}

func segmentMinutes(segs []models.WorkoutSegment) []int {
	out := make([]int, 0, len(segs))
	for _, s := range segs {
		out = append(out, *s.DurationMinutes)
	}
	return out
}

func TestValidate(t *testing.T) {
	ok := CheckInInput{WeekNumber: 1, Energy: 5, Soreness: 5, SleepHours: 7, Motivation: 5}
	assert.NoError(t, ok.Validate())

	bad := []CheckInInput{
		{WeekNumber: 0, Energy: 5, Soreness: 5, SleepHours: 7, Motivation: 5},
		{WeekNumber: 1, Energy: 0, Soreness: 5, SleepHours: 7, Motivation: 5},
		{WeekNumber: 1, Energy: 5, Soreness: 11, SleepHours: 7, Motivation: 5},
		{WeekNumber: 1, Energy: 5, Soreness: 5, SleepHours: -1, Motivation: 5},
		{WeekNumber: 1, Energy: 5, Soreness: 5, SleepHours: 7, Motivation: 12},
	}
	for _, in := range bad {
		assert.ErrorIs(t, in.Validate(), ErrInvalidCheckIn, "%+v", in)
	}
}

func TestUpdateFitness(t *testing.T) {
	plan := samplePlan()
	m := zones.NewModel(models.MethodVDOT)
	require.NoError(t, m.AddLabeledResult("10K", 10, "50:00"))
	require.NoError(t, m.CalculateZones(""))
	plan.Zones = m.Snapshot()
	RecordCheckIn(plan, CheckInInput{WeekNumber: 1, Energy: 8, Soreness: 3, SleepHours: 8, Motivation: 8}, at)

	upd, err := UpdateFitness(plan, nil, "5K", "21:30", "parkrun")
	require.NoError(t, err)
	require.NotNil(t, upd.PreviousScore)
	assert.Greater(t, *upd.NewScore, *upd.PreviousScore)

	require.NotNil(t, plan.Zones.FitnessScore)
	assert.Equal(t, *upd.NewScore, *plan.Zones.FitnessScore)
	assert.Len(t, plan.Zones.Results, 2)
	assert.Len(t, plan.FitnessUpdates, 1)
	require.NotNil(t, plan.WeeklyCheckins[0].UpdatedFitnessScore)

	require.Len(t, plan.AdjustmentsLog, 1)
	assert.Equal(t, models.AdjustmentFitnessUpdate, plan.AdjustmentsLog[0].Kind)
	assert.Contains(t, plan.AdjustmentsLog[0].Description, "->")
}

func TestUpdateFitnessErrors(t *testing.T) {
	plan := samplePlan()
	_, err := UpdateFitness(plan, nil, "mile", "6:00", "track")
	assert.Error(t, err)

	_, err = UpdateFitness(plan, nil, "5K", "abc", "track")
	assert.ErrorIs(t, err, zones.ErrInvalidTimeFormat)
	assert.Nil(t, plan.Zones)
	assert.Empty(t, plan.AdjustmentsLog)
}
