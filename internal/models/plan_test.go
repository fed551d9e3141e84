package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func samplePlan() *Plan {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	p := &Plan{
		ID:          uuid.MustParse("6f1c1b9a-3c55-4d7e-9a43-1e0b8f0c2d11"),
		Name:        "Spring 10K",
		Goal:        "10K",
		Level:       "intermediate",
		Weeks:       1,
		DaysPerWeek: 3,
		StartDate:   &start,
		CreatedDate: time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
		Schedule: []Week{{
			WeekNumber: 1,
			Notes:      "Phase: Base (week 1/4)",
			Phase:      "base",
			PhaseWeek:  1,
			Workouts: []Workout{
				{Day: "Monday", Type: TypeRest, Description: "Recovery day"},
				{Day: "Tuesday", Type: TypeEasyRun, DistanceKm: Float(5), TrainingZone: ZoneEasy},
				{Day: "Wednesday", Type: TypeRest},
				{
					Day: "Thursday", Type: TypeTempoRun, DistanceKm: Float(10), TrainingZone: ZoneThreshold,
					Segments: []WorkoutSegment{
						{Name: "Warmup", DistanceKm: Float(1.8), DurationMinutes: Int(10), PacePerKm: "6:00", Repetitions: 1},
						{Name: "Tempo", DistanceKm: Float(6), DurationMinutes: Int(27), PacePerKm: "4:30", Repetitions: 1},
					},
				},
				{Day: "Friday", Type: TypeRest},
				{Day: "Saturday", Type: TypeLongRun, DistanceKm: Float(15), TrainingZone: ZoneEasy},
				{Day: "Sunday", Type: TypeRest},
			},
		}},
		WeeklyCheckins: []WeeklyCheckIn{},
		AdjustmentsLog: []AdjustmentLogEntry{},
	}
	p.Normalize()
	p.Schedule[0].CalculateTotalDistance()
	return p
}

// TestSaveLoadRoundTrip verifies a saved plan loads back into an identical
// week/workout/segment graph.
func TestSaveLoadRoundTrip(t *testing.T) {
	p := samplePlan()
	path := filepath.Join(t.TempDir(), "plan.json")

	if err := SaveFile(path, p); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateTotalDistance(t *testing.T) {
	p := samplePlan()
	if got := p.Schedule[0].TotalDistanceKm; got != 30 {
		t.Errorf("total = %v, want 30", got)
	}
}

// TestZoneDistributionSkipsRest verifies rest days and zero-distance
// workouts are excluded and every zone key is reported.
func TestZoneDistributionSkipsRest(t *testing.T) {
	p := samplePlan()
	p.Schedule[0].Workouts[6] = Workout{Day: "Sunday", Type: TypeEasyRun, DistanceKm: Float(0), TrainingZone: ZoneEasy}

	dist := p.ZoneDistribution()
	if len(dist) != 1 {
		t.Fatalf("len = %d, want 1", len(dist))
	}
	z := dist[0].Zones
	if len(z) != len(ZoneOrder) {
		t.Errorf("zone keys = %d, want %d", len(z), len(ZoneOrder))
	}
	if z[ZoneEasy] != 20 {
		t.Errorf("easy = %v, want 20", z[ZoneEasy])
	}
	if z[ZoneThreshold] != 10 {
		t.Errorf("threshold = %v, want 10", z[ZoneThreshold])
	}
	if z[ZoneInterval] != 0 {
		t.Errorf("interval = %v, want 0", z[ZoneInterval])
	}
}

func TestSummary(t *testing.T) {
	s := samplePlan().Summary()
	if s.TotalDistanceKm != 30 {
		t.Errorf("total = %v, want 30", s.TotalDistanceKm)
	}
	if len(s.WeeklyTotals) != 1 || s.WeeklyTotals[0].Phase != "base" {
		t.Errorf("weekly totals = %+v", s.WeeklyTotals)
	}
}

func TestWorkoutDate(t *testing.T) {
	p := samplePlan()
	d, ok := p.WorkoutDate(2, "quinta")
	if !ok {
		t.Fatal("expected a date")
	}
	want := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("date = %v, want %v", d, want)
	}
	if rd := p.RaceDate(); rd == nil || !rd.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("race date = %v", rd)
	}
}

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"monday", "Monday", true},
		{" Sábado ", "Saturday", true},
		{"terça-feira", "Tuesday", true},
		{"Sun", "Sunday", true},
		{"someday", "someday", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDay(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeDay(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
