package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/models"
)

// TestCurrentWeek verifies week numbering relative to the plan start,
// including days before the start and after the last week.
func TestCurrentWeek(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s := PlanSummary{Weeks: 4, StartDate: &start}

	tests := []struct {
		name string
		day  time.Time
		want int
	}{
		{"before start", start.AddDate(0, 0, -1), 0},
		{"first day", start, 1},
		{"first sunday late", start.Add(6*24*time.Hour + 23*time.Hour), 1},
		{"second monday", start.AddDate(0, 0, 7), 2},
		{"last day", start.AddDate(0, 0, 27), 4},
		{"after plan", start.AddDate(0, 0, 28), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.CurrentWeek(tt.day); got != tt.want {
				t.Errorf("CurrentWeek(%s) = %d, want %d", tt.day.Format(time.DateOnly), got, tt.want)
			}
		})
	}

	if got := (PlanSummary{Weeks: 4}).CurrentWeek(start); got != 0 {
		t.Errorf("CurrentWeek without start date = %d, want 0", got)
	}
}

// TestEncodePlan verifies that a stored document decodes back to the plan
// and that plans without an ID are refused.
func TestEncodePlan(t *testing.T) {
	if _, err := encodePlan(&models.Plan{Name: "no id"}); err == nil {
		t.Fatal("expected error for plan without id")
	}

	plan := &models.Plan{
		ID:    uuid.New(),
		Name:  "Autumn half",
		Goal:  "Half Marathon",
		Weeks: 1,
		Schedule: []models.Week{{
			WeekNumber: 1,
			Workouts:   []models.Workout{{Day: "Monday", Type: models.TypeEasyRun, DistanceKm: models.Float(6)}},
		}},
	}
	doc, err := encodePlan(plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		t.Fatalf("document is not a JSON object: %v", err)
	}
	for _, key := range []string{"id", "schedule", "weekly_checkins", "adjustments_log"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("document misses %q", key)
		}
	}

	back, err := models.DecodePlan(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.ID != plan.ID || back.Schedule[0].Workouts[0].Distance() != 6 {
		t.Errorf("decoded plan = %+v", back)
	}
}
