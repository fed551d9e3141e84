package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListPlans(ctx context.Context, userID int) ([]storage.PlanSummary, error) {
	args := m.Called(userID)
	list, _ := args.Get(0).([]storage.PlanSummary)
	return list, args.Error(1)
}

func (m *mockSource) GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error) {
	args := m.Called(id, userID)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *mockSource) CreatePlan(ctx context.Context, userID int, req planner.Request) (*models.Plan, error) {
	args := m.Called(userID, req)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *mockSource) Summary(ctx context.Context, id uuid.UUID, userID int) (*models.PlanSummary, error) {
	args := m.Called(id, userID)
	sum, _ := args.Get(0).(*models.PlanSummary)
	return sum, args.Error(1)
}

func (m *mockSource) RecordCheckIn(ctx context.Context, id uuid.UUID, userID int, req service.CheckInRequest) (*service.CheckInResult, error) {
	args := m.Called(id, userID, req)
	res, _ := args.Get(0).(*service.CheckInResult)
	return res, args.Error(1)
}

func (m *mockSource) Zones(ctx context.Context, req service.ZonesRequest) (*service.ZonesReport, error) {
	args := m.Called(req)
	rep, _ := args.Get(0).(*service.ZonesReport)
	return rep, args.Error(1)
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("result has no text content")
	return ""
}

func weekPlan() *models.Plan {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	wk := models.Week{WeekNumber: 1, Phase: "base"}
	for _, day := range models.Weekdays {
		wk.Workouts = append(wk.Workouts, models.Workout{Day: day, Type: models.TypeRest, Segments: []models.WorkoutSegment{}})
	}
	return &models.Plan{ID: uuid.New(), Name: "5K Training Plan", Weeks: 1, StartDate: &start, Schedule: []models.Week{wk}}
}

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

func TestParseFlexTime(t *testing.T) {
	d, err := parseFlexTime("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	d, err = parseFlexTime("2026-06-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = parseFlexTime("next week")
	assert.Error(t, err)
}

func TestNewRegistersServer(t *testing.T) {
	assert.NotNil(t, New(&mockSource{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestGetWeek(t *testing.T) {
	ds := &mockSource{}
	plan := weekPlan()
	ds.On("GetPlan", plan.ID, 3).Return(plan, nil)
	h := newHandlers(ds)
	ctx := WithUserID(context.Background(), 3)

	res, err := h.getWeek(ctx, callTool("get_week", map[string]any{"plan_id": plan.ID.String(), "week": float64(1)}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		WeekNumber int               `json:"week_number"`
		Workouts   []models.Workout  `json:"workouts"`
		Dates      map[string]string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 1, out.WeekNumber)
	assert.Len(t, out.Workouts, 7)
	assert.Equal(t, "2026-03-04", out.Dates["Wednesday"])

	res, err = h.getWeek(ctx, callTool("get_week", map[string]any{"plan_id": plan.ID.String(), "week": float64(9)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "outside the plan")
}

func TestPlanToolsValidateID(t *testing.T) {
	h := newHandlers(&mockSource{})
	for _, args := range []map[string]any{{}, {"plan_id": "nope"}} {
		res, err := h.getPlan(context.Background(), callTool("get_plan", args))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	}
}

func TestPlanNotFound(t *testing.T) {
	ds := &mockSource{}
	id := uuid.New()
	ds.On("Summary", id, 1).Return(nil, storage.ErrPlanNotFound)
	res, err := newHandlers(ds).planSummary(context.Background(), callTool("plan_summary", map[string]any{"plan_id": id.String()}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "plan not found", resultText(t, res))
}

func TestGeneratePlan(t *testing.T) {
	ds := &mockSource{}
	plan := weekPlan()
	ds.On("CreatePlan", 1, mock.MatchedBy(func(req planner.Request) bool {
		return req.Goal == "10K" && req.Weeks == 10 && req.DaysPerWeek == 4 &&
			req.StartDate != nil && req.StartDate.Day() == 2 &&
			req.Profile.CurrentWeeklyKm == 30 &&
			req.Profile.RecentRaceTimes["5K"] == "21:00" &&
			req.Profile.HoursPerDay == 1.5
	})).Return(plan, nil)
	h := newHandlers(ds)

	res, err := h.generatePlan(context.Background(), callTool("generate_plan", map[string]any{
		"goal":              "10K",
		"weeks":             float64(10),
		"days_per_week":     float64(4),
		"start_date":        "2026-03-02",
		"current_weekly_km": float64(30),
		"race_distance":     "5K",
		"race_time":         "21:00",
		"profile":           "hours_per_day: 1.5\n",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), plan.ID.String())
	ds.AssertExpectations(t)

	res, err = h.generatePlan(context.Background(), callTool("generate_plan", map[string]any{"goal": "10K", "race_distance": "5K"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.generatePlan(context.Background(), callTool("generate_plan", map[string]any{"goal": "10K", "start_date": "soon"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGeneratePlanInvalidRequest(t *testing.T) {
	ds := &mockSource{}
	ds.On("CreatePlan", 1, mock.Anything).Return(nil, errors.Join(planner.ErrInvalidRequest, errors.New("unknown goal")))
	res, err := newHandlers(ds).generatePlan(context.Background(), callTool("generate_plan", map[string]any{"goal": "ultra"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown goal")
}

func TestRecordCheckIn(t *testing.T) {
	ds := &mockSource{}
	id := uuid.New()
	ds.On("RecordCheckIn", id, 1, mock.MatchedBy(func(req service.CheckInRequest) bool {
		return req.WeekNumber == 2 && req.Energy == 3 && req.Soreness == 8 && req.SleepHours == 5.5
	})).Return(&service.CheckInResult{CheckIn: models.WeeklyCheckIn{WeekNumber: 2, FatigueSignals: 3, FatigueFlag: true}}, nil)
	h := newHandlers(ds)

	args := map[string]any{
		"plan_id":         id.String(),
		"week":            float64(2),
		"energy_level":    float64(3),
		"muscle_soreness": float64(8),
		"sleep_hours":     5.5,
		"motivation":      float64(6),
	}
	res, err := h.recordCheckIn(context.Background(), callTool("record_checkin", args))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.True(t, strings.Contains(resultText(t, res), `"fatigue_flag":true`))

	args["energy_level"] = float64(11)
	res, err = h.recordCheckIn(context.Background(), callTool("record_checkin", args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	ds.AssertNumberOfCalls(t, "RecordCheckIn", 1)
}

func TestCalculateZones(t *testing.T) {
	ds := &mockSource{}
	ds.On("Zones", service.ZonesRequest{
		Method:  models.MethodVDOT,
		Results: []service.RaceResult{{Distance: "5K", Time: "20:00"}},
	}).Return(&service.ZonesReport{Label: "Good"}, nil)

	res, err := newHandlers(ds).calculateZones(context.Background(), callTool("calculate_zones", map[string]any{"distance": "5K", "time": "20:00"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Good")
}

func TestResources(t *testing.T) {
	ds := &mockSource{}
	ds.On("ListPlans", 1).Return(nil, nil)
	h := newHandlers(ds)

	var req mcp.ReadResourceRequest
	req.Params.URI = "runplan://plans"
	contents, err := h.plans(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "[]", text.Text)

	req.Params.URI = "runplan://zones_reference"
	contents, err = h.zonesReference(context.Background(), req)
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, `"critical_velocity"`)
	assert.Equal(t, "runplan://zones_reference", text.URI)
}
