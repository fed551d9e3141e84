package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/runplan/internal/feedback"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func requirePlanID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("plan_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("plan_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("plan_id is not a valid UUID")
	}
	return id, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// failure turns a data source error into a tool error, logging only the
// unexpected ones.
func (h *handlers) failure(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrPlanNotFound) {
		return mcp.NewToolResultError("plan not found")
	}
	if errors.Is(err, planner.ErrInvalidRequest) || errors.Is(err, feedback.ErrInvalidCheckIn) {
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

// --- Tool definitions ---

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List stored training plans with goal, level, length, start date and number of recorded check-ins."),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Retrieve a complete training plan: every week and workout, check-ins, adjustment log and pace zones."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID (see list_plans)")),
)

var toolGetWeek = mcp.NewTool("get_week",
	mcp.WithDescription("Retrieve one week of a plan with its seven daily workouts, segments and target paces."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
	mcp.WithNumber("week", mcp.Required(), mcp.Description("Week number, starting at 1")),
)

var toolGeneratePlan = mcp.NewTool("generate_plan",
	mcp.WithDescription("Generate and store a new periodised running plan. Race results, when given, set the pace zones used for every workout."),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Goal race (e.g. '5K', '10K', 'Half Marathon', 'Marathon')")),
	mcp.WithString("level", mcp.Description("Experience level. Defaults to the profile's level."), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithString("name", mcp.Description("Plan name. Defaults to '<goal> Training Plan'.")),
	mcp.WithNumber("weeks", mcp.Description("Plan length in weeks. Defaults to the goal's standard length.")),
	mcp.WithNumber("days_per_week", mcp.Description("Running days per week, 3 to 6.")),
	mcp.WithString("start_date", mcp.Description("First day of week 1 (YYYY-MM-DD). Enables dated workouts and calendar export.")),
	mcp.WithNumber("current_weekly_km", mcp.Description("Current weekly running volume in km.")),
	mcp.WithString("race_distance", mcp.Description("Distance of a recent race (e.g. '5K', '10K', '12k').")),
	mcp.WithString("race_time", mcp.Description("Time of that race (MM:SS or HH:MM:SS).")),
	mcp.WithString("profile", mcp.Description("Full athlete profile as YAML or JSON. Other profile parameters are applied on top.")),
)

var toolRecordCheckIn = mcp.NewTool("record_checkin",
	mcp.WithDescription("Record a weekly check-in. Three or more fatigue signals reduce the following week's load. An optional race result re-derives the plan's zones."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
	mcp.WithNumber("week", mcp.Required(), mcp.Description("Week number the check-in reports on")),
	mcp.WithNumber("energy_level", mcp.Required(), mcp.Description("Energy 1-10")),
	mcp.WithNumber("muscle_soreness", mcp.Required(), mcp.Description("Soreness 1-10")),
	mcp.WithNumber("sleep_hours", mcp.Required(), mcp.Description("Average nightly sleep in hours")),
	mcp.WithNumber("motivation", mcp.Required(), mcp.Description("Motivation 1-10")),
	mcp.WithString("notes", mcp.Description("Free-text notes")),
	mcp.WithString("race_distance", mcp.Description("Distance of a race run this week")),
	mcp.WithString("race_time", mcp.Description("Time of that race")),
)

var toolCalculateZones = mcp.NewTool("calculate_zones",
	mcp.WithDescription("Compute pace zones from a race result. The VDOT method also returns a fitness label and predicted race times."),
	mcp.WithString("distance", mcp.Required(), mcp.Description("Race distance label (e.g. '5K', 'Half Marathon')")),
	mcp.WithString("time", mcp.Required(), mcp.Description("Race time (MM:SS or HH:MM:SS)")),
	mcp.WithString("method", mcp.Description("Calculation method. Defaults to 'vdot'."), mcp.Enum(models.MethodVDOT, models.MethodCriticalVelocity)),
)

var toolPlanSummary = mcp.NewTool("plan_summary",
	mcp.WithDescription("Weekly distance totals and km per training zone for a plan."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
)

// --- Tool handlers ---

func (h *handlers) listPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListPlans(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("list_plans", err), nil
	}
	if list == nil {
		list = []storage.PlanSummary{}
	}
	return jsonResult(list)
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requirePlanID(req)
	if bad != nil {
		return bad, nil
	}
	plan, err := h.ds.GetPlan(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("get_plan", err), nil
	}
	return jsonResult(plan)
}

func (h *handlers) getWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requirePlanID(req)
	if bad != nil {
		return bad, nil
	}
	week, err := req.RequireFloat("week")
	if err != nil {
		return mcp.NewToolResultError("week parameter is required"), nil
	}
	plan, err := h.ds.GetPlan(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("get_week", err), nil
	}
	wk := plan.GetWeek(int(week))
	if wk == nil {
		return mcp.NewToolResultError(fmt.Sprintf("week %d is outside the plan (1-%d)", int(week), len(plan.Schedule))), nil
	}

	out := struct {
		*models.Week
		Dates map[string]string `json:"dates,omitempty"`
	}{Week: wk}
	if plan.StartDate != nil {
		out.Dates = map[string]string{}
		for _, w := range wk.Workouts {
			if d, ok := plan.WorkoutDate(wk.WeekNumber, w.Day); ok {
				out.Dates[w.Day] = d.Format("2006-01-02")
			}
		}
	}
	return jsonResult(out)
}

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := req.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("goal parameter is required"), nil
	}

	p := profile.New()
	if doc := req.GetString("profile", ""); doc != "" {
		p, err = profile.Parse([]byte(doc))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if km := req.GetFloat("current_weekly_km", 0); km > 0 {
		p.CurrentWeeklyKm = km
	}
	dist, raceTime := req.GetString("race_distance", ""), req.GetString("race_time", "")
	if (dist == "") != (raceTime == "") {
		return mcp.NewToolResultError("race_distance and race_time must be given together"), nil
	}
	if dist != "" {
		if p.RecentRaceTimes == nil {
			p.RecentRaceTimes = map[string]string{}
		}
		p.RecentRaceTimes[dist] = raceTime
	}

	pr := planner.Request{
		Name:        req.GetString("name", ""),
		Goal:        goal,
		Level:       req.GetString("level", ""),
		Weeks:       int(req.GetFloat("weeks", 0)),
		DaysPerWeek: int(req.GetFloat("days_per_week", 0)),
		Profile:     p,
	}
	if s := req.GetString("start_date", ""); s != "" {
		start, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid start_date: " + err.Error()), nil
		}
		pr.StartDate = &start
	}

	plan, err := h.ds.CreatePlan(ctx, UserIDFromContext(ctx), pr)
	if err != nil {
		return h.failure("generate_plan", err), nil
	}
	return jsonResult(plan)
}

func (h *handlers) recordCheckIn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requirePlanID(req)
	if bad != nil {
		return bad, nil
	}
	ci := service.CheckInRequest{
		CheckInInput: feedback.CheckInInput{
			WeekNumber: int(req.GetFloat("week", 0)),
			Energy:     int(req.GetFloat("energy_level", 0)),
			Soreness:   int(req.GetFloat("muscle_soreness", 0)),
			SleepHours: req.GetFloat("sleep_hours", 0),
			Motivation: int(req.GetFloat("motivation", 0)),
			Notes:      req.GetString("notes", ""),
		},
		RaceDistance: req.GetString("race_distance", ""),
		RaceTime:     req.GetString("race_time", ""),
	}
	if err := ci.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.ds.RecordCheckIn(ctx, id, UserIDFromContext(ctx), ci)
	if err != nil {
		return h.failure("record_checkin", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) calculateZones(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dist, err := req.RequireString("distance")
	if err != nil {
		return mcp.NewToolResultError("distance parameter is required"), nil
	}
	raceTime, err := req.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError("time parameter is required"), nil
	}

	report, err := h.ds.Zones(ctx, service.ZonesRequest{
		Method:  req.GetString("method", models.MethodVDOT),
		Results: []service.RaceResult{{Distance: dist, Time: raceTime}},
	})
	if err != nil {
		return mcp.NewToolResultError("calculating zones: " + err.Error()), nil
	}
	return jsonResult(report)
}

func (h *handlers) planSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requirePlanID(req)
	if bad != nil {
		return bad, nil
	}
	sum, err := h.ds.Summary(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		return h.failure("plan_summary", err), nil
	}
	return jsonResult(sum)
}
