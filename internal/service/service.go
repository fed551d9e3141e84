// Package service ties plan generation, storage and the feedback loop
// together for the HTTP and MCP front ends.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/config"
	"github.com/claude/runplan/internal/feedback"
	"github.com/claude/runplan/internal/ingest"
	"github.com/claude/runplan/internal/ingest/results"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/storage"
	"github.com/claude/runplan/internal/zones"
)

// Store is the persistence the service needs. *storage.DB satisfies it.
type Store interface {
	InsertPlan(ctx context.Context, userID int, plan *models.Plan) (bool, error)
	GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error)
	ListPlans(ctx context.Context, userID int) ([]storage.PlanSummary, error)
	ActivePlans(ctx context.Context, day time.Time) ([]storage.PlanSummary, error)
	DeletePlan(ctx context.Context, id uuid.UUID, userID int) error
	UpdatePlan(ctx context.Context, id uuid.UUID, userID int, fn func(*models.Plan) error) (*models.Plan, error)
}

var _ Store = (*storage.DB)(nil)

// Service implements the plan operations shared by the front ends.
type Service struct {
	store    Store
	planner  *planner.Planner
	results  *results.Provider
	defaults config.PlannerConfig
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Service.
func New(store Store, pl *planner.Planner, defaults config.PlannerConfig, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		planner:  pl,
		results:  results.NewProvider(store, log),
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) withDefaults(req planner.Request) planner.Request {
	if req.DaysPerWeek == 0 && (req.Profile == nil || req.Profile.DaysPerWeek == 0) {
		req.DaysPerWeek = s.defaults.DaysPerWeek
	}
	if req.MaxWeeklyIncrease == 0 {
		req.MaxWeeklyIncrease = s.defaults.MaxWeeklyIncrease
	}
	return req
}

// CreatePlan generates and stores a plan.
func (s *Service) CreatePlan(ctx context.Context, userID int, req planner.Request) (*models.Plan, error) {
	plan, err := s.planner.Generate(ctx, s.withDefaults(req))
	if err != nil {
		return nil, err
	}
	plan.Normalize()
	if _, err := s.store.InsertPlan(ctx, userID, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// CreatePlans generates several plans concurrently and stores them in
// request order. Nothing is stored when any generation fails.
func (s *Service) CreatePlans(ctx context.Context, userID int, reqs []planner.Request) ([]*models.Plan, error) {
	withDefaults := make([]planner.Request, len(reqs))
	for i, req := range reqs {
		withDefaults[i] = s.withDefaults(req)
	}
	out, err := s.planner.GenerateBatch(ctx, withDefaults, s.defaults.BatchLimit)
	if err != nil {
		return nil, err
	}
	for _, plan := range out {
		plan.Normalize()
		if _, err := s.store.InsertPlan(ctx, userID, plan); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetPlan loads one plan.
func (s *Service) GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error) {
	return s.store.GetPlan(ctx, id, userID)
}

// ListPlans lists a user's plans.
func (s *Service) ListPlans(ctx context.Context, userID int) ([]storage.PlanSummary, error) {
	return s.store.ListPlans(ctx, userID)
}

// DeletePlan removes a plan.
func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID, userID int) error {
	return s.store.DeletePlan(ctx, id, userID)
}

// Summary returns the rendering summary of a plan.
func (s *Service) Summary(ctx context.Context, id uuid.UUID, userID int) (*models.PlanSummary, error) {
	plan, err := s.store.GetPlan(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	sum := plan.Summary()
	return &sum, nil
}

// CheckInRequest is a weekly check-in, optionally carrying a new race
// result that re-derives the plan's zones.
type CheckInRequest struct {
	feedback.CheckInInput
	RaceDistance string `json:"race_distance,omitempty"`
	RaceTime     string `json:"race_time,omitempty"`
	RaceSource   string `json:"race_source,omitempty"`
}

// Validate checks the check-in scores and the optional race result.
func (r CheckInRequest) Validate() error {
	if err := r.CheckInInput.Validate(); err != nil {
		return err
	}
	if r.RaceTime == "" && r.RaceDistance == "" {
		return nil
	}
	if _, ok := zones.DistanceKmForLabel(r.RaceDistance); !ok {
		return fmt.Errorf("%w: unknown race_distance %q", feedback.ErrInvalidCheckIn, r.RaceDistance)
	}
	if _, err := zones.ParseTime(r.RaceTime); err != nil {
		return fmt.Errorf("%w: %w", feedback.ErrInvalidCheckIn, err)
	}
	return nil
}

// CheckInResult reports what a check-in changed.
type CheckInResult struct {
	CheckIn       models.WeeklyCheckIn  `json:"checkin"`
	AdjustedWeek  *models.Week          `json:"adjusted_week,omitempty"`
	FitnessUpdate *models.FitnessUpdate `json:"fitness_update,omitempty"`
}

// RecordCheckIn validates and records a check-in. A fatigued check-in
// reduces the following week's load.
func (s *Service) RecordCheckIn(ctx context.Context, id uuid.UUID, userID int, req CheckInRequest) (*CheckInResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var res *CheckInResult
	_, err := s.store.UpdatePlan(ctx, id, userID, func(plan *models.Plan) error {
		var err error
		res, err = ApplyCheckIn(plan, req, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("check-in recorded", "plan", id, "week", req.WeekNumber,
		"fatigue", res.CheckIn.FatigueFlag, "fitness_update", res.FitnessUpdate != nil)
	return res, nil
}

// ApplyCheckIn records a validated check-in on plan. A fatigued check-in
// reduces the following week's load; a race result re-derives the zones.
func ApplyCheckIn(plan *models.Plan, req CheckInRequest, at time.Time) (*CheckInResult, error) {
	if plan.GetWeek(req.WeekNumber) == nil {
		return nil, fmt.Errorf("%w: week %d is outside the %d-week plan", feedback.ErrInvalidCheckIn, req.WeekNumber, plan.Weeks)
	}
	res := &CheckInResult{}
	ci := feedback.RecordCheckIn(plan, req.CheckInInput, at)
	if ci.FatigueFlag {
		if next := plan.GetWeek(req.WeekNumber + 1); next != nil {
			wk := *next
			res.AdjustedWeek = &wk
		}
	}
	if req.RaceTime != "" {
		source := strings.TrimSpace(req.RaceSource)
		if source == "" {
			source = "check-in"
		}
		upd, err := feedback.UpdateFitness(plan, nil, req.RaceDistance, req.RaceTime, source)
		if err != nil {
			return nil, err
		}
		res.FitnessUpdate = &upd
	}
	res.CheckIn = plan.WeeklyCheckins[len(plan.WeeklyCheckins)-1]
	return res, nil
}

// ApplyResults feeds a race result file into a plan's fitness model.
func (s *Service) ApplyResults(ctx context.Context, id uuid.UUID, userID int, r io.Reader) (*ingest.Result, error) {
	return s.results.Ingest(ctx, id, userID, r)
}

// Reminder names a plan whose previous week has no check-in yet.
type Reminder struct {
	Plan    storage.PlanSummary
	DueWeek int
}

// DueCheckIns lists running plans that are missing last week's check-in.
func (s *Service) DueCheckIns(ctx context.Context, day time.Time) ([]Reminder, error) {
	active, err := s.store.ActivePlans(ctx, day)
	if err != nil {
		return nil, err
	}
	var out []Reminder
	for _, p := range active {
		due := p.CurrentWeek(day) - 1
		if due >= 1 && !p.HasCheckIn(due) {
			out = append(out, Reminder{Plan: p, DueWeek: due})
		}
	}
	return out, nil
}
