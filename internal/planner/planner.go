// Package planner runs the plan pipeline: fitness zones, profile
// adjustments, weekly targets, workout allocation, session preferences,
// agenda resolution and time components.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/claude/runplan/internal/agenda"
	"github.com/claude/runplan/internal/allocator"
	"github.com/claude/runplan/internal/catalog"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/periodization"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/zones"
)

// ErrInvalidRequest is returned for requests that cannot produce a plan.
var ErrInvalidRequest = errors.New("invalid plan request")

// DefaultDaysPerWeek is used when neither the request nor the profile
// sets a day count.
const DefaultDaysPerWeek = 4

// Request describes one plan. Only Goal and Level are required when no
// profile is given.
type Request struct {
	Name        string           `json:"name"`
	Goal        string           `json:"goal"`
	Level       string           `json:"level"`
	Weeks       int              `json:"weeks,omitempty"`
	DaysPerWeek int              `json:"days_per_week,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	Profile     *profile.Profile `json:"profile,omitempty"`

	// MaxWeeklyIncrease overrides the 10% progression cap when positive.
	MaxWeeklyIncrease float64 `json:"max_weekly_increase,omitempty"`

	// Zones skips zone derivation from the profile's race times.
	Zones *zones.Model `json:"-"`
}

// Planner generates plans. It is safe for concurrent use; every call works
// on its own plan.
type Planner struct {
	catalog allocator.Catalog
	log     *slog.Logger
	now     func() time.Time
}

// New returns a planner. A nil catalog selects the built-in one.
func New(c allocator.Catalog, log *slog.Logger) *Planner {
	if c == nil {
		c = catalog.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Planner{catalog: c, log: log, now: time.Now}
}

// BuildZones derives a zone model from the profile's recent race times.
// It returns nil when the profile declares no usable result.
func BuildZones(p *profile.Profile) (*zones.Model, error) {
	if p == nil || len(p.RecentRaceTimes) == 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(p.RecentRaceTimes))
	for label := range p.RecentRaceTimes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	m := zones.NewModel(p.ZonesMethod)
	for _, label := range labels {
		km, ok := zones.DistanceKmForLabel(label)
		if !ok {
			continue
		}
		if err := m.AddLabeledResult(label, km, p.RecentRaceTimes[label]); err != nil {
			return nil, fmt.Errorf("race time for %s: %w", label, err)
		}
	}
	if len(m.Results()) == 0 {
		return nil, nil
	}
	if err := m.CalculateZones(""); err != nil {
		return nil, err
	}
	return m, nil
}

// resolved is a request with every default filled in.
type resolved struct {
	name  string
	goal  string
	level string
	weeks int
	days  int
}

func (pl *Planner) resolve(req Request) (resolved, error) {
	r := resolved{
		name:  strings.TrimSpace(req.Name),
		goal:  req.Goal,
		level: strings.ToLower(strings.TrimSpace(req.Level)),
		weeks: req.Weeks,
		days:  req.DaysPerWeek,
	}
	p := req.Profile

	if r.level == "" && p != nil {
		r.level = p.ExperienceLevel
	}
	if r.level == "" {
		r.level = profile.LevelBeginner
	}
	if r.goal == "" && p != nil && p.MainRace != nil {
		r.goal = p.MainRace.Distance
	}
	if r.goal == "" {
		return r, fmt.Errorf("%w: goal is required", ErrInvalidRequest)
	}
	r.goal = periodization.NormalizeGoal(r.goal)
	if r.name == "" {
		r.name = r.goal + " plan"
	}

	// An explicit request is checked before the profile can lower it.
	if r.days != 0 {
		if _, ok := allocator.Lookup(r.days, allocator.TierBeginner); !ok {
			return r, fmt.Errorf("%w: %d", allocator.ErrUnsupportedDaysPerWeek, r.days)
		}
	}
	if r.days == 0 && p != nil {
		r.days = p.DaysPerWeek
	}
	if r.days == 0 {
		r.days = DefaultDaysPerWeek
	}
	if p != nil {
		if p.ConsistentDaysPerWeek > 0 {
			r.days = min(r.days, p.ConsistentDaysPerWeek)
		}
		if rec := p.RecommendedDaysPerWeek(); rec > 0 {
			r.days = min(r.days, rec)
		}
	}
	if _, ok := allocator.Lookup(r.days, allocator.TierBeginner); !ok {
		return r, fmt.Errorf("%w: %d", allocator.ErrUnsupportedDaysPerWeek, r.days)
	}

	if r.weeks < 0 {
		return r, fmt.Errorf("%w: weeks must be positive", ErrInvalidRequest)
	}
	if r.weeks == 0 {
		r.weeks = periodization.DefaultWeeks(r.goal)
	}
	if p != nil && p.MainRace != nil {
		if race, ok := p.MainRace.ParsedDate(); ok {
			today := pl.now().Truncate(24 * time.Hour)
			if until := int(race.Sub(today).Hours()/24) / 7; until > 0 && until < r.weeks {
				r.weeks = until
			}
		}
	}
	return r, nil
}

// Generate builds a complete plan.
func (pl *Planner) Generate(ctx context.Context, req Request) (*models.Plan, error) {
	r, err := pl.resolve(req)
	if err != nil {
		return nil, err
	}

	z := req.Zones
	if z == nil {
		if z, err = BuildZones(req.Profile); err != nil {
			return nil, fmt.Errorf("building zones: %w", err)
		}
	}

	adj := profile.ComputeAdjustments(req.Profile)
	if req.MaxWeeklyIncrease > 0 {
		adj.MaxWeeklyIncrease = req.MaxWeeklyIncrease
	}

	sched := periodization.NewScheduler(r.goal, r.level, r.weeks, adj)
	alloc := allocator.New(r.goal, r.level, r.weeks, z, pl.catalog)
	prefs := agenda.FromProfile(req.Profile)
	safety := periodization.SafetySections(adj)

	plan := &models.Plan{
		ID:          uuid.New(),
		Name:        r.name,
		Goal:        r.goal,
		Level:       r.level,
		Weeks:       r.weeks,
		DaysPerWeek: r.days,
		StartDate:   req.StartDate,
		CreatedDate: pl.now().UTC(),
		Schedule:    make([]models.Week, 0, r.weeks),
	}
	if z != nil && z.HasZones() {
		plan.Zones = z.Snapshot()
	}

	for w := 1; w <= r.weeks; w++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wk, err := pl.week(w, r.days, sched, alloc, prefs, req.Profile, adj, safety)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", w, err)
		}
		plan.Schedule = append(plan.Schedule, wk)
	}

	pl.log.Info("plan generated",
		"id", plan.ID, "goal", plan.Goal, "level", plan.Level,
		"weeks", plan.Weeks, "days", plan.DaysPerWeek, "zones", plan.Zones != nil)
	return plan, nil
}

func (pl *Planner) week(
	w, days int,
	sched *periodization.Scheduler,
	alloc *allocator.Allocator,
	prefs agenda.Preferences,
	p *profile.Profile,
	adj profile.Adjustments,
	safety []string,
) (models.Week, error) {
	phase, inPhase := sched.Phase(w)
	workouts, err := alloc.Allocate(w, sched.WeeklyTarget(w), phase, days)
	if err != nil {
		return models.Week{}, err
	}
	if p != nil {
		workouts = alloc.ApplySessionPreferences(workouts, p.Prefs(), p.ZoneMix())
	}
	workouts, moves := agenda.Resolve(workouts, prefs, w)
	alloc.ApplyTimeComponents(workouts, p, adj.MaxSessionMinutes)

	notes := sched.Notes(w)
	if len(moves) > 0 {
		notes += "\n\n" + strings.Join(moves, "\n")
	}
	for _, s := range safety {
		notes += "\n\n" + s
	}

	wk := models.Week{
		WeekNumber: w,
		Notes:      notes,
		Phase:      phase,
		PhaseWeek:  inPhase,
		Workouts:   workouts,
	}
	wk.CalculateTotalDistance()
	return wk, nil
}

// GenerateBatch builds several plans concurrently. Results keep the order
// of reqs; the first error cancels the rest.
func (pl *Planner) GenerateBatch(ctx context.Context, reqs []Request, limit int) ([]*models.Plan, error) {
	out := make([]*models.Plan, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			plan, err := pl.Generate(ctx, req)
			if err != nil {
				return fmt.Errorf("plan %d (%s): %w", i, req.Name, err)
			}
			out[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
