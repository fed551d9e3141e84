package results

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/feedback"
	"github.com/claude/runplan/internal/ingest"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

// PlanUpdater applies a change to a stored plan atomically.
type PlanUpdater interface {
	UpdatePlan(ctx context.Context, id uuid.UUID, userID int, fn func(*models.Plan) error) (*models.Plan, error)
}

// Provider applies race result files to stored plans.
type Provider struct {
	store PlanUpdater
	log   *slog.Logger
}

// NewProvider creates a new race result provider.
func NewProvider(store PlanUpdater, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses r and applies every result, in file order, to the plan's
// fitness model. Either all results are applied or none.
func (p *Provider) Ingest(ctx context.Context, planID uuid.UUID, userID int, r io.Reader) (*ingest.Result, error) {
	lines, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	result := &ingest.Result{ResultsReceived: len(lines)}
	if len(lines) == 0 {
		result.Message = "no results in upload"
		return result, nil
	}

	plan, err := p.store.UpdatePlan(ctx, planID, userID, func(plan *models.Plan) error {
		m := zones.FromZones(plan.Zones)
		for _, l := range lines {
			upd, err := feedback.UpdateFitness(plan, m, l.Label, l.Time, l.Source)
			if err != nil {
				return fmt.Errorf("line %d: %w", l.Number, err)
			}
			result.FitnessUpdates = append(result.FitnessUpdates, upd)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ResultsApplied = len(result.FitnessUpdates)
	if plan.Zones != nil {
		result.FitnessScore = plan.Zones.FitnessScore
	}
	result.Message = fmt.Sprintf("applied %d results", result.ResultsApplied)
	p.log.Info("race results applied", "plan", planID, "results", result.ResultsApplied)
	return result, nil
}
