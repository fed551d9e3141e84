// Package ingest holds the shared outcome type of the import providers.
package ingest

import "github.com/claude/runplan/internal/models"

// Result holds the outcome of an ingest operation.
type Result struct {
	ResultsReceived int                    `json:"results_received"`
	ResultsApplied  int                    `json:"results_applied"`
	FitnessUpdates  []models.FitnessUpdate `json:"fitness_updates,omitempty"`
	FitnessScore    *float64               `json:"fitness_score,omitempty"`

	PlansReceived int      `json:"plans_received,omitempty"`
	PlansInserted int      `json:"plans_inserted,omitempty"`
	PlansSkipped  int      `json:"plans_skipped,omitempty"`
	Failed        []string `json:"failed,omitempty"`

	Message string `json:"message,omitempty"`
}
