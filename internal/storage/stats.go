package storage

import (
	"context"
	"fmt"
	"time"
)

// PlanStats holds aggregate statistics about a user's plans.
type PlanStats struct {
	TotalPlans     int64      `json:"total_plans"`
	TotalWeeks     int64      `json:"total_weeks"`
	TotalCheckIns  int64      `json:"total_checkins"`
	FatigueFlags   int64      `json:"fatigue_flags"`
	FitnessUpdates int64      `json:"fitness_updates"`
	EarliestStart  *time.Time `json:"earliest_start"`
	LatestStart    *time.Time `json:"latest_start"`
	PlansByGoal    []GoalStat `json:"plans_by_goal"`
}

// GoalStat holds summary stats for a single race goal.
type GoalStat struct {
	Goal         string  `json:"goal"`
	Count        int64   `json:"count"`
	AverageWeeks float64 `json:"average_weeks"`
}

// GetPlanStats returns aggregate statistics for a user's stored plans.
func (db *DB) GetPlanStats(ctx context.Context, userID int) (*PlanStats, error) {
	stats := &PlanStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(weeks), 0), MIN(start_date), MAX(start_date)
		 FROM plans WHERE user_id = $1`, userID,
	).Scan(&stats.TotalPlans, &stats.TotalWeeks, &stats.EarliestStart, &stats.LatestStart)
	if err != nil {
		return nil, fmt.Errorf("counting plans: %w", err)
	}

	// Check-ins live inside the plan documents.
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE (c->>'fatigue_flag')::boolean)
		 FROM plans, jsonb_array_elements(COALESCE(document->'weekly_checkins', '[]'::jsonb)) AS c
		 WHERE user_id = $1`, userID,
	).Scan(&stats.TotalCheckIns, &stats.FatigueFlags)
	if err != nil {
		return nil, fmt.Errorf("counting check-ins: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(jsonb_array_length(COALESCE(document->'fitness_updates', '[]'::jsonb))), 0)
		 FROM plans WHERE user_id = $1`, userID,
	).Scan(&stats.FitnessUpdates)
	if err != nil {
		return nil, fmt.Errorf("counting fitness updates: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT goal, COUNT(*), AVG(weeks)::float8
		 FROM plans
		 WHERE user_id = $1
		 GROUP BY goal
		 ORDER BY COUNT(*) DESC, goal`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans by goal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s GoalStat
		if err := rows.Scan(&s.Goal, &s.Count, &s.AverageWeeks); err != nil {
			return nil, fmt.Errorf("scanning goal stat: %w", err)
		}
		stats.PlansByGoal = append(stats.PlansByGoal, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
