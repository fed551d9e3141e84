package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/runplan/internal/models"
)

// ErrPlanNotFound is returned when a plan does not exist or belongs to
// another user.
var ErrPlanNotFound = errors.New("plan not found")

// PlanSummary is the listing view of a stored plan.
type PlanSummary struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	Name        string     `json:"name"`
	Goal        string     `json:"goal"`
	Level       string     `json:"level"`
	Weeks       int        `json:"weeks"`
	DaysPerWeek int        `json:"days_per_week"`
	StartDate   *time.Time `json:"start_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CheckIns    int        `json:"checkins"`
	// CheckInWeeks lists the distinct weeks that have a check-in, ascending.
	CheckInWeeks []int `json:"checkin_weeks"`
}

// HasCheckIn reports whether week has a recorded check-in.
func (s PlanSummary) HasCheckIn(week int) bool {
	return slices.Contains(s.CheckInWeeks, week)
}

// CurrentWeek returns the 1-based plan week that contains day, or 0 when
// the plan has no start date or day falls outside the plan.
func (s PlanSummary) CurrentWeek(day time.Time) int {
	if s.StartDate == nil {
		return 0
	}
	start := s.StartDate.UTC().Truncate(24 * time.Hour)
	d := day.UTC().Truncate(24 * time.Hour)
	if d.Before(start) {
		return 0
	}
	week := int(d.Sub(start).Hours()/24)/7 + 1
	if week > s.Weeks {
		return 0
	}
	return week
}

const planSummaryColumns = `id, user_id, name, goal, level, weeks, days_per_week, start_date,
	created_at, updated_at, jsonb_array_length(COALESCE(document->'weekly_checkins', '[]'::jsonb)),
	ARRAY(SELECT DISTINCT (c->>'week_number')::int
	      FROM jsonb_array_elements(COALESCE(document->'weekly_checkins', '[]'::jsonb)) AS c
	      ORDER BY 1)`

func scanPlanSummary(row pgx.Row) (PlanSummary, error) {
	var s PlanSummary
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Goal, &s.Level, &s.Weeks, &s.DaysPerWeek,
		&s.StartDate, &s.CreatedAt, &s.UpdatedAt, &s.CheckIns, &s.CheckInWeeks)
	return s, err
}

func encodePlan(plan *models.Plan) ([]byte, error) {
	if plan.ID == uuid.Nil {
		return nil, fmt.Errorf("plan has no id")
	}
	return models.EncodePlan(plan)
}

// InsertPlan stores a plan for a user. It reports false when a plan with
// the same ID already exists, leaving the stored copy untouched.
func (db *DB) InsertPlan(ctx context.Context, userID int, plan *models.Plan) (bool, error) {
	doc, err := encodePlan(plan)
	if err != nil {
		return false, err
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO plans (id, user_id, name, goal, level, weeks, days_per_week, start_date, created_at, document)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO NOTHING`,
		plan.ID, userID, plan.Name, plan.Goal, plan.Level, plan.Weeks, plan.DaysPerWeek,
		plan.StartDate, plan.CreatedDate, doc,
	)
	if err != nil {
		return false, fmt.Errorf("inserting plan %s: %w", plan.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetPlan loads a plan document.
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT document FROM plans WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan %s: %w", id, err)
	}
	return models.DecodePlan(doc)
}

// ListPlans returns a user's plans, newest first.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]PlanSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+planSummaryColumns+`
		 FROM plans
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []PlanSummary
	for rows.Next() {
		s, err := scanPlanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ActivePlans returns every user's plans whose schedule covers day.
func (db *DB) ActivePlans(ctx context.Context, day time.Time) ([]PlanSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+planSummaryColumns+`
		 FROM plans
		 WHERE start_date IS NOT NULL
		   AND start_date <= $1::date
		   AND start_date + weeks * 7 > $1::date
		 ORDER BY start_date`, day)
	if err != nil {
		return nil, fmt.Errorf("querying active plans: %w", err)
	}
	defer rows.Close()

	var result []PlanSummary
	for rows.Next() {
		s, err := scanPlanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeletePlan removes a plan.
func (db *DB) DeletePlan(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// UpdatePlan applies fn to a plan under a row lock and stores the result.
// Concurrent updates of the same plan run one after another. When fn
// returns an error nothing is written.
func (db *DB) UpdatePlan(ctx context.Context, id uuid.UUID, userID int, fn func(*models.Plan) error) (*models.Plan, error) {
	var plan *models.Plan
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx,
			`SELECT document FROM plans WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlanNotFound
		}
		if err != nil {
			return fmt.Errorf("locking plan %s: %w", id, err)
		}

		if plan, err = models.DecodePlan(doc); err != nil {
			return err
		}
		if err := fn(plan); err != nil {
			return err
		}

		if doc, err = encodePlan(plan); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE plans SET name = $2, start_date = $3, updated_at = NOW(), document = $4
			 WHERE id = $1`,
			id, plan.Name, plan.StartDate, doc)
		if err != nil {
			return fmt.Errorf("updating plan %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
