package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
)

// DataSource abstracts the plan layer for MCP tools. Both *service.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPlans(ctx context.Context, userID int) ([]storage.PlanSummary, error)
	GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error)
	CreatePlan(ctx context.Context, userID int, req planner.Request) (*models.Plan, error)
	Summary(ctx context.Context, id uuid.UUID, userID int) (*models.PlanSummary, error)
	RecordCheckIn(ctx context.Context, id uuid.UUID, userID int, req service.CheckInRequest) (*service.CheckInResult, error)
	Zones(ctx context.Context, req service.ZonesRequest) (*service.ZonesReport, error)
}

// Compile-time check: *service.Service satisfies DataSource.
var _ DataSource = (*service.Service)(nil)
