package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("runplan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("runplan training plan server. Compute pace zones from race results, generate periodised running plans, inspect weeks and record weekly check-ins that adapt the plan. All plans are scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetWeek, Handler: h.getWeek},
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
		server.ServerTool{Tool: toolRecordCheckIn, Handler: h.recordCheckIn},
		server.ServerTool{Tool: toolCalculateZones, Handler: h.calculateZones},
		server.ServerTool{Tool: toolPlanSummary, Handler: h.planSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPlans, Handler: h.plans},
		server.ServerResource{Resource: resZonesReference, Handler: h.zonesReference},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resPlans = mcp.NewResource(
	"runplan://plans",
	"Training Plans",
	mcp.WithResourceDescription("All stored training plans with goal, level, start date and check-in count"),
	mcp.WithMIMEType("application/json"),
)

var resZonesReference = mcp.NewResource(
	"runplan://zones_reference",
	"Zones Reference",
	mcp.WithResourceDescription("Training zones, calculation methods and accepted race distance labels"),
	mcp.WithMIMEType("application/json"),
)
