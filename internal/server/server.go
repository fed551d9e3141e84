package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/runplan/internal/ingest"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
)

// PlanService is the plan logic behind the handlers. *service.Service
// satisfies it.
type PlanService interface {
	CreatePlan(ctx context.Context, userID int, req planner.Request) (*models.Plan, error)
	CreatePlans(ctx context.Context, userID int, reqs []planner.Request) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.Plan, error)
	ListPlans(ctx context.Context, userID int) ([]storage.PlanSummary, error)
	DeletePlan(ctx context.Context, id uuid.UUID, userID int) error
	Summary(ctx context.Context, id uuid.UUID, userID int) (*models.PlanSummary, error)
	RecordCheckIn(ctx context.Context, id uuid.UUID, userID int, req service.CheckInRequest) (*service.CheckInResult, error)
	ApplyResults(ctx context.Context, id uuid.UUID, userID int, r io.Reader) (*ingest.Result, error)
	Zones(ctx context.Context, req service.ZonesRequest) (*service.ZonesReport, error)
	DueCheckIns(ctx context.Context, day time.Time) ([]service.Reminder, error)
}

var _ PlanService = (*service.Service)(nil)

// Store holds the bookkeeping tables. *storage.DB satisfies it.
type Store interface {
	UserResolver
	Ping(ctx context.Context) error
	GetPlanStats(ctx context.Context, userID int) (*storage.PlanStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	plans  PlanService
	db     Store
	whois  WhoIsClient
	log    *slog.Logger
	apiKey string
	router chi.Router
	now    func() time.Time
}

// New creates a new Server with all routes configured.
func New(plans PlanService, db Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		plans:  plans,
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the local dev user to
// tailnet WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// MountMCP serves an MCP transport under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}

func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil || s.db == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db, s.log)(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/imports", s.handleImportLogs)

	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{id}", s.handleGetPlan)
	s.router.Get("/api/v1/plans/{id}/summary", s.handlePlanSummary)
	s.router.Get("/api/v1/plans/{id}/export.xlsx", s.handleExportXLSX)
	s.router.Get("/api/v1/plans/{id}/export.ics", s.handleExportICS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/zones", s.handleZones)
		r.Post("/api/v1/plans", s.handleCreatePlan)
		r.Post("/api/v1/plans/batch", s.handleCreatePlans)
		r.Delete("/api/v1/plans/{id}", s.handleDeletePlan)
		r.Post("/api/v1/plans/{id}/checkins", s.handleCheckIn)
		r.Post("/api/v1/plans/{id}/results", s.handleResults)
	})
}
