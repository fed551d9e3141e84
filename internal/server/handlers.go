package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/runplan/internal/allocator"
	"github.com/claude/runplan/internal/export"
	"github.com/claude/runplan/internal/feedback"
	"github.com/claude/runplan/internal/ingest/results"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
	"github.com/claude/runplan/internal/zones"
)

const maxBodyBytes = 1 << 20

// planRequest is the wire form of planner.Request: dates may be plain
// YYYY-MM-DD and the profile goes through profile.Parse so omitted fields
// keep their defaults.
type planRequest struct {
	planner.Request
	StartDate string          `json:"start_date,omitempty"`
	Profile   json.RawMessage `json:"profile,omitempty"`
}

func (pr planRequest) toRequest() (planner.Request, error) {
	req := pr.Request
	if pr.StartDate != "" {
		start, err := parseDate(pr.StartDate)
		if err != nil {
			return req, fmt.Errorf("%w: start_date: %v", planner.ErrInvalidRequest, err)
		}
		req.StartDate = &start
	}
	if len(pr.Profile) > 0 && string(pr.Profile) != "null" {
		p, err := profile.Parse(pr.Profile)
		if err != nil {
			return req, fmt.Errorf("%w: %v", planner.ErrInvalidRequest, err)
		}
		req.Profile = p
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrNoStartDate):
		return http.StatusConflict
	case errors.Is(err, planner.ErrInvalidRequest),
		errors.Is(err, allocator.ErrUnsupportedDaysPerWeek),
		errors.Is(err, zones.ErrInvalidTimeFormat),
		errors.Is(err, zones.ErrNoRaceData),
		errors.Is(err, feedback.ErrInvalidCheckIn),
		errors.Is(err, results.ErrMalformedLine),
		errors.Is(err, service.ErrUnknownDistance):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func planID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	var req service.ZonesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	report, err := s.plans.Zones(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := body.toRequest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.plans.CreatePlan(r.Context(), userIDFromContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/plans/"+plan.ID.String())
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleCreatePlans(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Plans []planRequest `json:"plans"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Plans) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plans must not be empty"})
		return
	}
	reqs := make([]planner.Request, len(body.Plans))
	for i, pr := range body.Plans {
		req, err := pr.toRequest()
		if err != nil {
			s.writeError(w, r, fmt.Errorf("plan %d: %w", i, err))
			return
		}
		reqs[i] = req
	}

	uid := userIDFromContext(r)
	start := time.Now()
	plans, err := s.plans.CreatePlans(r.Context(), uid, reqs)
	s.logImport(uid, storage.ImportLog{
		Source:        storage.SourcePlanFiles,
		PlansReceived: len(reqs),
		PlansInserted: len(plans),
	}, err, start)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plans)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	list, err := s.plans.ListPlans(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []storage.PlanSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	plan, err := s.plans.GetPlan(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	if err := s.plans.DeletePlan(r.Context(), id, userIDFromContext(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlanSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	sum, err := s.plans.Summary(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	var req service.CheckInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.plans.RecordCheckIn(r.Context(), id, userIDFromContext(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	start := time.Now()
	res, err := s.plans.ApplyResults(r.Context(), id, uid, http.MaxBytesReader(w, r.Body, maxBodyBytes))

	entry := storage.ImportLog{Source: storage.SourceRaceResults, PlanID: &id}
	if res != nil {
		entry.ResultsReceived = res.ResultsReceived
		entry.ResultsApplied = res.ResultsApplied
	}
	s.logImport(uid, entry, err, start)

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func attachmentName(plan *models.Plan, ext string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(plan.Name), "-"), "-")
	if name == "" {
		name = "plan"
	}
	return fmt.Sprintf("attachment; filename=%q", name+"."+ext)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	plan, err := s.plans.GetPlan(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, plan); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachmentName(plan, "xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	id, ok := planID(w, r)
	if !ok {
		return
	}
	plan, err := s.plans.GetPlan(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteICS(&buf, plan, s.now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", attachmentName(plan, "ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
