package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/storage"
)

type zoneInfo struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

var zonesReference = struct {
	Zones     []zoneInfo `json:"zones"`
	Methods   []string   `json:"methods"`
	Distances []string   `json:"distances"`
	Notes     string     `json:"notes"`
}{
	Zones: []zoneInfo{
		{models.ZoneEasy, "Aerobic base, recovery runs and long runs"},
		{models.ZoneMarathon, "Goal marathon pace and steady progression segments"},
		{models.ZoneThreshold, "Tempo and cruise intervals near lactate threshold"},
		{models.ZoneInterval, "VO2max repeats of 2 to 5 minutes"},
		{models.ZoneRepetition, "Short fast repeats and strides for economy"},
	},
	Methods:   []string{models.MethodVDOT, models.MethodCriticalVelocity},
	Distances: []string{"5K", "10K", "15K", "Half Marathon", "Marathon", "<n>k"},
	Notes:     "Paces are seconds per km, shown as M:SS. Critical velocity needs two results over different distances; with one result it falls back to fixed multiples of race pace.",
}

func (h *handlers) plans(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.ds.ListPlans(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []storage.PlanSummary{}
	}
	return jsonContents(req.Params.URI, list)
}

func (h *handlers) zonesReference(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, zonesReference)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
