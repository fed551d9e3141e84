package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

// ErrUnknownDistance is returned for race results over an unrecognised distance.
var ErrUnknownDistance = errors.New("unknown race distance")

// RaceResult is a race time over a labelled distance ("5K", "Half Marathon", "12k").
type RaceResult struct {
	Distance string `json:"distance"`
	Time     string `json:"time"`
}

// ZonesRequest asks for pace zones from one or more race results.
type ZonesRequest struct {
	Method  string       `json:"method,omitempty"`
	Results []RaceResult `json:"results"`
}

// ZonesReport is the computed fitness picture.
type ZonesReport struct {
	Zones       *models.FitnessZones `json:"zones"`
	Label       string               `json:"label,omitempty"`
	Paces       map[string]string    `json:"paces"`
	Predictions map[string]string    `json:"predictions,omitempty"`
}

var predictionDistances = []string{"5K", "10K", "Half Marathon", "Marathon"}

// Zones computes pace zones for the API front ends.
func (s *Service) Zones(_ context.Context, req ZonesRequest) (*ZonesReport, error) {
	return ComputeZones(req)
}

// ComputeZones computes pace zones, zone midpoints and, for the VDOT
// method, predicted race times.
func ComputeZones(req ZonesRequest) (*ZonesReport, error) {
	m := zones.NewModel(req.Method)
	for _, r := range req.Results {
		km, ok := zones.DistanceKmForLabel(r.Distance)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDistance, r.Distance)
		}
		if err := m.AddLabeledResult(r.Distance, km, r.Time); err != nil {
			return nil, err
		}
	}
	if err := m.CalculateZones(""); err != nil {
		return nil, err
	}

	report := &ZonesReport{Zones: m.Snapshot(), Paces: map[string]string{}}
	for _, z := range models.ZoneOrder {
		if p, err := m.ZonePaceString(z, ""); err == nil {
			report.Paces[z] = p
		}
	}
	if score, ok := m.FitnessScore(); ok && m.Method() == models.MethodVDOT {
		report.Label = zones.ScoreLabel(score)
		report.Predictions = make(map[string]string, len(predictionDistances))
		for _, label := range predictionDistances {
			km, _ := zones.DistanceKmForLabel(label)
			report.Predictions[label] = zones.FormatDuration(zones.PredictRaceTime(score, km))
		}
	}
	return report, nil
}
