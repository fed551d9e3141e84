package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile writes the plan as indented JSON.
func SaveFile(path string, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// LoadFile reads a plan written by SaveFile.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return DecodePlan(data)
}

// EncodePlan renders the compact JSON document stored for a plan.
func EncodePlan(p *Plan) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling plan: %w", err)
	}
	return data, nil
}

// DecodePlan parses a JSON plan document and normalizes nil slices so a
// decoded plan compares equal to the one that was encoded.
func DecodePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	p.normalize()
	return &p, nil
}

func (p *Plan) normalize() {
	if p.WeeklyCheckins == nil {
		p.WeeklyCheckins = []WeeklyCheckIn{}
	}
	if p.AdjustmentsLog == nil {
		p.AdjustmentsLog = []AdjustmentLogEntry{}
	}
	for i := range p.Schedule {
		for j := range p.Schedule[i].Workouts {
			w := &p.Schedule[i].Workouts[j]
			if w.Segments == nil {
				w.Segments = []WorkoutSegment{}
			}
		}
	}
}

// Normalize prepares a freshly built plan for encoding.
func (p *Plan) Normalize() { p.normalize() }
