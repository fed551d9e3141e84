package zones

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/claude/runplan/internal/models"
)

// Pace targets within a zone.
const (
	TargetMin    = "min"
	TargetMax    = "max"
	TargetMiddle = "middle"
)

// minCVTimeGap is the smallest time difference (seconds) between two
// results for a critical-velocity estimate.
const minCVTimeGap = 60

// cvMultiples are zone bands as multiples of the critical-velocity pace.
var cvMultiples = map[string][2]float64{
	models.ZoneEasy:       {1.25, 1.45},
	models.ZoneMarathon:   {1.10, 1.25},
	models.ZoneThreshold:  {0.98, 1.05},
	models.ZoneInterval:   {0.92, 0.98},
	models.ZoneRepetition: {0.85, 0.92},
}

// singleResultMultiples are zone bands as multiples of one result's own pace.
var singleResultMultiples = map[string][2]float64{
	models.ZoneEasy:       {1.15, 1.35},
	models.ZoneMarathon:   {1.05, 1.15},
	models.ZoneThreshold:  {0.95, 1.03},
	models.ZoneInterval:   {0.90, 0.95},
	models.ZoneRepetition: {0.85, 0.90},
}

// Model holds race results and the zones derived from them. Results are
// append-only; zones are recalculated on demand.
type Model struct {
	method  string
	results []models.RacePerformance
	zones   map[string]models.PaceRange
	score   *float64
	updates []models.FitnessUpdate
	now     func() time.Time
}

// NewModel creates an empty model for the given method. "jack_daniels" is
// accepted as an alias for vdot; anything unrecognized falls back to vdot.
func NewModel(method string) *Model {
	return &Model{method: NormalizeMethod(method), now: time.Now}
}

// FromZones rebuilds a model from a stored zone snapshot.
func FromZones(fz *models.FitnessZones) *Model {
	if fz == nil {
		return NewModel(models.MethodVDOT)
	}
	m := NewModel(fz.Method)
	m.results = append(m.results, fz.Results...)
	if len(fz.Zones) > 0 {
		m.zones = make(map[string]models.PaceRange, len(fz.Zones))
		for k, v := range fz.Zones {
			m.zones[k] = v
		}
	}
	if fz.FitnessScore != nil {
		s := *fz.FitnessScore
		m.score = &s
	}
	return m
}

// NormalizeMethod maps user-facing method names to the canonical constants.
func NormalizeMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "critical_velocity", "cv", "critical-velocity":
		return models.MethodCriticalVelocity
	default:
		return models.MethodVDOT
	}
}

// Method returns the calculation method.
func (m *Model) Method() string { return m.method }

// Results returns a copy of the stored results.
func (m *Model) Results() []models.RacePerformance {
	return append([]models.RacePerformance(nil), m.results...)
}

// AddResult parses timeStr and stores the performance.
func (m *Model) AddResult(distanceKm float64, timeStr string) error {
	return m.AddLabeledResult("", distanceKm, timeStr)
}

// AddLabeledResult is AddResult with a descriptive label (e.g. "10K").
func (m *Model) AddLabeledResult(label string, distanceKm float64, timeStr string) error {
	secs, err := ParseTime(timeStr)
	if err != nil {
		return err
	}
	if distanceKm <= 0 || secs <= 0 {
		return fmt.Errorf("race result must have positive distance and time (got %.3f km, %ds)", distanceKm, secs)
	}
	m.results = append(m.results, models.RacePerformance{Label: label, DistanceKm: distanceKm, TimeSeconds: secs})
	return nil
}

// CalculateZones recomputes the fitness score and pace zones. An empty
// method keeps the model's current one.
func (m *Model) CalculateZones(method string) error {
	if method != "" {
		m.method = NormalizeMethod(method)
	}
	if len(m.results) == 0 {
		return ErrNoRaceData
	}
	switch m.method {
	case models.MethodCriticalVelocity:
		m.calculateCV()
	default:
		m.calculateVDOT()
	}
	return nil
}

func (m *Model) calculateVDOT() {
	best := 0.0
	for _, r := range m.results {
		if s := ScoreForResult(r.DistanceKm, r.TimeSeconds); s > best {
			best = s
		}
	}
	m.score = &best

	m.zones = make(map[string]models.PaceRange, len(vdotBands))
	for zone, band := range vdotBands {
		m.zones[zone] = models.PaceRange{
			MinPace: paceForFraction(best, band[1]),
			MaxPace: paceForFraction(best, band[0]),
		}
	}
}

func (m *Model) calculateCV() {
	sorted := append([]models.RacePerformance(nil), m.results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PacePerKm() < sorted[j].PacePerKm()
	})
	fastest, slowest := sorted[0], sorted[len(sorted)-1]

	// The score is still reported so plans can show a comparable number.
	best := 0.0
	for _, r := range m.results {
		if s := ScoreForResult(r.DistanceKm, r.TimeSeconds); s > best {
			best = s
		}
	}
	m.score = &best

	basePace := fastest.PacePerKm()
	multiples := singleResultMultiples

	dt := float64(slowest.TimeSeconds - fastest.TimeSeconds)
	if len(sorted) >= 2 && math.Abs(dt) > minCVTimeGap {
		cv := (slowest.DistanceKm - fastest.DistanceKm) * 1000 / dt
		if cv > 0 {
			basePace = 1000 / cv
			multiples = cvMultiples
		}
	}

	m.zones = make(map[string]models.PaceRange, len(multiples))
	for zone, mul := range multiples {
		m.zones[zone] = models.PaceRange{MinPace: basePace * mul[0], MaxPace: basePace * mul[1]}
	}
}

// FitnessScore returns the current score, if calculated.
func (m *Model) FitnessScore() (float64, bool) {
	if m.score == nil {
		return 0, false
	}
	return *m.score, true
}

// HasZones reports whether zones have been calculated.
func (m *Model) HasZones() bool { return len(m.zones) > 0 }

// Zone returns the pace band for a zone.
func (m *Model) Zone(zone string) (models.PaceRange, error) {
	r, ok := m.zones[zone]
	if !ok {
		return models.PaceRange{}, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return r, nil
}

// ZonePace returns the requested pace (sec/km) within a zone. Unknown
// targets are treated as middle.
func (m *Model) ZonePace(zone, target string) (float64, error) {
	r, err := m.Zone(zone)
	if err != nil {
		return 0, err
	}
	switch target {
	case TargetMin:
		return r.MinPace, nil
	case TargetMax:
		return r.MaxPace, nil
	default:
		return r.Middle(), nil
	}
}

// ZonePaceString is ZonePace formatted as "M:SS".
func (m *Model) ZonePaceString(zone, target string) (string, error) {
	p, err := m.ZonePace(zone, target)
	if err != nil {
		return "", err
	}
	return FormatPace(p), nil
}

// Snapshot returns the serializable zone state.
func (m *Model) Snapshot() *models.FitnessZones {
	fz := &models.FitnessZones{
		Method:  m.method,
		Zones:   make(map[string]models.PaceRange, len(m.zones)),
		Results: m.Results(),
	}
	for k, v := range m.zones {
		fz.Zones[k] = v
	}
	if m.score != nil {
		s := *m.score
		fz.FitnessScore = &s
	}
	return fz
}

// UpdateReferenceResult adds a new result identified by a distance label,
// recalculates and records the change in the update log.
func (m *Model) UpdateReferenceResult(label, timeStr, source string) (models.FitnessUpdate, error) {
	km, ok := DistanceKmForLabel(label)
	if !ok {
		return models.FitnessUpdate{}, fmt.Errorf("unknown distance label %q", label)
	}
	var previous *float64
	if m.score != nil {
		p := *m.score
		previous = &p
	}

	if err := m.AddLabeledResult(label, km, timeStr); err != nil {
		return models.FitnessUpdate{}, err
	}
	if err := m.CalculateZones(""); err != nil {
		return models.FitnessUpdate{}, err
	}

	next := *m.score
	upd := models.FitnessUpdate{
		Timestamp:     m.now(),
		DistanceLabel: label,
		Time:          timeStr,
		Source:        source,
		PreviousScore: previous,
		NewScore:      &next,
	}
	m.updates = append(m.updates, upd)
	return upd, nil
}

// Updates returns the update log.
func (m *Model) Updates() []models.FitnessUpdate {
	return append([]models.FitnessUpdate(nil), m.updates...)
}
