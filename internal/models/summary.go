package models

// WeekTotal is a week's distance for volume charts.
type WeekTotal struct {
	WeekNumber int     `json:"week_number"`
	DistanceKm float64 `json:"distance_km"`
	Phase      string  `json:"phase,omitempty"`
}

// WeekZoneDistribution is the km attributed to each zone in one week.
type WeekZoneDistribution struct {
	WeekNumber int                `json:"week_number"`
	Zones      map[string]float64 `json:"zones"`
}

// PlanSummary bundles the rendering accessors.
type PlanSummary struct {
	PlanName         string                 `json:"plan_name"`
	TotalDistanceKm  float64                `json:"total_distance_km"`
	WeeklyTotals     []WeekTotal            `json:"weekly_totals"`
	ZoneDistribution []WeekZoneDistribution `json:"zone_distribution"`
}

// WeeklyTotals returns each week's total distance, recomputed from its
// workouts.
func (p *Plan) WeeklyTotals() []WeekTotal {
	totals := make([]WeekTotal, 0, len(p.Schedule))
	for i := range p.Schedule {
		wk := &p.Schedule[i]
		totals = append(totals, WeekTotal{
			WeekNumber: wk.WeekNumber,
			DistanceKm: wk.CalculateTotalDistance(),
			Phase:      wk.Phase,
		})
	}
	return totals
}

// ZoneDistribution returns per-week km per zone. Rest days and workouts
// without distance are skipped; every zone key is present.
func (p *Plan) ZoneDistribution() []WeekZoneDistribution {
	out := make([]WeekZoneDistribution, 0, len(p.Schedule))
	for _, wk := range p.Schedule {
		zones := make(map[string]float64, len(ZoneOrder))
		for _, z := range ZoneOrder {
			zones[z] = 0
		}
		for _, w := range wk.Workouts {
			if w.IsRest() || w.Distance() <= 0 {
				continue
			}
			zone := w.TrainingZone
			if _, ok := zones[zone]; !ok {
				zone = ZoneEasy
			}
			zones[zone] = Round1(zones[zone] + w.Distance())
		}
		out = append(out, WeekZoneDistribution{WeekNumber: wk.WeekNumber, Zones: zones})
	}
	return out
}

// Summary builds the plan-level rendering summary.
func (p *Plan) Summary() PlanSummary {
	totals := p.WeeklyTotals()
	var sum float64
	for _, t := range totals {
		sum += t.DistanceKm
	}
	return PlanSummary{
		PlanName:         p.Name,
		TotalDistanceKm:  Round1(sum),
		WeeklyTotals:     totals,
		ZoneDistribution: p.ZoneDistribution(),
	}
}
