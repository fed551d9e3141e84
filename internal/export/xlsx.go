// Package export renders plans as spreadsheets and calendar files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/zones"
)

// Sheet names.
const (
	SheetOverview = "Overview"
	SheetSchedule = "Schedule"
	SheetVolume   = "Volume"
	SheetZones    = "Zones"
)

var phaseColors = map[string]string{
	"base":     "BDD7EE",
	"specific": "F8CBAD",
	"taper":    "C6EFCE",
}

var scheduleHeaders = []string{"Week", "Phase", "Day", "Date", "Type", "Distance (km)", "Duration", "Pace", "Zone", "Description"}

// Workbook builds the plan workbook.
func Workbook(plan *models.Plan) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetSchedule, SheetVolume, SheetZones} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	if err := overviewSheet(f, plan); err != nil {
		return nil, fmt.Errorf("overview sheet: %w", err)
	}
	if err := scheduleSheet(f, plan); err != nil {
		return nil, fmt.Errorf("schedule sheet: %w", err)
	}
	if err := volumeSheet(f, plan); err != nil {
		return nil, fmt.Errorf("volume sheet: %w", err)
	}
	if err := zonesSheet(f, plan); err != nil {
		return nil, fmt.Errorf("zones sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX writes the plan workbook to w.
func WriteXLSX(w io.Writer, plan *models.Plan) error {
	f, err := Workbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func overviewSheet(f *excelize.File, plan *models.Plan) error {
	sheet := SheetOverview
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	label, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", strings.ToUpper(plan.Name)); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", title); err != nil {
		return err
	}

	start := "-"
	race := "-"
	if plan.StartDate != nil {
		start = plan.StartDate.Format("2006-01-02")
		race = plan.RaceDate().Format("2006-01-02")
	}
	var total float64
	for _, wt := range plan.WeeklyTotals() {
		total += wt.DistanceKm
	}
	info := [][]any{
		{"Goal", plan.Goal},
		{"Level", plan.Level},
		{"Weeks", plan.Weeks},
		{"Days per week", plan.DaysPerWeek},
		{"Start date", start},
		{"Race date", race},
		{"Total distance (km)", models.Round1(total)},
		{"Created", plan.CreatedDate.Format("2006-01-02")},
	}
	if plan.Zones != nil && plan.Zones.FitnessScore != nil {
		info = append(info, []any{"Fitness score", models.Round1(*plan.Zones.FitnessScore)})
	}
	for i, row := range info {
		r := i + 3
		if err := writeRow(f, sheet, r, row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, r), cell(1, r), label); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 22)
}

func scheduleSheet(f *excelize.File, plan *models.Plan) error {
	sheet := SheetSchedule
	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}
	headers := make([]any, len(scheduleHeaders))
	for i, h := range scheduleHeaders {
		headers[i] = h
	}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cell(len(headers), 1), hdr); err != nil {
		return err
	}

	styles := map[string]int{}
	for phase, color := range phaseColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[phase] = id
	}

	row := 2
	for _, wk := range plan.Schedule {
		for _, w := range wk.Workouts {
			date := ""
			if d, ok := plan.WorkoutDate(wk.WeekNumber, w.Day); ok {
				date = d.Format("2006-01-02")
			}
			duration := w.TotalTimeEstimated
			if duration == "" && w.DurationMinutes != nil && *w.DurationMinutes > 0 {
				duration = fmt.Sprintf("%dmin", *w.DurationMinutes)
			}
			values := []any{wk.WeekNumber, wk.Phase, w.Day, date, w.Type, w.Distance(), duration, w.TargetPace, w.TrainingZone, w.Description}
			if err := writeRow(f, sheet, row, values); err != nil {
				return err
			}
			if id, ok := styles[wk.Phase]; ok {
				if err := f.SetCellStyle(sheet, cell(1, row), cell(2, row), id); err != nil {
					return err
				}
			}
			row++
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "E", "E", 22); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "J", "J", 60)
}

func volumeSheet(f *excelize.File, plan *models.Plan) error {
	sheet := SheetVolume
	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, []any{"Week", "Phase", "Distance (km)"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", hdr); err != nil {
		return err
	}
	totals := plan.WeeklyTotals()
	for i, wt := range totals {
		if err := writeRow(f, sheet, i+2, []any{wt.WeekNumber, wt.Phase, wt.DistanceKm}); err != nil {
			return err
		}
	}
	if len(totals) == 0 {
		return nil
	}

	last := len(totals) + 1
	return f.AddChart(sheet, "E2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Weekly volume"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func zonesSheet(f *excelize.File, plan *models.Plan) error {
	sheet := SheetZones
	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}

	headers := []any{"Week"}
	for _, z := range models.ZoneOrder {
		headers = append(headers, z)
	}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cell(len(headers), 1), hdr); err != nil {
		return err
	}
	row := 2
	for _, wd := range plan.ZoneDistribution() {
		values := []any{wd.WeekNumber}
		for _, z := range models.ZoneOrder {
			values = append(values, wd.Zones[z])
		}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	if plan.Zones == nil || len(plan.Zones.Zones) == 0 {
		return nil
	}
	row++
	if err := writeRow(f, sheet, row, []any{"Zone", "Fastest pace", "Slowest pace"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(3, row), hdr); err != nil {
		return err
	}
	for _, z := range models.ZoneOrder {
		r, ok := plan.Zones.Zones[z]
		if !ok {
			continue
		}
		row++
		if err := writeRow(f, sheet, row, []any{z, formatPace(r.MinPace), formatPace(r.MaxPace)}); err != nil {
			return err
		}
	}
	return nil
}

func formatPace(secPerKm float64) string {
	return zones.FormatPace(secPerKm) + "/km"
}
