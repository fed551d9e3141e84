package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claude/runplan/internal/catalog"
	"github.com/claude/runplan/internal/export"
	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/profile"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/zones"
)

func zonesCmd() *cobra.Command {
	var method string
	var results []string
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Calculate pace zones from race results",
		Example: `  runplan-cli zones --result 5K=22:30
  runplan-cli zones --method critical_velocity --result 5K=22:30 --result 10K=47:10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseZonesRequest(method, results)
			if err != nil {
				return err
			}
			report, err := service.ComputeZones(req)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(report)
			}
			printZones(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", models.MethodVDOT, "zone method: vdot or critical_velocity")
	cmd.Flags().StringArrayVar(&results, "result", nil, "race result as DISTANCE=TIME (repeatable)")
	_ = cmd.MarkFlagRequired("result")
	return cmd
}

// parseZonesRequest turns "5K=22:30" pairs into a zones request.
func parseZonesRequest(method string, pairs []string) (service.ZonesRequest, error) {
	req := service.ZonesRequest{Method: method}
	for _, p := range pairs {
		dist, t, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(dist) == "" || strings.TrimSpace(t) == "" {
			return req, fmt.Errorf("result %q: want DISTANCE=TIME", p)
		}
		req.Results = append(req.Results, service.RaceResult{
			Distance: strings.TrimSpace(dist),
			Time:     strings.TrimSpace(t),
		})
	}
	return req, nil
}

func printZones(report *service.ZonesReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Zone", "Pace range", "Target"})
	for _, z := range models.ZoneOrder {
		r, ok := report.Zones.Zones[z]
		if !ok {
			continue
		}
		tw.AppendRow(table.Row{z,
			zones.FormatPace(r.MinPace) + " - " + zones.FormatPace(r.MaxPace),
			report.Paces[z]})
	}
	tw.Render()

	if report.Zones.FitnessScore != nil {
		fmt.Printf("\n%s score %.1f", report.Zones.Method, *report.Zones.FitnessScore)
		if report.Label != "" {
			fmt.Printf(" (%s)", report.Label)
		}
		fmt.Println()
	}
	if len(report.Predictions) > 0 {
		pt := table.NewWriter()
		pt.SetOutputMirror(os.Stdout)
		pt.AppendHeader(table.Row{"Distance", "Predicted"})
		for _, d := range []string{"5K", "10K", "Half Marathon", "Marathon"} {
			if p, ok := report.Predictions[d]; ok {
				pt.AppendRow(table.Row{d, p})
			}
		}
		pt.Render()
	}
}

func generateCmd() *cobra.Command {
	var (
		req         planner.Request
		profilePath string
		start       string
		out         string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan and write it to a file",
		Example: `  runplan-cli generate --goal 10K --level beginner --days 4 --start 2026-03-02 -o plan.json
  runplan-cli generate --profile athlete.yaml -o plan.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profilePath != "" {
				p, err := profile.Load(profilePath)
				if err != nil {
					return err
				}
				req.Profile = p
			}
			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				req.StartDate = &t
			}
			if req.Profile != nil {
				if ok, reasons := req.Profile.NeedsModifiedPlan(); ok {
					for _, r := range reasons {
						fmt.Fprintln(os.Stderr, "warning:", r)
					}
				}
			}

			plan, err := planner.New(catalog.Default(), logger()).Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := models.SaveFile(out, plan); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(plan)
			}
			fmt.Printf("wrote %s: %s, %d weeks, %d days/week\n", out, plan.Name, plan.Weeks, plan.DaysPerWeek)
			printSummary(plan.Summary())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "plan name")
	cmd.Flags().StringVar(&req.Goal, "goal", "", "goal distance: 5K, 10K, Half Marathon, Marathon")
	cmd.Flags().StringVar(&req.Level, "level", "", "beginner, intermediate or advanced")
	cmd.Flags().IntVar(&req.Weeks, "weeks", 0, "plan length (default depends on goal)")
	cmd.Flags().IntVar(&req.DaysPerWeek, "days", 0, "running days per week (3-6)")
	cmd.Flags().Float64Var(&req.MaxWeeklyIncrease, "max-increase", 0, "weekly volume increase cap, e.g. 0.1")
	cmd.Flags().StringVar(&profilePath, "profile", "", "athlete profile (YAML or JSON)")
	cmd.Flags().StringVar(&start, "start", "", "first day of week 1 (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "output", "o", "plan.json", "output file")
	return cmd
}

func showCmd() *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "show PLAN",
		Short: "Print a plan's schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := models.LoadFile(args[0])
			if err != nil {
				return err
			}
			weeks := plan.Schedule
			if week > 0 {
				wk := plan.GetWeek(week)
				if wk == nil {
					return fmt.Errorf("week %d is outside the %d-week plan", week, plan.Weeks)
				}
				weeks = []models.Week{*wk}
			}
			if viper.GetBool("json") {
				return printJSON(weeks)
			}
			for i := range weeks {
				printWeek(plan, &weeks[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "only this week")
	return cmd
}

func printWeek(plan *models.Plan, wk *models.Week) {
	title := fmt.Sprintf("Week %d", wk.WeekNumber)
	if wk.Phase != "" {
		title += " (" + wk.Phase + ")"
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"Day", "Date", "Type", "Km", "Time", "Zone", "Pace"})
	for _, w := range wk.Workouts {
		date := ""
		if d, ok := plan.WorkoutDate(wk.WeekNumber, w.Day); ok {
			date = d.Format(time.DateOnly)
		}
		km := ""
		if w.DistanceKm != nil {
			km = fmt.Sprintf("%.1f", *w.DistanceKm)
		}
		tw.AppendRow(table.Row{w.Day, date, w.Type, km, w.TotalTimeEstimated, w.TrainingZone, w.TargetPace})
	}
	tw.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.1f", wk.TotalDistanceKm)})
	tw.Render()
	if wk.Notes != "" {
		fmt.Println(wk.Notes)
	}
	fmt.Println()
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary PLAN",
		Short: "Print weekly totals and zone distribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := models.LoadFile(args[0])
			if err != nil {
				return err
			}
			sum := plan.Summary()
			if viper.GetBool("json") {
				return printJSON(sum)
			}
			printSummary(sum)
			return nil
		},
	}
}

func printSummary(sum models.PlanSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	header := table.Row{"Week", "Phase", "Km"}
	for _, z := range models.ZoneOrder {
		header = append(header, z+" km")
	}
	tw.AppendHeader(header)
	dist := make(map[int]map[string]float64, len(sum.ZoneDistribution))
	for _, d := range sum.ZoneDistribution {
		dist[d.WeekNumber] = d.Zones
	}
	for _, t := range sum.WeeklyTotals {
		row := table.Row{t.WeekNumber, t.Phase, fmt.Sprintf("%.1f", t.DistanceKm)}
		for _, z := range models.ZoneOrder {
			row = append(row, fmt.Sprintf("%.1f", dist[t.WeekNumber][z]))
		}
		tw.AppendRow(row)
	}
	tw.AppendFooter(table.Row{"", "Total", fmt.Sprintf("%.1f", sum.TotalDistanceKm)})
	tw.Render()
}

func checkinCmd() *cobra.Command {
	var req service.CheckInRequest
	cmd := &cobra.Command{
		Use:     "checkin PLAN",
		Short:   "Record a weekly check-in and adapt the plan",
		Args:    cobra.ExactArgs(1),
		Example: `  runplan-cli checkin plan.json --week 3 --energy 3 --soreness 8 --sleep 5.5 --motivation 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			plan, err := models.LoadFile(args[0])
			if err != nil {
				return err
			}
			res, err := service.ApplyCheckIn(plan, req, time.Now().UTC())
			if err != nil {
				return err
			}
			if err := models.SaveFile(args[0], plan); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			fmt.Printf("week %d check-in recorded: %d fatigue signals\n", res.CheckIn.WeekNumber, res.CheckIn.FatigueSignals)
			if res.AdjustedWeek != nil {
				fmt.Printf("week %d reduced to %.1f km\n", res.AdjustedWeek.WeekNumber, res.AdjustedWeek.TotalDistanceKm)
			}
			if u := res.FitnessUpdate; u != nil && u.NewScore != nil {
				fmt.Printf("fitness score now %.1f\n", *u.NewScore)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&req.WeekNumber, "week", 0, "week number")
	cmd.Flags().IntVar(&req.Energy, "energy", 0, "energy level 1-10")
	cmd.Flags().IntVar(&req.Soreness, "soreness", 0, "muscle soreness 1-10")
	cmd.Flags().Float64Var(&req.SleepHours, "sleep", 0, "average sleep hours")
	cmd.Flags().IntVar(&req.Motivation, "motivation", 0, "motivation 1-10")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&req.RaceDistance, "race-distance", "", "new race result distance, e.g. 10K")
	cmd.Flags().StringVar(&req.RaceTime, "race-time", "", "new race result time, e.g. 45:30")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export PLAN",
		Short: "Export a plan as XLSX or ICS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := models.LoadFile(args[0])
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if out == "" {
				out = strings.TrimSuffix(args[0], ".json") + "." + format
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			switch format {
			case "xlsx":
				err = export.WriteXLSX(f, plan)
			case "ics":
				err = export.WriteICS(f, plan, time.Now())
			default:
				err = fmt.Errorf("unknown format %q (want xlsx or ics)", format)
			}
			if err != nil {
				return err
			}
			fmt.Println("wrote", out)
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx or ics")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: PLAN with the format's extension)")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
