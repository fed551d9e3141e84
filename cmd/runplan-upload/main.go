package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/runplan/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", envOr("RUNPLAN_CALENDAR_URL", upload.DefaultBaseURL), "calendar service URL")
	athleteID := flag.String("athlete", os.Getenv("RUNPLAN_CALENDAR_ATHLETE_ID"), "athlete ID on the calendar service")
	apiKey := flag.String("api-key", os.Getenv("RUNPLAN_CALENDAR_API_KEY"), "calendar service API key")
	statePath := flag.String("state", "", "state database (default ~/.runplan-upload/state.db)")
	dryRun := flag.Bool("dry-run", false, "convert plans but don't send them")
	force := flag.Bool("force", false, "re-send plans that were already uploaded")
	includeRest := flag.Bool("include-rest", false, "also send rest days")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("runplan-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: runplan-upload -athlete ID -api-key KEY [-dry-run] [-force] PLAN.json|DIR...\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun && (*athleteID == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -athlete and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Open state database
	if *statePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*statePath = filepath.Join(homeDir, ".runplan-upload", "state.db")
	}
	state, err := upload.OpenStateDB(*statePath)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sender upload.EventSender
	if *dryRun {
		log.Info("DRY RUN mode: plans will be converted but not sent")
	} else {
		client := upload.NewClient(strings.TrimRight(*baseURL, "/"), *athleteID, *apiKey)
		athlete, err := client.Athlete(ctx)
		if err != nil {
			log.Error("calendar login failed", "error", err)
			os.Exit(1)
		}
		log.Info("connected to calendar", "athlete", athlete.Name, "id", athlete.ID)
		sender = client
	}

	uploader := upload.New(sender, state, upload.Options{
		AthleteID:   *athleteID,
		DryRun:      *dryRun,
		Force:       *force,
		IncludeRest: *includeRest,
	}, log)
	stats, err := uploader.Run(ctx, flag.Args())
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printStats(stats *upload.Stats) {
	if stats == nil {
		return
	}
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Printf("  Events sent:      %d\n", stats.EventsSent)
	fmt.Println()
}
