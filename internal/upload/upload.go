package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude/runplan/internal/models"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int
	EventsSent    int
}

// EventSender delivers calendar events. *Client satisfies it.
type EventSender interface {
	SendEvents(ctx context.Context, events []Event) error
}

// Uploader converts plan files to calendar events and sends them.
type Uploader struct {
	sender      EventSender
	state       *StateDB
	athleteID   string
	dryRun      bool
	force       bool
	includeRest bool
	log         *slog.Logger
	stats       Stats
}

// Options controls an upload run.
type Options struct {
	AthleteID   string
	DryRun      bool
	Force       bool // re-send plans whose content was already uploaded
	IncludeRest bool
}

// New creates a new Uploader. The sender may be nil in dry-run mode.
func New(sender EventSender, state *StateDB, opts Options, log *slog.Logger) *Uploader {
	return &Uploader{
		sender:      sender,
		state:       state,
		athleteID:   opts.AthleteID,
		dryRun:      opts.DryRun,
		force:       opts.Force,
		includeRest: opts.IncludeRest,
		log:         log,
	}
}

// Run uploads every plan file found at the given paths. A plan that fails
// to load or convert is counted and skipped; a failed send stops the run.
func (u *Uploader) Run(ctx context.Context, paths []string) (*Stats, error) {
	files, err := ResolvePlanFiles(paths)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.uploadFile(ctx, f); err != nil {
			return &u.stats, err
		}
	}
	return &u.stats, nil
}

func (u *Uploader) uploadFile(ctx context.Context, path string) error {
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	plan, err := models.LoadFile(path)
	if err != nil {
		u.log.Warn("parse failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return nil
	}

	if !u.force {
		uploaded, err := u.state.IsUploaded(plan.ID.String(), u.athleteID, hash)
		if err != nil {
			u.log.Warn("state check failed", "file", path, "error", err)
			u.stats.FilesErrored++
			return nil
		}
		if uploaded {
			u.stats.FilesSkipped++
			return nil
		}
	}

	events, err := ConvertPlan(plan, u.includeRest)
	if err != nil {
		u.log.Warn("convert failed", "file", path, "plan", plan.Name, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if len(events) == 0 {
		u.log.Info("no workouts to send", "file", path)
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would send",
			"plan", plan.Name,
			"events", len(events),
			"first", events[0].StartDateLocal,
			"last", events[len(events)-1].StartDateLocal,
		)
		u.stats.EventsSent += len(events)
		u.stats.FilesUploaded++
		return nil
	}

	if err := u.sender.SendEvents(ctx, events); err != nil {
		return fmt.Errorf("sending %s: %w", plan.Name, err)
	}
	u.stats.EventsSent += len(events)
	u.stats.FilesUploaded++

	if err := u.state.MarkUploaded(plan.ID.String(), u.athleteID, hash, len(events)); err != nil {
		u.log.Warn("failed to mark uploaded", "file", path, "error", err)
	}
	u.log.Info("uploaded plan", "plan", plan.Name, "events", len(events))
	return nil
}

// ResolvePlanFiles expands directories to the *.json files they contain.
// Plain file paths are kept as given. The result is sorted and deduplicated.
func ResolvePlanFiles(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		matches := []string{p}
		if info.IsDir() {
			matches, err = filepath.Glob(filepath.Join(p, "*.json"))
			if err != nil {
				return nil, err
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
