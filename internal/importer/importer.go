package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/storage"
)

// planNamespace seeds IDs for plan files written without one, so that
// re-importing the same file is a no-op.
var planNamespace = uuid.MustParse("5c0f3d1e-8a2b-4f6c-9d7e-1a2b3c4d5e6f")

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	PlansInserted   int
	PlansDuplicated int
	ResultsReceived int
	ResultsApplied  int

	Failed []string
}

// Store is the persistence the importer writes to. *storage.DB satisfies it.
type Store interface {
	InsertPlan(ctx context.Context, userID int, plan *models.Plan) (bool, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

var _ Store = (*storage.DB)(nil)

// Importer reads plan files from a directory and inserts them into the DB.
type Importer struct {
	db      Store
	results ResultsApplier
	log     *slog.Logger
	userID  int
	workers int
	dryRun  bool

	mu    sync.Mutex
	stats Stats
}

// New creates a new Importer. Plans are owned by userID; results may be
// nil to skip companion results files.
func New(db Store, results ResultsApplier, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, results: results, userID: userID, log: log, workers: 4, dryRun: dryRun}
}

// PlanFiles lists the plan files in dir: *.json and *.json.gz, sorted.
func PlanFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.json.gz"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// Import processes every plan file in dir. Unreadable files are counted and
// skipped; a database failure aborts the import.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	started := time.Now()
	files, err := PlanFiles(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("listing %s: %w", dir, err)
	}

	var logID int64
	if !imp.dryRun {
		logID, err = imp.db.InsertImportLog(ctx, storage.ImportLog{
			UserID:        imp.userID,
			Source:        storage.SourcePlanFiles,
			Status:        "running",
			PlansReceived: len(files),
		})
		if err != nil {
			return &imp.stats, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.workers)
	for _, f := range files {
		g.Go(func() error {
			return imp.importFile(gctx, f)
		})
	}
	importErr := g.Wait()

	if !imp.dryRun {
		imp.finishLog(logID, dir, len(files), importErr, started)
	}
	sort.Strings(imp.stats.Failed)
	return &imp.stats, importErr
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := ReadPlanFile(path)
	if err == nil && len(strings.TrimSpace(string(data))) == 0 {
		imp.count(func(s *Stats) { s.FilesSkipped++ })
		return nil
	}
	var plan *models.Plan
	if err == nil {
		plan, err = models.DecodePlan(data)
	}
	if err == nil && len(plan.Schedule) == 0 {
		err = fmt.Errorf("plan has no weeks")
	}
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.count(func(s *Stats) {
			s.FilesErrored++
			s.Failed = append(s.Failed, filepath.Base(path))
		})
		return nil
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.NewSHA1(planNamespace, data)
	}

	if imp.dryRun {
		imp.count(func(s *Stats) {
			s.FilesProcessed++
			s.PlansInserted++
		})
		return nil
	}

	inserted, err := imp.db.InsertPlan(ctx, imp.userID, plan)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", filepath.Base(path), err)
	}
	if !inserted {
		imp.log.Info("plan already imported", "file", path, "plan", plan.ID)
		imp.count(func(s *Stats) {
			s.FilesProcessed++
			s.PlansDuplicated++
		})
		return nil
	}
	imp.count(func(s *Stats) {
		s.FilesProcessed++
		s.PlansInserted++
	})
	imp.log.Info("imported plan", "file", path, "plan", plan.ID, "name", plan.Name, "weeks", plan.Weeks)

	if imp.results == nil {
		return nil
	}
	res, err := imp.correlateResults(ctx, path, plan.ID)
	if err != nil {
		imp.log.Warn("results not applied", "file", path, "error", err)
		imp.count(func(s *Stats) { s.Failed = append(s.Failed, filepath.Base(ResultsFileFor(path))) })
		return nil
	}
	if res != nil {
		imp.count(func(s *Stats) {
			s.ResultsReceived += res.ResultsReceived
			s.ResultsApplied += res.ResultsApplied
		})
	}
	return nil
}

func (imp *Importer) count(fn func(*Stats)) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	fn(&imp.stats)
}

func (imp *Importer) finishLog(id int64, dir string, received int, importErr error, started time.Time) {
	entry := storage.ImportLog{
		Status:          "success",
		PlansReceived:   received,
		PlansInserted:   imp.stats.PlansInserted,
		ResultsReceived: imp.stats.ResultsReceived,
		ResultsApplied:  imp.stats.ResultsApplied,
	}
	if importErr != nil {
		entry.Status = "error"
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	durationMs := int(time.Since(started).Milliseconds())
	entry.DurationMs = &durationMs
	if meta, err := json.Marshal(map[string]any{
		"dir":        dir,
		"duplicates": imp.stats.PlansDuplicated,
		"failed":     imp.stats.Failed,
	}); err == nil {
		raw := json.RawMessage(meta)
		entry.Metadata = &raw
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := imp.db.UpdateImportLog(ctx, id, entry); err != nil {
		imp.log.Error("failed to update import log", "id", id, "error", err)
	}
}
