package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/ingest"
)

// ResultsApplier folds race results into a stored plan. *results.Provider
// satisfies it.
type ResultsApplier interface {
	Ingest(ctx context.Context, planID uuid.UUID, userID int, r io.Reader) (*ingest.Result, error)
}

// ResultsFileFor returns the race-results file that accompanies a plan
// file: plan.json and plan.json.gz both pair with plan.results.csv.
func ResultsFileFor(planPath string) string {
	base := strings.TrimSuffix(planPath, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".results.csv"
}

// correlateResults applies the plan's companion results file, if any.
// A missing file is not an error.
func (imp *Importer) correlateResults(ctx context.Context, planPath string, planID uuid.UUID) (*ingest.Result, error) {
	path := ResultsFileFor(planPath)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := imp.results.Ingest(ctx, planID, imp.userID, f)
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", filepath.Base(path), err)
	}
	return res, nil
}
