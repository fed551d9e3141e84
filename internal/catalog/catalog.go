// Package catalog is the built-in library of workout templates used to
// enrich generated sessions with a suggested structure.
package catalog

import (
	"slices"
	"strings"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/periodization"
	"github.com/claude/runplan/internal/profile"
)

var levelRank = map[string]int{
	profile.LevelBeginner:     0,
	profile.LevelIntermediate: 1,
	profile.LevelAdvanced:     2,
}

// Catalog is an in-memory template list. Selection is deterministic: the
// first suitable template in list order wins.
type Catalog struct {
	templates []models.WorkoutTemplate
}

// New returns a catalog over the given templates.
func New(templates []models.WorkoutTemplate) *Catalog {
	return &Catalog{templates: slices.Clone(templates)}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(builtin)
}

// Templates returns a copy of every template.
func (c *Catalog) Templates() []models.WorkoutTemplate {
	return slices.Clone(c.templates)
}

// ByCategory lists the templates of one category.
func (c *Catalog) ByCategory(category string) []models.WorkoutTemplate {
	var out []models.WorkoutTemplate
	for _, t := range c.templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func suitable(t models.WorkoutTemplate, level, phase string) bool {
	want, ok := levelRank[strings.ToLower(level)]
	if !ok {
		want = levelRank[profile.LevelIntermediate]
	}
	if levelRank[t.MinLevel] > want {
		return false
	}
	return len(t.Phases) == 0 || slices.Contains(t.Phases, phase)
}

// SelectTemplate returns the first template of the category that suits the
// level and phase, falling back to any template of the category.
func (c *Catalog) SelectTemplate(category, level, phase string) (models.WorkoutTemplate, bool) {
	candidates := c.ByCategory(category)
	for _, t := range candidates {
		if suitable(t, level, phase) {
			return t, true
		}
	}
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return models.WorkoutTemplate{}, false
}

var (
	allPhases   = []string{periodization.PhaseBase, periodization.PhaseSpecific, periodization.PhaseTaper}
	buildPhases = []string{periodization.PhaseBase, periodization.PhaseSpecific}
)

var builtin = []models.WorkoutTemplate{
	{
		ID:          "easy-aerobic",
		Name:        "Aerobic easy run",
		Category:    models.CategoryEasy,
		Description: "Steady conversational running on flat ground",
		MinLevel:    profile.LevelBeginner,
		Phases:      allPhases,
		Tips:        []string{"Breathe through the nose for the first ten minutes"},
	},
	{
		ID:          "easy-strides",
		Name:        "Easy run with strides",
		Category:    models.CategoryEasy,
		Description: "Easy running finished with 4-6 x 20 s relaxed strides",
		MinLevel:    profile.LevelIntermediate,
		Phases:      buildPhases,
	},
	{
		ID:          "long-steady",
		Name:        "Steady long run",
		Category:    models.CategoryLong,
		Description: "Even effort from start to finish, fuel every 45 minutes",
		MinLevel:    profile.LevelBeginner,
		Phases:      allPhases,
	},
	{
		ID:          "long-fast-finish",
		Name:        "Fast-finish long run",
		Category:    models.CategoryLong,
		Description: "Run the final 15-20 minutes at marathon effort",
		MinLevel:    profile.LevelAdvanced,
		Phases:      []string{periodization.PhaseSpecific},
	},
	{
		ID:          "tempo-cruise",
		Name:        "Cruise intervals",
		Category:    models.CategoryTempo,
		Description: "Threshold effort broken into 8-10 minute blocks with 1 minute jogs",
		MinLevel:    profile.LevelBeginner,
		Phases:      buildPhases,
	},
	{
		ID:          "tempo-continuous",
		Name:        "Continuous tempo",
		Category:    models.CategoryTempo,
		Description: "20-30 minutes unbroken at threshold",
		MinLevel:    profile.LevelIntermediate,
		Phases:      []string{periodization.PhaseSpecific, periodization.PhaseTaper},
	},
	{
		ID:          "interval-pyramid",
		Name:        "Pyramid",
		Category:    models.CategoryInterval,
		Description: "1-2-3-2-1 minutes hard with equal jog recovery",
		MinLevel:    profile.LevelBeginner,
		Phases:      []string{periodization.PhaseBase},
	},
	{
		ID:          "interval-vo2",
		Name:        "VO2max repeats",
		Category:    models.CategoryInterval,
		Description: "Repeats of 3-5 minutes at 5K effort",
		MinLevel:    profile.LevelIntermediate,
		Phases:      buildPhases,
	},
	{
		ID:          "interval-sharpen",
		Name:        "Sharpening repeats",
		Category:    models.CategoryInterval,
		Description: "A few short race-pace repeats with full recovery",
		MinLevel:    profile.LevelBeginner,
		Phases:      []string{periodization.PhaseTaper},
	},
	{
		ID:          "recovery-shakeout",
		Name:        "Shakeout",
		Category:    models.CategoryRecovery,
		Description: "20 minutes very easy, optional mobility afterwards",
		MinLevel:    profile.LevelBeginner,
	},
}
