package periodization

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/profile"
)

func TestBlockLengthsSumToTotal(t *testing.T) {
	for n := 1; n <= 30; n++ {
		b := BlockLengths(n)
		if b.Total() != n {
			t.Errorf("BlockLengths(%d) = %+v, total %d", n, b, b.Total())
		}
		if n >= 2 && (b.Taper < 2 || b.Taper > 3) {
			t.Errorf("BlockLengths(%d).Taper = %d, want 2..3", n, b.Taper)
		}
		if n >= 10 && (b.Base < 4 || b.Specific < 4) {
			t.Errorf("BlockLengths(%d) = %+v, want base and specific >= 4", n, b)
		}
	}
}

func TestBlockLengthsKnownPlans(t *testing.T) {
	tests := []struct {
		weeks int
		want  Blocks
	}{
		{0, Blocks{}},
		{8, Blocks{Base: 3, Specific: 3, Taper: 2}},
		{10, Blocks{Base: 4, Specific: 4, Taper: 2}},
		{12, Blocks{Base: 5, Specific: 5, Taper: 2}},
		{16, Blocks{Base: 7, Specific: 7, Taper: 2}},
		{20, Blocks{Base: 8, Specific: 9, Taper: 3}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.weeks), func(t *testing.T) {
			assert.Equal(t, tt.want, BlockLengths(tt.weeks))
		})
	}
}

func TestPhaseFor(t *testing.T) {
	b := Blocks{Base: 3, Specific: 3, Taper: 2}
	tests := []struct {
		week      int
		phase     string
		weekInPhs int
	}{
		{1, PhaseBase, 1},
		{3, PhaseBase, 3},
		{4, PhaseSpecific, 1},
		{6, PhaseSpecific, 3},
		{7, PhaseTaper, 1},
		{8, PhaseTaper, 2},
	}
	for _, tt := range tests {
		phase, n := PhaseFor(tt.week, b)
		if phase != tt.phase || n != tt.weekInPhs {
			t.Errorf("PhaseFor(%d) = (%s, %d), want (%s, %d)", tt.week, phase, n, tt.phase, tt.weekInPhs)
		}
	}
}

func TestNormalizeGoalAndDefaults(t *testing.T) {
	assert.Equal(t, GoalHalfMarathon, NormalizeGoal("half"))
	assert.Equal(t, GoalMarathon, NormalizeGoal(" 42K "))
	assert.Equal(t, Goal10K, NormalizeGoal("10k"))
	assert.Equal(t, "Ultra", NormalizeGoal("Ultra"))

	assert.Equal(t, 8, DefaultWeeks("5K"))
	assert.Equal(t, 16, DefaultWeeks("marathon"))
	assert.Equal(t, 12, DefaultWeeks("Ultra"))

	assert.Equal(t, 75.0, GoalTarget(GoalMarathon, profile.LevelIntermediate))
	assert.Equal(t, 30.0, GoalTarget("Ultra", profile.LevelAdvanced))
}

// TestWeeklyTargetProgressionCap checks the week-over-week cap holds for
// every goal, level and starting volume.
func TestWeeklyTargetProgressionCap(t *testing.T) {
	goals := []string{Goal5K, Goal10K, GoalHalfMarathon, GoalMarathon}
	levels := []string{profile.LevelBeginner, profile.LevelIntermediate, profile.LevelAdvanced}
	starts := []float64{0, 20, 33, 55}

	for _, goal := range goals {
		for _, level := range levels {
			for _, start := range starts {
				adj := profile.Neutral()
				if start > 0 {
					adj.StartingVolumeKm = models.Float(start)
				}
				s := NewScheduler(goal, level, DefaultWeeks(goal), adj)
				targets := s.Targets()
				require.Len(t, targets, s.TotalWeeks)

				for i, km := range targets {
					if math.Mod(km, 5) != 0 {
						t.Errorf("%s/%s start %v: week %d = %v, not a multiple of 5", goal, level, start, i+1, km)
					}
					if i == 0 {
						continue
					}
					if limit := models.RoundTo5Km(1.1 * targets[i-1]); km > limit {
						t.Errorf("%s/%s start %v: week %d = %v > %v", goal, level, start, i+1, km, limit)
					}
				}
			}
		}
	}
}

func TestWeeklyTargetStartingVolume(t *testing.T) {
	adj := profile.Neutral()
	adj.StartingVolumeKm = models.Float(33)
	s := NewScheduler(GoalHalfMarathon, profile.LevelIntermediate, 12, adj)

	assert.Equal(t, 35.0, s.WeeklyTarget(1))
	// Base ramp for week 2 is 60 * 0.9 * 2/5 = 21.6.
	assert.Equal(t, 20.0, s.WeeklyTarget(2))
}

func TestWeeklyTargetPeakCap(t *testing.T) {
	adj := profile.Neutral()
	adj.StartingVolumeKm = models.Float(40)
	adj.PeakWeeklyKm = 20
	s := NewScheduler(GoalMarathon, profile.LevelAdvanced, 16, adj)

	for w, km := range s.Targets() {
		if km > 20*1.1+2.5 {
			t.Errorf("week %d = %v, above peak cap", w+1, km)
		}
	}
}

func TestTaperScalesWithProgressionFactor(t *testing.T) {
	full := profile.Neutral()
	half := profile.Neutral()
	half.ProgressionFactor = 0.5

	fast := NewScheduler(GoalMarathon, profile.LevelAdvanced, 16, full)
	slow := NewScheduler(GoalMarathon, profile.LevelAdvanced, 16, half)

	taperWeeks := 0
	for w := 1; w <= 16; w++ {
		if phase, _ := fast.Phase(w); phase != PhaseTaper {
			continue
		}
		taperWeeks++
		assert.InDelta(t, fast.rawTarget(w)*0.5, slow.rawTarget(w), 1e-9, "week %d", w)
	}
	require.Positive(t, taperWeeks)
	assert.InDelta(t, 60.0, fast.rawTarget(15), 1e-9)
	assert.InDelta(t, 30.0, slow.rawTarget(15), 1e-9)
}

func TestWeeklyTargetZeroVolume(t *testing.T) {
	adj := profile.Neutral()
	adj.VolumeFactor = 0.0001
	adj.StartingVolumeKm = models.Float(0)
	s := NewScheduler(Goal5K, profile.LevelBeginner, 8, adj)
	assert.Equal(t, 0.0, s.WeeklyTarget(1))
}

func TestRecoveryWeeks(t *testing.T) {
	s := NewScheduler(GoalMarathon, profile.LevelAdvanced, 16, profile.Neutral())
	var got []int
	for w := 1; w <= 16; w++ {
		if s.IsRecoveryWeek(w) {
			got = append(got, w)
		}
	}
	assert.Equal(t, []int{4, 8, 12}, got)

	raw := s.rawTarget(8)
	s.TotalWeeks = 8
	assert.Greater(t, s.rawTarget(8), raw, "final weeks skip the recovery cut")
}

func TestWeekNotes(t *testing.T) {
	adj := profile.Neutral()
	adj.InjuryNotes = []string{"Avoid steep downhills"}
	adj.RestDayNotes = []string{"Consider adding an extra rest day"}
	s := NewScheduler(Goal10K, profile.LevelBeginner, 10, adj)

	first := s.Notes(1)
	assert.True(t, strings.HasPrefix(first, "Phase: Base (week 1/4)"))
	assert.Contains(t, first, "Welcome")
	assert.Contains(t, first, "Avoid steep downhills")
	assert.Contains(t, first, "extra rest day")

	assert.Contains(t, s.Notes(4), "Recovery week")
	assert.Contains(t, s.Notes(9), "Taper week")
	assert.Contains(t, s.Notes(10), "Race week")
	assert.Equal(t, "Phase: Specific (week 2/4)", s.Notes(6))
}

func TestSafetySections(t *testing.T) {
	adj := profile.Neutral()
	assert.Empty(t, SafetySections(adj))

	adj.RedZones = []string{"left knee"}
	adj.FeedbackPrompt = profile.FeedbackPrompt
	got := SafetySections(adj)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "left knee")
	assert.True(t, strings.HasPrefix(got[1], "Weekly feedback: "))
}
