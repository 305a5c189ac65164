package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexbind/flexbind/internal/testutil"
)

// TestPipeline_HelixStrandScenario drives ensemble generation, interface
// scoring, sequence design, and developability assessment end to end on a
// small synthetic complex: a 5-residue helical target docked against a
// 5-residue strand binder with every binder position flexible.
func TestPipeline_HelixStrandScenario(t *testing.T) {
	target := testutil.BuildStructure(testutil.HelixResidues(5, []string{"ALA", "SER", "LYS"}))
	binder := testutil.BuildStructure(testutil.StrandResidues(5, []string{"ALA", "LYS", "SER", "LEU", "THR"}, 7.0, 0))
	flexible := binder.ResidueKeys()
	jobSeed := Seed(42)

	ensCfg := EnsembleConfig{Samples: 4, Clusters: 2, Magnitude: 0.6, RelaxIterations: 8}
	ensemble := GenerateEnsemble(binder, target, flexible, ensCfg, jobSeed.Stage(StageEnsemble))
	require.Len(t, ensemble, 2)

	scores := ScoreEnsemble(target, ensemble, DefaultScoreConfig())
	require.Len(t, scores, 2)
	for i, ss := range scores {
		assert.Equal(t, i, ss.StateIndex)
		assert.Greater(t, ss.Composite, 0.0, "state %d must score positively at this docking distance", i)
		assert.GreaterOrEqual(t, ss.ContactScore, 0.0)
		assert.GreaterOrEqual(t, ss.ClashScore, 0.0)
	}

	searchCfg := SearchConfig{Candidates: 5, BeamWidth: 3, ForbidGlycosylation: true}
	designs := DesignSequences(target, binder, ensemble, flexible, searchCfg, DefaultScoreConfig(), jobSeed.Stage(StageDesign))
	require.NotEmpty(t, designs)
	assert.LessOrEqual(t, len(designs), searchCfg.Candidates)

	seen := map[string]bool{}
	for i, c := range designs {
		assert.False(t, seen[c.Sequence])
		seen[c.Sequence] = true
		if i > 0 {
			assert.GreaterOrEqual(t, designs[i-1].Robustness, c.Robustness)
		}
	}

	dev := ComputeDevelopability(binder, jobSeed.Stage(StageDevelopability))
	assert.GreaterOrEqual(t, dev.Composite, 0.0)
	assert.LessOrEqual(t, dev.Composite, 100.0)
	assert.Contains(t, []string{FlagPass, FlagWarn, FlagFail}, dev.Flag)

	// The whole pipeline is reproducible from the job seed.
	ensemble2 := GenerateEnsemble(binder, target, flexible, ensCfg, jobSeed.Stage(StageEnsemble))
	designs2 := DesignSequences(target, binder, ensemble2, flexible, searchCfg, DefaultScoreConfig(), jobSeed.Stage(StageDesign))
	assert.Equal(t, designs, designs2)
	assert.Equal(t, dev, ComputeDevelopability(binder, jobSeed.Stage(StageDevelopability)))
}
