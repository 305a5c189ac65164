package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexbind/flexbind/internal/testutil"
	"github.com/flexbind/flexbind/pdb"
)

func TestSmartCandidates(t *testing.T) {
	// Hydrophobic position: same-group first, then the first four out-of-group
	// residues in alphabet order.
	assert.Equal(t, []byte("VILMFYWCDEG"), smartCandidates('A', nil))

	// Polar position.
	assert.Equal(t, []byte("TNQACDE"), smartCandidates('S', nil))

	// Allow-list filters the candidate pool without reordering it.
	allowed := map[byte]bool{'G': true, 'V': true}
	assert.Equal(t, []byte("VG"), smartCandidates('A', allowed))

	// An allow-list with no overlap empties the pool.
	assert.Empty(t, smartCandidates('A', map[byte]bool{'A': true}))
}

func TestHasGlycosylationMotif(t *testing.T) {
	tests := []struct {
		seq  string
		want bool
	}{
		{"NAT", true},
		{"NGS", true},
		{"ANFS", true},  // motif at offset 1
		{"ANFST", true},
		{"NPT", false},  // proline blocks the motif
		{"NAA", false},  // third position must be S/T
		{"NA", false},   // too short
		{"AAAA", false}, // no asparagine
		{"KANCSA", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, hasGlycosylationMotif(tc.seq), "seq %q", tc.seq)
	}
}

func TestMutationString(t *testing.T) {
	assert.Equal(t, "wildtype", mutationString(nil))

	muts := []Mutation{
		{Key: pdb.ResidueKey{Chain: "B", Seq: 2}, AA: 'K'},
		{Key: pdb.ResidueKey{Chain: "B", Seq: 5}, AA: 'W'},
	}
	assert.Equal(t, "B2K, B5W", mutationString(muts))
}

func TestApplyMutations_RelabelsWithoutMovingAtoms(t *testing.T) {
	binder := testutil.BuildStructure(testutil.StrandResidues(3, []string{"ALA", "SER", "LYS"}, 0, 0))
	key := pdb.ResidueKey{Chain: "B", Seq: 2}

	mutated := applyMutations(binder, []Mutation{{Key: key, AA: 'W'}})

	res, ok := mutated.Residue(key)
	require.True(t, ok)
	assert.Equal(t, "TRP", res.Name)

	orig, _ := binder.Residue(key)
	assert.Equal(t, "SER", orig.Name, "source structure must stay untouched")

	for i, a := range binder.Atoms() {
		assert.Equal(t, a.Pos, mutated.Atoms()[i].Pos)
	}
}

func designFixtures() (target, binder *pdb.Structure, ensemble Ensemble, designable []pdb.ResidueKey) {
	target = testutil.BuildStructure(testutil.HelixResidues(5, []string{"ALA", "SER", "LYS"}))
	binder = testutil.BuildStructure(testutil.StrandResidues(5, []string{"ALA", "LYS", "SER", "LEU", "THR"}, 7.0, 0))
	designable = binder.ResidueKeys()

	cfg := EnsembleConfig{Samples: 4, Clusters: 2, Magnitude: 0.6, RelaxIterations: 8}
	ensemble = GenerateEnsemble(binder, target, designable, cfg, Seed(42))
	return
}

func TestDesignSequences_RankedUniqueCandidates(t *testing.T) {
	target, binder, ensemble, designable := designFixtures()

	cfg := SearchConfig{Candidates: 5, BeamWidth: 3, ForbidGlycosylation: true}
	results := DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(42))

	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), cfg.Candidates)

	seen := map[string]bool{}
	for i, c := range results {
		assert.False(t, seen[c.Sequence], "duplicate sequence %q", c.Sequence)
		seen[c.Sequence] = true
		assert.Len(t, c.Sequence, len(designable))
		assert.Len(t, c.PerState, len(ensemble))
		assert.False(t, hasGlycosylationMotif(c.Sequence))
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Robustness, c.Robustness,
				"candidates must be ranked by robustness descending")
		}
		// Robustness blends worst and mean.
		assert.InDelta(t, 0.6*c.WorstScore+0.4*c.MeanScore, c.Robustness, 2e-3)
		assert.LessOrEqual(t, c.WorstScore, c.MeanScore)
	}
}

func TestDesignSequences_Deterministic(t *testing.T) {
	target, binder, ensemble, designable := designFixtures()
	cfg := SearchConfig{Candidates: 4, BeamWidth: 2, ForbidGlycosylation: true}

	a := DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(99))
	b := DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(99))
	assert.Equal(t, a, b)
}

func TestDesignSequences_AllPositionsFixed(t *testing.T) {
	target, binder, ensemble, designable := designFixtures()

	fixed := make(map[pdb.ResidueKey]bool, len(designable))
	for _, key := range designable {
		fixed[key] = true
	}
	cfg := SearchConfig{Candidates: 5, BeamWidth: 3, Fixed: fixed, ForbidGlycosylation: true}

	results := DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(42))
	require.Len(t, results, 1)
	assert.Equal(t, "wildtype", results[0].Mutations)
	assert.Equal(t, "AKSLT", results[0].Sequence)
}

func TestDesignSequences_GlycosylationFilterDropsWildType(t *testing.T) {
	// Wild-type sequence NAS carries the motif, so even the identity design
	// must be filtered out.
	target := testutil.BuildStructure(testutil.HelixResidues(3, []string{"ALA"}))
	binder := testutil.BuildStructure(testutil.StrandResidues(3, []string{"ASN", "ALA", "SER"}, 7.0, 0))
	designable := binder.ResidueKeys()
	ensemble := Ensemble{binder.Clone()}

	cfg := SearchConfig{Candidates: 5, BeamWidth: 3, ForbidGlycosylation: true}
	results := DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(42))

	for _, c := range results {
		assert.False(t, hasGlycosylationMotif(c.Sequence), "design %q carries the forbidden motif", c.Sequence)
		assert.NotEqual(t, "NAS", c.Sequence)
	}

	// Allowing the motif readmits the wild type.
	cfg.ForbidGlycosylation = false
	results = DesignSequences(target, binder, ensemble, designable, cfg, DefaultScoreConfig(), Seed(42))
	found := false
	for _, c := range results {
		if hasGlycosylationMotif(c.Sequence) {
			found = true
		}
	}
	assert.True(t, found, "with the filter off, motif-bearing designs must be eligible")
}

func TestWildTypeAt(t *testing.T) {
	binder := testutil.BuildStructure(testutil.StrandResidues(2, []string{"ALA", "LYS"}, 0, 0))

	assert.Equal(t, byte('A'), wildTypeAt(binder, pdb.ResidueKey{Chain: "B", Seq: 1}))
	assert.Equal(t, byte('K'), wildTypeAt(binder, pdb.ResidueKey{Chain: "B", Seq: 2}))
	assert.Equal(t, byte(0), wildTypeAt(binder, pdb.ResidueKey{Chain: "B", Seq: 9}))
}
