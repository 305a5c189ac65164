package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/flexbind/flexbind/internal/testutil"
	"github.com/flexbind/flexbind/pdb"
)

func TestScoreInterface_SingleContactPair(t *testing.T) {
	// Two glycines docked so that exactly one backbone N···O pair sits at
	// 3.0 Å. Glycine keeps the term geometry hand-checkable: no Cβ, so the
	// contact and burial terms both use Cα.
	target := testutil.BuildStructure([]testutil.ResidueFixture{
		{Chain: "T", Seq: 1, Name: "GLY", CA: r3.Vec{}},
	})
	binder := testutil.BuildStructure([]testutil.ResidueFixture{
		{Chain: "B", Seq: 1, Name: "GLY", CA: r3.Vec{X: -3.0, Y: 2.0}},
	})

	ss := ScoreInterface(target, binder, DefaultScoreConfig())

	// 1 contact / 1 binder residue * 10.
	assert.Equal(t, 10.0, ss.ContactScore)
	// No atom pair below 2 Å.
	assert.Equal(t, 1.0, ss.ClashScore)
	// 1 N···O pair inside (2.5, 3.5), / 5.
	assert.Equal(t, 0.2, ss.HBondProxy)
	// The single binder residue has a target neighbor within 10 Å.
	assert.Equal(t, 10.0, ss.SASABurial)
	// 10*0.35 + 1*2.0 + 0.2*0.25 + 10*0.20
	testutil.AssertFloat64Equal(t, "composite", 7.55, ss.Composite, 1e-9)
}

func TestScoreInterface_DegenerateStructure(t *testing.T) {
	// A structure with no Cα/Cβ atoms cannot be scored; the record is all
	// zeros rather than an error.
	target := testutil.BuildStructure([]testutil.ResidueFixture{
		{Chain: "T", Seq: 1, Name: "ALA", CA: r3.Vec{}},
	})
	bare := pdb.NewStructure([]pdb.Atom{
		{Name: "N", ResName: "ALA", Chain: "B", ResSeq: 1, Pos: r3.Vec{Y: 3}},
	})

	assert.Equal(t, StateScore{}, ScoreInterface(target, bare, DefaultScoreConfig()))
	assert.Equal(t, StateScore{}, ScoreInterface(bare, target, DefaultScoreConfig()))
}

func TestScoreInterface_ClashMonotonicity(t *testing.T) {
	target := testutil.BuildStructure(testutil.HelixResidues(4, []string{"ALA", "SER"}))

	// Fully overlapping copy: every atom pair at distance 0.
	overlap := ScoreInterface(target, target.Clone(), DefaultScoreConfig())
	// Far-away copy: no pair below the clash cutoff.
	apart := ScoreInterface(target, target.MapCoords(func(p r3.Vec) r3.Vec {
		return r3.Add(p, r3.Vec{X: 100})
	}), DefaultScoreConfig())

	assert.Equal(t, 0.0, overlap.ClashScore)
	assert.Equal(t, 1.0, apart.ClashScore)
	assert.LessOrEqual(t, overlap.ClashScore, apart.ClashScore)

	// Far apart means no contacts, no hbonds, no burial either.
	assert.Equal(t, 0.0, apart.ContactScore)
	assert.Equal(t, 0.0, apart.HBondProxy)
	assert.Equal(t, 0.0, apart.SASABurial)
	assert.InDelta(t, 2.0, apart.Composite, 1e-9)
}

func TestScoreEnsemble_AssignsStateIndices(t *testing.T) {
	target := testutil.BuildStructure(testutil.HelixResidues(3, []string{"ALA"}))
	binder := testutil.BuildStructure(testutil.StrandResidues(3, []string{"SER"}, 7.0, 0))

	ensemble := Ensemble{binder, binder.Clone()}
	scores := ScoreEnsemble(target, ensemble, DefaultScoreConfig())

	require.Len(t, scores, 2)
	assert.Equal(t, 0, scores[0].StateIndex)
	assert.Equal(t, 1, scores[1].StateIndex)
	// Identical states score identically apart from the index.
	s0, s1 := scores[0], scores[1]
	s1.StateIndex = 0
	assert.Equal(t, s0, s1)
}

func TestSubsample_CapsLength(t *testing.T) {
	coords := make([]r3.Vec, 10)
	for i := range coords {
		coords[i] = r3.Vec{X: float64(i)}
	}

	// Under the cap: returned untouched.
	assert.Len(t, subsample(coords, 10), 10)

	out := subsample(coords, 4)
	require.Len(t, out, 4)
	// Evenly spaced by index, endpoints included.
	assert.Equal(t, 0.0, out[0].X)
	assert.Equal(t, 3.0, out[1].X)
	assert.Equal(t, 6.0, out[2].X)
	assert.Equal(t, 9.0, out[3].X)
}
