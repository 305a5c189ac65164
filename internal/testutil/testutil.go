// Package testutil provides shared test infrastructure for the FlexBind
// pipeline: synthetic structure fixtures and float assertion helpers used
// across the pdb, design, and job test packages.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/flexbind/flexbind/pdb"
)

// ResidueFixture describes one residue for BuildStructure by its Cα position.
type ResidueFixture struct {
	Chain string
	Seq   int
	Name  string // three letter amino-acid code
	CA    r3.Vec
}

// BuildStructure creates a synthetic structure with a full backbone (N, CA,
// C, O) and a Cβ (except glycine) placed at fixed offsets from each residue's
// Cα. Offsets are small enough that atoms stay near their residue and large
// enough that backbone N···O pairs across a docked interface can fall in the
// hydrogen-bond window.
func BuildStructure(residues []ResidueFixture) *pdb.Structure {
	var atoms []pdb.Atom
	serial := 0
	add := func(r ResidueFixture, name string, pos r3.Vec, element string) {
		serial++
		atoms = append(atoms, pdb.Atom{
			Serial:  serial,
			Name:    name,
			ResName: r.Name,
			Chain:   r.Chain,
			ResSeq:  r.Seq,
			Pos:     pos,
			Element: element,
		})
	}
	for _, r := range residues {
		add(r, "N", r3.Add(r.CA, r3.Vec{X: -1.2, Y: 0.4}), "N")
		add(r, "CA", r.CA, "C")
		add(r, "C", r3.Add(r.CA, r3.Vec{X: 1.2, Y: 0.4}), "C")
		add(r, "O", r3.Add(r.CA, r3.Vec{X: 1.8, Y: 1.4}), "O")
		if r.Name != "GLY" {
			add(r, "CB", r3.Add(r.CA, r3.Vec{Y: -1.5, Z: 0.5}), "C")
		}
	}
	return pdb.NewStructure(atoms)
}

// HelixResidues lays n residues of chain "T" on an ideal α-helical Cα trace
// (2.3 Å radius, 100° twist, 1.5 Å rise) with the given amino acids cycled.
func HelixResidues(n int, names []string) []ResidueFixture {
	residues := make([]ResidueFixture, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 100.0 * math.Pi / 180.0
		residues[i] = ResidueFixture{
			Chain: "T",
			Seq:   i + 1,
			Name:  names[i%len(names)],
			CA: r3.Vec{
				X: 2.3 * math.Cos(angle),
				Y: 2.3 * math.Sin(angle),
				Z: 1.5 * float64(i),
			},
		}
	}
	return residues
}

// StrandResidues lays n residues of chain "B" on an extended strand running
// along x (3.5 Å Cα spacing) at the given y/z offset from the origin.
func StrandResidues(n int, names []string, y, z float64) []ResidueFixture {
	residues := make([]ResidueFixture, n)
	for i := 0; i < n; i++ {
		residues[i] = ResidueFixture{
			Chain: "B",
			Seq:   i + 1,
			Name:  names[i%len(names)],
			CA:    r3.Vec{X: float64(i) * 3.5, Y: y, Z: z},
		}
	}
	return residues
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
