package design

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/flexbind/flexbind/pdb"
)

// StateScore is one interface scoring record for one (target, binder state)
// pair. Immutable once produced. StateIndex is assigned by the caller; the
// ensemble scorer sets it positionally.
type StateScore struct {
	StateIndex   int     `json:"state_index"`
	ContactScore float64 `json:"contact_score"`
	ClashScore   float64 `json:"clash_score"`
	HBondProxy   float64 `json:"hbond_proxy"`
	SASABurial   float64 `json:"sasa_burial"`
	Composite    float64 `json:"composite"`
}

// Composite weights. The clash term is pre-scaled ×10 inside its weight so
// all four terms land on comparable magnitudes.
const (
	contactWeight = 0.35
	clashWeight   = 10.0 * 0.20
	hbondWeight   = 0.25
	burialWeight  = 0.20
)

// maxClashAtoms caps the all-atom clash computation per side. Larger
// structures are subsampled uniformly by index.
const maxClashAtoms = 3000

// burialCutoff is the Cβ neighbor distance treated as burying a binder
// residue in the buried-surface proxy.
const burialCutoff = 10.0

// ScoreInterface scores the binder–target interface with four independent
// geometric/chemical terms and a linear composite (higher = better binding):
//
//   - contact: Cβ–Cβ pairs within cfg.ContactCutoff, normalized by binder
//     residue count ×10, capped at 100
//   - clash: all-atom pairs within cfg.ClashCutoff; 1 − 0.5·count, floored at 0
//   - hbond: backbone N···O pairs within (cfg.HBondMin, cfg.HBondMax) in both
//     directions, ÷5, capped at 10
//   - burial: fraction of binder Cβ with a target Cβ within 10 Å, ×10
//
// A structure pair with no addressable Cβ/Cα atoms yields an all-zero record
// rather than an error, so scoring a heterogeneous ensemble never aborts on
// one degenerate state.
func ScoreInterface(target, binder *pdb.Structure, cfg ScoreConfig) StateScore {
	targetCB := contactCoords(target)
	binderCB := contactCoords(binder)
	if len(targetCB) == 0 || len(binderCB) == 0 {
		return StateScore{}
	}

	// Contact term.
	contactCut2 := cfg.ContactCutoff * cfg.ContactCutoff
	contacts := 0
	for _, t := range targetCB {
		for _, b := range binderCB {
			if r3.Norm2(r3.Sub(t, b)) < contactCut2 {
				contacts++
			}
		}
	}
	contactScore := math.Min(float64(contacts)/float64(len(binderCB))*10.0, 100.0)

	// Clash term over (subsampled) all-atom pairs.
	targetAll := subsample(allCoords(target), maxClashAtoms)
	binderAll := subsample(allCoords(binder), maxClashAtoms)
	clashCut2 := cfg.ClashCutoff * cfg.ClashCutoff
	clashes := 0
	for _, t := range targetAll {
		for _, b := range binderAll {
			if r3.Norm2(r3.Sub(t, b)) < clashCut2 {
				clashes++
			}
		}
	}
	clashScore := math.Max(0.0, 1.0-float64(clashes)*0.5)

	// Hydrogen-bond proxy, both donor→acceptor directions.
	hbonds := countHBonds(namedCoords(target, "N"), namedCoords(binder, "O"), cfg) +
		countHBonds(namedCoords(binder, "N"), namedCoords(target, "O"), cfg)
	hbondProxy := math.Min(float64(hbonds)/5.0, 10.0)

	// Buried-surface proxy.
	buried := 0
	burialCut2 := burialCutoff * burialCutoff
	for _, b := range binderCB {
		for _, t := range targetCB {
			if r3.Norm2(r3.Sub(t, b)) < burialCut2 {
				buried++
				break
			}
		}
	}
	sasaBurial := float64(buried) / float64(len(binderCB)) * 10.0

	composite := contactScore*contactWeight + clashScore*clashWeight +
		hbondProxy*hbondWeight + sasaBurial*burialWeight

	return StateScore{
		ContactScore: round2(contactScore),
		ClashScore:   round3(clashScore),
		HBondProxy:   round2(hbondProxy),
		SASABurial:   round2(sasaBurial),
		Composite:    round3(composite),
	}
}

// ScoreEnsemble applies ScoreInterface to every ensemble state in order,
// assigning StateIndex positionally.
func ScoreEnsemble(target *pdb.Structure, ensemble Ensemble, cfg ScoreConfig) []StateScore {
	scores := make([]StateScore, 0, len(ensemble))
	for i, state := range ensemble {
		ss := ScoreInterface(target, state, cfg)
		ss.StateIndex = i
		scores = append(scores, ss)
	}
	return scores
}

// contactCoords returns one Cβ coordinate per residue, substituting Cα where
// no Cβ exists. Residues with neither are skipped.
func contactCoords(s *pdb.Structure) []r3.Vec {
	coords := make([]r3.Vec, 0, s.NumResidues())
	for _, res := range s.Residues() {
		if pos, ok := s.ContactPos(res); ok {
			coords = append(coords, pos)
		}
	}
	return coords
}

// allCoords returns every atom coordinate in arena order.
func allCoords(s *pdb.Structure) []r3.Vec {
	atoms := s.Atoms()
	coords := make([]r3.Vec, len(atoms))
	for i, a := range atoms {
		coords[i] = a.Pos
	}
	return coords
}

// namedCoords returns the coordinates of atoms with the exact given name.
func namedCoords(s *pdb.Structure, name string) []r3.Vec {
	var coords []r3.Vec
	for _, a := range s.Atoms() {
		if a.Name == name {
			coords = append(coords, a.Pos)
		}
	}
	return coords
}

// subsample uniformly picks at most max coordinates by evenly spaced indices.
func subsample(coords []r3.Vec, max int) []r3.Vec {
	n := len(coords)
	if n <= max {
		return coords
	}
	out := make([]r3.Vec, max)
	for i := 0; i < max; i++ {
		out[i] = coords[int(float64(i)*float64(n-1)/float64(max-1))]
	}
	return out
}

// countHBonds counts donor–acceptor pairs strictly inside the hbond distance
// window.
func countHBonds(donors, acceptors []r3.Vec, cfg ScoreConfig) int {
	min2 := cfg.HBondMin * cfg.HBondMin
	max2 := cfg.HBondMax * cfg.HBondMax
	count := 0
	for _, d := range donors {
		for _, a := range acceptors {
			d2 := r3.Norm2(r3.Sub(d, a))
			if d2 > min2 && d2 < max2 {
				count++
			}
		}
	}
	return count
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
