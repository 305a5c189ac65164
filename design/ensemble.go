package design

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/flexbind/flexbind/pdb"
)

// Ensemble is an ordered list of conformational states of a binder. All
// states share the seed structure's chain/residue/atom topology and differ
// only in coordinates at flexible positions. State 0 of the raw sample set is
// always the unperturbed binder. Read-only once generated.
type Ensemble []*pdb.Structure

// rmsdSentinel is returned when two samples do not expose the same flexible
// backbone atom set. Clustering quality degrades instead of the job aborting;
// with matching topology the sentinel never occurs.
const rmsdSentinel = 999.0

// GenerateEnsemble perturbs the binder's flexible backbone, relaxes each
// sample geometrically, and reduces the sample set to representative states
// by RMSD clustering. The target structure is part of the generation contract
// but does not influence the purely binder-side sampling.
//
// With cfg.Samples ≤ cfg.Clusters every sample is returned as-is; otherwise
// min(cfg.Clusters, cfg.Samples) cluster medoids are returned, ordered by
// cluster id ascending. The binder itself is never modified.
func GenerateEnsemble(binder, target *pdb.Structure, flexible []pdb.ResidueKey, cfg EnsembleConfig, seed Seed) Ensemble {
	rng := seed.Rand()

	samples := make([]*pdb.Structure, 0, cfg.Samples)
	samples = append(samples, binder.Clone())
	for i := 1; i < cfg.Samples; i++ {
		s := perturb(binder, flexible, rng, cfg.Magnitude)
		relax(s, flexible, cfg.RelaxIterations)
		samples = append(samples, s)
	}

	if len(samples) <= cfg.Clusters {
		return samples
	}

	dist := distanceMatrix(samples, flexible)
	clusters := clusterAverageLinkage(dist, min(cfg.Clusters, len(samples)))

	representatives := make(Ensemble, 0, len(clusters))
	for _, members := range clusters {
		representatives = append(representatives, samples[medoid(dist, members)])
	}
	return representatives
}

// perturb returns a copy of the binder with independent Gaussian noise added
// to every backbone atom of every flexible residue.
func perturb(binder *pdb.Structure, flexible []pdb.ResidueKey, rng *rand.Rand, magnitude float64) *pdb.Structure {
	s := binder.Clone()
	flexSet := keySet(flexible)
	for _, res := range s.Residues() {
		if !flexSet[res.Key] {
			continue
		}
		for _, atom := range s.ResidueAtoms(res) {
			if !pdb.IsBackboneAtom(atom.Name) {
				continue
			}
			noise := r3.Vec{
				X: rng.NormFloat64() * magnitude,
				Y: rng.NormFloat64() * magnitude,
				Z: rng.NormFloat64() * magnitude,
			}
			s.SetAtomPos(res.Key, atom.Name, r3.Add(atom.Pos, noise))
		}
	}
	return s
}

// relax runs a fixed-iteration geometric strain reduction in place: each
// flexible residue's Cα is pulled 30% of the way toward the centroid of its
// own N/C atoms and the previous residue's Cα in chain order. Deterministic
// given the perturbed input; not an energy minimization.
func relax(s *pdb.Structure, flexible []pdb.ResidueKey, iterations int) {
	flexSet := keySet(flexible)
	residues := s.Residues()

	for it := 0; it < iterations; it++ {
		var prevCA *r3.Vec
		prevChain := ""
		for _, res := range residues {
			if res.Key.Chain != prevChain {
				prevCA = nil
				prevChain = res.Key.Chain
			}
			ca, ok := s.AtomPos(res.Key, "CA")
			if !ok {
				prevCA = nil
				continue
			}

			if flexSet[res.Key] {
				var neighbors []r3.Vec
				for _, name := range [...]string{"N", "C"} {
					if p, ok := s.AtomPos(res.Key, name); ok {
						neighbors = append(neighbors, p)
					}
				}
				if prevCA != nil {
					neighbors = append(neighbors, *prevCA)
				}
				if len(neighbors) > 0 {
					centroid := r3.Vec{}
					for _, p := range neighbors {
						centroid = r3.Add(centroid, p)
					}
					centroid = r3.Scale(1.0/float64(len(neighbors)), centroid)
					ca = r3.Add(r3.Scale(0.7, ca), r3.Scale(0.3, centroid))
					s.SetAtomPos(res.Key, "CA", ca)
				}
			}

			caCopy := ca
			prevCA = &caCopy
		}
	}
}

// RMSD computes backbone root-mean-square deviation over flexible residues
// between two ensemble samples. Samples exposing different flexible atom
// counts yield the 999.0 sentinel rather than an error.
func RMSD(a, b *pdb.Structure, flexible []pdb.ResidueKey) float64 {
	ca := flexibleBackboneCoords(a, flexible)
	cb := flexibleBackboneCoords(b, flexible)
	if len(ca) != len(cb) || len(ca) == 0 {
		return rmsdSentinel
	}
	sum := 0.0
	for i := range ca {
		sum += r3.Norm2(r3.Sub(ca[i], cb[i]))
	}
	return math.Sqrt(sum / float64(len(ca)))
}

// flexibleBackboneCoords collects backbone atom coordinates of flexible
// residues in structure order.
func flexibleBackboneCoords(s *pdb.Structure, flexible []pdb.ResidueKey) []r3.Vec {
	flexSet := keySet(flexible)
	var coords []r3.Vec
	for _, res := range s.Residues() {
		if !flexSet[res.Key] {
			continue
		}
		for _, atom := range s.ResidueAtoms(res) {
			if pdb.IsBackboneAtom(atom.Name) {
				coords = append(coords, atom.Pos)
			}
		}
	}
	return coords
}

// distanceMatrix builds the full symmetric pairwise RMSD matrix over samples.
func distanceMatrix(samples []*pdb.Structure, flexible []pdb.ResidueKey) *mat.SymDense {
	n := len(samples)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, RMSD(samples[i], samples[j], flexible))
		}
	}
	return d
}

func keySet(keys []pdb.ResidueKey) map[pdb.ResidueKey]bool {
	set := make(map[pdb.ResidueKey]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
