package design

import "github.com/flexbind/flexbind/pdb"

// EnsembleConfig groups conformational sampling parameters for GenerateEnsemble.
type EnsembleConfig struct {
	Samples         int     // raw samples drawn, including the unperturbed binder (must be ≥ 1)
	Clusters        int     // representative states kept after clustering
	Magnitude       float64 // std-dev of the Gaussian backbone displacement (Ångström)
	RelaxIterations int     // geometric relaxation passes applied to each perturbed sample
}

// DefaultEnsembleConfig returns the standard sampling parameters.
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{Samples: 10, Clusters: 5, Magnitude: 0.8, RelaxIterations: 40}
}

// ScoreConfig groups interface scoring distance cutoffs for ScoreInterface.
type ScoreConfig struct {
	ContactCutoff float64 // Cβ–Cβ contact distance (Ångström)
	ClashCutoff   float64 // all-atom clash distance
	HBondMin      float64 // backbone N···O lower bound
	HBondMax      float64 // backbone N···O upper bound
}

// DefaultScoreConfig returns the standard interface scoring cutoffs.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{ContactCutoff: 8.0, ClashCutoff: 2.0, HBondMin: 2.5, HBondMax: 3.5}
}

// SearchConfig groups sequence design search parameters for DesignSequences.
type SearchConfig struct {
	Candidates int // designs returned after final ranking
	BeamWidth  int // beam entries kept per position

	// Fixed positions are excluded from mutation even when designable.
	Fixed map[pdb.ResidueKey]bool

	// Allowed restricts candidate amino acids per position. A nil entry
	// leaves the position unrestricted.
	Allowed map[pdb.ResidueKey]map[byte]bool

	// ForbidGlycosylation drops designs containing an N-X-S/T motif (X ≠ P).
	ForbidGlycosylation bool
}

// DefaultSearchConfig returns the standard design search parameters.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{Candidates: 10, BeamWidth: 3, ForbidGlycosylation: true}
}
