package design

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/flexbind/flexbind/pdb"
)

// aaAlphabet lists the twenty standard amino acids (single letter,
// alphabetical).
const aaAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// aaGroup is a closed physico-chemical classification of amino acids.
type aaGroup uint8

const (
	groupHydrophobic aaGroup = iota
	groupPolar
	groupPositive
	groupNegative
	groupSpecial
)

// groupMembers lists the members of each group, in candidate priority order.
var groupMembers = [...]string{
	groupHydrophobic: "AVILMFYW",
	groupPolar:       "STNQ",
	groupPositive:    "KRH",
	groupNegative:    "DE",
	groupSpecial:     "CGP",
}

// aaGroupOf is a precomputed total mapping from amino acid to group. Built in
// init from groupMembers so the two can never disagree.
var aaGroupOf = map[byte]aaGroup{}

func init() {
	for g, members := range groupMembers {
		for i := 0; i < len(members); i++ {
			aaGroupOf[members[i]] = aaGroup(g)
		}
	}
}

// crossGroupCandidates is how many out-of-group amino acids are appended to a
// position's candidate list for diversity.
const crossGroupCandidates = 4

// maxBeamPositions caps how many mutable positions the beam search visits,
// bounding worst-case work per job.
const maxBeamPositions = 8

// maxBeamCandidates caps the per-position candidate list inside the beam
// (the diversification pass uses the uncapped list).
const maxBeamCandidates = 5

// diversifyMutationRate is the per-position mutation probability in the
// random diversification pass.
const diversifyMutationRate = 0.4

// Mutation overrides exactly one residue's amino-acid identity.
type Mutation struct {
	Key pdb.ResidueKey
	AA  byte
}

// String renders the mutation as e.g. "A30K" (chain, residue number, new
// amino acid).
func (m Mutation) String() string {
	return fmt.Sprintf("%s%d%c", m.Key.Chain, m.Key.Seq, m.AA)
}

// Candidate is one scored sequence design. Candidates are deduplicated by
// their designable-position sequence and ranked by robustness.
type Candidate struct {
	Sequence   string       `json:"sequence"`
	Mutations  string       `json:"mutations"`
	MeanScore  float64      `json:"mean_score"`
	WorstScore float64      `json:"worst_score"`
	Robustness float64      `json:"robustness"`
	PerState   []StateScore `json:"per_state_scores"`
}

// smartCandidates returns mutation candidates for a position, biased toward
// physico-chemically similar residues: same-group substitutions first, then a
// few cross-group options, optionally restricted to an allow-list.
func smartCandidates(current byte, allowed map[byte]bool) []byte {
	primary := groupMembers[aaGroupOf[current]]

	var candidates []byte
	for i := 0; i < len(primary); i++ {
		if primary[i] != current {
			candidates = append(candidates, primary[i])
		}
	}
	added := 0
	for i := 0; i < len(aaAlphabet) && added < crossGroupCandidates; i++ {
		if !strings.ContainsRune(primary, rune(aaAlphabet[i])) {
			candidates = append(candidates, aaAlphabet[i])
			added++
		}
	}

	if allowed == nil {
		return candidates
	}
	filtered := candidates[:0]
	for _, aa := range candidates {
		if allowed[aa] {
			filtered = append(filtered, aa)
		}
	}
	return filtered
}

// hasGlycosylationMotif reports whether seq contains the N-linked
// glycosylation motif N-X-S/T with X ≠ P, scanned over every 3-residue
// window.
func hasGlycosylationMotif(seq string) bool {
	for i := 0; i+2 < len(seq); i++ {
		if seq[i] == 'N' && seq[i+1] != 'P' && (seq[i+2] == 'S' || seq[i+2] == 'T') {
			return true
		}
	}
	return false
}

// applyMutations returns a copy of s with each mutation's residue relabeled.
// Identity substitution only: backbone and Cβ coordinates are unchanged,
// which the contact/clash/hbond terms are insensitive to.
func applyMutations(s *pdb.Structure, muts []Mutation) *pdb.Structure {
	c := s.Clone()
	for _, m := range muts {
		c.SetResidueName(m.Key, pdb.AminoOneToThree[m.AA])
	}
	return c
}

// scoreMultiState applies a mutation set to every ensemble state and scores
// each against the target, returning the mean and worst composite plus the
// per-state records.
func scoreMultiState(target *pdb.Structure, ensemble Ensemble, muts []Mutation, cfg ScoreConfig) (mean, worst float64, perState []StateScore) {
	composites := make([]float64, 0, len(ensemble))
	perState = make([]StateScore, 0, len(ensemble))
	for i, state := range ensemble {
		scored := state
		if len(muts) > 0 {
			scored = applyMutations(state, muts)
		}
		ss := ScoreInterface(target, scored, cfg)
		ss.StateIndex = i
		perState = append(perState, ss)
		composites = append(composites, ss.Composite)
	}
	return stat.Mean(composites, nil), floats.Min(composites), perState
}

// robustness blends worst-case and mean multi-state score, favoring designs
// that stay good in their least favorable conformation.
func robustness(mean, worst float64) float64 { return 0.6*worst + 0.4*mean }

// beamState is an immutable beam entry: a mutation set and its robustness.
type beamState struct {
	muts  []Mutation
	score float64
}

// DesignSequences searches point-mutation space at the designable positions
// with a beam search scored across every ensemble state, supplements the beam
// output with randomly diversified candidates, filters forbidden motifs and
// duplicate sequences, and returns up to cfg.Candidates designs ranked by
// robustness descending.
//
// If no mutable positions remain after removing cfg.Fixed, the wild-type
// binder is scored and returned as the single candidate. Results are fully
// reproducible given identical seed, inputs, and configuration.
func DesignSequences(target, binder *pdb.Structure, ensemble Ensemble, designable []pdb.ResidueKey, cfg SearchConfig, scoreCfg ScoreConfig, seed Seed) []Candidate {
	rng := seed.Rand()

	mutable := make([]pdb.ResidueKey, 0, len(designable))
	for _, key := range designable {
		if !cfg.Fixed[key] {
			mutable = append(mutable, key)
		}
	}

	if len(mutable) == 0 {
		mean, worst, perState := scoreMultiState(target, ensemble, nil, scoreCfg)
		return []Candidate{{
			Sequence:   binder.SequenceAt(designable),
			Mutations:  "wildtype",
			MeanScore:  round3(mean),
			WorstScore: round3(worst),
			Robustness: round3(robustness(mean, worst)),
			PerState:   perState,
		}}
	}

	if len(mutable) > maxBeamPositions {
		mutable = mutable[:maxBeamPositions]
	}

	beam := []beamState{{}}
	for _, key := range mutable {
		current := wildTypeAt(binder, key)
		if current == 0 {
			continue
		}

		candidates := smartCandidates(current, cfg.Allowed[key])
		if len(candidates) > maxBeamCandidates {
			candidates = candidates[:maxBeamCandidates]
		}
		candidates = append([]byte{current}, candidates...)

		newBeam := make([]beamState, 0, len(beam)*len(candidates))
		for _, entry := range beam {
			for _, aa := range candidates {
				muts := entry.muts
				if aa != current {
					muts = append(append(make([]Mutation, 0, len(entry.muts)+1), entry.muts...),
						Mutation{Key: key, AA: aa})
				}
				mean, worst, _ := scoreMultiState(target, ensemble, muts, scoreCfg)
				newBeam = append(newBeam, beamState{muts: muts, score: robustness(mean, worst)})
			}
		}
		sort.SliceStable(newBeam, func(i, j int) bool { return newBeam[i].score > newBeam[j].score })
		if len(newBeam) > cfg.BeamWidth {
			newBeam = newBeam[:cfg.BeamWidth]
		}
		beam = newBeam
	}

	seen := make(map[string]bool)
	var results []Candidate
	for _, entry := range beam {
		if c, ok := finalizeCandidate(target, binder, ensemble, designable, entry.muts, cfg, scoreCfg, seen); ok {
			results = append(results, c)
		}
	}

	// Diversification: random mutation sets drawn from the same per-position
	// candidate lists.
	for draw := 0; draw < min(cfg.Candidates, 20); draw++ {
		var muts []Mutation
		for _, key := range mutable {
			current := wildTypeAt(binder, key)
			if current == 0 {
				continue
			}
			if rng.Float64() < diversifyMutationRate {
				candidates := smartCandidates(current, cfg.Allowed[key])
				if len(candidates) > 0 {
					muts = append(muts, Mutation{Key: key, AA: candidates[rng.Intn(len(candidates))]})
				}
			}
		}
		if len(muts) == 0 {
			continue
		}
		if c, ok := finalizeCandidate(target, binder, ensemble, designable, muts, cfg, scoreCfg, seen); ok {
			results = append(results, c)
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Robustness > results[j].Robustness })
	if len(results) > cfg.Candidates {
		results = results[:cfg.Candidates]
	}
	return results
}

// finalizeCandidate scores a mutation set across the ensemble, renders the
// full designable-position sequence, and applies the glycosylation and
// duplicate filters. ok is false when the candidate is filtered out.
func finalizeCandidate(target, binder *pdb.Structure, ensemble Ensemble, designable []pdb.ResidueKey, muts []Mutation, cfg SearchConfig, scoreCfg ScoreConfig, seen map[string]bool) (Candidate, bool) {
	mean, worst, perState := scoreMultiState(target, ensemble, muts, scoreCfg)

	designed := binder
	if len(muts) > 0 {
		designed = applyMutations(binder, muts)
	}
	seq := designed.SequenceAt(designable)

	if cfg.ForbidGlycosylation && hasGlycosylationMotif(seq) {
		return Candidate{}, false
	}
	if seen[seq] {
		return Candidate{}, false
	}
	seen[seq] = true

	return Candidate{
		Sequence:   seq,
		Mutations:  mutationString(muts),
		MeanScore:  round3(mean),
		WorstScore: round3(worst),
		Robustness: round3(robustness(mean, worst)),
		PerState:   perState,
	}, true
}

// wildTypeAt returns the binder's current amino acid at key, or 0 when the
// residue is missing or has no standard single letter code.
func wildTypeAt(binder *pdb.Structure, key pdb.ResidueKey) byte {
	res, ok := binder.Residue(key)
	if !ok {
		return 0
	}
	aa, ok := pdb.AminoThreeToOne[res.Name]
	if !ok {
		return 0
	}
	return aa
}

func mutationString(muts []Mutation) string {
	if len(muts) == 0 {
		return "wildtype"
	}
	parts := make([]string, len(muts))
	for i, m := range muts {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
