package design

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/flexbind/flexbind/pdb"
)

// Kyte-Doolittle hydrophobicity (higher = more hydrophobic).
var hydrophobicity = map[byte]float64{
	'I': 4.5, 'V': 4.2, 'L': 3.8, 'F': 2.8, 'C': 2.5,
	'M': 1.9, 'A': 1.8, 'G': -0.4, 'T': -0.7, 'S': -0.8,
	'W': -0.9, 'Y': -1.3, 'P': -1.6, 'H': -3.2, 'E': -3.5,
	'Q': -3.5, 'D': -3.5, 'N': -3.5, 'K': -3.9, 'R': -4.5,
}

// Chou-Fasman β-sheet propensity (normalized; >1.2 = elevated risk).
var betaPropensity = map[byte]float64{
	'V': 1.70, 'I': 1.60, 'Y': 1.47, 'F': 1.38, 'W': 1.37,
	'L': 1.30, 'T': 1.19, 'C': 1.19, 'Q': 1.10, 'M': 1.05,
	'R': 0.93, 'N': 0.89, 'H': 0.87, 'A': 0.83, 'S': 0.75,
	'G': 0.75, 'K': 0.74, 'D': 0.54, 'P': 0.55, 'E': 0.37,
}

// Side-chain and termini pKa values for charge and pI calculation.
const (
	pKaNTerm = 9.69
	pKaCTerm = 2.34
)

var pKaSide = map[byte]float64{
	'D': 3.65, 'E': 4.25, 'C': 8.18, 'Y': 10.07,
	'H': 6.00, 'K': 10.53, 'R': 12.48,
}

// selfDockOrientations is the number of random orientations tried by the
// self-dock risk proxy.
const selfDockOrientations = 4

// Developability flag categories.
const (
	FlagPass = "PASS"
	FlagWarn = "WARN"
	FlagFail = "FAIL"
)

// Assessment aggregates five biophysical manufacturability risk terms into a
// 0–100 composite and a categorical flag. Computed once per job on the
// unmutated binder; design mutations do not alter it.
type Assessment struct {
	HydrophobicPatch float64 `json:"hydrophobic_patch"`
	NetCharge        float64 `json:"net_charge"`
	PI               float64 `json:"pI"`
	BetaPropensity   float64 `json:"beta_propensity"`
	SelfDockRisk     float64 `json:"self_dock_risk"`
	Composite        float64 `json:"composite"`
	Flag             string  `json:"flag"`
}

// ComputeDevelopability assesses the binder's aggregation, charge, and
// self-association liabilities. The composite starts at 100 and loses
// weighted penalty points per out-of-range term, clamped to [0, 100]:
// ≥70 PASS, ≥40 WARN, else FAIL.
func ComputeDevelopability(binder *pdb.Structure, seed Seed) Assessment {
	seq := binder.Sequence()

	hp := hydrophobicPatch(seq)
	charge := round2(netChargeAtPH(seq, 7.4))
	pI := isoelectricPoint(seq)
	beta := betaSheetPropensity(seq)
	selfRisk := selfDockRisk(binder, selfDockOrientations, seed.Rand())

	penalties := 0.0
	if hp > 0.30 {
		penalties += (hp - 0.30) * 100
	}
	if charge < -2 || charge > 8 {
		penalties += math.Min(math.Abs(charge), 10) * 1.5
	}
	if pI < 5 || pI > 10 {
		penalties += 10
	}
	if beta > 1.2 {
		penalties += (beta - 1.2) * 30
	}
	if selfRisk > 3.0 {
		penalties += (selfRisk - 3.0) * 5
	}

	composite := round1(math.Max(0.0, math.Min(100.0, 100.0-penalties)))

	flag := FlagFail
	switch {
	case composite >= 70:
		flag = FlagPass
	case composite >= 40:
		flag = FlagWarn
	}

	return Assessment{
		HydrophobicPatch: hp,
		NetCharge:        charge,
		PI:               pI,
		BetaPropensity:   beta,
		SelfDockRisk:     selfRisk,
		Composite:        composite,
		Flag:             flag,
	}
}

// hydrophobicPatch returns the fraction of residues that are strongly
// hydrophobic (Kyte-Doolittle > 2.0).
func hydrophobicPatch(seq string) float64 {
	if len(seq) == 0 {
		return 0.0
	}
	count := 0
	for i := 0; i < len(seq); i++ {
		if hydrophobicity[seq[i]] > 2.0 {
			count++
		}
	}
	return round3(float64(count) / float64(len(seq)))
}

// netChargeAtPH sums Henderson–Hasselbalch fractional charges over the
// termini and titratable side chains at the given pH.
func netChargeAtPH(seq string, ph float64) float64 {
	charge := 1.0 / (1.0 + math.Pow(10, ph-pKaNTerm))
	charge -= 1.0 / (1.0 + math.Pow(10, pKaCTerm-ph))

	for i := 0; i < len(seq); i++ {
		aa := seq[i]
		switch aa {
		case 'D', 'E', 'C', 'Y':
			charge -= 1.0 / (1.0 + math.Pow(10, pKaSide[aa]-ph))
		case 'H', 'K', 'R':
			charge += 1.0 / (1.0 + math.Pow(10, ph-pKaSide[aa]))
		}
	}
	return charge
}

// isoelectricPoint binary-searches pH ∈ [0, 14] for the zero crossing of the
// net charge, 100 iterations, rounded to 2 decimals.
func isoelectricPoint(seq string) float64 {
	lo, hi := 0.0, 14.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		if netChargeAtPH(seq, mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return round2((lo + hi) / 2.0)
}

// betaSheetPropensity returns the mean Chou-Fasman β-sheet propensity over
// the full sequence. Unknown residues count as neutral (1.0).
func betaSheetPropensity(seq string) float64 {
	if len(seq) == 0 {
		return 0.0
	}
	total := 0.0
	for i := 0; i < len(seq); i++ {
		if p, ok := betaPropensity[seq[i]]; ok {
			total += p
		} else {
			total += 1.0
		}
	}
	return round3(total / float64(len(seq)))
}

// selfDockRisk docks the binder against randomly rotated and translated
// copies of itself and returns the maximum interface composite observed. A
// high value means the binder surface is sticky and may self-associate. The
// translation offset of 20–40 Å represents loose association rather than
// overlap.
func selfDockRisk(binder *pdb.Structure, orientations int, rng *rand.Rand) float64 {
	// Wider contact net than binding-site scoring; clash/hbond cutoffs as usual.
	cfg := DefaultScoreConfig()
	cfg.ContactCutoff = 10.0

	maxScore := 0.0
	for i := 0; i < orientations; i++ {
		rx := r3.NewRotation(rng.Float64()*2*math.Pi, r3.Vec{X: 1})
		ry := r3.NewRotation(rng.Float64()*2*math.Pi, r3.Vec{Y: 1})
		rz := r3.NewRotation(rng.Float64()*2*math.Pi, r3.Vec{Z: 1})
		offset := r3.Vec{
			X: 20.0 + rng.Float64()*20.0,
			Y: 20.0 + rng.Float64()*20.0,
			Z: 20.0 + rng.Float64()*20.0,
		}

		partner := binder.MapCoords(func(p r3.Vec) r3.Vec {
			return r3.Add(rz.Rotate(ry.Rotate(rx.Rotate(p))), offset)
		})

		if ss := ScoreInterface(binder, partner, cfg); ss.Composite > maxScore {
			maxScore = ss.Composite
		}
	}
	return round3(maxScore)
}
