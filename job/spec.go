package job

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunMode selects the effort level of a design run.
type RunMode string

const (
	// ModeFast is a small ensemble and candidate budget for quick turnaround.
	ModeFast RunMode = "fast"
	// ModeDeep is a larger ensemble, wider beam, and more candidates.
	ModeDeep RunMode = "deep"
)

// BinderType selects how flexible residues are auto-detected.
type BinderType string

const (
	// BinderAntibodyFv enables CDR detection by Chothia-like numbering.
	BinderAntibodyFv BinderType = "antibody_fv"
	// BinderOther falls back to geometric interface detection.
	BinderOther BinderType = "other"
)

// validRunModes maps recognized run mode names. Empty defaults to fast.
var validRunModes = map[RunMode]bool{"": true, ModeFast: true, ModeDeep: true}

// validBinderTypes maps recognized binder type names. Empty defaults to other.
var validBinderTypes = map[BinderType]bool{"": true, BinderAntibodyFv: true, BinderOther: true}

// Spec is the user-facing description of one design job, loadable from a
// YAML file. Zero-valued fields take defaults in ApplyDefaults.
type Spec struct {
	TargetPDB         string     `yaml:"target_pdb"`
	BinderPDB         string     `yaml:"binder_pdb"`
	BinderType        BinderType `yaml:"binder_type"`
	Mode              RunMode    `yaml:"mode"`
	Seed              int64      `yaml:"seed"`
	FlexibleResidues  string     `yaml:"flexible_residues"`  // "A:30,A:31,B:52"; empty = auto-detect
	InterfaceDistance float64    `yaml:"interface_distance"` // auto-detect cutoff in Ångström
	NoGlycosylation   *bool      `yaml:"no_glycosylation"`   // nil defaults to true
}

// LoadSpec reads and parses a YAML job spec file, applies defaults, and
// validates it.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job spec: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing job spec: %w", err)
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ApplyDefaults fills zero-valued optional fields.
func (s *Spec) ApplyDefaults() {
	if s.Mode == "" {
		s.Mode = ModeFast
	}
	if s.BinderType == "" {
		s.BinderType = BinderOther
	}
	if s.InterfaceDistance == 0 {
		s.InterfaceDistance = 8.0
	}
	if s.NoGlycosylation == nil {
		noGlyco := true
		s.NoGlycosylation = &noGlyco
	}
}

// Validate checks mode and binder type names and parameter ranges.
func (s *Spec) Validate() error {
	if s.TargetPDB == "" || s.BinderPDB == "" {
		return fmt.Errorf("job spec must name both target_pdb and binder_pdb")
	}
	if !validRunModes[s.Mode] {
		return fmt.Errorf("unknown run mode %q", s.Mode)
	}
	if !validBinderTypes[s.BinderType] {
		return fmt.Errorf("unknown binder type %q", s.BinderType)
	}
	if s.Seed < 0 {
		return fmt.Errorf("seed must be non-negative, got %d", s.Seed)
	}
	if s.InterfaceDistance < 3.0 || s.InterfaceDistance > 20.0 {
		return fmt.Errorf("interface_distance must be in [3, 20] Ångström, got %g", s.InterfaceDistance)
	}
	return nil
}

// Preset holds pipeline parameters derived from the run mode.
type Preset struct {
	EnsembleSamples  int
	EnsembleClusters int
	Magnitude        float64
	DesignCandidates int
	BeamWidth        int
}

// PresetFor maps a run mode to concrete pipeline parameters. Cluster count is
// a third of the sample count, floored at 3.
func PresetFor(mode RunMode) Preset {
	if mode == ModeDeep {
		return Preset{
			EnsembleSamples:  20,
			EnsembleClusters: max(3, 20/3),
			Magnitude:        1.0,
			DesignCandidates: 50,
			BeamWidth:        5,
		}
	}
	return Preset{
		EnsembleSamples:  5,
		EnsembleClusters: max(3, 5/3),
		Magnitude:        0.6,
		DesignCandidates: 8,
		BeamWidth:        3,
	}
}
