package job

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/flexbind/flexbind/design"
	"github.com/flexbind/flexbind/pdb"
)

// Runner executes the full design pipeline for one job: preprocessing,
// ensemble generation, multi-state scoring, sequence design, developability,
// and report compilation. All state is persisted to the job directory so
// callers can serve progress and results from disk.
type Runner struct {
	Store *Store
}

// NewRunner creates a Runner over the given store.
func NewRunner(store *Store) *Runner {
	return &Runner{Store: store}
}

// Run executes the pipeline described by spec under the given job id. On
// failure the job status is set to failed and the error returned.
func (r *Runner) Run(jobID string, spec *Spec) error {
	if err := r.run(jobID, spec); err != nil {
		r.Store.SetStatus(jobID, StatusFailed, err.Error())
		r.Store.AppendLog(jobID, "FATAL ERROR: "+err.Error())
		return err
	}
	return nil
}

func (r *Runner) run(jobID string, spec *Spec) error {
	dir, err := r.Store.Dir(jobID)
	if err != nil {
		return err
	}
	if err := r.Store.SetStatus(jobID, StatusRunning, "Pipeline started"); err != nil {
		return err
	}

	preset := PresetFor(spec.Mode)
	seed := design.Seed(spec.Seed)
	// spec.InterfaceDistance only steers flexible-residue auto-detection;
	// interface scoring always uses the standard cutoffs.
	scoreCfg := design.DefaultScoreConfig()

	// Step A: preprocessing.
	r.Store.SetProgress(jobID, 0.05, "Step A: Preprocessing PDB files")

	target, err := loadCleaned(spec.TargetPDB, filepath.Join(dir, "target_clean.pdb"))
	if err != nil {
		return fmt.Errorf("preparing target: %w", err)
	}
	binder, err := loadCleaned(spec.BinderPDB, filepath.Join(dir, "binder_clean.pdb"))
	if err != nil {
		return fmt.Errorf("preparing binder: %w", err)
	}

	flexible, err := flexibleResidues(target, binder, spec)
	if err != nil {
		return err
	}
	if len(flexible) == 0 {
		logrus.Warnf("job %s: no flexible residues detected, using all binder residues", jobID)
		r.Store.AppendLog(jobID, "WARNING: No flexible residues detected - using all binder residues")
		flexible = binder.ResidueKeys()
	}
	r.Store.AppendLog(jobID, fmt.Sprintf("  Flexible residues: %d positions", len(flexible)))
	r.Store.SetProgress(jobID, 0.10, "Step A: Done")

	// Step B: conformational ensemble.
	r.Store.SetProgress(jobID, 0.15, "Step B: Generating conformational ensemble")

	ensemble := design.GenerateEnsemble(binder, target, flexible, design.EnsembleConfig{
		Samples:         preset.EnsembleSamples,
		Clusters:        preset.EnsembleClusters,
		Magnitude:       preset.Magnitude,
		RelaxIterations: design.DefaultEnsembleConfig().RelaxIterations,
	}, seed.Stage(design.StageEnsemble))

	ensDir := filepath.Join(dir, "ensemble")
	if err := os.MkdirAll(ensDir, 0o755); err != nil {
		return fmt.Errorf("creating ensemble dir: %w", err)
	}
	ensPaths := make([]string, len(ensemble))
	for i, state := range ensemble {
		ensPaths[i] = filepath.Join(ensDir, fmt.Sprintf("ensemble_state_%03d.pdb", i))
		if err := pdb.WriteFile(ensPaths[i], state); err != nil {
			return err
		}
	}
	r.Store.AppendLog(jobID, fmt.Sprintf("  Ensemble: %d representative states saved", len(ensemble)))
	r.Store.SetProgress(jobID, 0.35, "Step B: Done")

	// Step C: per-state interface scoring.
	r.Store.SetProgress(jobID, 0.40, "Step C: Scoring ensemble against target")

	stateScores := design.ScoreEnsemble(target, ensemble, scoreCfg)
	meanComposite := 0.0
	for _, s := range stateScores {
		meanComposite += s.Composite
	}
	meanComposite /= float64(len(stateScores))
	r.Store.AppendLog(jobID, fmt.Sprintf("  Scores - mean composite: %.2f", meanComposite))
	r.Store.SetProgress(jobID, 0.50, "Step C: Done")

	// Step D: multi-state sequence design.
	r.Store.SetProgress(jobID, 0.55, "Step D: Running sequence design")

	searchCfg := design.DefaultSearchConfig()
	searchCfg.Candidates = preset.DesignCandidates
	searchCfg.BeamWidth = preset.BeamWidth
	searchCfg.ForbidGlycosylation = *spec.NoGlycosylation

	candidates := design.DesignSequences(target, binder, ensemble, flexible,
		searchCfg, scoreCfg, seed.Stage(design.StageDesign))
	r.Store.AppendLog(jobID, fmt.Sprintf("  Generated %d design candidates", len(candidates)))
	r.Store.SetProgress(jobID, 0.75, "Step D: Done")

	// Step E: developability.
	r.Store.SetProgress(jobID, 0.80, "Step E: Computing developability scores")

	dev := design.ComputeDevelopability(binder, seed.Stage(design.StageDevelopability))
	r.Store.AppendLog(jobID, fmt.Sprintf("  Developability: %.1f/100 (%s)", dev.Composite, dev.Flag))
	r.Store.SetProgress(jobID, 0.90, "Step E: Done")

	// Step F: report compilation.
	r.Store.SetProgress(jobID, 0.92, "Step F: Compiling results")

	report := BuildReport(jobID, spec, len(ensemble), candidates, dev)
	extra := append([]string{
		filepath.Join(dir, "target_clean.pdb"),
		filepath.Join(dir, "binder_clean.pdb"),
	}, ensPaths...)
	if err := WriteArtifacts(dir, report, extra); err != nil {
		return err
	}

	r.Store.SetProgress(jobID, 1.0, "Pipeline complete")
	return r.Store.SetStatus(jobID, StatusDone, "All steps completed successfully")
}

// loadCleaned parses a PDB file, drops non-standard residues, and writes the
// cleaned model next to the job's other artifacts.
func loadCleaned(inPath, outPath string) (*pdb.Structure, error) {
	s, err := pdb.ReadFile(inPath)
	if err != nil {
		return nil, err
	}
	cleaned, err := pdb.Clean(s)
	if err != nil {
		return nil, err
	}
	if err := pdb.WriteFile(outPath, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// flexibleResidues resolves the flexible/designable position list: an
// explicit user spec wins, antibody Fv binders try CDR detection, and
// everything else falls back to geometric interface detection.
func flexibleResidues(target, binder *pdb.Structure, spec *Spec) ([]pdb.ResidueKey, error) {
	if spec.FlexibleResidues != "" {
		keys, err := pdb.ParseResidueSpec(spec.FlexibleResidues)
		if err != nil {
			return nil, fmt.Errorf("flexible residue spec: %w", err)
		}
		return keys, nil
	}
	if spec.BinderType == BinderAntibodyFv {
		if cdrs := pdb.DetectCDRs(binder); len(cdrs) > 0 {
			return cdrs, nil
		}
	}
	return pdb.DetectInterface(target, binder, spec.InterfaceDistance)
}
