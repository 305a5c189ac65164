package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flexbind/flexbind/job"
)

var (
	// CLI flags for the run command
	specPath           string  // YAML job spec path (overrides individual flags)
	targetPDB          string  // Target structure PDB path
	binderPDB          string  // Binder structure PDB path
	jobsDir            string  // Root directory for job artifacts
	runMode            string  // Run mode (fast, deep)
	binderType         string  // Binder type (antibody_fv, other)
	seed               int64   // Random seed for the whole job
	flexibleResidues   string  // Explicit flexible residue list, e.g. "A:30,A:31"
	interfaceDistance  float64 // Interface auto-detect cutoff in Angstroms
	allowGlycosylation bool    // Permit N-X-S/T motifs in designed sequences
)

// runCmd executes the full design pipeline for one target/binder pair
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the binder design pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := buildSpec()
		if err != nil {
			return err
		}

		store, err := job.NewStore(jobsDir)
		if err != nil {
			return err
		}
		jobID := store.NewJobID()
		if err := store.Create(jobID); err != nil {
			return err
		}

		logrus.Infof("Starting job %s: mode=%s seed=%d target=%s binder=%s",
			jobID, spec.Mode, spec.Seed, spec.TargetPDB, spec.BinderPDB)
		start := time.Now()

		runner := job.NewRunner(store)
		if err := runner.Run(jobID, spec); err != nil {
			return fmt.Errorf("job %s failed: %w", jobID, err)
		}

		logrus.Infof("Job %s complete in %s; results in %s/%s", jobID,
			time.Since(start).Round(time.Millisecond), jobsDir, jobID)
		return nil
	},
}

// buildSpec assembles the job spec from a YAML file or from CLI flags.
func buildSpec() (*job.Spec, error) {
	if specPath != "" {
		return job.LoadSpec(specPath)
	}
	noGlyco := !allowGlycosylation
	spec := &job.Spec{
		TargetPDB:         targetPDB,
		BinderPDB:         binderPDB,
		BinderType:        job.BinderType(binderType),
		Mode:              job.RunMode(runMode),
		Seed:              seed,
		FlexibleResidues:  flexibleResidues,
		InterfaceDistance: interfaceDistance,
		NoGlycosylation:   &noGlyco,
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func init() {
	runCmd.Flags().StringVar(&specPath, "spec", "", "YAML job spec file (replaces the other flags)")
	runCmd.Flags().StringVar(&targetPDB, "target", "", "Target structure PDB file")
	runCmd.Flags().StringVar(&binderPDB, "binder", "", "Binder structure PDB file")
	runCmd.Flags().StringVar(&jobsDir, "jobs-dir", "./jobs", "Root directory for job artifacts")
	runCmd.Flags().StringVar(&runMode, "mode", "fast", "Run mode (fast, deep)")
	runCmd.Flags().StringVar(&binderType, "binder-type", "other", "Binder type (antibody_fv, other)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the whole job")
	runCmd.Flags().StringVar(&flexibleResidues, "flexible-residues", "", "Comma-separated residue IDs (e.g. 'A:30,A:31,A:52'); empty = auto-detect")
	runCmd.Flags().Float64Var(&interfaceDistance, "interface-distance", 8.0, "Interface auto-detect cutoff in Angstroms")
	runCmd.Flags().BoolVar(&allowGlycosylation, "allow-glycosylation", false, "Permit N-X-S/T motifs in designed sequences")

	rootCmd.AddCommand(runCmd)
}
