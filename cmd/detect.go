package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flexbind/flexbind/pdb"
)

var (
	detectTarget     string  // Target structure PDB path
	detectBinder     string  // Binder structure PDB path
	detectBinderType string  // Binder type (antibody_fv, other)
	detectCutoff     float64 // Interface cutoff in Angstroms
)

// detectCmd prints the flexible residues the pipeline would design over,
// without running it.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect flexible/designable binder residues",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := loadClean(detectTarget)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		binder, err := loadClean(detectBinder)
		if err != nil {
			return fmt.Errorf("binder: %w", err)
		}

		var keys []pdb.ResidueKey
		if detectBinderType == "antibody_fv" {
			keys = pdb.DetectCDRs(binder)
		}
		if len(keys) == 0 {
			keys, err = pdb.DetectInterface(target, binder, detectCutoff)
			if err != nil {
				return err
			}
		}

		for _, key := range keys {
			res, _ := binder.Residue(key)
			fmt.Printf("%s %s\n", key, res.Name)
		}
		fmt.Printf("%d flexible residues\n", len(keys))
		return nil
	},
}

func loadClean(path string) (*pdb.Structure, error) {
	s, err := pdb.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pdb.Clean(s)
}

func init() {
	detectCmd.Flags().StringVar(&detectTarget, "target", "", "Target structure PDB file")
	detectCmd.Flags().StringVar(&detectBinder, "binder", "", "Binder structure PDB file")
	detectCmd.Flags().StringVar(&detectBinderType, "binder-type", "other", "Binder type (antibody_fv, other)")
	detectCmd.Flags().Float64Var(&detectCutoff, "cutoff", 8.0, "Interface cutoff in Angstroms")

	rootCmd.AddCommand(detectCmd)
}
