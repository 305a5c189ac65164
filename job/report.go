package job

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flexbind/flexbind/design"
)

// DesignResult is one ranked design in the final report. The developability
// score and flag are job-wide: they are computed once on the unmutated binder
// and attached identically to every design.
type DesignResult struct {
	Rank                int                 `json:"rank"`
	Sequence            string              `json:"sequence"`
	Mutations           string              `json:"mutations"`
	MeanScore           float64             `json:"mean_score"`
	WorstScore          float64             `json:"worst_score"`
	Robustness          float64             `json:"robustness"`
	DevelopabilityScore float64             `json:"developability_score"`
	DevelopabilityFlag  string              `json:"developability_flag"`
	PerStateScores      []design.StateScore `json:"per_state_scores"`
}

// Report is the final job output handed to serialization.
type Report struct {
	JobID          string            `json:"job_id"`
	Status         Status            `json:"status"`
	BinderType     BinderType        `json:"binder_type"`
	Mode           RunMode           `json:"mode"`
	Seed           int64             `json:"seed"`
	EnsembleSize   int               `json:"ensemble_size"`
	Designs        []DesignResult    `json:"designs"`
	Developability design.Assessment `json:"developability"`
}

// BuildReport assembles the ranked design list and job summary.
func BuildReport(jobID string, spec *Spec, ensembleSize int, candidates []design.Candidate, dev design.Assessment) *Report {
	designs := make([]DesignResult, 0, len(candidates))
	for i, c := range candidates {
		designs = append(designs, DesignResult{
			Rank:                i + 1,
			Sequence:            c.Sequence,
			Mutations:           c.Mutations,
			MeanScore:           c.MeanScore,
			WorstScore:          c.WorstScore,
			Robustness:          c.Robustness,
			DevelopabilityScore: dev.Composite,
			DevelopabilityFlag:  dev.Flag,
			PerStateScores:      c.PerState,
		})
	}
	return &Report{
		JobID:          jobID,
		Status:         StatusDone,
		BinderType:     spec.BinderType,
		Mode:           spec.Mode,
		Seed:           spec.Seed,
		EnsembleSize:   ensembleSize,
		Designs:        designs,
		Developability: dev,
	}
}

// WriteArtifacts writes report.json, designs.csv, designs.fasta, and a
// results.zip bundling them with the extra files (cleaned PDBs and ensemble
// states) into the job directory.
func WriteArtifacts(dir string, report *Report, extraFiles []string) error {
	reportPath := filepath.Join(dir, "report.json")
	csvPath := filepath.Join(dir, "designs.csv")
	fastaPath := filepath.Join(dir, "designs.fasta")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("writing report.json: %w", err)
	}

	if err := writeDesignsCSV(csvPath, report.Designs); err != nil {
		return err
	}
	if err := writeDesignsFASTA(fastaPath, report.Designs); err != nil {
		return err
	}

	return writeZip(filepath.Join(dir, "results.zip"), dir,
		append([]string{reportPath, csvPath, fastaPath}, extraFiles...))
}

func writeDesignsCSV(path string, designs []DesignResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating designs.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"rank", "sequence", "mutations", "mean_score", "worst_score",
		"robustness", "developability_score", "developability_flag",
	}); err != nil {
		return err
	}
	for _, d := range designs {
		if err := w.Write([]string{
			strconv.Itoa(d.Rank),
			d.Sequence,
			d.Mutations,
			strconv.FormatFloat(d.MeanScore, 'g', -1, 64),
			strconv.FormatFloat(d.WorstScore, 'g', -1, 64),
			strconv.FormatFloat(d.Robustness, 'g', -1, 64),
			strconv.FormatFloat(d.DevelopabilityScore, 'g', -1, 64),
			d.DevelopabilityFlag,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeDesignsFASTA(path string, designs []DesignResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating designs.fasta: %w", err)
	}
	defer f.Close()

	for _, d := range designs {
		if _, err := fmt.Fprintf(f, ">design_%03d mutations=%s robustness=%g\n%s\n",
			d.Rank, d.Mutations, d.Robustness, d.Sequence); err != nil {
			return err
		}
	}
	return nil
}

// writeZip bundles files into a deflate-compressed archive. Entry names are
// relative to the job directory so ensemble states keep their subdirectory.
func writeZip(zipPath, dir string, files []string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating results.zip: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, path := range files {
		name, err := filepath.Rel(dir, path)
		if err != nil {
			name = filepath.Base(path)
		}
		if err := addZipEntry(zw, path, filepath.ToSlash(name)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("zipping %s: %w", name, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
