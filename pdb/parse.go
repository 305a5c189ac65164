package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Read parses ATOM records from PDB-format text into a Structure.
// HETATM records, waters and anything past the first ENDMDL are ignored.
//
// Column layout follows the wwPDB format description, as in
// https://www.wwpdb.org/documentation/file-format-content/format23/sect9.html#ATOM
func Read(r io.Reader) (*Structure, error) {
	var atoms []Atom
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if !strings.HasPrefix(line, "ATOM") {
			continue
		}
		if len(line) < 54 {
			return nil, fmt.Errorf("line %d: truncated ATOM record", lineno)
		}
		atom, err := parseAtomLine(line)
		if err == errSkipAtom {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		atoms = append(atoms, atom)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("no ATOM records found")
	}
	return NewStructure(atoms), nil
}

func parseAtomLine(line string) (Atom, error) {
	// Pad short lines so optional trailing columns slice safely.
	if len(line) < 80 {
		line = line + strings.Repeat(" ", 80-len(line))
	}

	altLoc := line[16]
	if altLoc != ' ' && altLoc != 'A' {
		return Atom{}, errSkipAtom
	}

	serial, err := strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return Atom{}, fmt.Errorf("bad atom serial: %w", err)
	}
	resSeq, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return Atom{}, fmt.Errorf("bad residue number: %w", err)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	if err != nil {
		return Atom{}, fmt.Errorf("bad x coordinate: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	if err != nil {
		return Atom{}, fmt.Errorf("bad y coordinate: %w", err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if err != nil {
		return Atom{}, fmt.Errorf("bad z coordinate: %w", err)
	}

	return Atom{
		Serial:  serial,
		Name:    strings.TrimSpace(line[12:16]),
		ResName: strings.TrimSpace(line[17:20]),
		Chain:   strings.TrimSpace(line[21:22]),
		ResSeq:  resSeq,
		Pos:     r3.Vec{X: x, Y: y, Z: z},
		Element: strings.TrimSpace(line[76:78]),
	}, nil
}

// errSkipAtom marks alternate-location records dropped during parsing.
var errSkipAtom = fmt.Errorf("skip alternate location")

// ReadFile parses a PDB file from disk.
func ReadFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdb: %w", err)
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Clean returns a copy of s containing only standard amino-acid residues.
// An error is returned if nothing survives cleaning.
func Clean(s *Structure) (*Structure, error) {
	var atoms []Atom
	for _, a := range s.Atoms() {
		if IsStandardAminoAcid(a.ResName) {
			atoms = append(atoms, a)
		}
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("no standard amino-acid residues after cleaning")
	}
	return NewStructure(atoms), nil
}

// Write serializes the structure as PDB ATOM records, one chain per TER.
func Write(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	serial := 0
	residues := s.Residues()
	for i, res := range residues {
		for _, a := range s.ResidueAtoms(res) {
			serial++
			if _, err := fmt.Fprintf(bw, "ATOM  %5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f  1.00  0.00          %2s\n",
				serial, formatAtomName(a.Name), a.ResName, a.Chain, a.ResSeq,
				a.Pos.X, a.Pos.Y, a.Pos.Z, a.Element); err != nil {
				return err
			}
		}
		lastOfChain := i+1 == len(residues) || residues[i+1].Key.Chain != res.Key.Chain
		if lastOfChain {
			serial++
			if _, err := fmt.Fprintf(bw, "TER   %5d      %3s %1s%4d\n",
				serial, res.Name, res.Key.Chain, res.Key.Seq); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintln(bw, "END"); err != nil {
		return err
	}
	return bw.Flush()
}

// formatAtomName right-fills short atom names so element symbols align in
// column 14 per the PDB convention.
func formatAtomName(name string) string {
	if len(name) >= 4 {
		return name
	}
	return " " + name
}

// WriteFile writes the structure to a PDB file on disk.
func WriteFile(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pdb: %w", err)
	}
	defer f.Close()
	if err := Write(f, s); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
