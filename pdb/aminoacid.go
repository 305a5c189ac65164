package pdb

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation.
var AminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
}

// AminoOneToThree is the reverse of AminoThreeToOne. It is created in
// this package's 'init' function.
var AminoOneToThree = map[byte]string{}

func init() {
	for k, v := range AminoThreeToOne {
		AminoOneToThree[v] = k
	}
}

// IsStandardAminoAcid returns true if name3 is one of the twenty standard
// amino-acid three letter codes. Cleaning drops everything else (waters,
// ligands, modified residues).
func IsStandardAminoAcid(name3 string) bool {
	_, ok := AminoThreeToOne[name3]
	return ok
}

// backboneAtoms is the set of protein backbone atom names.
var backboneAtoms = map[string]bool{"N": true, "CA": true, "C": true, "O": true}

// IsBackboneAtom returns true for the four backbone atom names N, CA, C, O.
func IsBackboneAtom(name string) bool { return backboneAtoms[name] }
