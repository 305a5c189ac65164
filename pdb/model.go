package pdb

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ResidueKey addresses one residue within a structure by chain identifier and
// residue sequence number. It carries no amino-acid identity.
type ResidueKey struct {
	Chain string
	Seq   int
}

func (k ResidueKey) String() string { return fmt.Sprintf("%s:%d", k.Chain, k.Seq) }

// Atom is a single atom record. Atoms live in a Structure's flat arena rather
// than a pointer-linked hierarchy, so cloning a structure is a slice copy and
// coordinate walks stay cache-friendly.
type Atom struct {
	Serial  int
	Name    string // PDB atom name ("N", "CA", "CB", ...)
	ResName string // three letter amino-acid code
	Chain   string
	ResSeq  int
	Pos     r3.Vec
	Element string
}

// Residue is a view over a contiguous arena range belonging to one residue.
type Residue struct {
	Key  ResidueKey
	Name string // three letter amino-acid code

	start, end int // arena index range [start, end)
}

// Structure is an in-memory protein model: a flat atom arena ordered by chain
// then residue, plus a residue table and key index built over it.
//
// Residue sequence numbers are unique per chain and atom names unique per
// residue. Callers that need to modify a structure must Clone it first; the
// design pipeline never mutates a structure it did not itself copy.
type Structure struct {
	atoms    []Atom
	residues []Residue
	resIndex map[ResidueKey]int
}

// NewStructure builds a Structure from atoms already ordered by chain then
// residue. Consecutive atoms sharing (chain, residue number) form one residue.
func NewStructure(atoms []Atom) *Structure {
	s := &Structure{
		atoms:    atoms,
		resIndex: make(map[ResidueKey]int),
	}
	for i := 0; i < len(atoms); {
		key := ResidueKey{Chain: atoms[i].Chain, Seq: atoms[i].ResSeq}
		j := i
		for j < len(atoms) && atoms[j].Chain == key.Chain && atoms[j].ResSeq == key.Seq {
			j++
		}
		s.resIndex[key] = len(s.residues)
		s.residues = append(s.residues, Residue{
			Key:   key,
			Name:  atoms[i].ResName,
			start: i,
			end:   j,
		})
		i = j
	}
	return s
}

// Clone returns an independent deep copy of the structure.
func (s *Structure) Clone() *Structure {
	c := &Structure{
		atoms:    make([]Atom, len(s.atoms)),
		residues: make([]Residue, len(s.residues)),
		resIndex: make(map[ResidueKey]int, len(s.resIndex)),
	}
	copy(c.atoms, s.atoms)
	copy(c.residues, s.residues)
	for k, v := range s.resIndex {
		c.resIndex[k] = v
	}
	return c
}

// NumAtoms returns the number of atoms in the arena.
func (s *Structure) NumAtoms() int { return len(s.atoms) }

// NumResidues returns the number of residues.
func (s *Structure) NumResidues() int { return len(s.residues) }

// Atoms returns the atom arena in structure order. The returned slice is the
// structure's own storage; callers must not modify it.
func (s *Structure) Atoms() []Atom { return s.atoms }

// Residues returns the residue table in structure order. The returned slice
// is the structure's own storage; callers must not modify it.
func (s *Structure) Residues() []Residue { return s.residues }

// Residue looks up a residue by key.
func (s *Structure) Residue(key ResidueKey) (Residue, bool) {
	i, ok := s.resIndex[key]
	if !ok {
		return Residue{}, false
	}
	return s.residues[i], true
}

// ResidueAtoms returns the atoms of res in arena order. The slice aliases the
// structure's storage; callers must not modify it.
func (s *Structure) ResidueAtoms(res Residue) []Atom {
	return s.atoms[res.start:res.end]
}

// AtomPos returns the coordinate of the named atom in the keyed residue.
func (s *Structure) AtomPos(key ResidueKey, name string) (r3.Vec, bool) {
	i, ok := s.resIndex[key]
	if !ok {
		return r3.Vec{}, false
	}
	res := s.residues[i]
	for j := res.start; j < res.end; j++ {
		if s.atoms[j].Name == name {
			return s.atoms[j].Pos, true
		}
	}
	return r3.Vec{}, false
}

// SetAtomPos overwrites the coordinate of the named atom in the keyed
// residue. It reports whether the atom exists. Only call this on a structure
// you own (freshly cloned).
func (s *Structure) SetAtomPos(key ResidueKey, name string, pos r3.Vec) bool {
	i, ok := s.resIndex[key]
	if !ok {
		return false
	}
	res := s.residues[i]
	for j := res.start; j < res.end; j++ {
		if s.atoms[j].Name == name {
			s.atoms[j].Pos = pos
			return true
		}
	}
	return false
}

// SetResidueName relabels the keyed residue with a new three letter
// amino-acid code, updating every atom in its arena range. The residue's
// atoms and coordinates are unchanged. Only call this on a structure you own.
func (s *Structure) SetResidueName(key ResidueKey, name3 string) bool {
	i, ok := s.resIndex[key]
	if !ok {
		return false
	}
	s.residues[i].Name = name3
	res := s.residues[i]
	for j := res.start; j < res.end; j++ {
		s.atoms[j].ResName = name3
	}
	return true
}

// MapCoords returns a new structure with every atom coordinate replaced by
// f(coordinate). The receiver is unchanged.
func (s *Structure) MapCoords(f func(r3.Vec) r3.Vec) *Structure {
	c := s.Clone()
	for i := range c.atoms {
		c.atoms[i].Pos = f(c.atoms[i].Pos)
	}
	return c
}

// ContactPos returns the Cβ coordinate of res, substituting Cα for glycine
// and for any residue lacking a Cβ atom. ok is false if the residue has
// neither.
func (s *Structure) ContactPos(res Residue) (pos r3.Vec, ok bool) {
	if p, ok := s.AtomPos(res.Key, "CB"); ok {
		return p, true
	}
	if p, ok := s.AtomPos(res.Key, "CA"); ok {
		return p, true
	}
	return r3.Vec{}, false
}

// Chains returns the chain identifiers in structure order.
func (s *Structure) Chains() []string {
	var chains []string
	seen := make(map[string]bool)
	for _, res := range s.residues {
		if !seen[res.Key.Chain] {
			seen[res.Key.Chain] = true
			chains = append(chains, res.Key.Chain)
		}
	}
	return chains
}

// Sequence returns the concatenated single letter sequence over all chains in
// structure order. Residues without a standard three letter code are skipped.
func (s *Structure) Sequence() string {
	seq := make([]byte, 0, len(s.residues))
	for _, res := range s.residues {
		if c, ok := AminoThreeToOne[res.Name]; ok {
			seq = append(seq, c)
		}
	}
	return string(seq)
}

// ChainSequence returns the single letter sequence of one chain. Residues
// without a standard code are skipped.
func (s *Structure) ChainSequence(chain string) string {
	var seq []byte
	for _, res := range s.residues {
		if res.Key.Chain != chain {
			continue
		}
		if c, ok := AminoThreeToOne[res.Name]; ok {
			seq = append(seq, c)
		}
	}
	return string(seq)
}

// SequenceAt returns the single letter sequence at the given positions, in
// the given order. Missing residues and non-standard codes render as 'X'.
func (s *Structure) SequenceAt(keys []ResidueKey) string {
	seq := make([]byte, len(keys))
	for i, key := range keys {
		seq[i] = 'X'
		if res, ok := s.Residue(key); ok {
			if c, ok := AminoThreeToOne[res.Name]; ok {
				seq[i] = c
			}
		}
	}
	return string(seq)
}

// ResidueKeys returns every residue key in structure order.
func (s *Structure) ResidueKeys() []ResidueKey {
	keys := make([]ResidueKey, len(s.residues))
	for i, res := range s.residues {
		keys[i] = res.Key
	}
	return keys
}
