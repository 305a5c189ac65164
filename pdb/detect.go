package pdb

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// chothiaCDRRanges maps antibody chain identifiers to approximate CDR residue
// ranges (Chothia-like numbering). H: CDR-H1/H2/H3, L: CDR-L1/L2/L3.
var chothiaCDRRanges = map[string][][2]int{
	"H": {{26, 32}, {52, 56}, {95, 102}},
	"L": {{24, 34}, {50, 56}, {89, 97}},
}

// DetectInterface returns the binder residues whose Cα lies within cutoff
// Ångström of any target Cα. An error is returned if either structure has no
// Cα atoms.
func DetectInterface(target, binder *Structure, cutoff float64) ([]ResidueKey, error) {
	targetCA := caCoords(target)
	if len(targetCA) == 0 {
		return nil, fmt.Errorf("target has no Cα atoms after cleaning")
	}

	var interfaceKeys []ResidueKey
	found := false
	for _, res := range binder.Residues() {
		pos, ok := binder.AtomPos(res.Key, "CA")
		if !ok {
			continue
		}
		found = true
		for _, tpos := range targetCA {
			if r3.Norm(r3.Sub(pos, tpos)) < cutoff {
				interfaceKeys = append(interfaceKeys, res.Key)
				break
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("binder has no Cα atoms after cleaning")
	}
	return interfaceKeys, nil
}

func caCoords(s *Structure) []r3.Vec {
	var coords []r3.Vec
	for _, res := range s.Residues() {
		if pos, ok := s.AtomPos(res.Key, "CA"); ok {
			coords = append(coords, pos)
		}
	}
	return coords
}

// DetectCDRs identifies CDR residues in an antibody Fv by chain identifier
// (H or L, case-insensitive) and Chothia-like residue ranges. Chains with no
// known ranges contribute nothing.
func DetectCDRs(binder *Structure) []ResidueKey {
	var cdrs []ResidueKey
	for _, res := range binder.Residues() {
		ranges, ok := chothiaCDRRanges[strings.ToUpper(res.Key.Chain)]
		if !ok {
			continue
		}
		for _, r := range ranges {
			if res.Key.Seq >= r[0] && res.Key.Seq <= r[1] {
				cdrs = append(cdrs, res.Key)
				break
			}
		}
	}
	return cdrs
}

// ParseResidueSpec parses a user residue list like "A:30,A:31,B:52" into
// residue keys. Tokens without a colon are ignored; a malformed residue
// number is an error.
func ParseResidueSpec(spec string) ([]ResidueKey, error) {
	var keys []ResidueKey
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if !strings.Contains(token, ":") {
			continue
		}
		parts := strings.SplitN(token, ":", 2)
		seq, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid residue token %q: %w", token, err)
		}
		keys = append(keys, ResidueKey{Chain: strings.TrimSpace(parts[0]), Seq: seq})
	}
	return keys, nil
}
