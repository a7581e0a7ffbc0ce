// Package dimgroup implements the dim_grouping parameter parser (spec
// §4.8, component C8): it reads the brace syntax that maps contiguous
// input dimensions to contiguous output dimensions and turns it into an
// ordered list of Group records the driver (package transform) walks.
package dimgroup

import (
	"errors"
	"strings"

	"github.com/sciflow/gridtransform/vardata"
)

// Sentinel errors (spec §4.8's "Fatal errors").
var (
	// ErrUnknownDimension - a named dimension does not exist on the
	// relevant variable.
	ErrUnknownDimension = errors.New("dimgroup: unknown dimension name")

	// ErrNotContiguous - a group's dimensions are not contiguous in the
	// variable's dimension order.
	ErrNotContiguous = errors.New("dimgroup: group dimensions are not contiguous")

	// ErrUncoveredDimension - a dimension of the variable belongs to no
	// group.
	ErrUncoveredDimension = errors.New("dimgroup: dimension is not covered by any group")

	// ErrDimensionReused - a dimension appears in more than one group.
	ErrDimensionReused = errors.New("dimgroup: dimension appears in more than one group")

	// ErrRankMismatch - dim_grouping was absent and input/output ranks
	// differ, so the "one group per dimension" default cannot apply.
	ErrRankMismatch = errors.New("dimgroup: input and output rank must match when dim_grouping is absent")
)

// Group describes one logical transform axis (spec §3, "Dimension
// group"): an ordered run of input dimensions mapped to an ordered run of
// output dimensions, transformed together as a single kernel invocation.
type Group struct {
	InputDimNames  []string
	OutputDimNames []string
	InputLength    int // product of named input dimension lengths
	OutputLength   int // product of named output dimension lengths
	InputOffset    int // index of the group's first dim in the input variable
	OutputOffset   int // index of the group's first dim in the output variable
	Order          int // declared transform position (0-based)
}

// Parse resolves dim_grouping for (inVar, outVar) per spec §4.8. Absence
// of the parameter is treated as "one group per dimension, same name on
// both sides" (requires matching rank). The returned slice is sorted by
// InputOffset for iteration; each Group's Order field preserves the
// position it was declared in (or its natural index, in the default
// case), since the driver transforms groups in Order, not InputOffset,
// sequence.
func Parse(inVar, outVar *vardata.Variable) ([]Group, error) {
	raw, ok := vardata.ParamString(inVar, "", "dim_grouping")
	if !ok {
		raw, ok = vardata.ParamString(outVar, "", "dim_grouping")
	}
	if !ok {
		return defaultGroups(inVar, outVar)
	}

	rawGroups, err := splitBraceGroups(raw)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(rawGroups))
	for i, g := range rawGroups {
		left, right := splitSides(g)
		inNames := splitNames(left)
		var outList []string
		if right == left {
			outList = inNames
		} else {
			outList = splitNames(right)
		}
		groups = append(groups, Group{
			InputDimNames:  inNames,
			OutputDimNames: outList,
			Order:          i,
		})
	}

	if err := resolve(groups, inVar, outVar); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return groups, nil
	}
	sortByInputOffset(groups)
	return groups, nil
}

func defaultGroups(inVar, outVar *vardata.Variable) ([]Group, error) {
	if inVar.Rank() != outVar.Rank() {
		return nil, ErrRankMismatch
	}
	groups := make([]Group, inVar.Rank())
	for i, d := range inVar.Dims {
		groups[i] = Group{
			InputDimNames:  []string{d.Name},
			OutputDimNames: []string{d.Name},
			InputLength:    d.Length,
			OutputLength:   outVar.Dims[i].Length,
			InputOffset:    i,
			OutputOffset:   i,
			Order:          i,
		}
	}
	return groups, nil
}

// resolve fills in lengths/offsets for each side and validates
// contiguity and coverage. Every group carries both an input and an
// output dim list, so the input-group and output-group sequences are
// equal in count by construction (spec §3's "same count G" invariant).
func resolve(groups []Group, inVar, outVar *vardata.Variable) error {
	if err := resolveSide(groups, inVar, true); err != nil {
		return err
	}
	return resolveSide(groups, outVar, false)
}

func resolveSide(groups []Group, v *vardata.Variable, input bool) error {
	used := make([]bool, v.Rank())
	for gi := range groups {
		var names []string
		if input {
			names = groups[gi].InputDimNames
		} else {
			names = groups[gi].OutputDimNames
		}
		idxs := make([]int, 0, len(names))
		for _, n := range names {
			idx := v.DimIndex(n)
			if idx < 0 {
				return ErrUnknownDimension
			}
			if used[idx] {
				return ErrDimensionReused
			}
			used[idx] = true
			idxs = append(idxs, idx)
		}
		minIdx, maxIdx := idxs[0], idxs[0]
		for _, idx := range idxs {
			if idx < minIdx {
				minIdx = idx
			}
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		if maxIdx-minIdx+1 != len(idxs) {
			return ErrNotContiguous
		}

		length := 1
		for _, idx := range idxs {
			length *= v.Dims[idx].Length
		}
		if input {
			groups[gi].InputOffset = minIdx
			groups[gi].InputLength = length
		} else {
			groups[gi].OutputOffset = minIdx
			groups[gi].OutputLength = length
		}
	}
	for _, u := range used {
		if !u {
			return ErrUncoveredDimension
		}
	}
	return nil
}

func sortByInputOffset(groups []Group) {
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j].InputOffset < groups[j-1].InputOffset; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
}

// splitBraceGroups tokenizes "{...} , {...}" into the raw interior of
// each brace pair, ignoring separators (whitespace, commas) between
// groups. Unbalanced braces are a parse error.
func splitBraceGroups(s string) ([]string, error) {
	var groups []string
	depth := 0
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				cur.Reset()
			} else {
				cur.WriteRune(r)
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, errors.New("dimgroup: unbalanced braces in dim_grouping")
			}
			if depth == 0 {
				groups = append(groups, cur.String())
			} else {
				cur.WriteRune(r)
			}
		default:
			if depth > 0 {
				cur.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("dimgroup: unbalanced braces in dim_grouping")
	}
	return groups, nil
}

// splitSides splits one brace group's interior on the first ':' into
// (left, right). Without a colon, right == left (same names both sides).
func splitSides(g string) (left, right string) {
	if i := strings.IndexByte(g, ':'); i >= 0 {
		return g[:i], g[i+1:]
	}
	return g, g
}

// splitNames splits a comma/semicolon-separated name list, trimming
// whitespace and dropping empty tokens.
func splitNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			names = append(names, f)
		}
	}
	return names
}
