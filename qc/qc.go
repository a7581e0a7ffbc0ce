// Package qc implements the 32-bit quality-control bit algebra (spec §3,
// §4.1): canonical QC codes, set/clear/test operators, QC-mask resolution
// from assessment attributes, and the optional site-to-canonical QC
// mapping function.
package qc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sciflow/gridtransform/vardata"
)

// Code names a single QC bit. Pos is 1-based (matching the
// "bit_1_assessment" parameter naming in spec §3); Pos == 0 means the code
// is disabled, and every operation on it becomes a no-op. Codes are
// package-level variables, not constants, precisely so a caller can
// disable one by zeroing its Pos - mirroring the teacher's approach to
// "configurable knobs as mutable global state" (matrix package's Option
// pattern, generalized here to per-bit toggles).
type Code struct {
	Name string
	Pos  int
}

// Value returns the bitmask for c, or 0 if c is disabled.
func (c Code) Value() uint32 {
	if c.Pos <= 0 {
		return 0
	}
	return 1 << uint(c.Pos-1)
}

// String implements fmt.Stringer.
func (c Code) String() string { return c.Name }

// Canonical QC codes (spec §3). Bit positions 1..15 by default; any may be
// disabled by zeroing Pos at process-init time, before any driver call
// (spec §5: "install-time-only mutability").
var (
	BAD                     = Code{"BAD", 1}
	INDETERMINATE           = Code{"INDETERMINATE", 2}
	INTERPOLATE             = Code{"INTERPOLATE", 3}
	EXTRAPOLATE             = Code{"EXTRAPOLATE", 4}
	NOT_USING_CLOSEST       = Code{"NOT_USING_CLOSEST", 5}
	SOME_BAD_INPUTS         = Code{"SOME_BAD_INPUTS", 6}
	ZERO_WEIGHT             = Code{"ZERO_WEIGHT", 7}
	OUTSIDE_RANGE           = Code{"OUTSIDE_RANGE", 8}
	ALL_BAD_INPUTS          = Code{"ALL_BAD_INPUTS", 9}
	BAD_STD                 = Code{"BAD_STD", 10}
	INDETERMINATE_STD       = Code{"INDETERMINATE_STD", 11}
	BAD_GOODFRAC            = Code{"BAD_GOODFRAC", 12}
	INDETERMINATE_GOODFRAC  = Code{"INDETERMINATE_GOODFRAC", 13}
	ESTIMATED_INPUT_BIN     = Code{"ESTIMATED_INPUT_BIN", 14}
	ESTIMATED_OUTPUT_BIN    = Code{"ESTIMATED_OUTPUT_BIN", 15}
)

// allCodes lists every canonical code, used by MaskFor's bit_<N>_assessment
// scan and by String-ification helpers.
func allCodes() []Code {
	return []Code{
		BAD, INDETERMINATE, INTERPOLATE, EXTRAPOLATE, NOT_USING_CLOSEST,
		SOME_BAD_INPUTS, ZERO_WEIGHT, OUTSIDE_RANGE, ALL_BAD_INPUTS,
		BAD_STD, INDETERMINATE_STD, BAD_GOODFRAC, INDETERMINATE_GOODFRAC,
		ESTIMATED_INPUT_BIN, ESTIMATED_OUTPUT_BIN,
	}
}

// Set ORs c's bit into state. A disabled code is a no-op.
func Set(state uint32, c Code) uint32 { return state | c.Value() }

// Clear ANDs out c's bit from state. A disabled code is a no-op.
func Clear(state uint32, c Code) uint32 { return state &^ c.Value() }

// Test reports whether c's bit is set in state. A disabled code always
// tests false.
func Test(state uint32, c Code) bool {
	v := c.Value()
	return v != 0 && state&v != 0
}

// TestMask reports whether any bit in mask is set in state.
func TestMask(state, mask uint32) bool { return state&mask != 0 }

// MaskFor resolves the QC mask for a variable per spec §4.1: scan the
// variable's own attributes named "bit_<N>_assessment"; if none are found,
// scan the parent dataset's attributes named "qc_bit_<N>_assessment". Every
// bit whose assessment reads "Bad" is OR'd into the mask. With nothing
// found, the mask defaults to BAD's bit alone.
func MaskFor(v *vardata.Variable) uint32 {
	if mask, ok := scanAssessments(v.Attrs, "bit_"); ok {
		return mask
	}
	if v.Dataset() != nil {
		if mask, ok := scanAssessments(v.Dataset().Attrs, "qc_bit_"); ok {
			return mask
		}
	}
	return BAD.Value()
}

func scanAssessments(attrs map[string]interface{}, prefix string) (uint32, bool) {
	var mask uint32
	var found bool
	for key, val := range attrs {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "_assessment") {
			continue
		}
		n, ok := parseBitN(key, prefix)
		if !ok {
			continue
		}
		found = true
		s, _ := val.(string)
		if strings.EqualFold(s, "Bad") {
			mask |= 1 << uint(n-1)
		}
	}
	return mask, found
}

func parseBitN(key, prefix string) (int, bool) {
	mid := strings.TrimPrefix(key, prefix)
	mid = strings.TrimSuffix(mid, "_assessment")
	var n int
	if _, err := fmt.Sscanf(mid, "%d", &n); err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// MappingFunc translates a site-specific integer QC value plus the data
// value into a canonical QC state. It is process-global, install-time-only
// mutable state (spec §5).
type MappingFunc func(v *vardata.Variable, dataValue float64, rawQC int) int32

var globalMapping MappingFunc

// SetMapping installs the process-wide QC-mapping function. Must be called
// before any driver run; the driver only reads it.
func SetMapping(fn MappingFunc) { globalMapping = fn }

// Mapping returns the installed mapping function, or nil if none was set.
func Mapping() MappingFunc { return globalMapping }

// DefaultMapping implements spec §4.1's built-in mapping: if the input QC
// variable carries a "qc_bad" parameter listing bad raw integer values,
// those values map to BAD and any other non-zero raw value maps to
// INDETERMINATE.
func DefaultMapping(badValues []int) MappingFunc {
	bad := make(map[int]struct{}, len(badValues))
	for _, b := range badValues {
		bad[b] = struct{}{}
	}
	return func(_ *vardata.Variable, _ float64, rawQC int) int32 {
		if _, isBad := bad[rawQC]; isBad {
			return int32(BAD.Value())
		}
		if rawQC != 0 {
			return int32(INDETERMINATE.Value())
		}
		return 0
	}
}

// Names returns the canonical codes sorted by bit position, for debug
// printing (supplements spec.md per the bit-name lookup in
// dsproc_qc_utils.c, see SPEC_FULL.md).
func Names() []Code {
	cs := append([]Code(nil), allCodes()...)
	sort.Slice(cs, func(i, j int) bool { return cs[i].Pos < cs[j].Pos })
	return cs
}
