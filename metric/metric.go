// Package metric implements the metric container (spec §3, §4.3,
// component C3): a fixed-shape table of named per-sample statistics
// produced by one kernel invocation on one slice. Tables are single-owner,
// single-writer, and freed at the end of the slice that produced them -
// there is no shared ownership and no cyclic references, matching the
// teacher's value-type discipline for short-lived allocations (e.g.
// matrix.Dense, never reference-counted).
package metric

import "errors"

// ErrShapeMismatch indicates that Allocate was given names and units of
// different lengths. Out-of-range writes through Set are ignored, not
// reported.
var ErrShapeMismatch = errors.New("metric: shape mismatch")

// UnitSame is the literal sentinel meaning "copy the data variable's
// units" (spec §3).
const UnitSame = "SAME"

// Table is a fixed-shape (nmetrics x nsamples) matrix of named statistics,
// one row per metric name.
type Table struct {
	Names    []string
	Units    []string
	NMetrics int
	NSamples int
	Values   [][]float64 // Values[m][k], k in [0,NSamples)
}

// Allocate creates a fresh Table. Any previous allocation held by callers
// must be discarded - Allocate never reuses storage (spec §4.3: "freeing
// any previous allocation").
func Allocate(names, units []string, nSamples int) (*Table, error) {
	if len(names) != len(units) {
		return nil, ErrShapeMismatch
	}
	t := &Table{
		Names:    append([]string(nil), names...),
		Units:    append([]string(nil), units...),
		NMetrics: len(names),
		NSamples: nSamples,
		Values:   make([][]float64, len(names)),
	}
	for m := range t.Values {
		t.Values[m] = make([]float64, nSamples)
	}
	return t, nil
}

// Free releases the table's storage. It is safe to call on a nil *Table.
func Free(t **Table) {
	if t == nil {
		return
	}
	*t = nil
}

// Index returns the row index of the named metric, or -1.
func (t *Table) Index(name string) int {
	for i, n := range t.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Set writes value into (metric, sample). Out-of-range indices are a no-op
// - kernels are trusted callers operating within their own allocation.
func (t *Table) Set(metricIdx, sampleIdx int, value float64) {
	if metricIdx < 0 || metricIdx >= t.NMetrics {
		return
	}
	if sampleIdx < 0 || sampleIdx >= t.NSamples {
		return
	}
	t.Values[metricIdx][sampleIdx] = value
}

// SetByName writes value into (name, sample); a no-op if name is unknown.
func (t *Table) SetByName(name string, sampleIdx int, value float64) {
	if i := t.Index(name); i >= 0 {
		t.Set(i, sampleIdx, value)
	}
}

// Row returns the full row for a metric name, or nil.
func (t *Table) Row(name string) []float64 {
	if i := t.Index(name); i >= 0 {
		return t.Values[i]
	}
	return nil
}

// UnitFor resolves the display unit for metric i: the literal UnitSame
// means "use dataUnits" (the transformed variable's own units attribute).
func (t *Table) UnitFor(i int, dataUnits string) string {
	if i < 0 || i >= len(t.Units) {
		return ""
	}
	if t.Units[i] == UnitSame {
		return dataUnits
	}
	return t.Units[i]
}
