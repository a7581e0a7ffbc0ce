// Package paramstore implements the transform-parameter store (spec §3,
// §4.4, component C4): an ordered, duplicate-suppressing list of
// (parameter-name, value, dimension-tag, field-tag) records, and the
// serializer that renders them into the single cell_transform provenance
// string attached to every transformed variable.
package paramstore

import (
	"strings"

	"github.com/sciflow/gridtransform/vardata"
)

// NoDim is the dimension-tag value denoting a field-level (not
// dimension-specific) record (spec §3).
const NoDim = "NODIM"

// Record is one (name, value, dimension-tag, field-tag) entry.
type Record struct {
	Name    string
	Value   interface{}
	DimTag  string
	FieldTag string
}

// Store is the per-driver-call parameter store. Spec §5 requires this be a
// per-call resource rather than a process-global singleton, so concurrent
// driver calls can run safely on disjoint variable pairs - callers
// construct one Store per drive() invocation (see transform.Drive).
type Store struct {
	records []Record
}

// New returns an empty Store.
func New() *Store { return &Store{} }

// Append inserts a record at the tail unless an exact 4-tuple already
// exists (spec §4.4, tested by spec §8 invariant 8).
func (s *Store) Append(name string, value interface{}, dimTag, fieldTag string) {
	key := vardata.Stringify(value)
	for _, r := range s.records {
		if r.Name == name && r.DimTag == dimTag && r.FieldTag == fieldTag && vardata.Stringify(r.Value) == key {
			return
		}
	}
	s.records = append(s.records, Record{Name: name, Value: value, DimTag: dimTag, FieldTag: fieldTag})
}

// Clear empties the store (spec §4.4, invoked by the driver after a
// successful serialize).
func (s *Store) Clear() { s.records = nil }

// Records returns the stored records in encounter order (read-only view;
// callers must not mutate the returned slice's backing elements).
func (s *Store) Records() []Record { return s.records }

// Serialize renders the provenance string for fieldTag in one pass (spec
// §4.4):
//
//   - for each distinct dim_tag != NODIM among fieldTag's records, in
//     first-appearance order: "<dim_tag>: <transform_name> (k1: v1 k2: v2 ...)";
//     a record named "transform" supplies transform_name (TRANS_UNKNOWN if
//     none was recorded for that dim_tag); an otherwise-empty parameter
//     list collapses to "<dim_tag>: <transform_name>" with no parentheses;
//   - then, for every dim_tag == NODIM record belonging to fieldTag:
//     " <name>: <value>".
func (s *Store) Serialize(fieldTag string) string {
	var dimOrder []string
	dimRecords := make(map[string][]Record)
	var nodim []Record

	for _, r := range s.records {
		if r.FieldTag != fieldTag {
			continue
		}
		if r.DimTag == NoDim {
			nodim = append(nodim, r)
			continue
		}
		if _, seen := dimRecords[r.DimTag]; !seen {
			dimOrder = append(dimOrder, r.DimTag)
		}
		dimRecords[r.DimTag] = append(dimRecords[r.DimTag], r)
	}

	var sb strings.Builder
	for idx, dimTag := range dimOrder {
		recs := dimRecords[dimTag]
		transformName := "TRANS_UNKNOWN"
		var kv []Record
		for _, r := range recs {
			if r.Name == "transform" {
				transformName = vardata.Stringify(r.Value)
				continue
			}
			kv = append(kv, r)
		}
		if idx > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(dimTag)
		sb.WriteString(": ")
		sb.WriteString(transformName)
		if len(kv) > 0 {
			sb.WriteString(" (")
			for i, r := range kv {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(r.Name)
				sb.WriteString(": ")
				sb.WriteString(vardata.Stringify(r.Value))
			}
			sb.WriteString(")")
		}
	}

	for _, r := range nodim {
		sb.WriteString(" ")
		sb.WriteString(r.Name)
		sb.WriteString(": ")
		sb.WriteString(vardata.Stringify(r.Value))
	}

	return sb.String()
}
