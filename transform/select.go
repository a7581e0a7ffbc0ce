package transform

import (
	"sort"

	"github.com/sciflow/gridtransform/dimgroup"
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/kernel"
	"github.com/sciflow/gridtransform/paramstore"
	"github.com/sciflow/gridtransform/vardata"
)

// selection is the resolved kernel for one group: either a registry-backed
// 1-D kernel.Func, or the Caracena name handled by the caracena bridge
// instead (fn is nil in that case).
type selection struct {
	name string
	fn   kernel.Func
}

// selectKernel implements spec §4.9's kernel auto-selection cascade for one
// group, tagged by its first output dimension name for parameter-cascade
// lookups. An explicit transform parameter applies regardless of group
// shape; the auto cascade (steps 2-3) requires a 1-to-1 group, since it
// compares a single input axis against a single output axis.
func selectKernel(g dimgroup.Group, inVar, outVar *vardata.Variable, reg *kernel.Registry) (selection, error) {
	outTag := g.OutputDimNames[0]

	if name, ok := vardata.ParamString(outVar, outTag, "transform"); ok && name != kernel.Auto {
		if name == kernel.Caracena {
			return selection{name: name}, nil
		}
		fn, found := reg.Lookup(name)
		if !found {
			return selection{}, kerr.NoTransform
		}
		return selection{name: name, fn: fn}, nil
	}

	if len(g.InputDimNames) != 1 || len(g.OutputDimNames) != 1 {
		return selection{}, kerr.NoTransform
	}
	inDim, outDim := g.InputDimNames[0], g.OutputDimNames[0]
	inCoord := inVar.DimCoord(inDim)
	outCoord := outVar.DimCoord(outDim)

	if inCoord != nil && outCoord != nil {
		inInterval := medianInterval(inCoord.Data)
		outInterval := medianInterval(outCoord.Data)
		name := kernel.Interpolate
		if outInterval > inInterval {
			name = kernel.BinAverage
		}
		fn, _ := reg.Lookup(name)
		return selection{name: name, fn: fn}, nil
	}

	if (inCoord == nil || outCoord == nil) && g.InputLength == g.OutputLength {
		fn, _ := reg.Lookup(kernel.Passthrough)
		return selection{name: kernel.Passthrough, fn: fn}, nil
	}

	return selection{}, kerr.NoTransform
}

// provenanceParamKeys lists the spec §6 transform-parameter keys that are
// per-kernel settings rather than field-level or QC bookkeeping (excludes
// transform_type, dim_grouping, transform itself, missing_value, the QC
// keys, and the station-view keys, none of which spec §4.4/S6 shows
// appearing inside a dimension's parenthesized parameter list).
var provenanceParamKeys = []string{
	"range", "interval", "width", "alignment",
	"boundary_1", "boundary_2", "front_edge", "back_edge",
	"weights", "std_bad_max", "std_ind_max", "goodfrac_bad_min", "goodfrac_ind_min",
	"lat_field", "lon_field", "number_of_passes", "scale_factor", "min_stations",
}

// recordGroupParams appends every recognized transform parameter that
// resolved for this group's output dimension to the store (spec §4.4's
// provenance format, exercised end-to-end by spec §8 scenario S6: e.g.
// "time: TRANS_BIN_AVERAGE (width: 60)"). Parameters are read the same way
// the kernel that consumes them reads them - cascaded from outVar, tagged
// by the group's first output dimension name.
func recordGroupParams(store *paramstore.Store, g dimgroup.Group, outVar *vardata.Variable) {
	outTag := g.OutputDimNames[0]
	for _, key := range provenanceParamKeys {
		if val, ok := vardata.Param(outVar, outTag, key); ok {
			store.Append(key, val, outTag, outVar.Name)
		}
	}
}

// medianInterval returns the median spacing between consecutive coordinate
// values, used by the selection cascade to compare input/output resolution
// (spec §4.9 step 3: "the average interval" - approximated here with the
// median, which the teacher's statistics helpers elsewhere prefer over a
// raw mean for resisting a single irregular bin).
func medianInterval(coord []float64) float64 {
	n := len(coord)
	if n < 2 {
		return 0
	}
	diffs := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		d := coord[i] - coord[i-1]
		if d < 0 {
			d = -d
		}
		diffs = append(diffs, d)
	}
	sort.Float64s(diffs)
	mid := len(diffs) / 2
	if len(diffs)%2 == 1 {
		return diffs[mid]
	}
	return (diffs[mid-1] + diffs[mid]) / 2
}
