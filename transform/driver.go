// Package transform implements the serial-1D driver (spec §4.9, component
// C9): the entry point that resolves dimension groups, lifts quality
// control, selects a kernel per group, executes the groups in their
// declared transform order, and materializes eligible per-transform
// metrics as sibling variables.
package transform

import (
	"errors"

	"github.com/sciflow/gridtransform/dimgroup"
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/kernel"
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/paramstore"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// Options configures one Drive call. Every field is optional: a nil
// Registry falls back to kernel.Default, a nil QCMapping falls back to the
// process-global qc.Mapping() (or a per-call default built from qc_bad), a
// nil Log silently drops warnings.
type Options struct {
	Registry  *kernel.Registry
	Log       kernel.Logger
	QCMapping qc.MappingFunc
}

// Result reports what one Drive call produced beyond mutating out_var and
// out_qc_var in place: the metric sibling variables it created, keyed by
// metric name (spec §4.9's metric-sink rule).
type Result struct {
	Metrics map[string]*vardata.Variable
}

// Drive runs the driver for one (in_var, in_qc_var?, out_var, out_qc_var)
// invocation. in_qc_var may be nil (treated as all-zero QC); out_qc_var
// must not be nil - its QC buffer receives the final working QC state.
func Drive(inVar, inQCVar, outVar, outQCVar *vardata.Variable, opts Options) (*Result, error) {
	if tt, ok := vardata.ParamString(outVar, "", "transform_type"); ok && tt == "Multi_Dimensional" {
		return nil, kerr.NotImplemented
	}

	reg := opts.Registry
	if reg == nil {
		reg = kernel.Default
	}

	groups, err := dimgroup.Parse(inVar, outVar)
	if err != nil {
		return nil, err
	}
	g := len(groups)

	store := paramstore.New()
	mask := qc.MaskFor(inVar)

	// The original input buffer is copied, never mutated or reused in
	// place - the "don't free the original on the first iteration"
	// invariant falls out naturally from this copy plus Go's GC reclaiming
	// each superseded working buffer.
	workData := append([]float64(nil), inVar.Data...)
	workQC, err := liftQC(inVar, inQCVar, opts.QCMapping)
	if err != nil {
		return nil, err
	}

	curLen := make([]int, g)
	for i, grp := range groups {
		curLen[i] = grp.InputLength
	}

	orderOf := make([]int, g)
	for pos, grp := range groups {
		orderOf[grp.Order] = pos
	}

	sel := make([]selection, g)
	for i := range groups {
		s, err := selectKernel(groups[i], inVar, outVar, reg)
		if err != nil {
			return nil, err
		}
		sel[i] = s
		store.Append("transform", s.name, groups[i].OutputDimNames[0], outVar.Name)
		recordGroupParams(store, groups[i], outVar)
	}

	shapePreservedByOrder := make([]bool, g)
	for n := 0; n < g; n++ {
		pos := orderOf[n]
		shapePreservedByOrder[n] = groups[pos].InputLength == groups[pos].OutputLength
	}
	eligible := eligibility(shapePreservedByOrder)

	metricBufs := make(map[string][]float64)
	metricUnits := make(map[string]string)

	for n := 0; n < g; n++ {
		pos := orderOf[n]
		grp := groups[pos]

		oldLens := append([]int(nil), curLen...)
		oldStrides := computeStrides(oldLens)
		newLens := append([]int(nil), curLen...)
		newLens[pos] = grp.OutputLength
		newStrides := computeStrides(newLens)

		newData := make([]float64, product(newLens))
		newQC := make([]int32, product(newLens))

		it := newSliceIterator(oldLens, oldStrides, pos)

		for s := 0; s < it.total; s++ {
			inBase := it.at(s)
			outBase := it.baseWith(s, newStrides)

			inSlice := make([]float64, oldLens[pos])
			inQCSlice := make([]int32, oldLens[pos])
			for k := 0; k < oldLens[pos]; k++ {
				inSlice[k] = workData[inBase+k*oldStrides[pos]]
				inQCSlice[k] = workQC[inBase+k*oldStrides[pos]]
			}

			outSlice, outQCSlice, met, err := runGroupKernel(sel[pos], grp, inVar, outVar, inSlice, inQCSlice, mask, opts.Log)
			if err != nil {
				return nil, err
			}

			for k := 0; k < grp.OutputLength; k++ {
				newData[outBase+k*newStrides[pos]] = outSlice[k]
				newQC[outBase+k*newStrides[pos]] = outQCSlice[k]
			}

			if eligible[n] && met != nil {
				for mi, name := range met.Names {
					buf, ok := metricBufs[name]
					if !ok {
						buf = make([]float64, len(newData))
						metricBufs[name] = buf
						metricUnits[name] = met.UnitFor(mi, outVar.Units())
					}
					for k := 0; k < grp.OutputLength; k++ {
						buf[outBase+k*newStrides[pos]] = met.Values[mi][k]
					}
				}
			}
		}

		workData = newData
		workQC = newQC
		curLen[pos] = grp.OutputLength
	}

	outVar.Data = workData
	outQCVar.QC = workQC

	result := &Result{Metrics: make(map[string]*vardata.Variable)}
	for name, buf := range metricBufs {
		sibName := siblingName(outVar.Name, name)
		if ds := outVar.Dataset(); ds != nil {
			if existing, ok := ds.Var(sibName); ok {
				// User declarations win (spec §4.9's metric-sink rule).
				if opts.Log != nil {
					opts.Log.Warn("transform: metric sibling already declared, skipping", "name", sibName)
				}
				outVar.Tags[name] = existing
				result.Metrics[name] = existing
				continue
			}
		}
		sibling := newMetricVariable(outVar, name, metricUnits[name], buf)
		if outVar.Dataset() != nil {
			outVar.Dataset().AddVariable(sibling)
		}
		outVar.Tags[name] = sibling
		result.Metrics[name] = sibling
	}

	outVar.Attrs["cell_transform"] = store.Serialize(outVar.Name)
	store.Clear()

	return result, nil
}

// runGroupKernel dispatches one group's kernel for a single gathered
// 1-D slice: the uniform kernel.Call ABI for every registry kernel, or the
// Caracena bridge when the group's selected transform is TRANS_CARACENA.
func runGroupKernel(sel selection, grp dimgroup.Group, inVar, outVar *vardata.Variable, inSlice []float64, inQCSlice []int32, mask uint32, log kernel.Logger) ([]float64, []int32, *metric.Table, error) {
	if sel.name == kernel.Caracena {
		co, err := runCaracenaSlice(grp, inVar, outVar, inSlice, inQCSlice, mask, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return co.data, co.qc, co.met, nil
	}

	outSlice := make([]float64, grp.OutputLength)
	outQCSlice := make([]int32, grp.OutputLength)
	var met *metric.Table
	call := &kernel.Call{
		InputData:     inSlice,
		InputQC:       inQCSlice,
		InputMissing:  inVar.MissingValue(),
		OutputData:    outSlice,
		OutputQC:      outQCSlice,
		OutputMissing: outVar.MissingValue(),
		InputVar:      inVar,
		OutputVar:     outVar,
		D:             grp.InputOffset,
		OD:            grp.OutputOffset,
		QCMask:        mask,
		Met:           &met,
		Log:           log,
	}
	if err := sel.fn(call); err != nil {
		if errors.Is(err, kerr.InsufficientInput) {
			if log != nil {
				log.Warn("transform: insufficient input samples", "group", grp.OutputDimNames[0])
			}
		} else {
			return nil, nil, nil, err
		}
	}
	applyEstimatedBinTags(call, outQCSlice)
	return outSlice, outQCSlice, met, nil
}

// applyEstimatedBinTags ORs ESTIMATED_INPUT_BIN/ESTIMATED_OUTPUT_BIN into
// every QC value this call just produced, when this specific call's
// bingeom.Edges resolution fell through to rule 4 (spec §4.9's
// estimated-bin QC propagation). Reading call.EstimatedInput/Output -
// populated by the kernel from bingeom.Edges' own return value - instead
// of re-deriving it from the variable keeps this scoped to the group that
// actually ran, rather than a stale inference flag some earlier,
// unrelated call left on the shared *vardata.Variable.
func applyEstimatedBinTags(call *kernel.Call, outQCSlice []int32) {
	if !call.EstimatedInput && !call.EstimatedOutput {
		return
	}
	for k := range outQCSlice {
		state := uint32(outQCSlice[k])
		if call.EstimatedInput {
			state = qc.Set(state, qc.ESTIMATED_INPUT_BIN)
		}
		if call.EstimatedOutput {
			state = qc.Set(state, qc.ESTIMATED_OUTPUT_BIN)
		}
		outQCSlice[k] = int32(state)
	}
}
