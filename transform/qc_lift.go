package transform

import (
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// liftQC produces the driver's working QC buffer, sized to inVar.Len():
// broadcast a lower-rank QC variable across the dims it lacks, then apply
// the QC-mapping function (an explicit override, else the process-global
// one, else a per-call default built from the QC variable's qc_bad
// parameter) element-wise. Absent any mapping, the raw (broadcast) values
// pass through unchanged - spec §4.9's "if not set, the raw copy is the
// canonical state" case.
func liftQC(inVar, inQCVar *vardata.Variable, override qc.MappingFunc) ([]int32, error) {
	n := inVar.Len()
	if inQCVar == nil {
		return make([]int32, n), nil
	}
	if inQCVar.Rank() > inVar.Rank() {
		return nil, kerr.QcShapeInvalid
	}

	var raw []int32
	if inQCVar.Rank() == inVar.Rank() {
		raw = append([]int32(nil), inQCVar.QC...)
	} else {
		raw = broadcastQC(inQCVar, inVar)
	}

	mapping := override
	if mapping == nil {
		mapping = qc.Mapping()
	}
	if mapping == nil {
		if bad, ok := vardata.ParamIntSlice(inQCVar, "", "qc_bad"); ok {
			mapping = qc.DefaultMapping(bad)
		}
	}
	if mapping == nil {
		return raw, nil
	}

	mapped := make([]int32, n)
	for i, r := range raw {
		mapped[i] = mapping(inVar, inVar.Data[i], int(r))
	}
	return mapped, nil
}

// broadcastQC replicates a lower-rank QC variable's values across the
// dimensions of dataVar that qcVar lacks: every dimension qcVar does carry
// must match dataVar's dimension of the same name by construction (the
// driver's precondition), and every element of dataVar's index space reads
// the qcVar element obtained by dropping the indices of the missing dims.
func broadcastQC(qcVar, dataVar *vardata.Variable) []int32 {
	outLens := dataVar.Lengths()
	qcLens := qcVar.Lengths()
	qcStrides := computeStrides(qcLens)

	qcDimOfData := make([]int, len(qcVar.Dims))
	for i, d := range qcVar.Dims {
		qcDimOfData[i] = dataVar.DimIndex(d.Name)
	}

	n := dataVar.Len()
	out := make([]int32, n)
	idx := make([]int, len(outLens))
	for flat := 0; flat < n; flat++ {
		unflatten(flat, outLens, idx)
		qcFlat := 0
		for qi, di := range qcDimOfData {
			qcFlat += idx[di] * qcStrides[qi]
		}
		out[flat] = qcVar.QC[qcFlat]
	}
	return out
}

// unflatten decodes a row-major flat index into per-dimension indices.
func unflatten(flat int, lens []int, idx []int) {
	for d := len(lens) - 1; d >= 0; d-- {
		idx[d] = flat % lens[d]
		flat /= lens[d]
	}
}
