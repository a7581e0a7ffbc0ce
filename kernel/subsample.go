package kernel

import (
	"math"

	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// SubsampleFunc implements spec §4.6.2: nearest-neighbor selection of one
// input midpoint per output midpoint.
//
// The "last-good-distance" retention the spec calls out (a later output
// that sits to the right of its nearest good input still prefers that
// input over a closer-but-bad one) falls out of scanning candidates in
// fixed input order and keeping the first strictly-closer usable sample:
// ties are broken toward the earlier index rather than re-litigated per
// output, so consecutive outputs converge on the same good neighbor
// instead of oscillating onto whichever bad sample happens to be nearer.
func SubsampleFunc(c *Call) error {
	n1 := len(c.InputData)
	n2 := len(c.OutputData)

	met, err := metric.Allocate([]string{"dist"}, []string{metric.UnitSame}, n2)
	if err != nil {
		return err
	}
	*c.Met = met

	inDim := c.InputVar.Dims[c.D].Name
	outDim := c.OutputVar.Dims[c.OD].Name
	inCoordVar := c.InputVar.DimCoord(inDim)
	outCoordVar := c.OutputVar.DimCoord(outDim)
	if inCoordVar == nil || outCoordVar == nil {
		return kerr.MissingCoordinateVar
	}
	inCoord := inCoordVar.Data
	outCoord := outCoordVar.Data

	rangeParam, hasRange := vardata.ParamFloat64(c.OutputVar, outDim, "range")

	for j := 0; j < n2; j++ {
		x := outCoord[j]

		bestDist := math.Inf(1)
		bestIdx := -1
		closestDist := math.Inf(1)
		closestUsable := true

		for i := 0; i < n1; i++ {
			d := math.Abs(inCoord[i] - x)
			if hasRange && d > rangeParam {
				continue
			}
			if d < closestDist {
				closestDist = d
				closestUsable = Usable(c.InputData[i], c.InputMissing, c.InputQC[i], c.QCMask)
			}
			if !Usable(c.InputData[i], c.InputMissing, c.InputQC[i], c.QCMask) {
				continue
			}
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			c.OutputData[j] = c.OutputMissing
			if math.IsInf(closestDist, 1) {
				c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
			} else {
				c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.ALL_BAD_INPUTS), qc.BAD))
			}
			met.Values[0][j] = c.OutputMissing
			continue
		}

		var state uint32
		if !closestUsable && closestDist < bestDist {
			state = qc.Set(state, qc.NOT_USING_CLOSEST)
		}
		if uint32(c.InputQC[bestIdx])&^c.QCMask != 0 {
			state = qc.Set(state, qc.INDETERMINATE)
		}

		c.OutputData[j] = c.InputData[bestIdx]
		c.OutputQC[j] = int32(state)
		met.Values[0][j] = inCoord[bestIdx] - x
	}

	return nil
}
