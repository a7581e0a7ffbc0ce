package kernel

import (
	"math"

	"github.com/sciflow/gridtransform/bingeom"
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// negligibleWeight is the threshold below which a contributing sample's
// weight in the interpolation is considered not to materially influence
// the output, per spec §4.6.1 ("unless that sample's weight in u is
// negligible").
const negligibleWeight = 1e-9

// InterpolateFunc implements spec §4.6.1: bilinear interpolation from
// input midpoints to output midpoints.
func InterpolateFunc(c *Call) error {
	n1 := len(c.InputData)
	n2 := len(c.OutputData)

	met, err := metric.Allocate([]string{"dist_1", "dist_2"}, []string{metric.UnitSame, metric.UnitSame}, n2)
	if err != nil {
		return err
	}
	*c.Met = met

	if n1 < 2 {
		c.warn("interpolate: insufficient input samples", "n", n1)
		for j := 0; j < n2; j++ {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
		}
		return nil
	}

	inDim := c.InputVar.Dims[c.D].Name
	outDim := c.OutputVar.Dims[c.OD].Name
	inCoordVar := c.InputVar.DimCoord(inDim)
	outCoordVar := c.OutputVar.DimCoord(outDim)
	if inCoordVar == nil || outCoordVar == nil {
		return kerr.MissingCoordinateVar
	}
	inCoord := inCoordVar.Data
	outCoord := outCoordVar.Data

	incIn := monotonicDir(inCoord)
	incOut := monotonicDir(outCoord)
	if incIn == 0 || incOut == 0 || incIn != incOut {
		return kerr.NonMonotonicAxis
	}
	increasing := incIn > 0

	front, back, _, estimated, err := bingeom.Edges(c.InputVar, inDim, inCoord)
	if err != nil {
		return err
	}
	c.EstimatedInput = estimated

	order := sortOrder(n1, increasing)
	valAt := func(p int) float64 { return inCoord[order[p]] }
	halfWidthAt := func(p int) float64 {
		idx := order[p]
		return math.Abs(back[idx]-front[idx]) / 2
	}
	usableAt := func(p int) bool {
		idx := order[p]
		return Usable(c.InputData[idx], c.InputMissing, c.InputQC[idx], c.QCMask)
	}
	indeterminateAt := func(p int) bool {
		idx := order[p]
		return uint32(c.InputQC[idx])&^c.QCMask != 0
	}

	loVal, loHalf := valAt(0), halfWidthAt(0)
	hiVal, hiHalf := valAt(n1-1), halfWidthAt(n1-1)

	rangeParam, hasRange := vardata.ParamFloat64(c.OutputVar, outDim, "range")

	for j := 0; j < n2; j++ {
		x := outCoord[j]

		if x < loVal-loHalf || x > hiVal+hiHalf {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			continue
		}

		loP, hiP := bracket(n1, x, valAt)

		usedLoP, okLo, interpLo := walkOutward(loP, -1, n1, usableAt)
		usedHiP, okHi, interpHi := walkOutward(hiP, +1, n1, usableAt)
		if !okLo || !okHi {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(0, qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			continue
		}

		x1, x2 := valAt(usedLoP), valAt(usedHiP)
		y1, y2 := c.InputData[order[usedLoP]], c.InputData[order[usedHiP]]

		var u float64
		if x2 != x1 {
			u = (x - x1) / (x2 - x1)
		}

		var state uint32
		if interpLo || interpHi {
			state = qc.Set(state, qc.INTERPOLATE)
		}
		if u < 0 || u > 1 {
			state = qc.Set(state, qc.EXTRAPOLATE)
		}
		if (indeterminateAt(usedLoP) && (1-u) >= negligibleWeight) ||
			(indeterminateAt(usedHiP) && u >= negligibleWeight) {
			state = qc.Set(state, qc.INDETERMINATE)
		}

		nearest := math.Min(math.Abs(x1-x), math.Abs(x2-x))
		if hasRange && nearest > rangeParam {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			continue
		}

		c.OutputData[j] = u*y2 + (1-u)*y1
		c.OutputQC[j] = int32(state)
		met.Values[0][j] = x1 - x
		met.Values[1][j] = x2 - x
	}

	return nil
}

// monotonicDir returns +1 if coord is strictly increasing, -1 if strictly
// decreasing, 0 otherwise.
func monotonicDir(coord []float64) int {
	if len(coord) < 2 {
		return 1
	}
	inc, dec := true, true
	for i := 1; i < len(coord); i++ {
		if coord[i] <= coord[i-1] {
			inc = false
		}
		if coord[i] >= coord[i-1] {
			dec = false
		}
	}
	switch {
	case inc:
		return 1
	case dec:
		return -1
	default:
		return 0
	}
}

// sortOrder returns a permutation mapping value-sorted position -> real
// array index, given coord is known to be monotonic in direction
// `increasing`.
func sortOrder(n int, increasing bool) []int {
	order := make([]int, n)
	for i := range order {
		if increasing {
			order[i] = i
		} else {
			order[i] = n - 1 - i
		}
	}
	return order
}

// bracket finds the value-sorted position pair (lo,hi) such that
// valAt(lo) <= x <= valAt(hi) when x is within range: hi=lo+1 in general,
// lo == hi when x equals a sample value exactly. It clamps to the first or
// last pair when x lies beyond the axis (enabling extrapolation).
func bracket(n int, x float64, valAt func(int) float64) (lo, hi int) {
	if x == valAt(0) {
		return 0, 0
	}
	if x == valAt(n-1) {
		return n - 1, n - 1
	}
	if x < valAt(0) {
		return 0, 1
	}
	if x > valAt(n-1) {
		return n - 2, n - 1
	}
	for p := 0; p < n-1; p++ {
		if valAt(p) == x {
			return p, p
		}
		if valAt(p) < x && x < valAt(p+1) {
			return p, p + 1
		}
	}
	return n - 2, n - 1
}

// walkOutward moves from start in direction dir (-1 toward smaller
// positions, +1 toward larger) until usable(p) holds, returning the final
// position, whether one was found within bounds, and whether any walking
// was needed (triggering INTERPOLATE per spec §4.6.1).
func walkOutward(start, dir, n int, usable func(int) bool) (pos int, ok bool, walked bool) {
	for p := start; p >= 0 && p < n; p += dir {
		if usable(p) {
			return p, true, p != start
		}
	}
	return 0, false, true
}
