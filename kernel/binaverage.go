package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sciflow/gridtransform/bingeom"
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// stdRoundoffTolerance bounds how negative sum0*sum2-sum1^2 may drift from
// rounding before the std metric is treated as genuinely unusable rather
// than clamped to zero (spec §4.6.3).
const stdRoundoffTolerance = 1e-9

// BinAverageFunc implements spec §4.6.3: weighted average of every input
// bin overlapping each output bin.
func BinAverageFunc(c *Call) error {
	n1 := len(c.InputData)
	n2 := len(c.OutputData)

	met, err := metric.Allocate([]string{"std", "goodfraction"}, []string{metric.UnitSame, ""}, n2)
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

	inFront, inBack, _, inEstimated, err := bingeom.Edges(c.InputVar, inDim, inCoordVar.Data)
	if err != nil {
		return err
	}
	outFront, outBack, _, outEstimated, err := bingeom.Edges(c.OutputVar, outDim, outCoordVar.Data)
	if err != nil {
		return err
	}
	c.EstimatedInput = inEstimated
	c.EstimatedOutput = outEstimated

	weight := make([]float64, n1)
	for i := range weight {
		weight[i] = 1.0
	}
	if w, ok := vardata.ParamFloat64Slice(c.InputVar, inDim, "weights"); ok {
		if len(w) == n1 {
			copy(weight, w)
		} else if len(w) == 1 {
			for i := range weight {
				weight[i] = w[0]
			}
		}
	}

	stdBadMax, hasStdBad := vardata.ParamFloat64(c.OutputVar, outDim, "std_bad_max")
	stdIndMax, hasStdInd := vardata.ParamFloat64(c.OutputVar, outDim, "std_ind_max")
	goodfracBadMin, hasGfBad := vardata.ParamFloat64(c.OutputVar, outDim, "goodfrac_bad_min")
	goodfracIndMin, hasGfInd := vardata.ParamFloat64(c.OutputVar, outDim, "goodfrac_ind_min")

	w := make([]float64, 0, n1)
	x := make([]float64, 0, n1)
	wx2 := make([]float64, 0, n1)

	for j := 0; j < n2; j++ {
		A, B := outFront[j], outBack[j]
		if B == A {
			return kerr.ZeroOutputBinWidth
		}
		if B < A {
			A, B = B, A
		}

		w = w[:0]
		x = x[:0]
		wx2 = wx2[:0]

		var totalSpan, goodSpan float64
		var anyOverlap, anyUsable, anyUnusable, anyIndeterminate bool

		for i := 0; i < n1; i++ {
			a, b := inFront[i], inBack[i]
			if b < a {
				a, b = b, a
			}

			var wOverlap float64
			if a == b {
				mid := a
				if mid >= A && mid <= B {
					wOverlap = 1
				}
			} else {
				lo := math.Max(a, A)
				hi := math.Min(b, B)
				if hi > lo {
					wOverlap = (hi - lo) / (b - a)
				}
				if wOverlap < 0 {
					wOverlap = 0
				}
				if wOverlap > 1 {
					wOverlap = 1
				}
			}
			if wOverlap <= 0 {
				continue
			}
			anyOverlap = true
			span := math.Abs(b - a)
			totalSpan += wOverlap * span

			usable := Usable(c.InputData[i], c.InputMissing, c.InputQC[i], c.QCMask)
			if usable {
				anyUsable = true
				goodSpan += wOverlap * span
				wi := wOverlap * weight[i]
				w = append(w, wi)
				x = append(x, c.InputData[i])
				wx2 = append(wx2, wi*c.InputData[i]*c.InputData[i])
			} else {
				anyUnusable = true
			}
			if uint32(c.InputQC[i])&^c.QCMask != 0 {
				anyIndeterminate = true
			}
		}

		if !anyOverlap {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			continue
		}
		if !anyUsable {
			c.OutputData[j] = c.OutputMissing
			c.OutputQC[j] = int32(qc.Set(qc.Set(0, qc.ALL_BAD_INPUTS), qc.BAD))
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			continue
		}

		sum0 := floats.Sum(w)
		var state uint32

		if sum0 == 0 {
			c.OutputData[j] = 0
			state = qc.Set(state, qc.ZERO_WEIGHT)
			met.Values[0][j] = c.OutputMissing
			met.Values[1][j] = c.OutputMissing
			c.OutputQC[j] = int32(state)
			continue
		}

		sum1 := floats.Dot(w, x)
		sum2 := floats.Sum(wx2)

		c.OutputData[j] = sum1 / sum0

		if anyUnusable {
			state = qc.Set(state, qc.SOME_BAD_INPUTS)
		}
		if anyIndeterminate {
			state = qc.Set(state, qc.INDETERMINATE)
		}

		variance := (sum0*sum2 - sum1*sum1) / (sum0 * sum0)
		var std float64
		stdOK := true
		switch {
		case variance >= 0:
			std = math.Sqrt(variance)
		case variance >= -stdRoundoffTolerance:
			std = 0
		default:
			stdOK = false
		}
		if stdOK {
			met.Values[0][j] = std
			if hasStdBad && std > stdBadMax {
				state = qc.Set(state, qc.BAD_STD)
			} else if hasStdInd && std > stdIndMax {
				state = qc.Set(state, qc.INDETERMINATE_STD)
			}
		} else {
			met.Values[0][j] = c.OutputMissing
		}

		var goodfrac float64
		if totalSpan > 0 {
			goodfrac = goodSpan / totalSpan
		}
		met.Values[1][j] = goodfrac
		if hasGfBad && goodfrac < goodfracBadMin {
			state = qc.Set(state, qc.BAD_GOODFRAC)
		} else if hasGfInd && goodfrac < goodfracIndMin {
			state = qc.Set(state, qc.INDETERMINATE_GOODFRAC)
		}

		c.OutputQC[j] = int32(state)
	}

	return nil
}
