package transform

import "github.com/sciflow/gridtransform/vardata"

// eligibility computes, for each transform position n in [0,G), whether
// metrics produced at that position are materialized as sibling variables
// (spec §4.9's metric-sink rule): position n is eligible iff every
// position strictly after n left the working buffer's group-length vector
// unchanged. The last position is always eligible (there is nothing after
// it to falsify the condition).
func eligibility(shapePreservedByOrder []bool) []bool {
	g := len(shapePreservedByOrder)
	eligible := make([]bool, g)
	suffixOK := true
	for n := g - 1; n >= 0; n-- {
		eligible[n] = suffixOK
		suffixOK = suffixOK && shapePreservedByOrder[n]
	}
	return eligible
}

// siblingName implements spec §4.9's metric sibling-naming rule: splice
// "_<metric>" immediately before an "@station"-style suffix if the base
// name carries one, otherwise append it.
func siblingName(base, metric string) string {
	for i := 0; i < len(base); i++ {
		if base[i] == '@' {
			return base[:i] + "_" + metric + base[i:]
		}
	}
	return base + "_" + metric
}

// newMetricVariable builds the sibling variable for one metric: same
// dimensions and missing_value convention as outVar, long_name/units
// populated from the metric table, data taken from the accumulated buffer.
func newMetricVariable(outVar *vardata.Variable, metricName, unit string, data []float64) *vardata.Variable {
	v := vardata.NewVariable(siblingName(outVar.Name, metricName), append([]*vardata.Dimension(nil), outVar.Dims...)...)
	v.Data = data
	v.Attrs["long_name"] = "Metric " + metricName + " for field " + outVar.Name
	v.Attrs["units"] = unit
	v.Attrs["missing_value"] = outVar.MissingValue()
	return v
}
