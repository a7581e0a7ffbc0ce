package transform

import (
	"github.com/sciflow/gridtransform/caracena"
	"github.com/sciflow/gridtransform/dimgroup"
	"github.com/sciflow/gridtransform/kerr"
	"github.com/sciflow/gridtransform/kernel"
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/vardata"
)

// caracenaOutput bundles one group-transform invocation of the Caracena
// kernel for a single "other dims" slice, in the same (data, qc, metrics)
// shape the generic kernel.Call path produces, so the driver's execution
// loop and metric-sink logic don't need a separate code path per kernel.
type caracenaOutput struct {
	data []float64
	qc   []int32
	met  *metric.Table
}

// runCaracenaSlice adapts one group's scattered-station input slice (the
// group's input axis for a fixed combination of the surrounding
// dimensions) into a caracena.Run call over the group's output lat/lon
// grid (spec §4.7, component C7). The station coordinates are read from
// sibling variables named by the lat_field/lon_field parameters (default
// "lat"/"lon") on the input variable's dataset.
func runCaracenaSlice(g dimgroup.Group, inVar, outVar *vardata.Variable, inSlice []float64, inQCSlice []int32, mask uint32, log kernel.Logger) (*caracenaOutput, error) {
	stationDim := g.InputDimNames[0]
	latField, _ := vardata.ParamString(inVar, stationDim, "lat_field")
	if latField == "" {
		latField = "lat"
	}
	lonField, _ := vardata.ParamString(inVar, stationDim, "lon_field")
	if lonField == "" {
		lonField = "lon"
	}

	ds := inVar.Dataset()
	if ds == nil {
		return nil, kerr.MissingCoordinateVar
	}
	latVar, ok := ds.Var(latField)
	if !ok {
		return nil, kerr.MissingCoordinateVar
	}
	lonVar, ok := ds.Var(lonField)
	if !ok {
		return nil, kerr.MissingCoordinateVar
	}

	if len(g.OutputDimNames) != 2 {
		return nil, kerr.NoTransform
	}
	latGridVar := outVar.DimCoord(g.OutputDimNames[0])
	lonGridVar := outVar.DimCoord(g.OutputDimNames[1])
	if latGridVar == nil || lonGridVar == nil {
		return nil, kerr.MissingCoordinateVar
	}

	stations := make([]caracena.Station, len(inSlice))
	for i := range inSlice {
		stations[i] = caracena.Station{
			Lat:   latVar.Data[i],
			Lon:   lonVar.Data[i],
			Value: inSlice[i],
			QC:    inQCSlice[i],
		}
	}

	outTag := g.OutputDimNames[0]
	// Spec §4.7's exposed parameter name is "scale_factor" (a count of
	// kilometres despite the bare name); §4.7 step 3 calls the derived
	// metres value "scale_factor_km" purely as algorithm notation.
	scaleKM, ok := vardata.ParamFloat64(outVar, outTag, "scale_factor")
	if !ok {
		scaleKM = 100
	}
	npass, _ := vardata.ParamInt(outVar, outTag, "number_of_passes")
	minStations, _ := vardata.ParamInt(outVar, outTag, "min_stations")

	cfg := caracena.Config{
		ScaleFactorKM: scaleKM,
		NPass:         npass,
		MinStations:   minStations,
		QCMask:        mask,
		InputMissing:  inVar.MissingValue(),
		OutputMissing: outVar.MissingValue(),
		Log:           log,
	}

	res, err := caracena.Run(stations, latGridVar.Data, lonGridVar.Data, cfg)
	if err != nil {
		return nil, err
	}

	met, err := metric.Allocate(
		[]string{"deriv_lat", "deriv_lon", "nstat"},
		[]string{metric.UnitSame, metric.UnitSame, ""},
		len(res.Data),
	)
	if err != nil {
		return nil, err
	}
	met.Values[0] = res.DerivLat
	met.Values[1] = res.DerivLon
	met.Values[2] = res.NStat

	if qc.Test(int32At(res.QC), qc.ALL_BAD_INPUTS) {
		warn(log, "caracena: all input stations bad")
	}

	return &caracenaOutput{data: res.Data, qc: res.QC, met: met}, nil
}

func warn(log kernel.Logger, msg string, kv ...interface{}) {
	if log != nil {
		log.Warn(msg, kv...)
	}
}

// int32At reports the first QC state in a result, used only to decide
// whether a driver-level warning is worth emitting; a nil/empty slice
// reads as zero state.
func int32At(s []int32) uint32 {
	if len(s) == 0 {
		return 0
	}
	return uint32(s[0])
}
