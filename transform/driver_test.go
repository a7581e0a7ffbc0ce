package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sciflow/gridtransform/kernel"
	"github.com/sciflow/gridtransform/qc"
	"github.com/sciflow/gridtransform/transform"
	"github.com/sciflow/gridtransform/vardata"
	"github.com/sciflow/gridtransform/ziplog"
)

// coordVariable builds a rank-1 data variable and attaches it as dim's
// coordinate, the same helper shape kernel_test.go uses.
func coordVariable(dim *vardata.Dimension, data []float64) *vardata.Variable {
	v := vardata.NewVariable(dim.Name, dim)
	v.Data = data
	dim.Coord = v
	return v
}

type DriverSuite struct {
	suite.Suite
}

// TestS1InterpolateOntoDenserGrid is spec §8 scenario S1.
func (s *DriverSuite) TestS1InterpolateOntoDenserGrid() {
	inDim := &vardata.Dimension{Name: "x", Length: 4}
	outDim := &vardata.Dimension{Name: "x", Length: 3}
	coordVariable(inDim, []float64{0, 1, 2, 3})
	coordVariable(outDim, []float64{0.5, 1.5, 2.5})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{10, 20, 30, 40}
	// Explicit input-side bin width (rule 2) so bingeom.Edges doesn't fall
	// through to rule 4's inference - the scenario's literal QC is plain
	// 0, not ESTIMATED_INPUT_BIN.
	inVar.Attrs["width"] = 1.0
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	result, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.InDeltaSlice([]float64{15, 25, 35}, outVar.Data, 1e-9)
	s.Equal([]int32{0, 0, 0}, outQCVar.QC)

	distVar, ok := result.Metrics["dist_1"]
	require.True(s.T(), ok)
	s.InDeltaSlice([]float64{-0.5, -0.5, -0.5}, distVar.Data, 1e-9)
	dist2Var, ok := result.Metrics["dist_2"]
	require.True(s.T(), ok)
	s.InDeltaSlice([]float64{0.5, 0.5, 0.5}, dist2Var.Data, 1e-9)
}

// TestS2InterpolateRangeCutoff is spec §8 scenario S2.
func (s *DriverSuite) TestS2InterpolateRangeCutoff() {
	inDim := &vardata.Dimension{Name: "x", Length: 2}
	outDim := &vardata.Dimension{Name: "x", Length: 1}
	coordVariable(inDim, []float64{0, 10})
	coordVariable(outDim, []float64{5})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{0, 100}
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outVar.Attrs["range"] = 2.0
	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.Equal(-9999.0, outVar.Data[0])
	state := uint32(outQCVar.QC[0])
	s.True(qc.Test(state, qc.OUTSIDE_RANGE))
	s.True(qc.Test(state, qc.BAD))
}

// TestS3BinAverageOneBadInput is spec §8 scenario S3.
func (s *DriverSuite) TestS3BinAverageOneBadInput() {
	inDim := &vardata.Dimension{Name: "x", Length: 4}
	outDim := &vardata.Dimension{Name: "x", Length: 2}
	coordVariable(inDim, []float64{0, 1, 2, 3})
	coordVariable(outDim, []float64{0.5, 2.5})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{10, 20, 99, 40}
	// Explicit input-side bin width (rule 2), matching S1's fix: the
	// scenario's literal QC is [0, SOME_BAD_INPUTS], not carrying
	// ESTIMATED_INPUT_BIN from rule 4's inference.
	inVar.Attrs["width"] = 1.0
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outVar.Attrs["boundary_1"] = []float64{-0.5, 1.5}
	outVar.Attrs["boundary_2"] = []float64{1.5, 3.5}
	outVar.Attrs["transform"] = kernel.BinAverage

	inQCVar := vardata.NewVariable("field_qc", inDim)
	inQCVar.QC = []int32{0, 0, int32(qc.BAD.Value()), 0}
	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	result, err := transform.Drive(inVar, inQCVar, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.InDeltaSlice([]float64{15, 40}, outVar.Data, 1e-9)
	s.Equal(int32(0), outQCVar.QC[0])
	s.True(qc.Test(uint32(outQCVar.QC[1]), qc.SOME_BAD_INPUTS))

	gf, ok := result.Metrics["goodfraction"]
	require.True(s.T(), ok)
	s.InDeltaSlice([]float64{1.0, 0.5}, gf.Data, 1e-9)
}

// TestS4SubsampleSkipsBad is spec §8 scenario S4.
func (s *DriverSuite) TestS4SubsampleSkipsBad() {
	inDim := &vardata.Dimension{Name: "x", Length: 3}
	outDim := &vardata.Dimension{Name: "x", Length: 1}
	coordVariable(inDim, []float64{0, 1, 2})
	coordVariable(outDim, []float64{1})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{10, 99, 30}
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outVar.Attrs["transform"] = kernel.Subsample
	outVar.Attrs["range"] = 1.5

	inQCVar := vardata.NewVariable("field_qc", inDim)
	inQCVar.QC = []int32{0, int32(qc.BAD.Value()), 0}
	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	result, err := transform.Drive(inVar, inQCVar, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.Equal(10.0, outVar.Data[0])
	s.True(qc.Test(uint32(outQCVar.QC[0]), qc.NOT_USING_CLOSEST))

	dist, ok := result.Metrics["dist"]
	require.True(s.T(), ok)
	s.InDelta(-1.0, dist.Data[0], 1e-9)
}

// TestS5CaracenaUniformField is spec §8 scenario S5.
func (s *DriverSuite) TestS5CaracenaUniformField() {
	ds := vardata.NewDataset("ds")
	timeDim, _ := ds.AddDimension("time", 1)
	stationDim, _ := ds.AddDimension("station", 3)
	latDim, _ := ds.AddDimension("lat", 2)
	lonDim, _ := ds.AddDimension("lon", 2)

	coordVariable(latDim, []float64{0, 1})
	coordVariable(lonDim, []float64{0, 1})

	stationLat := vardata.NewVariable("station_lat", stationDim)
	stationLat.Data = []float64{0, 0, 1}
	ds.AddVariable(stationLat)
	stationLon := vardata.NewVariable("station_lon", stationDim)
	stationLon.Data = []float64{0, 1, 0}
	ds.AddVariable(stationLon)

	inVar := vardata.NewVariable("field", timeDim, stationDim)
	inVar.Data = []float64{1.0, 1.0, 1.0}
	inVar.Attrs["dim_grouping"] = "{time}, {station: lat, lon}"
	inVar.Attrs["lat_field"] = "station_lat"
	inVar.Attrs["lon_field"] = "station_lon"
	ds.AddVariable(inVar)

	outVar := vardata.NewVariable("field", timeDim, latDim, lonDim)
	outVar.AllocateData(-9999)
	outVar.Attrs["lat:transform"] = kernel.Caracena
	outVar.Attrs["lat:scale_factor"] = 100.0
	outVar.Attrs["lat:min_stations"] = 3

	outQCVar := vardata.NewVariable("field_qc", timeDim, latDim, lonDim)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.Len(outVar.Data, 4)
	for _, v := range outVar.Data {
		s.InDelta(1.0, v, 1e-6)
	}
}

// TestS6ProvenanceSerialization is spec §8 scenario S6.
func (s *DriverSuite) TestS6ProvenanceSerialization() {
	timeIn := &vardata.Dimension{Name: "time", Length: 4}
	timeOut := &vardata.Dimension{Name: "time", Length: 2}
	heightIn := &vardata.Dimension{Name: "height", Length: 2}
	heightOut := &vardata.Dimension{Name: "height", Length: 2}
	coordVariable(timeIn, []float64{0, 1, 2, 3})
	coordVariable(timeOut, []float64{0.5, 2.5})
	coordVariable(heightIn, []float64{0, 10})
	coordVariable(heightOut, []float64{0, 10})

	inVar := vardata.NewVariable("field", timeIn, heightIn)
	inVar.Data = []float64{10, 100, 20, 200, 30, 300, 40, 400}
	inVar.Attrs["dim_grouping"] = "{time}, {height}"

	outVar := vardata.NewVariable("field", timeOut, heightOut)
	outVar.AllocateData(-9999)
	outVar.Attrs["time:transform"] = kernel.BinAverage
	outVar.Attrs["time:width"] = 60.0
	outVar.Attrs["height:transform"] = kernel.Interpolate
	outVar.Attrs["height:range"] = 100.0

	outQCVar := vardata.NewVariable("field_qc", timeOut, heightOut)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	got, ok := outVar.Attrs["cell_transform"].(string)
	require.True(s.T(), ok)
	s.Equal("time: TRANS_BIN_AVERAGE (width: 60) height: TRANS_INTERPOLATE (range: 100)", got)
}

// TestPassthroughIdentity exercises spec §8 invariant 3: passthrough
// copies data and QC unchanged when ranks/dims match.
func (s *DriverSuite) TestPassthroughIdentity() {
	dim := &vardata.Dimension{Name: "x", Length: 3}
	inVar := vardata.NewVariable("field", dim)
	inVar.Data = []float64{1, 2, 3}
	outVar := vardata.NewVariable("field", dim)
	outVar.AllocateData(-9999)
	outVar.Attrs["transform"] = kernel.Passthrough

	inQCVar := vardata.NewVariable("field_qc", dim)
	inQCVar.QC = []int32{0, int32(qc.BAD.Value()), 0}
	outQCVar := vardata.NewVariable("field_qc", dim)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, inQCVar, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.Equal([]float64{1, 2, 3}, outVar.Data)
	s.Equal(inQCVar.QC, outQCVar.QC)
}

// TestInterpolateIdempotence exercises spec §8 invariant 5: identical
// input/output grids reproduce the input and zero distance metrics.
func (s *DriverSuite) TestInterpolateIdempotence() {
	dim := &vardata.Dimension{Name: "x", Length: 3}
	outDim := &vardata.Dimension{Name: "x", Length: 3}
	coordVariable(dim, []float64{0, 1, 2})
	coordVariable(outDim, []float64{0, 1, 2})

	inVar := vardata.NewVariable("field", dim)
	inVar.Data = []float64{10, 20, 30}
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)

	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	result, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	s.InDeltaSlice([]float64{10, 20, 30}, outVar.Data, 1e-9)
	s.InDeltaSlice([]float64{0, 0, 0}, result.Metrics["dist_1"].Data, 1e-9)
	s.InDeltaSlice([]float64{0, 0, 0}, result.Metrics["dist_2"].Data, 1e-9)
}

// TestEstimatedBinTagging exercises spec §8 invariant 10: when bin edges
// are inferred rather than read from explicit parameters, every output QC
// value for that group carries ESTIMATED_INPUT_BIN and ESTIMATED_OUTPUT_BIN
// (both sides are inferred here).
func (s *DriverSuite) TestEstimatedBinTagging() {
	inDim := &vardata.Dimension{Name: "x", Length: 4}
	outDim := &vardata.Dimension{Name: "x", Length: 2}
	coordVariable(inDim, []float64{0, 1, 2, 3})
	coordVariable(outDim, []float64{0.5, 2.5})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{10, 20, 30, 40}
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outVar.Attrs["transform"] = kernel.BinAverage
	// No boundary_1/boundary_2/width on either side: both input and
	// output bin edges fall through to rule 4 (inferred).

	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{})
	require.NoError(s.T(), err)

	for _, st := range outQCVar.QC {
		s.True(qc.Test(uint32(st), qc.ESTIMATED_OUTPUT_BIN) && qc.Test(uint32(st), qc.ESTIMATED_INPUT_BIN))
	}
}

// TestInsufficientInputWarnsThroughZiplog exercises the interpolate
// kernel's single-input-sample warning with a real ziplog.Logger plugged
// into transform.Options.Log, confirming the warning actually reaches the
// zap core rather than only being asserted against a stub.
func (s *DriverSuite) TestInsufficientInputWarnsThroughZiplog() {
	core, logs := observer.New(zapcore.WarnLevel)
	log := ziplog.New(zap.New(core))

	inDim := &vardata.Dimension{Name: "x", Length: 1}
	outDim := &vardata.Dimension{Name: "x", Length: 1}
	coordVariable(inDim, []float64{0})
	coordVariable(outDim, []float64{5})

	inVar := vardata.NewVariable("field", inDim)
	inVar.Data = []float64{10}
	outVar := vardata.NewVariable("field", outDim)
	outVar.AllocateData(-9999)
	outQCVar := vardata.NewVariable("field_qc", outDim)
	outQCVar.AllocateQC()

	_, err := transform.Drive(inVar, nil, outVar, outQCVar, transform.Options{Log: log})
	require.NoError(s.T(), err)

	require.Equal(s.T(), 1, logs.Len())
	s.Contains(logs.All()[0].Message, "insufficient input samples")
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}
