package stationview_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sciflow/gridtransform/stationview"
	"github.com/sciflow/gridtransform/vardata"
)

// recordingLogger captures every Warn call for assertions, mirroring the
// teacher's pattern of a minimal in-test logger rather than a mock library.
type recordingLogger struct {
	msgs []string
}

func (l *recordingLogger) Warn(msg string, kv ...interface{}) {
	l.msgs = append(l.msgs, msg)
}

func timeDataset(name, station string, values []float64) *vardata.Dataset {
	ds := vardata.NewDataset(name)
	timeDim, _ := ds.AddDimension("time", len(values))
	v := vardata.NewVariable("temp@"+station, timeDim)
	v.Data = values
	ds.AddVariable(v)
	return ds
}

type MergeSuite struct {
	suite.Suite
}

func (s *MergeSuite) TestMergeCombinesStationsInLengthThenLexOrder() {
	ds1 := timeDataset("ds1", "sgpE9", []float64{1, 2})
	ds2 := timeDataset("ds2", "sgpE1", []float64{3, 4})
	ds3 := timeDataset("ds3", "sgpE12", []float64{5, 6})

	res, err := stationview.Merge([]*vardata.Dataset{ds1, ds2, ds3}, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, res.StationDim.Length)

	temp, ok := res.Fields["temp"]
	require.True(s.T(), ok)

	// Names() sorts sgpE1, sgpE9, sgpE12 (length first, lexical within a
	// length - sgpE1 before sgpE9 despite both being length 5, then sgpE12
	// last purely for being one character longer).
	nStations := 3
	s.InDelta(3.0, temp.Data[0*nStations+0], 1e-9) // t=0, station sgpE1
	s.InDelta(1.0, temp.Data[0*nStations+1], 1e-9) // t=0, station sgpE9
	s.InDelta(5.0, temp.Data[0*nStations+2], 1e-9) // t=0, station sgpE12
	s.InDelta(4.0, temp.Data[1*nStations+0], 1e-9) // t=1, station sgpE1
}

func (s *MergeSuite) TestMergeFillsMissingFieldAndWarns() {
	ds1 := timeDataset("ds1", "a", []float64{1, 2})
	// Station "b" is registered via a different field, but never
	// contributes a "temp@b" variable - its "temp" slot must be filled
	// with the missing value rather than left out of the merge.
	ds2 := vardata.NewDataset("ds2")
	dim, _ := ds2.AddDimension("time", 2)
	precip := vardata.NewVariable("precip@b", dim)
	precip.Data = []float64{7, 8}
	ds2.AddVariable(precip)

	log := &recordingLogger{}
	res, err := stationview.Merge([]*vardata.Dataset{ds1, ds2}, log)
	require.NoError(s.T(), err)

	temp := res.Fields["temp"]
	nStations := 2
	require.Len(s.T(), temp.Data, 2*nStations)
	s.InDelta(-9999.0, temp.Data[0*nStations+1], 1e-9) // station "b" has no temp
	require.NotEmpty(s.T(), log.msgs)
	s.Contains(log.msgs[0], "missing field")
}

func (s *MergeSuite) TestMergeSkipsShapeMismatchAndWarns() {
	ds1 := timeDataset("ds1", "a", []float64{1, 2})
	ds2 := timeDataset("ds2", "b", []float64{1, 2, 3}) // wrong length for "temp"

	log := &recordingLogger{}
	res, err := stationview.Merge([]*vardata.Dataset{ds1, ds2}, log)
	require.NoError(s.T(), err)

	temp := res.Fields["temp"]
	nStations := 2
	s.InDelta(-9999.0, temp.Data[0*nStations+1], 1e-9) // station "b" slot left at missing_value
	require.NotEmpty(s.T(), log.msgs)
	s.Contains(log.msgs[0], "shape mismatch")
}

func (s *MergeSuite) TestMergeIgnoresVariablesWithoutAtSign() {
	ds := vardata.NewDataset("ds")
	dim, _ := ds.AddDimension("time", 2)
	plain := vardata.NewVariable("temp", dim)
	plain.Data = []float64{1, 2}
	ds.AddVariable(plain)

	res, err := stationview.Merge([]*vardata.Dataset{ds}, nil)
	require.NoError(s.T(), err)
	s.Empty(res.Fields)
	s.Equal(0, res.StationDim.Length)
}

func (s *MergeSuite) TestMergeBuildsStationNameVariable() {
	ds1 := timeDataset("ds1", "a", []float64{1})
	ds2 := timeDataset("ds2", "bb", []float64{2})

	res, err := stationview.Merge([]*vardata.Dataset{ds1, ds2}, nil)
	require.NoError(s.T(), err)

	require.NotNil(s.T(), res.StationName)
	s.Equal(2, res.StrlenDim.Length) // longest station name is "bb"
	s.Len(res.StationName.Data, 2*2)
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}
