package vardata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sciflow/gridtransform/vardata"
)

type TypesSuite struct {
	suite.Suite
}

func (s *TypesSuite) TestNewVariableShapeAndLen() {
	timeDim := &vardata.Dimension{Name: "time", Length: 2}
	stationDim := &vardata.Dimension{Name: "station", Length: 3}
	v := vardata.NewVariable("temp", timeDim, stationDim)

	s.Equal(2, v.Rank())
	s.Equal(6, v.Len())
	s.Equal([]int{2, 3}, v.Lengths())
}

func (s *TypesSuite) TestDimLookup() {
	dim := &vardata.Dimension{Name: "x", Length: 4}
	v := vardata.NewVariable("field", dim)

	s.Equal(0, v.DimIndex("x"))
	s.Equal(-1, v.DimIndex("y"))
	s.Equal(dim, v.DimByName("x"))
	s.Nil(v.DimByName("y"))
}

func (s *TypesSuite) TestDimCoord() {
	dim := &vardata.Dimension{Name: "x", Length: 2}
	v := vardata.NewVariable("field", dim)
	s.Nil(v.DimCoord("x"))

	coord := vardata.NewVariable("x", dim)
	coord.Data = []float64{0, 1}
	dim.Coord = coord

	s.Equal(coord, v.DimCoord("x"))
}

func (s *TypesSuite) TestMissingValueDefault() {
	v := vardata.NewVariable("field", &vardata.Dimension{Name: "x", Length: 1})
	s.Equal(-9999.0, v.MissingValue())

	v.Attrs["missing_value"] = -999.0
	s.Equal(-999.0, v.MissingValue())
}

func (s *TypesSuite) TestUnitsDefault() {
	v := vardata.NewVariable("field", &vardata.Dimension{Name: "x", Length: 1})
	s.Equal("", v.Units())

	v.Attrs["units"] = "degC"
	s.Equal("degC", v.Units())
}

func (s *TypesSuite) TestAllocateDataAndQC() {
	v := vardata.NewVariable("field", &vardata.Dimension{Name: "x", Length: 3})
	v.AllocateData(-9999)
	s.Equal([]float64{-9999, -9999, -9999}, v.Data)

	v.AllocateQC()
	s.Equal([]int32{0, 0, 0}, v.QC)
}

func (s *TypesSuite) TestCloneIsDeepAndDetached() {
	dim := &vardata.Dimension{Name: "x", Length: 2}
	v := vardata.NewVariable("field", dim)
	v.Data = []float64{1, 2}
	v.QC = []int32{0, 1}
	v.Attrs["units"] = "degC"
	v.Tags["sibling"] = "marker"

	cp := v.Clone()
	cp.Data[0] = 99
	cp.Attrs["units"] = "K"

	s.Equal(1.0, v.Data[0])
	s.Equal("degC", v.Attrs["units"])
	s.Equal("K", cp.Attrs["units"])
	s.Equal([]int32{0, 1}, cp.QC)
	s.Nil(cp.Dataset())
	s.Empty(cp.Tags)
}

func (s *TypesSuite) TestDatasetAddDimensionRejectsDuplicate() {
	ds := vardata.NewDataset("ds")
	_, err := ds.AddDimension("x", 3)
	require.NoError(s.T(), err)

	_, err = ds.AddDimension("x", 5)
	s.ErrorIs(err, vardata.ErrDimExists)
}

func (s *TypesSuite) TestDatasetAddVariableAttachesDataset() {
	ds := vardata.NewDataset("ds")
	dim, err := ds.AddDimension("x", 2)
	require.NoError(s.T(), err)

	v := vardata.NewVariable("field", dim)
	ds.AddVariable(v)

	s.Equal(ds, v.Dataset())
	got, ok := ds.Var("field")
	s.True(ok)
	s.Equal(v, got)
}

func (s *TypesSuite) TestDatasetVarAndDimMissing() {
	ds := vardata.NewDataset("ds")
	_, ok := ds.Var("nope")
	s.False(ok)
	_, ok = ds.Dim("nope")
	s.False(ok)
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesSuite))
}
