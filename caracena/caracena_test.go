package caracena_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sciflow/gridtransform/caracena"
	"github.com/sciflow/gridtransform/qc"
)

type CaracenaSuite struct {
	suite.Suite
}

func (s *CaracenaSuite) squareStations(value float64) []caracena.Station {
	return []caracena.Station{
		{Lat: 0, Lon: 0, Value: value},
		{Lat: 0, Lon: 1, Value: value},
		{Lat: 1, Lon: 0, Value: value},
		{Lat: 1, Lon: 1, Value: value},
	}
}

func (s *CaracenaSuite) TestConstantFieldReproducedExactly() {
	stations := s.squareStations(10)
	cfg := caracena.Config{
		ScaleFactorKM: 100,
		NPass:         4,
		MinStations:   3,
		InputMissing:  -9999,
		OutputMissing: -9999,
	}
	res, err := caracena.Run(stations, []float64{0.25, 0.75}, []float64{0.25, 0.75}, cfg)
	require.NoError(s.T(), err)
	for i, v := range res.Data {
		s.InDelta(10.0, v, 1e-6, "grid point %d", i)
	}
	for _, n := range res.NStat {
		s.Equal(4.0, n)
	}
}

func (s *CaracenaSuite) TestTooFewStationsFillsMissing() {
	stations := s.squareStations(10)[:2]
	cfg := caracena.Config{
		ScaleFactorKM: 100,
		NPass:         4,
		MinStations:   3,
		InputMissing:  -9999,
		OutputMissing: -9999,
	}
	res, err := caracena.Run(stations, []float64{0.5}, []float64{0.5}, cfg)
	require.NoError(s.T(), err)
	for _, v := range res.Data {
		s.Equal(-9999.0, v)
	}
	s.True(qc.Test(uint32(res.QC[0]), qc.BAD))
	s.True(qc.Test(uint32(res.QC[0]), qc.SOME_BAD_INPUTS))
}

func (s *CaracenaSuite) TestAllStationsBadFillsMissing() {
	stations := []caracena.Station{
		{Lat: 0, Lon: 0, Value: -9999},
		{Lat: 0, Lon: 1, Value: -9999},
	}
	cfg := caracena.Config{
		ScaleFactorKM: 100,
		NPass:         4,
		MinStations:   1,
		InputMissing:  -9999,
		OutputMissing: -9999,
	}
	res, err := caracena.Run(stations, []float64{0.5}, []float64{0.5}, cfg)
	require.NoError(s.T(), err)
	s.True(qc.Test(uint32(res.QC[0]), qc.ALL_BAD_INPUTS))
}

func (s *CaracenaSuite) TestQCMaskExcludesStations() {
	stations := s.squareStations(10)
	stations[0].QC = int32(qc.BAD.Value())
	cfg := caracena.Config{
		ScaleFactorKM: 100,
		NPass:         4,
		MinStations:   3,
		QCMask:        qc.BAD.Value(),
		InputMissing:  -9999,
		OutputMissing: -9999,
	}
	res, err := caracena.Run(stations, []float64{0.5}, []float64{0.5}, cfg)
	require.NoError(s.T(), err)
	s.Equal(3.0, res.NStat[0])
}

func TestCaracenaSuite(t *testing.T) {
	suite.Run(t, new(CaracenaSuite))
}
