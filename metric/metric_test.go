package metric_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sciflow/gridtransform/metric"
)

type MetricSuite struct {
	suite.Suite
}

func (s *MetricSuite) TestAllocateShape() {
	t, err := metric.Allocate([]string{"nstat", "deriv_lat"}, []string{"", metric.UnitSame}, 3)
	require.NoError(s.T(), err)
	s.Equal(2, t.NMetrics)
	s.Equal(3, t.NSamples)
	s.Len(t.Values, 2)
	s.Len(t.Values[0], 3)
}

func (s *MetricSuite) TestAllocateRejectsLengthMismatch() {
	_, err := metric.Allocate([]string{"a", "b"}, []string{"x"}, 2)
	require.ErrorIs(s.T(), err, metric.ErrShapeMismatch)
}

func (s *MetricSuite) TestSetAndIndex() {
	t, err := metric.Allocate([]string{"nstat"}, []string{""}, 2)
	require.NoError(s.T(), err)
	t.Set(0, 1, 42.0)
	s.Equal(42.0, t.Values[0][1])
	s.Equal(0, t.Index("nstat"))
	s.Equal(-1, t.Index("missing"))
}

func (s *MetricSuite) TestSetOutOfRangeIsNoOp() {
	t, err := metric.Allocate([]string{"nstat"}, []string{""}, 2)
	require.NoError(s.T(), err)
	t.Set(5, 0, 1.0)
	t.Set(0, 5, 1.0)
	s.Equal(0.0, t.Values[0][0])
}

func (s *MetricSuite) TestSetByNameAndRow() {
	t, err := metric.Allocate([]string{"nstat"}, []string{""}, 2)
	require.NoError(s.T(), err)
	t.SetByName("nstat", 0, 7)
	t.SetByName("missing", 0, 99)
	s.Equal([]float64{7, 0}, t.Row("nstat"))
	s.Nil(t.Row("missing"))
}

func (s *MetricSuite) TestUnitForResolvesSame() {
	t, err := metric.Allocate([]string{"nstat", "deriv_lat"}, []string{"count", metric.UnitSame}, 1)
	require.NoError(s.T(), err)
	s.Equal("count", t.UnitFor(0, "K"))
	s.Equal("K", t.UnitFor(1, "K"))
	s.Equal("", t.UnitFor(5, "K"))
}

func (s *MetricSuite) TestFreeClearsPointer() {
	t, err := metric.Allocate([]string{"nstat"}, []string{""}, 1)
	require.NoError(s.T(), err)
	metric.Free(&t)
	s.Nil(t)
}

func TestMetricSuite(t *testing.T) {
	suite.Run(t, new(MetricSuite))
}
