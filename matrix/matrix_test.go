package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sciflow/gridtransform/matrix"
)

type MatrixSuite struct {
	suite.Suite
}

func denseFrom(rows, cols int, vals []float64) *matrix.Dense {
	d, err := matrix.NewDense(rows, cols)
	if err != nil {
		panic(err)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			_ = d.Set(i, j, vals[i*cols+j])
		}
	}
	return d
}

func (s *MatrixSuite) TestNewDenseRejectsNonPositive() {
	_, err := matrix.NewDense(0, 2)
	require.ErrorIs(s.T(), err, matrix.ErrInvalidDimensions)
}

func (s *MatrixSuite) TestAtSetRoundTrip() {
	d, err := matrix.NewDense(2, 2)
	require.NoError(s.T(), err)
	require.NoError(s.T(), d.Set(0, 1, 5))
	v, err := d.At(0, 1)
	require.NoError(s.T(), err)
	s.Equal(5.0, v)
}

func (s *MatrixSuite) TestAtOutOfRange() {
	d, _ := matrix.NewDense(2, 2)
	_, err := d.At(5, 0)
	require.Error(s.T(), err)
}

func (s *MatrixSuite) TestAddSubMul() {
	a := denseFrom(2, 2, []float64{1, 2, 3, 4})
	b := denseFrom(2, 2, []float64{10, 20, 30, 40})

	sum, err := matrix.Add(a, b)
	require.NoError(s.T(), err)
	v, _ := sum.At(1, 1)
	s.Equal(44.0, v)

	diff, err := matrix.Sub(b, a)
	require.NoError(s.T(), err)
	v, _ = diff.At(0, 0)
	s.Equal(9.0, v)

	prod, err := matrix.Mul(a, b)
	require.NoError(s.T(), err)
	// [1 2; 3 4] * [10 20; 30 40] = [70 100; 150 220]
	v, _ = prod.At(0, 0)
	s.Equal(70.0, v)
	v, _ = prod.At(1, 1)
	s.Equal(220.0, v)
}

func (s *MatrixSuite) TestMulDimensionMismatch() {
	a := denseFrom(2, 3, make([]float64, 6))
	b := denseFrom(2, 2, make([]float64, 4))
	_, err := matrix.Mul(a, b)
	require.ErrorIs(s.T(), err, matrix.ErrDimensionMismatch)
}

func (s *MatrixSuite) TestTranspose() {
	a := denseFrom(2, 3, []float64{1, 2, 3, 4, 5, 6})
	t, err := matrix.Transpose(a)
	require.NoError(s.T(), err)
	s.Equal(3, t.Rows())
	s.Equal(2, t.Cols())
	v, _ := t.At(2, 1)
	s.Equal(6.0, v)
}

func (s *MatrixSuite) TestMatVec() {
	a := denseFrom(2, 2, []float64{1, 2, 3, 4})
	y, err := matrix.MatVec(a, []float64{1, 1})
	require.NoError(s.T(), err)
	s.Equal([]float64{3.0, 7.0}, y)
}

func (s *MatrixSuite) TestInversePivotIdentity() {
	id := denseFrom(2, 2, []float64{1, 0, 0, 1})
	inv, err := matrix.InversePivot(id)
	require.NoError(s.T(), err)
	v, _ := inv.At(0, 0)
	s.Equal(1.0, v)
	v, _ = inv.At(1, 1)
	s.Equal(1.0, v)
}

func (s *MatrixSuite) TestInversePivotHandlesZeroLeadingPivot() {
	// Leading entry is zero; a non-pivoted solve would fail on the first
	// pivot even though the matrix itself is non-singular.
	m := denseFrom(2, 2, []float64{0, 1, 1, 1})
	inv, err := matrix.InversePivot(m)
	require.NoError(s.T(), err)

	prod, err := matrix.Mul(m, inv)
	require.NoError(s.T(), err)
	v00, _ := prod.At(0, 0)
	v11, _ := prod.At(1, 1)
	s.InDelta(1.0, v00, 1e-9)
	s.InDelta(1.0, v11, 1e-9)
}

func (s *MatrixSuite) TestInversePivotSingularIsError() {
	singular := denseFrom(2, 2, []float64{1, 2, 2, 4})
	_, err := matrix.InversePivot(singular)
	require.ErrorIs(s.T(), err, matrix.ErrSingular)
}

func (s *MatrixSuite) TestCloneIsIndependent() {
	a := denseFrom(1, 2, []float64{1, 2})
	cp := a.Clone()
	require.NoError(s.T(), a.Set(0, 0, 99))
	v, _ := cp.At(0, 0)
	s.Equal(1.0, v)
}

func TestMatrixSuite(t *testing.T) {
	suite.Run(t, new(MatrixSuite))
}
