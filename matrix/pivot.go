package matrix

import "math"

const (
	opLUPivot      = "LUPivot"
	opInversePivot = "InversePivot"
)

// toDense copies m into a fresh *Dense, regardless of m's concrete type.
func toDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d.Clone().(*Dense), nil
	}
	n, cols := m.Rows(), m.Cols()
	d, err := NewDense(n, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < cols; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			d.data[i*cols+j] = v
		}
	}
	return d, nil
}

// LUPivot performs Doolittle LU decomposition with partial pivoting:
// P*A = L*U, L unit lower triangular. perm[i] is the original row that
// ended up at row i after pivoting. Caracena's weight-matrix inversion
// (spec §4.7 step 4) relies on the pivoting; this package has no
// non-pivoted LU.
func LUPivot(m Matrix) (L, U Matrix, perm []int, err error) {
	if err = ValidateNotNil(m); err != nil {
		return nil, nil, nil, matrixErrorf(opLUPivot, err)
	}
	if err = ValidateSquare(m); err != nil {
		return nil, nil, nil, matrixErrorf(opLUPivot, err)
	}

	n := m.Rows()
	Uw, err := toDense(m)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opLUPivot, err)
	}
	Lraw, err := NewDense(n, n)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opLUPivot, err)
	}

	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for col := 0; col < n; col++ {
		pivotRow := col
		maxAbs := math.Abs(Uw.data[col*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(Uw.data[r*n+col]); v > maxAbs {
				maxAbs = v
				pivotRow = r
			}
		}
		if maxAbs == 0 {
			return nil, nil, nil, matrixErrorf(opLUPivot, ErrSingular)
		}
		if pivotRow != col {
			swapRow(Uw.data, n, col, pivotRow)
			swapRowPrefix(Lraw.data, n, col, pivotRow, col)
			perm[col], perm[pivotRow] = perm[pivotRow], perm[col]
		}

		pivot := Uw.data[col*n+col]
		for r := col + 1; r < n; r++ {
			factor := Uw.data[r*n+col] / pivot
			Lraw.data[r*n+col] = factor
			for k := col; k < n; k++ {
				Uw.data[r*n+k] -= factor * Uw.data[col*n+k]
			}
		}
	}
	for i := 0; i < n; i++ {
		Lraw.data[i*n+i] = 1.0
	}

	return Lraw, Uw, perm, nil
}

func swapRow(data []float64, n, a, b int) {
	for k := 0; k < n; k++ {
		data[a*n+k], data[b*n+k] = data[b*n+k], data[a*n+k]
	}
}

// swapRowPrefix swaps the already-computed L entries (columns < upTo) of
// rows a and b; columns >= upTo are still zero and need no swap.
func swapRowPrefix(data []float64, n, a, b, upTo int) {
	for k := 0; k < upTo; k++ {
		data[a*n+k], data[b*n+k] = data[b*n+k], data[a*n+k]
	}
}

// InversePivot computes m's inverse via LUPivot, tolerating the
// near-singular weight matrices Caracena's station geometry can produce.
// A singular matrix is reported via ErrSingular rather than panicking -
// spec §4.7 step 4 treats that as a soft transform failure, not fatal.
func InversePivot(m Matrix) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opInversePivot, err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInversePivot, err)
	}

	n := m.Rows()
	Lmat, Umat, perm, err := LUPivot(m)
	if err != nil {
		return nil, matrixErrorf(opInversePivot, err)
	}
	Ld := Lmat.(*Dense)
	Ud := Umat.(*Dense)

	invDense, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInversePivot, err)
	}

	y := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += Ld.data[i*n+k] * y[k]
			}
			rhs := 0.0
			if perm[i] == col {
				rhs = 1.0
			}
			y[i] = rhs - sum
		}
		for i := n - 1; i >= 0; i-- {
			sum := 0.0
			for k := i + 1; k < n; k++ {
				sum += Ud.data[i*n+k] * x[k]
			}
			pivot := Ud.data[i*n+i]
			if pivot == 0 {
				return nil, matrixErrorf(opInversePivot, ErrSingular)
			}
			x[i] = (y[i] - sum) / pivot
		}
		for i := 0; i < n; i++ {
			invDense.data[i*n+col] = x[i]
		}
	}

	return invDense, nil
}
