// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation,
// including element-wise addition, subtraction, matrix multiplication,
// transpose, and scalar scaling. All functions perform strict
// fail-fast validation and return clear errors on dimension mismatches.
//
// Purpose:
//   - Declare canonical linear-algebra kernels (signatures) used across the package.
//   - Define operation tags and shared constants for determinism and error reporting.
//
// Notes:
//   - Implementations live in dedicated kernel files (same package) to keep roles clean.
//   - All kernels must use central validators and return plain sentinels or wrapped via matrixErrorf at the facade.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in LUPivot/InversePivot routines.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opHadamard  = "Hadamard"
	opMatVec    = "MatVec"
)

// matrixErrorf wraps an underlying error with the given tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Add returns a new Matrix containing the element-wise sum of a and b.
//
// Contract:
//   - a, b must be non-nil and have identical shapes.
//
// Determinism & Performance:
//   - Loop order is fixed (flat 0..n-1 in fast path; i→j in fallback).
//   - Single allocation for the result; no temps inside loops.
//
// Complexity: Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - If both operands are *Dense, pass them directly to avoid interface dispatch.
//   - ValidateSameShape catches shape bugs early and keeps inner loops branchless.
func Add(a, b Matrix) (Matrix, error) {
	// Validate inputs non-nil
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	// Validate shapes match
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	// Allocate result Dense
	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	// Fast path: *Dense × *Dense → single flat loop.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// direct element-wise addition on backing slices
			length := rows * cols
			for idx := 0; idx < length; idx++ { // deterministic 0..n-1
				res.data[idx] = da.data[idx] + db.data[idx]
			}

			return res, nil
		}
	}

	// Fallback: interface path with fixed i→j order.
	var i, j int
	var av, bv float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			av, _ = a.At(i, j)       // safe: bounds ensured
			bv, _ = b.At(i, j)       // safe: same shape
			_ = res.Set(i, j, av+bv) // safe: within bounds
		}
	}

	// Return result
	return res, nil
}

// Sub returns a new Matrix with the element-wise difference a - b.
//
// Contract: non-nil inputs, identical shapes.
// Determinism: fixed loop order (fast: flat; fallback: i→j).
// Complexity: Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - Use *Dense fast path for heavy workloads.
//   - Keep inputs immutable; this routine allocates a fresh result.
func Sub(a, b Matrix) (Matrix, error) {
	// Validate inputs non-nil
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}
	// Validate shapes match
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opSub, err)
	}

	// Allocate result Dense
	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opSub, err)
	}

	// Fast-path for two Dense matrices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// direct element-wise subtraction on backing slices
			length := rows * cols
			for idx := 0; idx < length; idx++ {
				res.data[idx] = da.data[idx] - db.data[idx]
			}

			return res, nil
		}
	}

	// Fallback: generic interface loop
	var (
		i, j   int // loop iterators
		av, bv float64
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			av, _ = a.At(i, j)       // safe: bounds ensured
			bv, _ = b.At(i, j)       // safe: same shape
			_ = res.Set(i, j, av-bv) // safe: within bounds
		}
	}

	// Return result
	return res, nil
}

// Mul performs standard matrix multiplication c = a × b.
//
// Contract:
//   - a, b non-nil; a.Cols() == b.Rows().
//
// Determinism & Performance:
//   - Fast path (*Dense×*Dense) uses fixed i→k→j with row-major strides.
//   - Fallback uses fixed i→j→k; both orders are stable across runs.
//
// Complexity: Time O(r*n*c), Space O(r*c).
//
// AI-Hints:
//   - Skip zeros in the inner loop to reduce multiplications on sparse-like rows.
//   - Favor *Dense inputs to unlock cache-friendly flat loops.
func Mul(a, b Matrix) (Matrix, error) {
	// Validate inputs
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if a.Cols() != b.Rows() {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}

	// Allocate result Dense
	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k         int // loop iterators
		av, bv, current float64
	)
	// Fast-path for two Dense matrices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// row-major multiplication into res.data
			// da.data layout: i*aCols + k
			// db.data layout: k*bCols + j
			var rowOffsetA, rowOffsetB, rowOffsetR int
			for i = 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowOffsetA+k]
					if av == 0 {
						continue // skip zero for performance
					}
					rowOffsetB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
					}
				}
			}
			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k)
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			current = 0.0
			for k = 0; k < aCols; k++ {
				av, _ = a.At(i, k)
				if av == 0 {
					continue // skip zero for performance
				}
				bv, _ = b.At(k, j)
				current += av * bv // accumulate product
			}
			_ = res.Set(i, j, current)
		}
	}

	// Return result
	return res, nil
}

// Transpose returns a new Matrix with rows and columns swapped.
//
// Contract: m non-nil.
// Determinism: fixed i→j; fast path copies via flat indices.
// Complexity: Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - Transpose of *Dense is fastest with flat slice copies.
//   - For small matrices the generic path is fine.
func Transpose(m Matrix) (Matrix, error) {
	// Validate input non-nil
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	// Allocate result Dense with flipped dimensions
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows) // dims flipped
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	// Fast-path for Dense → Dense
	var i, j int // loop iterators
	if dm, ok := m.(*Dense); ok {
		// data[i*cols + j] → res.data[j*rows + i]
		var baseSrc int
		for i = 0; i < rows; i++ {
			baseSrc = i * cols
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = dm.data[baseSrc+j]
			}
		}
		return res, nil
	}

	// Fallback: generic interface loop
	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)    // safe: bounds ensured
			_ = res.Set(j, i, v) // safe: within bounds
		}
	}

	// Return result
	return res, nil
}

// Scale returns a new Matrix with each element of m multiplied by alpha.
//
// Contract: m non-nil.
// Determinism: flat loop (fast) or i→j (fallback).
// Complexity: Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - If you only need a view-like behavior, consider deferring scaling
//     to the next kernel to avoid an extra allocation.
func Scale(m Matrix, alpha float64) (Matrix, error) {
	// Validate input non-nil
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	// Allocate result Dense
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	// Fast-path for Dense → Dense
	if dm, ok := m.(*Dense); ok {
		n := rows * cols
		for idx := 0; idx < n; idx++ {
			res.data[idx] = dm.data[idx] * alpha
		}
		return res, nil
	}

	// Fallback: generic interface loop
	var i, j int
	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)          // safe: bounds ensured
			_ = res.Set(i, j, v*alpha) // safe: within bounds
		}
	}

	// Return result
	return res, nil
}

// Hadamard returns element-wise product a ⊙ b as a new Matrix (Dense).
//
// Contract: a,b non-nil; identical shapes.
// Fast-path: *Dense×*Dense runs a single flat loop 0..n-1 (deterministic).
// Determinism: flat loop (fast) or i→j (fallback).
// Complexity: Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - Prefer *Dense operands to exploit flat-slice throughput.
//   - This is bandwidth-bound; keep data contiguous and avoid tiny tiles.
func Hadamard(a, b Matrix) (Matrix, error) {
	// Validate 'a' is not nil.
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	// Validate 'b' is not nil.
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	// Validate shapes match exactly.
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}

	// Allocate the result Dense with the same shape.
	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}

	// Fast-path: both operands are *Dense → operate on flat slices directly.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			var n, idx int                // predeclare loop variables to avoid per-iteration allocations
			n = rows * cols               // total number of elements
			for idx = 0; idx < n; idx++ { // fixed order ensures deterministic accumulation
				res.data[idx] = da.data[idx] * db.data[idx] // element-wise product
			}

			return res, nil // return immediately on fast-path
		}
	}

	// Fallback: generic interface loop using At/Set (bounds-safe, shape already validated).
	var i, j int // loop indices (predeclared)
	var av, bv float64
	for i = 0; i < rows; i++ { // fixed i-outer loop
		for j = 0; j < cols; j++ { // fixed j-inner loop
			av, _ = a.At(i, j)       // read a(i,j)
			bv, _ = b.At(i, j)       // read b(i,j)
			_ = res.Set(i, j, av*bv) // write result(i,j); Set is safe w.r.t. bounds/policy
		}
	}

	// Return the computed result (Dense implements Matrix).
	return res, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Fast-path: *Dense performs one pass per row with flat indexing.
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
//
// AI-Hints:
//   - Use *Dense to keep a single pass per row with flat indexing.
//   - Skipping zero x[j] helps when x is sparse-ish.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	// Validate m is not nil.
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	// Validate x is not nil and match with number of columns
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	// Prepare result vector y with length rows.
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows) // allocate exactly rows outputs

	// Fast-path: *Dense allows flat, row-major dot-products.
	if d, ok := m.(*Dense); ok {
		var i, j, base int // indices and row base offset
		var acc, xv float64
		for i = 0; i < d.r; i++ { // iterate rows deterministically
			acc = 0                   // reset accumulator per row
			base = i * d.c            // compute flat base offset for row i
			for j = 0; j < d.c; j++ { // iterate columns
				xv = x[j]    // read x(j) once per iteration
				if xv != 0 { // micro-optimization: skip zero multiplications
					acc += d.data[base+j] * xv // accumulate a(i,j)*x(j)
				}
			}
			y[i] = acc // store y(i)
		}

		return y, nil // return on fast-path
	}

	// Fallback: interface-based dot-products via At.
	var i, j int               // loop indices
	var mv float64             // temporary to hold m(i,j)
	for i = 0; i < rows; i++ { // iterate rows
		y[i] = 0                   // initialize y(i) to zero
		for j = 0; j < cols; j++ { // iterate columns
			mv, _ = m.At(i, j) // read m(i,j)
			y[i] += mv * x[j]  // accumulate
		}
	}

	return y, nil // return computed vector
}

