// Package matrix offers a small dense linear-algebra toolkit: element-wise
// and product operations, partially-pivoted LU decomposition, and
// inversion.
//
// Dense is the sole concrete implementation of the Matrix interface,
// storing elements in a flat row-major slice. LUPivot/InversePivot use
// partial pivoting, which caracena's near-singular Gaussian weight
// matrices need for a stable solve.
package matrix
