// Package vardata implements the Variable / Dimension / Dataset data model
// (spec §3): a named, typed, N-dimensional array with an ordered list of
// named dimensions, optional coordinate variables, attributes, and a
// mutable user-data tag bag, plus the cascading parameter-bag lookup used
// by every transform kernel.
package vardata

import "errors"

// Sentinel errors for vardata operations.
var (
	// ErrDimNotFound indicates a referenced dimension name does not exist
	// on the variable or dataset.
	ErrDimNotFound = errors.New("vardata: dimension not found")

	// ErrShapeMismatch indicates a data slice length does not match the
	// product of the variable's dimension lengths.
	ErrShapeMismatch = errors.New("vardata: data length does not match shape")

	// ErrVarNotFound indicates a referenced variable name does not exist
	// in the dataset.
	ErrVarNotFound = errors.New("vardata: variable not found")

	// ErrDimExists indicates a dimension with that name is already
	// registered on the dataset.
	ErrDimExists = errors.New("vardata: dimension already exists")

	// ErrNotContiguous indicates a set of dimension names does not form a
	// contiguous run in the variable's dimension list.
	ErrNotContiguous = errors.New("vardata: dimensions are not contiguous")
)
