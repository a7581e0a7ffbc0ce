// Package kerr collects the error kinds shared across kernel, caracena,
// and transform (spec §7), so callers can errors.Is against one stable set
// regardless of which component produced the failure.
package kerr

import "errors"

var (
	// MissingCoordinateVar - an output dimension had neither a coordinate
	// variable nor a passthrough-eligible path. Surfaced to caller.
	MissingCoordinateVar = errors.New("kerr: missing coordinate variable")

	// NonMonotonicAxis - input/output coordinate axes are not both
	// increasing or both decreasing. Surfaced to caller.
	NonMonotonicAxis = errors.New("kerr: coordinate axis is not monotonic")

	// InsufficientInput - fewer than the minimum usable input samples
	// (e.g. interpolate with < 2). Warned, not fatal; driver continues.
	InsufficientInput = errors.New("kerr: insufficient input samples")

	// ZeroOutputBinWidth - a bin-average output bin has zero width.
	// Surfaced to caller (fatal configuration error).
	ZeroOutputBinWidth = errors.New("kerr: zero output bin width")

	// NoTransform - auto-selection failed for a non-1-to-1 group, or no
	// rule in §4.9's kernel-selection cascade matched. Surfaced.
	NoTransform = errors.New("kerr: no transform could be selected")

	// QcShapeInvalid - the QC variable has more dimensions than the data
	// variable it accompanies. Surfaced.
	QcShapeInvalid = errors.New("kerr: qc variable shape invalid")

	// NotImplemented - transform_type == "Multi_Dimensional". Surfaced.
	NotImplemented = errors.New("kerr: transform type not implemented")

	// SingularWeightMatrix - Caracena's weight matrix could not be
	// inverted. Softened by the caller to "all missing + BAD"; the driver
	// continues to the next segment rather than failing the call.
	SingularWeightMatrix = errors.New("kerr: singular weight matrix")

	// MemoryExhausted - an allocation failed. Surfaced.
	MemoryExhausted = errors.New("kerr: memory exhausted")

	// ParamTypeMismatch - a parameter resolved but not to the expected
	// type. Surfaced.
	ParamTypeMismatch = errors.New("kerr: parameter type mismatch")

	// EstimatedBinsDisabled - bin-edge estimation was required but
	// bingeom.DisableInference() is in effect. Surfaced.
	EstimatedBinsDisabled = errors.New("kerr: estimated bin edges disabled")
)
