// Package gridtransform is a generic N-dimensional grid transformation
// engine for scientific time-series data: it moves a variable's values
// from one set of coordinate axes to another (interpolation, bin
// averaging, nearest-neighbor subsampling, passthrough, or scattered-
// station objective analysis), carrying quality-control state and
// derived per-transform metrics along with it.
//
// Subpackages:
//
//	qc/          — canonical quality-control bit algebra and the
//	               site-to-canonical QC mapping hook
//	bingeom/     — bin-edge (front/back/midpoint) derivation for a
//	               1-D coordinate axis
//	metric/      — fixed-shape per-sample statistics table produced
//	               alongside a transform
//	paramstore/  — per-call transform-parameter ledger and its
//	               cell_transform provenance serializer
//	kernel/      — the uniform 1-D kernel ABI, the name registry, and
//	               the four built-in kernels (interpolate, subsample,
//	               bin-average, passthrough)
//	caracena/    — the scattered-station-to-2-D-grid objective
//	               analysis kernel
//	dimgroup/    — the dim_grouping parameter parser
//	transform/   — the serial-1D driver tying the above together
//	vardata/     — the variable/dimension/dataset data model and its
//	               parameter-cascade resolution
//	matrix/      — a small dense linear-algebra toolkit used by
//	               caracena's weight-matrix inversion
//	stationview/ — the station-view post-processor that merges
//	               per-station variables into a station-dimensioned one
//	ziplog/      — a go.uber.org/zap adapter for the narrow Warn-only
//	               Logger interface the driver, kernels, and caracena use
package gridtransform
