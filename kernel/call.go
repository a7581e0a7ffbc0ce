// Package kernel defines the kernel ABI (spec §6, component C5) - the
// uniform calling convention every 1-D transform kernel is invoked
// through - and the name-to-kernel registry the driver dispatches via.
package kernel

import (
	"github.com/sciflow/gridtransform/metric"
	"github.com/sciflow/gridtransform/vardata"
)

// Built-in kernel names (spec §4.5, §6).
const (
	Interpolate = "TRANS_INTERPOLATE"
	Subsample   = "TRANS_SUBSAMPLE"
	BinAverage  = "TRANS_BIN_AVERAGE"
	Passthrough = "TRANS_PASSTHROUGH"
	Caracena    = "TRANS_CARACENA"

	// Auto triggers the driver's default-selection cascade (spec §4.9).
	Auto = "TRANS_AUTO"
)

// Call bundles one kernel invocation's inputs and pre-allocated outputs
// (spec §6's kernel_call record). Kernels borrow these buffers for the
// duration of one call and must not retain references past return (spec
// §5, "Workspace ownership").
type Call struct {
	InputData      []float64
	InputQC        []int32
	InputMissing   float64
	OutputData     []float64 // pre-allocated; kernel writes in place
	OutputQC       []int32   // pre-allocated; kernel writes in place
	OutputMissing  float64
	InputVar       *vardata.Variable
	OutputVar      *vardata.Variable
	D              int // input dimension index
	OD             int // output dimension index
	QCMask         uint32
	Met            **metric.Table // kernel allocates into *Met if it emits metrics
	Log            Logger         // optional; nil means silent

	// EstimatedInput/EstimatedOutput report whether this specific call's
	// bingeom.Edges resolution fell through to rule 4 (inferred from
	// neighbor spacing) for the input/output side respectively. Kernels
	// that call bingeom.Edges set these from its returned bool; kernels
	// that never derive bin edges leave them false. The driver ORs
	// ESTIMATED_INPUT_BIN/ESTIMATED_OUTPUT_BIN into this call's output QC
	// from these fields directly, rather than from any state left on the
	// *vardata.Variable by a previous, possibly unrelated call.
	EstimatedInput  bool
	EstimatedOutput bool
}

// Logger is the narrow warning-log sink kernels use for the soft-recovery
// conditions spec §7 calls out (insufficient input, singular Caracena
// matrix, ...). A nil Logger is silently skipped.
type Logger interface {
	Warn(msg string, kv ...interface{})
}

func (c *Call) warn(msg string, kv ...interface{}) {
	if c.Log != nil {
		c.Log.Warn(msg, kv...)
	}
}

// Func is the uniform kernel calling convention. It returns a non-nil
// error on fatal failure. Soft-recoverable conditions are handled inside
// the kernel: InterpolateFunc, for example, warns through Call.Log on
// insufficient input, fills its output with missing values and returns
// nil.
type Func func(c *Call) error

// Usable reports whether sample i of data/qc is usable: non-missing,
// finite, and free of any QC bit in mask (spec §4.6.1 and siblings share
// this exact definition).
func Usable(value float64, missing float64, qcState int32, mask uint32) bool {
	if value == missing {
		return false
	}
	if value != value { // NaN
		return false
	}
	if value > 1e300 || value < -1e300 {
		return false
	}
	return uint32(qcState)&mask == 0
}
