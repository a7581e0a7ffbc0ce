// Package ziplog adapts go.uber.org/zap to the narrow Warn-only logging
// interface kernel.Logger and caracena.Logger each declare locally (spec
// §7's "warned" error kinds: InsufficientInput, SingularWeightMatrix, ...
// and SPEC_FULL.md's Ambient Stack section). Neither kernel nor caracena
// imports zap directly - a *Logger built here satisfies both interfaces
// by structural typing, the same way the teacher keeps its algorithm
// packages free of any particular logging backend and leaves the choice
// to the caller.
package ziplog

import "go.uber.org/zap"

// Logger wraps a *zap.Logger behind the single Warn(msg, kv...) method the
// driver, kernels, and Caracena call through.
type Logger struct {
	z *zap.Logger
}

// New wraps an existing *zap.Logger. Passing nil is a programmer error;
// use NewDevelopment or NewNop instead.
func New(z *zap.Logger) *Logger {
	return &Logger{z: z}
}

// NewDevelopment builds a *Logger backed by zap.NewDevelopment() - the
// human-readable console encoder, suited to the test harness and to
// interactive driver runs (grounded on the same zap.NewDevelopment
// convention the aaronlmathis-gosight-server manifest in the pack uses
// for its own soft-warning logging).
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return New(z), nil
}

// NewNop builds a *Logger that discards everything - the default when a
// caller doesn't supply one (kernel.Call.Log, caracena.Config.Log, and
// transform.Options.Log are all nil-safe already; NewNop exists for
// callers that want an explicit, named no-op rather than a literal nil).
func NewNop() *Logger {
	return New(zap.NewNop())
}

// Warn logs msg at warn level, pairing kv up into alternating
// key/value zap fields (zap.Any for the value, matching the loosely
// typed key-value pairs every call site in this module passes). An odd
// trailing key with no value is logged as-is under the key "extra".
func (l *Logger) Warn(msg string, kv ...interface{}) {
	fields := make([]zap.Field, 0, len(kv)/2+1)
	i := 0
	for ; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = "field"
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	if i < len(kv) {
		fields = append(fields, zap.Any("extra", kv[i]))
	}
	l.z.Warn(msg, fields...)
}

// Sync flushes any buffered log entries, matching zap.Logger's own Sync
// convention for callers that shut down cleanly.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
