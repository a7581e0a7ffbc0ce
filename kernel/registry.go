package kernel

import "sync"

// Registry is a name->kernel lookup table. User-registered entries
// override built-ins of the same name (spec §4.5). Registration must
// happen before any driver call; reads never block writers that happened
// earlier, only ones racing concurrently (spec §5: "install-time-only
// mutability").
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Func
}

// NewRegistry returns a Registry pre-loaded with the four built-in 1-D
// kernels. Caracena is not registry-dispatched: its calling shape is
// scattered-points-to-2-D-grid rather than slice-to-slice, so the driver
// invokes it directly (see the caracena package) rather than through
// Registry.Lookup.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Func)}
	r.Register(Interpolate, InterpolateFunc)
	r.Register(Subsample, SubsampleFunc)
	r.Register(BinAverage, BinAverageFunc)
	r.Register(Passthrough, PassthroughFunc)
	return r
}

// Register installs fn under name, shadowing any existing entry
// (including a built-in).
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = fn
}

// Lookup returns the kernel registered under name, or ok=false.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.entries[name]
	return fn, ok
}

// Default is the process-global registry used when callers don't supply
// their own (spec §5 treats the registry as process-global, install-time
// state).
var Default = NewRegistry()

// RegisterKernel installs fn under name in the default registry - the
// user-hook interface named in spec §6.
func RegisterKernel(name string, fn Func) { Default.Register(name, fn) }
