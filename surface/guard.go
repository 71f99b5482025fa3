package surface

import "sync/atomic"

// Guard is a scoped ownership guard over one retained reference. It exists so
// that code scheduling work across an execution-context hop can hand the
// reference to the scheduled closure and have it dropped exactly once, on
// every exit path.
type Guard struct {
	handle   *Handle
	released atomic.Bool
}

// Handle returns the guarded handle.
func (g *Guard) Handle() *Handle {
	return g.handle
}

// Release drops the guarded reference. Only the first call has any effect;
// further calls are no-ops, so Release is safe in defer chains that may run
// after an explicit release.
func (g *Guard) Release() {
	if g.released.CompareAndSwap(false, true) {
		g.handle.Release()
	}
}
