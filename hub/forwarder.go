package hub

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/framekit/framehub/dispatch"
	"github.com/framekit/framehub/resolver"
	"github.com/framekit/framehub/surface"
)

// forwarder is the per-consumer adapter the hub registers with the backend.
// It normalizes backend callbacks into the consumer's two entry points and
// marshals every delivery onto the consumer's execution queue; the backend's
// notifying goroutine never runs consumer code.
type forwarder struct {
	consumer Consumer
	queue    dispatch.Queue

	// registrationID correlates backend attach and detach so teardown is
	// symmetric with whichever mechanism registered it.
	registrationID string

	resolver *resolver.Resolver
	metrics  *Metrics
	logger   *slog.Logger
}

func newForwarder(c Consumer, queue dispatch.Queue, res *resolver.Resolver, metrics *Metrics, logger *slog.Logger) *forwarder {
	return &forwarder{
		consumer:       c,
		queue:          queue,
		registrationID: uuid.Must(uuid.NewV7()).String(),
		resolver:       res,
		metrics:        metrics,
		logger:         logger,
	}
}

// ConsumerID is the generic identity accessor some backend generations use
// for per-consumer diagnostics.
func (f *forwarder) ConsumerID() string {
	return f.consumer.ID()
}

// OnSurfaceChanged resolves the opaque value and delivers the handle (or
// absence) asynchronously. A resolved handle is retained before the hop and
// released right after the consumer callback returns: the backend may replace
// or free the underlying resource at any point in between, so the guard is
// what keeps the handle valid for exactly the asynchronous window.
func (f *forwarder) OnSurfaceChanged(opaque any) {
	f.metrics.RecordSurfaceEvent(1)

	h := f.resolver.Resolve(opaque)
	if h == nil {
		f.metrics.RecordEmptyResolve(1)
		f.queue.Dispatch(func() {
			f.consumer.OnSurfaceChanged(nil)
		})
		return
	}

	guard := h.Retain()
	f.queue.Dispatch(func() {
		defer guard.Release()
		f.consumer.OnSurfaceChanged(guard.Handle())
	})
}

// OnDamageRect delivers the rectangle asynchronously. Rectangles are plain
// values; no lifetime management applies.
func (f *forwarder) OnDamageRect(rect surface.Rect) {
	f.metrics.RecordDamageEvent(1)
	f.queue.Dispatch(func() {
		f.consumer.OnDamageRect(rect)
	})
}
