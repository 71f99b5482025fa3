// Package hub provides the frame-surface fan-out hub: a façade over one
// live, externally-updated frame surface that distributes change
// notifications to any number of independently-scheduled consumers.
//
// The hub is a pure multiplexer. It decides nothing about frame contents and
// prefers no consumer over another; its job is normalizing three backend
// delivery generations into one notification protocol and moving surface
// handles across execution contexts without races or leaks.
//
// # Attaching consumers
//
// A consumer implements the Consumer capability and attaches with an
// execution queue:
//
//	h, err := hub.New(port, surf, hub.DefaultConfig())
//	current, err := h.Attach(viewer, nil) // nil: use viewer.Queue()
//
// The returned handle is the surface current at that moment, borrowed;
// subsequent changes arrive through the consumer's callbacks:
//
//	func (v *Viewer) OnSurfaceChanged(h *surface.Handle) { ... }
//	func (v *Viewer) OnDamageRect(r surface.Rect)        { ... }
//
// Both run on the consumer's queue, in the order the backend raised them,
// never on the backend's notifying goroutine.
//
// # Delivery mechanisms
//
// Construction probes the backend once, in fixed priority order:
//
//  1. per-consumer attach with correlation ID and error channel
//  2. attach-by-port without per-consumer identity
//  3. legacy ID-keyed callbacks on the render surface object
//
// The selected mechanism is fixed for the hub's lifetime, and detach always
// uses the mechanism that attached.
//
// # Handle lifetime
//
// A handle crossing the asynchronous hop to a consumer is retained before
// scheduling and released after the callback returns, so it stays valid for
// the whole delivery window even if the backend frees its own reference
// concurrently. Consumers that keep a handle beyond the callback must Retain
// it themselves.
//
// # Lifecycle
//
// Attach and Detach are the only sanctioned lifecycle boundaries: a consumer
// must detach before its owner drops it, or its backend registration leaks.
// Detach is idempotent and best-effort with respect to deliveries already
// scheduled — a callback may still arrive shortly after Detach returns.
//
// # Concurrency
//
// Attach/Detach are expected from a single owning goroutine; backend events
// arrive concurrently from backend goroutines and are fanned out against
// registry snapshots. No hub operation blocks on a consumer's queue
// draining.
package hub
