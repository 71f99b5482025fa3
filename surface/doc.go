// Package surface provides the shared frame buffer primitives distributed by
// the hub: reference-counted handles to shared-memory frame regions, scoped
// ownership guards for carrying a handle across an asynchronous hand-off, and
// the plain value types (damage rectangles, transport references) that travel
// alongside them.
//
// # Handles
//
// A Handle refers to a frame buffer region backed by a file, typically on a
// tmpfs/shm mount. The pixel contents change out of band: the producer keeps
// writing into the region after the handle is created, so a Snapshot is always
// a moment-in-time copy, never a stable image.
//
//	h, err := surface.Create(path, surface.Descriptor{
//	    Width: 1920, Height: 1080, Stride: 1920 * 4, Format: surface.FormatBGRA8888,
//	})
//	defer h.Release()
//
// # Ownership
//
// Handles are reference counted. Create and Open return a handle holding one
// reference owned by the caller. Any code path that carries a handle across an
// asynchronous boundary must take an extra reference before scheduling and
// drop it after the scheduled work completes:
//
//	guard := h.Retain()
//	queue.Dispatch(func() {
//	    defer guard.Release()
//	    consume(guard.Handle())
//	})
//
// Guard.Release is safe to call more than once; only the first call drops the
// reference. When the count reaches zero the backing file is closed and the
// handle becomes invalid.
//
// # Transport references
//
// A Ref is a transport-wrapped reference to a surface living in another
// process. It carries only an opaque token; turning it back into a Handle is
// the resolver's job (see the resolver and broker packages).
package surface
