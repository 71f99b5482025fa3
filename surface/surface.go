package surface

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
)

// Format identifies the pixel layout of a frame buffer region.
type Format string

const (
	FormatBGRA8888 Format = "bgra8888"
	FormatRGBA8888 Format = "rgba8888"
)

// Descriptor describes the geometry of a frame buffer region.
type Descriptor struct {
	Width  int
	Height int
	Stride int
	Format Format
}

// ByteSize returns the total size of the region in bytes.
func (d Descriptor) ByteSize() int {
	return d.Stride * d.Height
}

// Validate checks that the descriptor describes a usable region.
func (d Descriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid surface dimensions %dx%d", d.Width, d.Height)
	}
	if d.Stride < d.Width {
		return fmt.Errorf("stride %d smaller than width %d", d.Stride, d.Width)
	}
	return nil
}

// Rect is a damage rectangle: a region of the frame buffer reported as
// changed since the last notification.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Ref is a transport-wrapped reference to a surface owned by another process.
// The token is meaningful only to the broker that exported the surface.
type Ref struct {
	Token string
}

// ErrReleased is returned when reading through a handle whose last reference
// has been dropped.
var ErrReleased = errors.New("surface handle released")

// Handle is a reference-counted handle to a shared-memory frame buffer
// region. The region's contents are mutated out of band by its producer; the
// handle only pins the region open.
type Handle struct {
	id   string
	desc Descriptor
	file *os.File
	refs atomic.Int32
}

// Create creates (or truncates) the backing file at path and returns a handle
// with a fresh surface ID. The returned handle holds one reference owned by
// the caller.
func Create(path string, desc Descriptor) (*Handle, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create surface region: %w", err)
	}
	if err := file.Truncate(int64(desc.ByteSize())); err != nil {
		file.Close()
		return nil, fmt.Errorf("size surface region: %w", err)
	}
	return newHandle(uuid.Must(uuid.NewV7()).String(), desc, file), nil
}

// Open opens an existing surface region under a known surface ID. Used by the
// broker client so that a transport-resolved handle keeps the identity of the
// surface it was exported from.
func Open(id, path string, desc Descriptor) (*Handle, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open surface region: %w", err)
	}
	return newHandle(id, desc, file), nil
}

func newHandle(id string, desc Descriptor, file *os.File) *Handle {
	h := &Handle{id: id, desc: desc, file: file}
	h.refs.Store(1)
	return h
}

// ID returns the stable surface identity. Two handles referencing the same
// underlying resource compare equal by ID regardless of how they were
// resolved.
func (h *Handle) ID() string {
	return h.id
}

// Descriptor returns the region geometry.
func (h *Handle) Descriptor() Descriptor {
	return h.desc
}

// Path returns the backing file path.
func (h *Handle) Path() string {
	return h.file.Name()
}

// Valid reports whether the handle still holds at least one reference.
func (h *Handle) Valid() bool {
	return h.refs.Load() > 0
}

// Retain takes an additional reference and returns a guard that must be
// released exactly once when the holder is done. Retaining a handle whose
// count already reached zero is a use-after-free and panics.
func (h *Handle) Retain() *Guard {
	for {
		refs := h.refs.Load()
		if refs <= 0 {
			panic("surface: retain of released handle")
		}
		if h.refs.CompareAndSwap(refs, refs+1) {
			return &Guard{handle: h}
		}
	}
}

// Release drops one reference. The reference dropped is the one returned by
// Create or Open; references taken with Retain are dropped through their
// guard. When the count reaches zero the backing file is closed.
func (h *Handle) Release() {
	refs := h.refs.Add(-1)
	switch {
	case refs == 0:
		h.file.Close()
	case refs < 0:
		panic("surface: release of released handle")
	}
}

// Snapshot copies the current region contents. The producer keeps writing
// concurrently, so the copy is a moment-in-time view.
func (h *Handle) Snapshot() ([]byte, error) {
	if !h.Valid() {
		return nil, ErrReleased
	}
	buf := make([]byte, h.desc.ByteSize())
	if _, err := h.file.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read surface region: %w", err)
	}
	return buf, nil
}

// WriteAt writes into the region at the given byte offset. Producer-side
// helper; consumers treat the region as read-only.
func (h *Handle) WriteAt(p []byte, off int64) (int, error) {
	if !h.Valid() {
		return 0, ErrReleased
	}
	return h.file.WriteAt(p, off)
}
