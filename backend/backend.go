// Package backend defines the contract between the hub and whatever device
// layer feeds it frame notifications. Ports and render surfaces are supplied
// externally; the hub never constructs them, it only probes their
// capabilities and registers observers.
//
// Three delivery mechanisms exist across backend generations, probed by the
// hub once at construction, highest priority first:
//
//  1. ConsumerAttacher — per-consumer attach with an explicit correlation ID
//     and a dedicated error channel.
//  2. Attacher — attach-by-port without per-consumer identity.
//  3. ChangeNotifier — legacy ID-keyed callback registration on the render
//     surface object itself.
package backend

import "github.com/framekit/framehub/surface"

// Port identifies which physical display or stream is being observed. The
// minimum capability every generation shares is reporting the surface that is
// current right now; the value is opaque and goes through the resolver.
type Port interface {
	CurrentSurface() any
}

// Observer is the callback shape backends invoke on their own goroutine when
// the surface changes or a region is damaged. ConsumerID is the generic
// identity accessor some backend generations use for per-consumer
// diagnostics.
type Observer interface {
	ConsumerID() string
	OnSurfaceChanged(opaque any)
	OnDamageRect(rect surface.Rect)
}

// ConsumerAttacher is the richest delivery mechanism: registrations carry a
// correlation ID, so attach and detach are symmetric, and each registration
// gets a dedicated channel for backend-reported errors.
type ConsumerAttacher interface {
	Port
	AttachConsumer(registrationID string, obs Observer, errs chan<- error) error
	DetachConsumer(registrationID string) error
}

// Attacher is the mid-generation mechanism: observers register against the
// port with no per-consumer identity, so detach is by observer value.
type Attacher interface {
	Port
	Attach(obs Observer) error
	Detach(obs Observer) error
}

// RenderSurface is the renderable surface object the hub holds for the
// legacy mechanism. Current returns the opaque current-surface value.
type RenderSurface interface {
	Current() any
}

// ChangeNotifier is the legacy mechanism: ID-keyed callback registration
// directly on the render surface object.
type ChangeNotifier interface {
	AddChangeCallback(id string, obs Observer)
	RemoveChangeCallback(id string)
}
