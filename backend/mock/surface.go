package mock

import (
	"sync"

	"github.com/framekit/framehub/backend"
	"github.com/framekit/framehub/surface"
)

// LegacySurface simulates the oldest backend generation: the render surface
// object itself carries ID-keyed change callbacks and no port-level attach
// at all.
type LegacySurface struct {
	mu        sync.RWMutex
	current   any
	callbacks map[string]backend.Observer
}

var (
	_ backend.RenderSurface  = (*LegacySurface)(nil)
	_ backend.ChangeNotifier = (*LegacySurface)(nil)
)

// NewLegacySurface creates a legacy render surface.
func NewLegacySurface() *LegacySurface {
	return &LegacySurface{callbacks: make(map[string]backend.Observer)}
}

func (s *LegacySurface) Current() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrent replaces the opaque current-surface value without raising a
// notification.
func (s *LegacySurface) SetCurrent(opaque any) {
	s.mu.Lock()
	s.current = opaque
	s.mu.Unlock()
}

func (s *LegacySurface) AddChangeCallback(id string, obs backend.Observer) {
	s.mu.Lock()
	s.callbacks[id] = obs
	s.mu.Unlock()
}

func (s *LegacySurface) RemoveChangeCallback(id string) {
	s.mu.Lock()
	delete(s.callbacks, id)
	s.mu.Unlock()
}

// CallbackCount reports how many callbacks are currently registered.
func (s *LegacySurface) CallbackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.callbacks)
}

// RaiseSurfaceChanged notifies every callback and updates the current value.
func (s *LegacySurface) RaiseSurfaceChanged(opaque any) {
	s.mu.Lock()
	s.current = opaque
	observers := s.snapshotLocked()
	s.mu.Unlock()

	for _, obs := range observers {
		obs.OnSurfaceChanged(opaque)
	}
}

// RaiseDamageRect notifies every callback of a damaged region.
func (s *LegacySurface) RaiseDamageRect(rect surface.Rect) {
	s.mu.RLock()
	observers := s.snapshotLocked()
	s.mu.RUnlock()

	for _, obs := range observers {
		obs.OnDamageRect(rect)
	}
}

func (s *LegacySurface) snapshotLocked() []backend.Observer {
	observers := make([]backend.Observer, 0, len(s.callbacks))
	for _, obs := range s.callbacks {
		observers = append(observers, obs)
	}
	return observers
}

// StaticSurface is a RenderSurface with a fixed current value and no
// notification capability, for pairing with capability-bearing ports.
type StaticSurface struct {
	mu      sync.RWMutex
	current any
}

var _ backend.RenderSurface = (*StaticSurface)(nil)

// NewStaticSurface creates a render surface holding the given opaque value.
func NewStaticSurface(current any) *StaticSurface {
	return &StaticSurface{current: current}
}

func (s *StaticSurface) Current() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrent replaces the opaque current value.
func (s *StaticSurface) SetCurrent(opaque any) {
	s.mu.Lock()
	s.current = opaque
	s.mu.Unlock()
}
