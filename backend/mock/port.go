// Package mock provides simulated backend ports and surfaces for tests and
// the demo binary. One type exists per delivery mechanism so capability
// probing can be exercised against each backend generation in isolation.
package mock

import (
	"fmt"
	"sync"

	"github.com/framekit/framehub/backend"
	"github.com/framekit/framehub/surface"
)

type consumerRegistration struct {
	obs  backend.Observer
	errs chan<- error
}

// ConsumerPort simulates a rich-generation port: per-consumer registrations
// keyed by correlation ID, each with a dedicated error channel.
type ConsumerPort struct {
	mu            sync.RWMutex
	current       any
	registrations map[string]consumerRegistration
}

var _ backend.ConsumerAttacher = (*ConsumerPort)(nil)

// NewConsumerPort creates a rich-capability port with no current surface.
func NewConsumerPort() *ConsumerPort {
	return &ConsumerPort{registrations: make(map[string]consumerRegistration)}
}

func (p *ConsumerPort) CurrentSurface() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// SetCurrentSurface replaces the opaque current-surface value without
// raising a notification.
func (p *ConsumerPort) SetCurrentSurface(opaque any) {
	p.mu.Lock()
	p.current = opaque
	p.mu.Unlock()
}

func (p *ConsumerPort) AttachConsumer(registrationID string, obs backend.Observer, errs chan<- error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.registrations[registrationID]; exists {
		return fmt.Errorf("registration already exists: %s", registrationID)
	}
	p.registrations[registrationID] = consumerRegistration{obs: obs, errs: errs}
	return nil
}

func (p *ConsumerPort) DetachConsumer(registrationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.registrations[registrationID]; !exists {
		return fmt.Errorf("registration not found: %s", registrationID)
	}
	delete(p.registrations, registrationID)
	return nil
}

// RegistrationCount reports how many observers are currently attached.
func (p *ConsumerPort) RegistrationCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.registrations)
}

// RaiseSurfaceChanged notifies every registration, also updating the current
// surface, the way a real backend replaces the live frame.
func (p *ConsumerPort) RaiseSurfaceChanged(opaque any) {
	p.mu.Lock()
	p.current = opaque
	observers := p.snapshotLocked()
	p.mu.Unlock()

	for _, obs := range observers {
		obs.OnSurfaceChanged(opaque)
	}
}

// RaiseDamageRect notifies every registration of a damaged region.
func (p *ConsumerPort) RaiseDamageRect(rect surface.Rect) {
	p.mu.RLock()
	observers := p.snapshotLocked()
	p.mu.RUnlock()

	for _, obs := range observers {
		obs.OnDamageRect(rect)
	}
}

// ReportError pushes a backend error onto every registration's error
// channel, dropping where the channel is full.
func (p *ConsumerPort) ReportError(err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, reg := range p.registrations {
		select {
		case reg.errs <- err:
		default:
		}
	}
}

func (p *ConsumerPort) snapshotLocked() []backend.Observer {
	observers := make([]backend.Observer, 0, len(p.registrations))
	for _, reg := range p.registrations {
		observers = append(observers, reg.obs)
	}
	return observers
}

// SimplePort simulates a mid-generation port: attach-by-port with no
// per-consumer identity, detach by observer value.
type SimplePort struct {
	mu        sync.RWMutex
	current   any
	observers []backend.Observer
}

var _ backend.Attacher = (*SimplePort)(nil)

// NewSimplePort creates a mid-generation port.
func NewSimplePort() *SimplePort {
	return &SimplePort{}
}

func (p *SimplePort) CurrentSurface() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// SetCurrentSurface replaces the opaque current-surface value.
func (p *SimplePort) SetCurrentSurface(opaque any) {
	p.mu.Lock()
	p.current = opaque
	p.mu.Unlock()
}

func (p *SimplePort) Attach(obs backend.Observer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, obs)
	return nil
}

func (p *SimplePort) Detach(obs backend.Observer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, existing := range p.observers {
		if existing == obs {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("observer not attached")
}

// RegistrationCount reports how many observers are currently attached.
func (p *SimplePort) RegistrationCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.observers)
}

// RaiseSurfaceChanged notifies every observer and updates the current surface.
func (p *SimplePort) RaiseSurfaceChanged(opaque any) {
	p.mu.Lock()
	p.current = opaque
	observers := append([]backend.Observer(nil), p.observers...)
	p.mu.Unlock()

	for _, obs := range observers {
		obs.OnSurfaceChanged(opaque)
	}
}

// RaiseDamageRect notifies every observer of a damaged region.
func (p *SimplePort) RaiseDamageRect(rect surface.Rect) {
	p.mu.RLock()
	observers := append([]backend.Observer(nil), p.observers...)
	p.mu.RUnlock()

	for _, obs := range observers {
		obs.OnDamageRect(rect)
	}
}
