package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/framekit/framehub/backend"
	"github.com/framekit/framehub/dispatch"
	"github.com/framekit/framehub/observability"
	"github.com/framekit/framehub/resolver"
	"github.com/framekit/framehub/surface"
)

// Observability event types emitted by the hub.
const (
	EventAttach       observability.EventType = "hub.attach"
	EventDetach       observability.EventType = "hub.detach"
	EventBackendError observability.EventType = "hub.backend.error"
	EventClose        observability.EventType = "hub.close"
)

// Consumer is the capability a frame consumer implements. The hub never owns
// a consumer; it holds it only while attached, and explicit Detach is the
// sanctioned end of that relationship.
type Consumer interface {
	// ID returns a stable identifier, unique among attached consumers.
	ID() string

	// OnSurfaceChanged delivers the new surface handle, or nil when the
	// backend has no resolvable surface. The handle is valid for the
	// duration of the callback; keeping it longer requires Retain.
	OnSurfaceChanged(h *surface.Handle)

	// OnDamageRect delivers a region changed since the last notification.
	OnDamageRect(rect surface.Rect)

	// Queue returns the execution context the consumer expects its
	// callbacks on.
	Queue() dispatch.Queue
}

// Hub is the frame-surface fan-out façade: it owns the consumer registry,
// the backend port reference, and the render surface reference, and
// distributes backend change notifications to every attached consumer.
type Hub interface {
	// Attach registers the consumer for notifications, delivering on q
	// (or on the consumer's own queue when q is nil), and returns the
	// current surface as a point-in-time borrow; nil means no surface is
	// current. Attaching an already-attached consumer fails with
	// ErrAlreadyAttached and leaves prior state untouched.
	Attach(c Consumer, q dispatch.Queue) (*surface.Handle, error)

	// Detach unregisters the consumer. Detaching an unattached consumer
	// is a no-op. Deliveries already scheduled on the consumer's queue
	// may still arrive shortly after Detach returns.
	Detach(c Consumer)

	// AttachedConsumers returns a snapshot of the attached set.
	AttachedConsumers() []Consumer

	// IsAttached reports whether the consumer currently has an adapter.
	IsAttached(c Consumer) bool

	// Metrics returns a snapshot of the hub's counters.
	Metrics() MetricsSnapshot

	// Close detaches every consumer and stops the hub's goroutines.
	Close() error
}

// mechanism is the backend delivery style, selected once at construction and
// never re-probed.
type mechanism int

const (
	// mechanismConsumer: per-consumer attach with correlation ID and a
	// dedicated error channel.
	mechanismConsumer mechanism = iota
	// mechanismPort: attach-by-port without per-consumer identity.
	mechanismPort
	// mechanismLegacy: ID-keyed callbacks on the render surface object.
	mechanismLegacy
)

func (m mechanism) String() string {
	switch m {
	case mechanismConsumer:
		return "consumer-attach"
	case mechanismPort:
		return "port-attach"
	case mechanismLegacy:
		return "legacy-surface-callback"
	default:
		return fmt.Sprintf("mechanism(%d)", int(m))
	}
}

type hub struct {
	name string
	port backend.Port
	surf backend.RenderSurface

	mech         mechanism
	consumerPort backend.ConsumerAttacher
	portAttacher backend.Attacher
	notifier     backend.ChangeNotifier

	registry *registry
	resolver *resolver.Resolver

	errBuffer  int
	errHandler func(consumerID string, err error)

	logger   *slog.Logger
	observer observability.Observer
	metrics  *Metrics

	mu     sync.Mutex
	closed bool
	drains map[string]chan struct{}
}

// New creates a hub observing the given port/surface pairing. Capability
// probing happens here, once, in fixed priority order: rich per-consumer
// attach, then attach-by-port, then legacy surface callbacks. The port may
// be nil for legacy-only backends where the surface carries everything.
func New(port backend.Port, surf backend.RenderSurface, cfg Config) (Hub, error) {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)
	cfg = defaults

	h := &hub{
		name:       cfg.Name,
		port:       port,
		surf:       surf,
		registry:   newRegistry(),
		resolver:   resolver.New(cfg.Lookup, cfg.Logger),
		errBuffer:  cfg.ErrorChannelBuffer,
		errHandler: cfg.BackendErrorHandler,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		metrics:    NewMetrics(),
		drains:     make(map[string]chan struct{}),
	}

	switch p := port.(type) {
	case backend.ConsumerAttacher:
		h.mech = mechanismConsumer
		h.consumerPort = p
	case backend.Attacher:
		h.mech = mechanismPort
		h.portAttacher = p
	default:
		notifier, ok := surf.(backend.ChangeNotifier)
		if !ok {
			return nil, ErrNoDeliveryMechanism
		}
		h.mech = mechanismLegacy
		h.notifier = notifier
	}

	h.logger.Debug("hub created",
		slog.String("hub_name", h.name),
		slog.String("mechanism", h.mech.String()),
	)

	return h, nil
}

func (h *hub) Attach(c Consumer, q dispatch.Queue) (*surface.Handle, error) {
	if q == nil {
		q = c.Queue()
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.mu.Unlock()

	fwd := newForwarder(c, q, h.resolver, h.metrics, h.logger)

	if err := h.registry.register(c, fwd); err != nil {
		return nil, fmt.Errorf("%w: %s", err, c.ID())
	}
	if err := h.registerBackend(fwd); err != nil {
		h.registry.unregister(c.ID())
		return nil, fmt.Errorf("backend attach failed: %w", err)
	}

	h.metrics.RecordAttached(1)

	// Close may have drained the registry between the checks above; unwind
	// so no backend registration survives it. Entries Close already drained
	// were unregistered there.
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		if ent, ok := h.registry.unregister(c.ID()); ok {
			h.unregisterBackend(ent.fwd)
			h.metrics.RecordAttached(-1)
		}
		return nil, ErrHubClosed
	}
	h.logger.Debug("consumer attached",
		slog.String("hub_name", h.name),
		slog.String("consumer_id", c.ID()),
		slog.String("registration_id", fwd.registrationID),
		slog.String("mechanism", h.mech.String()),
	)
	h.emit(EventAttach, observability.LevelInfo, map[string]any{
		"consumer_id":     c.ID(),
		"registration_id": fwd.registrationID,
	})

	// Informational initial state only; later changes arrive through the
	// forwarder, never through further Attach calls.
	return h.resolver.Resolve(h.currentOpaque()), nil
}

func (h *hub) Detach(c Consumer) {
	ent, ok := h.registry.unregister(c.ID())
	if !ok {
		return
	}

	h.unregisterBackend(ent.fwd)
	h.metrics.RecordAttached(-1)

	h.logger.Debug("consumer detached",
		slog.String("hub_name", h.name),
		slog.String("consumer_id", c.ID()),
		slog.String("registration_id", ent.fwd.registrationID),
	)
	h.emit(EventDetach, observability.LevelInfo, map[string]any{
		"consumer_id": c.ID(),
	})
}

func (h *hub) AttachedConsumers() []Consumer {
	return h.registry.consumers()
}

func (h *hub) IsAttached(c Consumer) bool {
	_, ok := h.registry.lookup(c.ID())
	return ok
}

func (h *hub) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

func (h *hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	for _, ent := range h.registry.drain() {
		h.unregisterBackend(ent.fwd)
		h.metrics.RecordAttached(-1)
	}

	h.logger.Debug("hub closed", slog.String("hub_name", h.name))
	h.emit(EventClose, observability.LevelInfo, nil)
	return nil
}

func (h *hub) registerBackend(fwd *forwarder) error {
	switch h.mech {
	case mechanismConsumer:
		errs := make(chan error, h.errBuffer)
		if err := h.consumerPort.AttachConsumer(fwd.registrationID, fwd, errs); err != nil {
			return err
		}
		done := make(chan struct{})
		h.mu.Lock()
		h.drains[fwd.registrationID] = done
		h.mu.Unlock()
		go h.drainBackendErrors(fwd.ConsumerID(), errs, done)
		return nil

	case mechanismPort:
		return h.portAttacher.Attach(fwd)

	default:
		h.notifier.AddChangeCallback(fwd.registrationID, fwd)
		return nil
	}
}

func (h *hub) unregisterBackend(fwd *forwarder) {
	switch h.mech {
	case mechanismConsumer:
		if err := h.consumerPort.DetachConsumer(fwd.registrationID); err != nil {
			h.logger.Warn("backend detach failed",
				slog.String("hub_name", h.name),
				slog.String("registration_id", fwd.registrationID),
				slog.String("error", err.Error()),
			)
		}
		h.mu.Lock()
		done := h.drains[fwd.registrationID]
		delete(h.drains, fwd.registrationID)
		h.mu.Unlock()
		if done != nil {
			close(done)
		}

	case mechanismPort:
		if err := h.portAttacher.Detach(fwd); err != nil {
			h.logger.Warn("backend detach failed",
				slog.String("hub_name", h.name),
				slog.String("registration_id", fwd.registrationID),
				slog.String("error", err.Error()),
			)
		}

	default:
		h.notifier.RemoveChangeCallback(fwd.registrationID)
	}
}

// drainBackendErrors surfaces errors from the rich mechanism's dedicated
// channel instead of discarding them: each is counted, logged, handed to the
// configured handler, and emitted as an observability event.
func (h *hub) drainBackendErrors(consumerID string, errs <-chan error, done <-chan struct{}) {
	for {
		select {
		case err := <-errs:
			if err == nil {
				continue
			}
			h.metrics.RecordBackendError(1)
			h.logger.Warn("backend reported error",
				slog.String("hub_name", h.name),
				slog.String("consumer_id", consumerID),
				slog.String("error", err.Error()),
			)
			h.emit(EventBackendError, observability.LevelWarning, map[string]any{
				"consumer_id": consumerID,
				"error":       err.Error(),
			})
			if h.errHandler != nil {
				h.errHandler(consumerID, err)
			}
		case <-done:
			return
		}
	}
}

func (h *hub) currentOpaque() any {
	if h.mech == mechanismLegacy {
		return h.surf.Current()
	}
	return h.port.CurrentSurface()
}

func (h *hub) emit(eventType observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["hub_name"] = h.name
	h.observer.OnEvent(context.Background(), observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "hub",
		Data:      data,
	})
}
