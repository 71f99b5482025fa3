package broker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/framekit/framehub/surface"
)

// Broker is the exporting side of cross-process surface transfer. Each export
// retains the handle until it is revoked, so a token stays resolvable even if
// the producer drops its own reference in the meantime.
type Broker struct {
	mu      sync.RWMutex
	exports map[string]*surface.Guard
	logger  *slog.Logger
}

// New creates an empty broker.
func New(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		exports: make(map[string]*surface.Guard),
		logger:  logger,
	}
}

// Export retains the handle and returns the token that resolves back to it.
func (b *Broker) Export(h *surface.Handle) string {
	token := uuid.Must(uuid.NewV7()).String()
	guard := h.Retain()

	b.mu.Lock()
	b.exports[token] = guard
	b.mu.Unlock()

	b.logger.Debug("surface exported",
		slog.String("token", token),
		slog.String("surface_id", h.ID()),
	)
	return token
}

// Revoke invalidates a token and drops the broker's reference. Revoking an
// unknown token is a no-op.
func (b *Broker) Revoke(token string) {
	b.mu.Lock()
	guard, ok := b.exports[token]
	if ok {
		delete(b.exports, token)
	}
	b.mu.Unlock()

	if ok {
		guard.Release()
		b.logger.Debug("surface export revoked", slog.String("token", token))
	}
}

// Resolve implements resolver.Lookup for consumers in the exporting process.
// The returned handle is borrowed from the broker's export reference.
func (b *Broker) Resolve(ctx context.Context, token string) *surface.Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	guard, ok := b.exports[token]
	if !ok {
		return nil
	}
	return guard.Handle()
}

// Close revokes every outstanding export.
func (b *Broker) Close() {
	b.mu.Lock()
	exports := b.exports
	b.exports = make(map[string]*surface.Guard)
	b.mu.Unlock()

	for _, guard := range exports {
		guard.Release()
	}
}
