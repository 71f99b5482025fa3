// Package resolver converts opaque backend-supplied values into concrete
// surface handles. Backends hand the hub one of two shapes: an already-typed
// *surface.Handle, or a transport-wrapped surface.Ref that requires a
// cross-process lookup. Anything else, including nil, resolves to absence.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/framekit/framehub/surface"
)

const defaultLookupTimeout = 2 * time.Second

// Lookup is the cross-process strategy: it turns a transport token into a
// handle, or nil when the token is unknown or already invalidated. The broker
// package provides both the in-process and the RPC implementation.
type Lookup interface {
	Resolve(ctx context.Context, token string) *surface.Handle
}

// Resolver resolves opaque values through the direct and transport
// strategies. A nil *Resolver resolves everything to nil, which keeps
// call sites free of nil checks.
type Resolver struct {
	lookup  Lookup
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a resolver. lookup may be nil, in which case transport-wrapped
// references resolve to absence.
func New(lookup Lookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		lookup:  lookup,
		timeout: defaultLookupTimeout,
		logger:  logger,
	}
}

// Resolve maps an opaque backend value to a surface handle.
//
// The returned handle is borrowed: no extra reference is taken, and callers
// holding it across an asynchronous boundary must Retain it first. A nil
// return means absence, never an error; a malformed or stale reference
// degrades to "no surface".
func (r *Resolver) Resolve(opaque any) *surface.Handle {
	if r == nil || opaque == nil {
		return nil
	}

	switch v := opaque.(type) {
	case *surface.Handle:
		return v
	case surface.Ref:
		return r.resolveRef(v)
	case *surface.Ref:
		if v == nil {
			return nil
		}
		return r.resolveRef(*v)
	default:
		r.logger.Debug("unresolvable surface value",
			slog.String("type", fmt.Sprintf("%T", opaque)),
		)
		return nil
	}
}

func (r *Resolver) resolveRef(ref surface.Ref) *surface.Handle {
	if r.lookup == nil || ref.Token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	h := r.lookup.Resolve(ctx, ref.Token)
	if h == nil {
		r.logger.Debug("surface token did not resolve",
			slog.String("token", ref.Token),
		)
	}
	return h
}
