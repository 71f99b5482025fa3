package resolver_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/framekit/framehub/resolver"
	"github.com/framekit/framehub/surface"
)

type stubLookup struct {
	handles map[string]*surface.Handle
	calls   int
}

func (s *stubLookup) Resolve(ctx context.Context, token string) *surface.Handle {
	s.calls++
	return s.handles[token]
}

func createTestSurface(t *testing.T) *surface.Handle {
	t.Helper()

	h, err := surface.Create(filepath.Join(t.TempDir(), "region.fb"), surface.Descriptor{
		Width: 4, Height: 4, Stride: 16, Format: surface.FormatBGRA8888,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(h.Release)
	return h
}

func TestResolver_NilResolvesToAbsence(t *testing.T) {
	r := resolver.New(nil, nil)

	if got := r.Resolve(nil); got != nil {
		t.Errorf("Resolve(nil) = %v, want nil", got)
	}
}

func TestResolver_DirectHandlePassesThrough(t *testing.T) {
	h := createTestSurface(t)
	lookup := &stubLookup{}
	r := resolver.New(lookup, nil)

	got := r.Resolve(h)
	if got != h {
		t.Errorf("Resolve(handle) = %v, want the same handle", got)
	}
	if lookup.calls != 0 {
		t.Errorf("direct resolve performed %d lookups, want 0", lookup.calls)
	}
}

func TestResolver_TransportRefResolvesSameIdentity(t *testing.T) {
	h := createTestSurface(t)
	lookup := &stubLookup{handles: map[string]*surface.Handle{"tok-1": h}}
	r := resolver.New(lookup, nil)

	direct := r.Resolve(h)
	wrapped := r.Resolve(surface.Ref{Token: "tok-1"})

	if wrapped == nil {
		t.Fatal("Resolve(ref) = nil, want a handle")
	}
	if wrapped.ID() != direct.ID() {
		t.Errorf("transport-resolved ID = %s, want %s", wrapped.ID(), direct.ID())
	}
}

func TestResolver_PointerRef(t *testing.T) {
	h := createTestSurface(t)
	lookup := &stubLookup{handles: map[string]*surface.Handle{"tok-1": h}}
	r := resolver.New(lookup, nil)

	if got := r.Resolve(&surface.Ref{Token: "tok-1"}); got != h {
		t.Errorf("Resolve(*ref) = %v, want %v", got, h)
	}
	var nilRef *surface.Ref
	if got := r.Resolve(nilRef); got != nil {
		t.Errorf("Resolve(nil *ref) = %v, want nil", got)
	}
}

func TestResolver_UnknownTokenIsAbsenceNotError(t *testing.T) {
	lookup := &stubLookup{handles: map[string]*surface.Handle{}}
	r := resolver.New(lookup, nil)

	if got := r.Resolve(surface.Ref{Token: "stale"}); got != nil {
		t.Errorf("Resolve(stale ref) = %v, want nil", got)
	}
}

func TestResolver_RefWithoutLookup(t *testing.T) {
	r := resolver.New(nil, nil)

	if got := r.Resolve(surface.Ref{Token: "tok-1"}); got != nil {
		t.Errorf("Resolve(ref) without lookup = %v, want nil", got)
	}
}

func TestResolver_UnknownTypeResolvesToAbsence(t *testing.T) {
	r := resolver.New(&stubLookup{}, nil)

	if got := r.Resolve(42); got != nil {
		t.Errorf("Resolve(int) = %v, want nil", got)
	}
	if got := r.Resolve("not a surface"); got != nil {
		t.Errorf("Resolve(string) = %v, want nil", got)
	}
}

func TestResolver_NilResolverResolvesToAbsence(t *testing.T) {
	var r *resolver.Resolver

	if got := r.Resolve(surface.Ref{Token: "tok-1"}); got != nil {
		t.Errorf("nil resolver Resolve() = %v, want nil", got)
	}
}
