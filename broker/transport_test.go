package broker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/framekit/framehub/broker"
)

func startBrokerServer(t *testing.T, b *broker.Broker) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	route, handler := broker.NewResolveHandler(b)
	mux.Handle(route, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_ResolveRoundTrip(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	h := createTestSurface(t)
	defer h.Release()
	token := b.Export(h)

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)
	defer client.Close()

	got := client.Resolve(context.Background(), token)
	if got == nil {
		t.Fatal("Resolve() = nil, want handle")
	}
	if got.ID() != h.ID() {
		t.Errorf("resolved surface ID = %s, want %s", got.ID(), h.ID())
	}
	if got.Descriptor() != h.Descriptor() {
		t.Errorf("resolved descriptor = %+v, want %+v", got.Descriptor(), h.Descriptor())
	}
}

func TestClient_ResolveSeesSharedContents(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	h := createTestSurface(t)
	defer h.Release()
	token := b.Export(h)

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)
	defer client.Close()

	got := client.Resolve(context.Background(), token)
	if got == nil {
		t.Fatal("Resolve() = nil, want handle")
	}

	// Writes through the exporter's handle must be visible through the
	// transport-resolved one; both reference the same region.
	if _, err := h.WriteAt([]byte{0xAB, 0xCD}, 0); err != nil {
		t.Fatalf("WriteAt() error = %v", err)
	}
	snap, err := got.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap[0] != 0xAB || snap[1] != 0xCD {
		t.Errorf("snapshot prefix = %x %x, want ab cd", snap[0], snap[1])
	}
}

func TestClient_ResolveCachesIdentity(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	h := createTestSurface(t)
	defer h.Release()
	token := b.Export(h)

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)
	defer client.Close()

	first := client.Resolve(context.Background(), token)
	second := client.Resolve(context.Background(), token)

	if first == nil || second == nil {
		t.Fatal("Resolve() returned nil")
	}
	if first != second {
		t.Error("repeated resolves of one token should return the same handle")
	}
}

func TestClient_ResolveUnknownToken(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)
	defer client.Close()

	if got := client.Resolve(context.Background(), "stale-token"); got != nil {
		t.Errorf("Resolve(unknown) = %v, want nil", got)
	}
}

func TestClient_ResolveRevokedToken(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	h := createTestSurface(t)
	defer h.Release()
	token := b.Export(h)
	b.Revoke(token)

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)
	defer client.Close()

	if got := client.Resolve(context.Background(), token); got != nil {
		t.Errorf("Resolve(revoked) = %v, want nil", got)
	}
}

func TestClient_CloseReleasesCache(t *testing.T) {
	b := broker.New(nil)
	defer b.Close()

	h := createTestSurface(t)
	defer h.Release()
	token := b.Export(h)

	server := startBrokerServer(t, b)
	client := broker.NewClient(server.Client(), server.URL, nil)

	got := client.Resolve(context.Background(), token)
	if got == nil {
		t.Fatal("Resolve() = nil, want handle")
	}

	client.Close()

	if got.Valid() {
		t.Error("client-owned handle should be released on Close")
	}
}
