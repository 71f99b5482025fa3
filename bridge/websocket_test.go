package bridge_test

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/framekit/framehub/backend/mock"
	"github.com/framekit/framehub/bridge"
	"github.com/framekit/framehub/hub"
	"github.com/framekit/framehub/surface"
)

func testDescriptor() surface.Descriptor {
	return surface.Descriptor{Width: 4, Height: 4, Stride: 16, Format: surface.FormatBGRA8888}
}

func readMessage(t *testing.T, conn *websocket.Conn) bridge.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg bridge.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func dialBridge(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func waitForAttached(t *testing.T, h hub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.AttachedConsumers()) == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("attached consumers = %d, want %d", len(h.AttachedConsumers()), want)
}

func TestServer_InitialSurfaceMessage(t *testing.T) {
	handle, err := surface.Create(filepath.Join(t.TempDir(), "frame.bin"), testDescriptor())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer handle.Release()

	port := mock.NewConsumerPort()
	port.SetCurrentSurface(handle)

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	conn := dialBridge(t, srv)
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != bridge.TypeSurface {
		t.Fatalf("message type = %q, want %q", msg.Type, bridge.TypeSurface)
	}
	if msg.SurfaceID != handle.ID() {
		t.Errorf("surface id = %q, want %q", msg.SurfaceID, handle.ID())
	}
	if msg.Width != 4 || msg.Height != 4 || msg.Stride != 16 {
		t.Errorf("geometry = %dx%d stride %d, want 4x4 stride 16", msg.Width, msg.Height, msg.Stride)
	}
	if msg.Format != string(surface.FormatBGRA8888) {
		t.Errorf("format = %q, want %q", msg.Format, surface.FormatBGRA8888)
	}
}

func TestServer_NoCurrentSurface(t *testing.T) {
	port := mock.NewConsumerPort()

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	conn := dialBridge(t, srv)
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != bridge.TypeSurface {
		t.Fatalf("message type = %q, want %q", msg.Type, bridge.TypeSurface)
	}
	if msg.SurfaceID != "" {
		t.Errorf("surface id = %q, want empty for absent surface", msg.SurfaceID)
	}
}

func TestServer_ForwardsNotifications(t *testing.T) {
	handle, err := surface.Create(filepath.Join(t.TempDir(), "frame.bin"), testDescriptor())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer handle.Release()

	port := mock.NewConsumerPort()
	port.SetCurrentSurface(handle)

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	conn := dialBridge(t, srv)
	defer conn.Close()

	readMessage(t, conn) // initial surface snapshot
	waitForAttached(t, h, 1)

	port.RaiseDamageRect(surface.Rect{X: 2, Y: 3, Width: 10, Height: 20})
	msg := readMessage(t, conn)
	if msg.Type != bridge.TypeDamage {
		t.Fatalf("message type = %q, want %q", msg.Type, bridge.TypeDamage)
	}
	if msg.X != 2 || msg.Y != 3 || msg.RectW != 10 || msg.RectH != 20 {
		t.Errorf("damage rect = (%d,%d %dx%d), want (2,3 10x20)", msg.X, msg.Y, msg.RectW, msg.RectH)
	}

	port.RaiseSurfaceChanged(handle)
	msg = readMessage(t, conn)
	if msg.Type != bridge.TypeSurface {
		t.Fatalf("message type = %q, want %q", msg.Type, bridge.TypeSurface)
	}
	if msg.SurfaceID != handle.ID() {
		t.Errorf("surface id = %q, want %q", msg.SurfaceID, handle.ID())
	}
}

func TestServer_DetachesOnDisconnect(t *testing.T) {
	port := mock.NewConsumerPort()

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	conn := dialBridge(t, srv)
	readMessage(t, conn)
	waitForAttached(t, h, 1)

	conn.Close()
	waitForAttached(t, h, 0)

	if port.RegistrationCount() != 0 {
		t.Errorf("backend registrations = %d after disconnect, want 0", port.RegistrationCount())
	}
}

func TestServer_TeardownWithLoadedQueue(t *testing.T) {
	port := mock.NewConsumerPort()

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	conn := dialBridge(t, srv)
	readMessage(t, conn)
	waitForAttached(t, h, 1)

	// Pile deliveries onto the viewer's queue, then disconnect while they
	// are still in flight. Teardown must drain the queue and release the
	// backend registration.
	for i := 0; i < 200; i++ {
		port.RaiseDamageRect(surface.Rect{X: i, Width: 1, Height: 1})
	}
	conn.Close()

	waitForAttached(t, h, 0)
	if port.RegistrationCount() != 0 {
		t.Errorf("backend registrations = %d after loaded disconnect, want 0", port.RegistrationCount())
	}
}

func TestServer_MultipleViewers(t *testing.T) {
	port := mock.NewConsumerPort()

	h, err := hub.New(port, nil, hub.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(bridge.NewServer(h, nil))
	defer srv.Close()

	first := dialBridge(t, srv)
	defer first.Close()
	second := dialBridge(t, srv)
	defer second.Close()

	readMessage(t, first)
	readMessage(t, second)
	waitForAttached(t, h, 2)

	port.RaiseDamageRect(surface.Rect{X: 1, Y: 1, Width: 2, Height: 2})
	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg.Type != bridge.TypeDamage {
			t.Errorf("message type = %q, want %q", msg.Type, bridge.TypeDamage)
		}
	}
}
