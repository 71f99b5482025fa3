// Command framehub runs a demonstration hub against an in-process backend:
// it creates a file-backed frame surface, exports it through the broker,
// attaches N logging consumers, and drives a stream of surface-changed and
// damage-rect notifications. With -addr it also serves the WebSocket bridge
// so external viewers can watch the same stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/framekit/framehub/backend/mock"
	"github.com/framekit/framehub/bridge"
	"github.com/framekit/framehub/broker"
	"github.com/framekit/framehub/dispatch"
	"github.com/framekit/framehub/hub"
	"github.com/framekit/framehub/observability"
	"github.com/framekit/framehub/surface"
)

// eventCounter tallies hub lifecycle events by type for the exit summary.
type eventCounter struct {
	mu     sync.Mutex
	counts map[observability.EventType]int
}

func newEventCounter() *eventCounter {
	return &eventCounter{counts: make(map[observability.EventType]int)}
}

func (c *eventCounter) OnEvent(ctx context.Context, event observability.Event) {
	c.mu.Lock()
	c.counts[event.Type]++
	c.mu.Unlock()
}

func (c *eventCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

type loggingConsumer struct {
	id     string
	queue  *dispatch.SerialQueue
	logger *slog.Logger

	surfaces atomic.Int64
	damage   atomic.Int64
}

func newLoggingConsumer(id string, logger *slog.Logger) *loggingConsumer {
	return &loggingConsumer{
		id:     id,
		queue:  dispatch.NewSerialQueue(),
		logger: logger,
	}
}

func (c *loggingConsumer) ID() string            { return c.id }
func (c *loggingConsumer) Queue() dispatch.Queue { return c.queue }

func (c *loggingConsumer) OnSurfaceChanged(h *surface.Handle) {
	c.surfaces.Add(1)
	if h == nil {
		c.logger.Debug("surface absent", slog.String("consumer_id", c.id))
		return
	}
	c.logger.Debug("surface changed",
		slog.String("consumer_id", c.id),
		slog.String("surface_id", h.ID()),
	)
}

func (c *loggingConsumer) OnDamageRect(rect surface.Rect) {
	c.damage.Add(1)
	c.logger.Debug("damage rect",
		slog.String("consumer_id", c.id),
		slog.Int("x", rect.X),
		slog.Int("y", rect.Y),
		slog.Int("width", rect.Width),
		slog.Int("height", rect.Height),
	)
}

func main() {
	var (
		consumers = flag.Int("consumers", 2, "Number of logging consumers to attach")
		frames    = flag.Int("frames", 10, "Number of notification rounds to drive; 0 to run until interrupted")
		interval  = flag.Duration("interval", 100*time.Millisecond, "Delay between notification rounds")
		addr      = flag.String("addr", "", "Optional listen address for the WebSocket bridge (e.g. :8080)")
		observer  = flag.String("observer", "slog", "Named observer for hub lifecycle events (noop, slog, ...)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Rebind the named slog observer to this process's logger, then pair the
	// selected observer with a counter for the exit summary.
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
	selected, err := observability.GetObserver(*observer)
	if err != nil {
		log.Fatalf("Failed to select observer: %v", err)
	}
	events := newEventCounter()
	hubObserver := observability.NewMultiObserver(selected, events)

	dir, err := os.MkdirTemp("", "framehub-*")
	if err != nil {
		log.Fatalf("Failed to create frame directory: %v", err)
	}
	defer os.RemoveAll(dir)

	desc := surface.Descriptor{Width: 640, Height: 480, Stride: 640 * 4, Format: surface.FormatBGRA8888}
	handle, err := surface.Create(filepath.Join(dir, "frame.bin"), desc)
	if err != nil {
		log.Fatalf("Failed to create frame surface: %v", err)
	}
	defer handle.Release()

	// The backend publishes a transport ref, not the handle itself; the hub
	// resolves it through the broker the way a cross-process viewer would.
	shm := broker.New(logger)
	defer shm.Close()
	token := shm.Export(handle)

	port := mock.NewConsumerPort()
	port.SetCurrentSurface(surface.Ref{Token: token})

	cfg := hub.DefaultConfig()
	cfg.Lookup = shm
	cfg.Logger = logger
	cfg.Observer = hubObserver
	h, err := hub.New(port, nil, cfg)
	if err != nil {
		log.Fatalf("Failed to create hub: %v", err)
	}
	defer h.Close()

	attached := make([]*loggingConsumer, 0, *consumers)
	for i := 0; i < *consumers; i++ {
		c := newLoggingConsumer(fmt.Sprintf("viewer-%d", i), logger)
		if _, err := h.Attach(c, nil); err != nil {
			log.Fatalf("Failed to attach consumer %s: %v", c.id, err)
		}
		attached = append(attached, c)
	}

	if *addr != "" {
		srv := &http.Server{Addr: *addr, Handler: bridge.NewServer(h, logger)}
		go func() {
			logger.Info("bridge listening", slog.String("addr", *addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("bridge server failed", slog.String("error", err.Error()))
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	drive(ctx, port, handle, desc, *frames, *interval)

	for _, c := range attached {
		h.Detach(c)
		c.queue.Close()
	}

	snap := h.Metrics()
	fmt.Printf("Surface events: %d\n", snap.SurfaceEvents)
	fmt.Printf("Damage events:  %d\n", snap.DamageEvents)
	fmt.Printf("Empty resolves: %d\n", snap.EmptyResolves)
	fmt.Printf("Backend errors: %d\n", snap.BackendErrors)
	fmt.Printf("Hub events:     %d\n", events.total())
}

// drive simulates the backend: each round writes a band of pixels into the
// shared frame, raises a surface-changed notification, and reports the band
// as damage.
func drive(ctx context.Context, port *mock.ConsumerPort, handle *surface.Handle, desc surface.Descriptor, frames int, interval time.Duration) {
	band := make([]byte, desc.Stride)
	for round := 0; frames == 0 || round < frames; round++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		y := round % desc.Height
		for i := range band {
			band[i] = byte(round)
		}
		if _, err := handle.WriteAt(band, int64(y*desc.Stride)); err != nil {
			return
		}

		port.RaiseSurfaceChanged(port.CurrentSurface())
		port.RaiseDamageRect(surface.Rect{X: 0, Y: y, Width: desc.Width, Height: 1})
	}
}
