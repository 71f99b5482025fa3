// Package bridge exposes an attached hub over WebSocket: each accepted
// connection becomes one hub consumer, and surface/damage notifications are
// forwarded to the peer as JSON messages. The connection's write side runs on
// the consumer's own execution queue, so frames for one viewer are always
// ordered and never written concurrently.
package bridge

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/framekit/framehub/dispatch"
	"github.com/framekit/framehub/hub"
	"github.com/framekit/framehub/surface"
)

// Server is an http.Handler that upgrades requests to WebSocket and attaches
// one hub consumer per connection. The consumer detaches when the peer
// disconnects.
type Server struct {
	hub      hub.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a bridge over h. A nil logger falls back to the default.
func NewServer(h hub.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			slog.String("remote", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	c := newSocketConsumer(conn, s.logger)

	current, err := s.hub.Attach(c, nil)
	if err != nil {
		s.logger.Warn("viewer attach failed",
			slog.String("viewer_id", c.id),
			slog.String("error", err.Error()),
		)
		c.queue.Close()
		conn.Close()
		return
	}
	c.sendSurface(current)

	s.logger.Debug("viewer connected",
		slog.String("viewer_id", c.id),
		slog.String("remote", r.RemoteAddr),
	)

	// Block until the peer goes away. Inbound frames are not part of the
	// protocol; the read loop exists to detect disconnect.
	s.readUntilClosed(conn)

	// Drain the delivery queue before closing the socket so writes already
	// scheduled go to a live connection.
	s.hub.Detach(c)
	c.queue.Close()
	conn.Close()

	s.logger.Debug("viewer disconnected", slog.String("viewer_id", c.id))
}

func (s *Server) readUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// socketConsumer adapts one WebSocket connection to the hub's consumer
// capability. Deliveries arrive on its serial queue; the send mutex covers
// the one write that happens off-queue, the initial surface snapshot.
type socketConsumer struct {
	id    string
	queue *dispatch.SerialQueue
	conn  *websocket.Conn

	mu     sync.Mutex
	logger *slog.Logger
}

func newSocketConsumer(conn *websocket.Conn, logger *slog.Logger) *socketConsumer {
	return &socketConsumer{
		id:     uuid.Must(uuid.NewV7()).String(),
		queue:  dispatch.NewSerialQueue(),
		conn:   conn,
		logger: logger,
	}
}

func (c *socketConsumer) ID() string            { return c.id }
func (c *socketConsumer) Queue() dispatch.Queue { return c.queue }

func (c *socketConsumer) OnSurfaceChanged(h *surface.Handle) {
	c.sendSurface(h)
}

func (c *socketConsumer) OnDamageRect(rect surface.Rect) {
	c.send(Message{
		Type:  TypeDamage,
		X:     rect.X,
		Y:     rect.Y,
		RectW: rect.Width,
		RectH: rect.Height,
	})
}

func (c *socketConsumer) sendSurface(h *surface.Handle) {
	msg := Message{Type: TypeSurface}
	if h != nil {
		desc := h.Descriptor()
		msg.SurfaceID = h.ID()
		msg.Width = desc.Width
		msg.Height = desc.Height
		msg.Stride = desc.Stride
		msg.Format = string(desc.Format)
	}
	c.send(msg)
}

func (c *socketConsumer) send(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debug("viewer write failed",
			slog.String("viewer_id", c.id),
			slog.String("error", err.Error()),
		)
	}
}
