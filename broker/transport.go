package broker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/framekit/framehub/surface"
)

// ResolveProcedure is the broker's unary RPC route. The request carries the
// export token, the response the region location and geometry.
const ResolveProcedure = "/framehub.broker.v1.BrokerService/Resolve"

// NewResolveHandler returns the route and handler for the broker's resolve
// endpoint, for mounting on any mux:
//
//	route, handler := broker.NewResolveHandler(b)
//	mux.Handle(route, handler)
func NewResolveHandler(b *Broker, options ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewUnaryHandler(
		ResolveProcedure,
		func(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
			h := b.Resolve(ctx, req.Msg.GetValue())
			if h == nil {
				return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("unknown surface token"))
			}

			desc := h.Descriptor()
			payload, err := structpb.NewStruct(map[string]any{
				"surface_id": h.ID(),
				"path":       h.Path(),
				"width":      desc.Width,
				"height":     desc.Height,
				"stride":     desc.Stride,
				"format":     string(desc.Format),
			})
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(payload), nil
		},
		options...,
	)
	return ResolveProcedure, handler
}

// Client resolves tokens against a remote broker and opens the shared regions
// locally. Handles are cached per token so that repeated resolves of the same
// export return the same handle identity; the cache owns one reference per
// handle, dropped on Close.
type Client struct {
	call   *connect.Client[wrapperspb.StringValue, structpb.Struct]
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*surface.Handle
}

// NewClient creates a resolving client against the broker at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, logger *slog.Logger, options ...connect.ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		call:    connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+ResolveProcedure, options...),
		logger:  logger,
		handles: make(map[string]*surface.Handle),
	}
}

// Resolve implements resolver.Lookup over the broker RPC. Unknown or revoked
// tokens and transport failures all resolve to nil; absence is not an error
// on this path.
func (c *Client) Resolve(ctx context.Context, token string) *surface.Handle {
	c.mu.Lock()
	if h, ok := c.handles[token]; ok {
		c.mu.Unlock()
		return h
	}
	c.mu.Unlock()

	res, err := c.call.CallUnary(ctx, connect.NewRequest(wrapperspb.String(token)))
	if err != nil {
		if connect.CodeOf(err) != connect.CodeNotFound {
			c.logger.Warn("broker resolve failed",
				slog.String("token", token),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	h, err := handleFromPayload(res.Msg)
	if err != nil {
		c.logger.Warn("broker returned unusable surface record",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.handles[token]; ok {
		// Lost a resolve race; keep the first handle so identity stays stable.
		h.Release()
		return cached
	}
	c.handles[token] = h
	return h
}

// Close drops every cached handle reference.
func (c *Client) Close() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[string]*surface.Handle)
	c.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

func handleFromPayload(payload *structpb.Struct) (*surface.Handle, error) {
	fields := payload.AsMap()

	id, _ := fields["surface_id"].(string)
	path, _ := fields["path"].(string)
	if id == "" || path == "" {
		return nil, fmt.Errorf("missing surface_id or path")
	}

	format, _ := fields["format"].(string)
	desc := surface.Descriptor{
		Width:  intField(fields, "width"),
		Height: intField(fields, "height"),
		Stride: intField(fields, "stride"),
		Format: surface.Format(format),
	}
	return surface.Open(id, path, desc)
}

func intField(fields map[string]any, key string) int {
	// structpb numbers decode as float64.
	f, _ := fields[key].(float64)
	return int(f)
}
