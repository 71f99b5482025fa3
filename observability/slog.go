package observability

import (
	"context"
	"log/slog"
)

// SlogObserver renders events as structured log records: the event type
// becomes the message, the level maps through SlogLevel, and the source plus
// every Data key become attributes. The event's own timestamp is carried as
// an attribute because the record's time is when the sink ran, which for
// events observed after a queue hop can lag the event itself.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver emitting to logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs, slog.String("source", event.Source))
	if !event.Timestamp.IsZero() {
		attrs = append(attrs, slog.Time("event_time", event.Timestamp))
	}
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
