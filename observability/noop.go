package observability

import "context"

// NoOpObserver drops every event. It is the default observer for hubs whose
// configuration names no other sink, keeping the emit path allocation-free
// when nobody is listening.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
