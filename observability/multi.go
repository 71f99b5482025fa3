package observability

import "context"

// MultiObserver forwards each event to a fixed set of sinks, in order. A
// process that wants hub lifecycle events both logged and counted composes
// the two sinks here; the hub itself never knows there is more than one
// listener.
type MultiObserver struct {
	sinks []Observer
}

// NewMultiObserver creates a MultiObserver over the given sinks. Nil entries
// are dropped so call sites can pass optional observers unconditionally.
func NewMultiObserver(sinks ...Observer) *MultiObserver {
	kept := make([]Observer, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiObserver{sinks: kept}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, s := range m.sinks {
		s.OnEvent(ctx, event)
	}
}
