package observability

import (
	"fmt"
	"log/slog"
	"sync"
)

// Named observers, so a process can select its event sink by configuration
// value (a -observer flag, say) instead of constructing one itself.
var (
	mu    sync.RWMutex
	named = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
)

// GetObserver returns the observer registered under name. "noop" and "slog"
// are always present; "slog" emits to the default logger until replaced.
func GetObserver(name string) (Observer, error) {
	mu.RLock()
	defer mu.RUnlock()

	obs, ok := named[name]
	if !ok {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer. A process that builds
// its logger at startup typically re-registers "slog" bound to that logger.
func RegisterObserver(name string, observer Observer) {
	mu.Lock()
	defer mu.Unlock()

	named[name] = observer
}
