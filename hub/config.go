package hub

import (
	"log/slog"

	"github.com/framekit/framehub/observability"
	"github.com/framekit/framehub/resolver"
)

// Config defines configuration for a Hub instance.
type Config struct {
	// Hub identity
	Name string

	// Lookup resolves transport-wrapped surface references; nil means
	// such references resolve to absence.
	Lookup resolver.Lookup

	// ErrorChannelBuffer sizes the per-registration backend error channel
	// used by the rich delivery mechanism.
	ErrorChannelBuffer int

	// BackendErrorHandler, when set, receives backend-reported errors for
	// the named consumer in addition to their being logged.
	BackendErrorHandler func(consumerID string, err error)

	// Observability
	Logger   *slog.Logger
	Observer observability.Observer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:               "framehub",
		ErrorChannelBuffer: 8,
		Logger:             slog.Default(),
		Observer:           observability.NoOpObserver{},
	}
}

func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Lookup != nil {
		c.Lookup = source.Lookup
	}

	if source.ErrorChannelBuffer > 0 {
		c.ErrorChannelBuffer = source.ErrorChannelBuffer
	}

	if source.BackendErrorHandler != nil {
		c.BackendErrorHandler = source.BackendErrorHandler
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}

	if source.Observer != nil {
		c.Observer = source.Observer
	}
}
