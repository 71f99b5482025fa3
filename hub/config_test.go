package hub

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/framekit/framehub/observability"
	"github.com/framekit/framehub/surface"
)

type fixedLookup struct{}

func (fixedLookup) Resolve(ctx context.Context, token string) *surface.Handle { return nil }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "framehub" {
		t.Errorf("Name = %q, want %q", cfg.Name, "framehub")
	}
	if cfg.ErrorChannelBuffer != 8 {
		t.Errorf("ErrorChannelBuffer = %d, want 8", cfg.ErrorChannelBuffer)
	}
	if cfg.Logger == nil {
		t.Error("Logger should default to non-nil")
	}
	if cfg.Observer == nil {
		t.Error("Observer should default to non-nil")
	}
	if cfg.Lookup != nil {
		t.Error("Lookup should default to nil")
	}
}

func TestConfigMerge(t *testing.T) {
	t.Run("overrides set fields", func(t *testing.T) {
		cfg := DefaultConfig()
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		handler := func(consumerID string, err error) {}

		cfg.Merge(&Config{
			Name:                "custom",
			Lookup:              fixedLookup{},
			ErrorChannelBuffer:  32,
			BackendErrorHandler: handler,
			Logger:              logger,
			Observer:            observability.NewMultiObserver(),
		})

		if cfg.Name != "custom" {
			t.Errorf("Name = %q, want %q", cfg.Name, "custom")
		}
		if cfg.Lookup == nil {
			t.Error("Lookup should be overridden")
		}
		if cfg.ErrorChannelBuffer != 32 {
			t.Errorf("ErrorChannelBuffer = %d, want 32", cfg.ErrorChannelBuffer)
		}
		if cfg.BackendErrorHandler == nil {
			t.Error("BackendErrorHandler should be overridden")
		}
		if cfg.Logger != logger {
			t.Error("Logger should be overridden")
		}
	})

	t.Run("keeps defaults for zero fields", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Merge(&Config{})

		if cfg.Name != "framehub" {
			t.Errorf("Name = %q, want default", cfg.Name)
		}
		if cfg.ErrorChannelBuffer != 8 {
			t.Errorf("ErrorChannelBuffer = %d, want default 8", cfg.ErrorChannelBuffer)
		}
		if cfg.Logger == nil || cfg.Observer == nil {
			t.Error("Logger and Observer defaults should survive an empty merge")
		}
	})
}
