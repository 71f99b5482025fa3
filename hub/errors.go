package hub

import "errors"

var (
	// ErrAlreadyAttached is returned when Attach is called for a consumer
	// that already has an active registration. Double attachment is a
	// caller bug, not a runtime condition to retry.
	ErrAlreadyAttached = errors.New("consumer already attached")

	// ErrNoDeliveryMechanism is returned from New when neither the port
	// nor the render surface exposes any supported delivery capability.
	ErrNoDeliveryMechanism = errors.New("backend exposes no delivery mechanism")

	// ErrHubClosed is returned when Attach is called after Close.
	ErrHubClosed = errors.New("hub is closed")
)
