package platform

import "errors"

// Sentinel errors for platform operations.
var (
	// ErrClosed is returned when operating on a closed channel or stream.
	ErrClosed = errors.New("platform: channel closed")

	// ErrNotAttached is returned when a view is no longer part of the window
	// hierarchy and cannot present anything.
	ErrNotAttached = errors.New("platform: view not attached")

	// ErrUnsupportedBridge is returned when the native bridge is older than
	// the protocol this package speaks.
	ErrUnsupportedBridge = errors.New("platform: unsupported bridge version")
)
