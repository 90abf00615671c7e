// Package imagepicker presents an action sheet offering the camera or the
// photo library, asks for the needed permissions, shows the native picker and
// hands back the chosen image.
//
// A Picker composes four stages that always run in order: authorization
// (Gate), source selection (Selector), picking (Adapter) and payload
// extraction. Every stage that shows UI does so through a Surface on the UI
// context; the stages themselves block on the calling goroutine and honor
// context cancellation by dismissing whatever they put on screen.
package imagepicker

import "github.com/go-drift/imagepicker/pkg/platform"

// Capability is a device feature the OS authorizes independently.
type Capability int

const (
	Camera Capability = iota
	PhotoLibrary
)

func (c Capability) String() string {
	switch c {
	case Camera:
		return "camera"
	case PhotoLibrary:
		return "photoLibrary"
	default:
		return "unknown"
	}
}

// AuthorizationStatus is the OS-reported permission state of a capability.
type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusAuthorized
	StatusLimited
	StatusDenied
	StatusRestricted
)

func (s AuthorizationStatus) String() string {
	switch s {
	case StatusAuthorized:
		return "authorized"
	case StatusLimited:
		return "limited"
	case StatusDenied:
		return "denied"
	case StatusRestricted:
		return "restricted"
	default:
		return "notDetermined"
	}
}

// Available reports whether the status lets the capability be used.
func (s AuthorizationStatus) Available() bool {
	return s == StatusAuthorized || s == StatusLimited
}

// statusFromPlatform maps a bridge permission result onto the OS model.
func statusFromPlatform(r platform.PermissionResult) AuthorizationStatus {
	switch r {
	case platform.PermissionGranted:
		return StatusAuthorized
	case platform.PermissionLimited:
		return StatusLimited
	case platform.PermissionDenied, platform.PermissionPermanentlyDenied:
		return StatusDenied
	case platform.PermissionRestricted:
		return StatusRestricted
	default:
		return StatusNotDetermined
	}
}
