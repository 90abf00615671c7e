package imagepicker

import (
	"context"

	"github.com/go-drift/imagepicker/pkg/platform"
)

// Authorizer reads and requests OS permissions.
type Authorizer interface {
	// Status returns the live status; it never prompts.
	Status(c Capability) AuthorizationStatus
	// Request shows the one-time OS prompt and blocks until the user answers
	// or ctx ends. It returns the resulting status.
	Request(ctx context.Context, c Capability) (AuthorizationStatus, error)
	// UsageDescription returns the app's declared purpose string for c.
	UsageDescription(c Capability) string
}

// AlertStyle selects how an Alert is laid out.
type AlertStyle int

const (
	AlertStyleAlert AlertStyle = iota
	AlertStyleActionSheet
)

// ActionStyle is the visual role of an alert button.
type ActionStyle int

const (
	ActionDefault ActionStyle = iota
	ActionCancel
	ActionDestructive
)

// AlertAction is one button. Handler runs on the UI context.
type AlertAction struct {
	Title   string
	Style   ActionStyle
	Handler func()
}

// Alert describes a modal alert or action sheet.
type Alert struct {
	Title   string
	Message string
	Style   AlertStyle
	Actions []AlertAction
}

// Modal is a shown alert.
type Modal interface {
	// Dismiss removes the modal without running any handler.
	Dismiss()
}

// Surface is the view that presents everything. Its methods are called on
// the UI context only.
type Surface interface {
	// Attached reports whether the surface can still present.
	Attached() bool
	// ShowAlert presents a; at most one action handler runs.
	ShowAlert(a Alert) (Modal, error)
	// Present shows a picker created by the Picker's factory.
	Present(p PickerController, animated bool) error
}

// Source selects what a picker shows.
type Source int

const (
	SourceCamera Source = iota
	SourcePhotoLibrary
)

func (s Source) String() string {
	if s == SourceCamera {
		return "camera"
	}
	return "photoLibrary"
}

// PickerController is the native picker for one session.
type PickerController interface {
	SetSource(s Source)
	SetAllowsEditing(allow bool)
	// IsPresented reports whether the picker is on screen.
	IsPresented() bool
	// IsTransitioning reports whether a present or dismiss animation is running.
	IsTransitioning() bool
	Dismiss(animated bool)
	// OnFinish delivers the raw info payload of each completed pick.
	OnFinish(handler func(payload any)) (unsubscribe func())
	// OnCancel delivers the user's cancel.
	OnCancel(handler func()) (unsubscribe func())
}

// PickerFactory constructs a fresh, unpresented picker.
type PickerFactory func() (PickerController, error)

// InfoKey names an entry of a finish payload.
type InfoKey string

const (
	InfoOriginalImage InfoKey = platform.PickerInfoOriginalImage
	InfoEditedImage   InfoKey = platform.PickerInfoEditedImage
	InfoMediaType     InfoKey = platform.PickerInfoMediaType
	InfoImageURL      InfoKey = platform.PickerInfoImageURL
)

// Info is the payload of a finish event.
type Info map[InfoKey]any

// Dispatcher schedules fn on the UI context and reports whether it did.
type Dispatcher func(fn func()) bool

// SettingsOpener navigates to the app's page in the OS settings.
type SettingsOpener func(ctx context.Context) error
