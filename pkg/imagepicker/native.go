package imagepicker

import (
	"context"
	"fmt"

	"github.com/go-drift/imagepicker/pkg/errors"
	"github.com/go-drift/imagepicker/pkg/platform"
)

// NativeAuthorizer reads permissions through the platform bridge.
type NativeAuthorizer struct {
	Camera       platform.Permission
	PhotoLibrary platform.Permission
}

// NewNativeAuthorizer uses the platform camera and photos permissions.
func NewNativeAuthorizer() *NativeAuthorizer {
	return &NativeAuthorizer{
		Camera:       platform.Camera.Permission,
		PhotoLibrary: platform.Photos.Permission,
	}
}

func (a *NativeAuthorizer) permission(c Capability) platform.Permission {
	if c == Camera {
		return a.Camera
	}
	return a.PhotoLibrary
}

// Status returns the bridge status of c. A bridge failure is reported and
// read as not determined.
func (a *NativeAuthorizer) Status(c Capability) AuthorizationStatus {
	result, err := a.permission(c).Status(context.Background())
	if err != nil {
		errors.Report(&errors.Error{
			Op:   "imagepicker.status",
			Kind: errors.KindPermission,
			Err:  fmt.Errorf("%s: %w", c, err),
		})
		return StatusNotDetermined
	}
	return statusFromPlatform(result)
}

// Request shows the OS prompt for c.
func (a *NativeAuthorizer) Request(ctx context.Context, c Capability) (AuthorizationStatus, error) {
	result, err := a.permission(c).Request(ctx)
	if err != nil {
		return StatusNotDetermined, err
	}
	return statusFromPlatform(result), nil
}

// UsageDescription returns the purpose string declared for c.
func (a *NativeAuthorizer) UsageDescription(c Capability) string {
	return a.permission(c).UsageDescription(context.Background())
}

// NativeSurface presents through a native view controller.
type NativeSurface struct {
	View *platform.ViewController
}

// NewNativeSurface wraps the view with the given native id.
func NewNativeSurface(viewID string) *NativeSurface {
	return &NativeSurface{View: &platform.ViewController{ID: viewID}}
}

func (s *NativeSurface) Attached() bool {
	return s.View.IsAttached()
}

func (s *NativeSurface) ShowAlert(a Alert) (Modal, error) {
	d := platform.Dialog{
		Title:   a.Title,
		Message: a.Message,
		Style:   platform.DialogStyleAlert,
		Actions: make([]platform.DialogAction, len(a.Actions)),
	}
	if a.Style == AlertStyleActionSheet {
		d.Style = platform.DialogStyleActionSheet
	}
	for i, action := range a.Actions {
		d.Actions[i] = platform.DialogAction{
			Title:    action.Title,
			Style:    dialogActionStyle(action.Style),
			OnSelect: action.Handler,
		}
	}
	return platform.ShowDialog(s.View, d)
}

func dialogActionStyle(s ActionStyle) platform.DialogActionStyle {
	switch s {
	case ActionCancel:
		return platform.DialogActionCancel
	case ActionDestructive:
		return platform.DialogActionDestructive
	default:
		return platform.DialogActionDefault
	}
}

// Present shows a picker created by NewNativePicker.
func (s *NativeSurface) Present(p PickerController, animated bool) error {
	np, ok := p.(*NativePicker)
	if !ok {
		return fmt.Errorf("%w: %T", platform.ErrUnsupportedBridge, p)
	}
	return np.controller.Present(s.View, animated)
}

// NativePicker adapts platform.ImagePickerController to PickerController.
type NativePicker struct {
	controller *platform.ImagePickerController
}

// NewNativePicker is the PickerFactory backed by the platform bridge.
func NewNativePicker() (PickerController, error) {
	return &NativePicker{controller: platform.NewImagePickerController()}, nil
}

// Controller exposes the platform controller.
func (p *NativePicker) Controller() *platform.ImagePickerController {
	return p.controller
}

func (p *NativePicker) SetSource(s Source) {
	if s == SourceCamera {
		p.controller.SetSourceType(platform.ImageSourceCamera)
		return
	}
	p.controller.SetSourceType(platform.ImageSourcePhotoLibrary)
}

func (p *NativePicker) SetAllowsEditing(allow bool) { p.controller.SetAllowsEditing(allow) }
func (p *NativePicker) IsPresented() bool            { return p.controller.IsPresented() }
func (p *NativePicker) IsTransitioning() bool        { return p.controller.IsTransitioning() }
func (p *NativePicker) Dismiss(animated bool)        { p.controller.Dismiss(animated) }

func (p *NativePicker) OnFinish(handler func(payload any)) func() {
	return p.controller.OnFinish(handler)
}

func (p *NativePicker) OnCancel(handler func()) func() {
	return p.controller.OnCancel(handler)
}

// NewNative builds a Picker wired to the platform bridge.
func NewNative(opts ...Option) *Picker {
	return New(NewNativeAuthorizer(), NewNativePicker, opts...)
}
