package imagepicker

import (
	"context"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// Gate decides whether a capability may be used, prompting the OS or the
// user where the status calls for it. It only observes statuses; changing
// one is always the OS's doing.
type Gate struct {
	auth   Authorizer
	prompt *SettingsPrompt
	config func() Config
	ui     uiContext
}

// Available reports whether c is authorized or limited right now.
func (g *Gate) Available(c Capability) bool {
	return g.auth.Status(c).Available()
}

// Request resolves c's authorization:
//
//   - authorized or limited: nil.
//   - not determined: the OS prompt is shown once; a grant is nil, a denial
//     is nil only when canSkip is set.
//   - denied or restricted: the settings prompt is shown and, once the user
//     leaves it, the result is nil when canSkip is set or, for the photo
//     library, when the camera is available.
//
// Otherwise the result is c's *CapabilityError. When ctx ends first its
// error is returned and any prompt on screen is dismissed.
func (g *Gate) Request(ctx context.Context, surface Surface, c Capability, canSkip bool) error {
	cameraAvailable := c == PhotoLibrary && g.Available(Camera)

	switch g.auth.Status(c) {
	case StatusAuthorized, StatusLimited:
		return nil

	case StatusNotDetermined:
		result, err := g.auth.Request(ctx, c)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			errors.Report(&errors.Error{
				Op:   "imagepicker.requestAuthorization",
				Kind: errors.KindPermission,
				Err:  err,
			})
		} else if result.Available() {
			return nil
		}
		if canSkip {
			return nil
		}
		return g.capabilityError(c)

	default:
		if err := g.showSettings(ctx, surface, c); err != nil {
			return err
		}
		if canSkip || cameraAvailable {
			return nil
		}
		return g.capabilityError(c)
	}
}

// RequestCameraAndPhoto runs Request for the camera and then the photo
// library, both skippable. It fails only when ctx ends; unavailable
// capabilities are left for the selector to hide.
func (g *Gate) RequestCameraAndPhoto(ctx context.Context, surface Surface) error {
	for _, c := range []Capability{Camera, PhotoLibrary} {
		if err := g.Request(ctx, surface, c, true); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errors.Report(&errors.Error{
				Op:   "imagepicker.requestCameraAndPhoto",
				Kind: errors.KindPermission,
				Err:  err,
			})
		}
	}
	return nil
}

// showSettings presents the settings prompt for c and waits until the user
// leaves it.
func (g *Gate) showSettings(ctx context.Context, surface Surface, c Capability) error {
	done := make(chan struct{}, 1)
	signal := func() {
		select {
		case done <- struct{}{}:
		default:
		}
	}

	var modal Modal
	err := g.ui.run(ctx, func() {
		if surface == nil || !surface.Attached() {
			signal()
			return
		}
		m, err := g.prompt.Show(surface, &c, signal)
		if err != nil {
			errors.Report(&errors.Error{
				Op:   "imagepicker.settingsPrompt",
				Kind: errors.KindPresentation,
				Err:  err,
			})
			signal()
			return
		}
		modal = m
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if modal != nil {
			g.ui.post(modal.Dismiss)
		}
		return ctx.Err()
	}
}

func (g *Gate) capabilityError(c Capability) *CapabilityError {
	title, message := g.config().errorText(c)
	if message == "" {
		message = g.auth.UsageDescription(c)
	}
	return &CapabilityError{Capability: c, Title: title, Message: message}
}
