package imagepicker

import (
	"context"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// Choice is the user's answer to the source action sheet.
type Choice int

const (
	ChoiceCancel Choice = iota
	ChoiceCamera
	ChoiceLibrary
	ChoiceDelete
)

func (c Choice) String() string {
	switch c {
	case ChoiceCamera:
		return "camera"
	case ChoiceLibrary:
		return "library"
	case ChoiceDelete:
		return "delete"
	default:
		return "cancel"
	}
}

// Selector asks the user where the image should come from.
type Selector struct {
	gate   *Gate
	config func() Config
	ui     uiContext
}

// Choose presents the action sheet and waits for the user. Only available
// capabilities are offered, delete only when opts.AllowDelete is set, and
// cancel always. With neither capability available it returns ChoiceCancel
// without showing anything. An error is returned only when ctx ends, after
// the sheet has been dismissed.
func (s *Selector) Choose(ctx context.Context, surface Surface, opts Options) (Choice, error) {
	camera := s.gate.Available(Camera)
	library := s.gate.Available(PhotoLibrary)
	if !camera && !library {
		return ChoiceCancel, nil
	}

	choices := make(chan Choice, 1)
	choose := func(c Choice) func() {
		return func() {
			select {
			case choices <- c:
			default:
			}
		}
	}

	cfg := s.config()
	sheet := Alert{Title: opts.Title, Message: opts.Message, Style: AlertStyleActionSheet}
	if camera {
		sheet.Actions = append(sheet.Actions, AlertAction{Title: cfg.CameraTitle, Handler: choose(ChoiceCamera)})
	}
	if library {
		sheet.Actions = append(sheet.Actions, AlertAction{Title: cfg.PhotoLibraryTitle, Handler: choose(ChoiceLibrary)})
	}
	if opts.AllowDelete {
		sheet.Actions = append(sheet.Actions, AlertAction{Title: cfg.DeleteTitle, Style: ActionDestructive, Handler: choose(ChoiceDelete)})
	}
	sheet.Actions = append(sheet.Actions, AlertAction{Title: cfg.CancelTitle, Style: ActionCancel, Handler: choose(ChoiceCancel)})

	var modal Modal
	err := s.ui.run(ctx, func() {
		if surface == nil || !surface.Attached() {
			choose(ChoiceCancel)()
			return
		}
		m, err := surface.ShowAlert(sheet)
		if err != nil {
			errors.Report(&errors.Error{
				Op:   "imagepicker.chooseSource",
				Kind: errors.KindPresentation,
				Err:  err,
			})
			choose(ChoiceCancel)()
			return
		}
		modal = m
	})
	if err != nil {
		return ChoiceCancel, err
	}

	select {
	case c := <-choices:
		return c, nil
	case <-ctx.Done():
		if modal != nil {
			s.ui.post(modal.Dismiss)
		}
		return ChoiceCancel, ctx.Err()
	}
}
