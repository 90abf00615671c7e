package imagepicker

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// Dismissal of a picker that is still animating is retried about once a
// frame. Past dismissTimeout the picker is dismissed regardless.
const (
	dismissRetryInterval = 16 * time.Millisecond
	dismissTimeout       = 5 * time.Second
)

// Adapter turns the native picker's one-shot delegate callbacks into a
// Session with finish and cancel streams.
type Adapter struct {
	newPicker PickerFactory
	ui        uiContext
	animated  bool
	// retryInterval spaces dismiss retries; zero re-posts immediately.
	retryInterval time.Duration
	// dismissTimeout forces the dismiss once exceeded; zero waits for as
	// long as the picker keeps animating.
	dismissTimeout time.Duration
}

type sessionState int

const (
	sessionIdle sessionState = iota
	sessionPresented
	sessionDisposed
)

// Session is one presented picker. Disposing it from any state leaves no
// picker on screen and no adapter listener bound.
type Session struct {
	picker         PickerController
	ui             uiContext
	animated       bool
	retryInterval  time.Duration
	dismissTimeout time.Duration

	mu           sync.Mutex
	state        sessionState
	unbindCancel func()
}

// Present constructs a picker, applies configure and presents it on parent.
// A user cancel disposes the session. A configure failure is returned as
// *ConfigurationError with nothing shown. A nil or detached parent, or a
// cancel that lands while presenting, yields (nil, nil). Present must be
// called on the UI context.
func (a *Adapter) Present(parent Surface, configure func(PickerController) error) (*Session, error) {
	picker, err := a.newPicker()
	if err != nil {
		return nil, err
	}
	s := &Session{
		picker:         picker,
		ui:             a.ui,
		animated:       a.animated,
		retryInterval:  a.retryInterval,
		dismissTimeout: a.dismissTimeout,
	}
	unbind := picker.OnCancel(s.Dispose)
	s.mu.Lock()
	s.unbindCancel = unbind
	s.mu.Unlock()

	if configure != nil {
		if err := configure(picker); err != nil {
			s.Dispose()
			return nil, &ConfigurationError{Err: err}
		}
	}
	if parent == nil || !parent.Attached() {
		s.Dispose()
		return nil, nil
	}
	if err := parent.Present(picker, a.animated); err != nil {
		s.Dispose()
		return nil, err
	}

	s.mu.Lock()
	if s.state == sessionIdle {
		s.state = sessionPresented
	}
	disposed := s.state == sessionDisposed
	s.mu.Unlock()
	if disposed {
		// Canceled while presenting: nothing is left to pick from.
		s.dismiss()
		return nil, nil
	}
	return s, nil
}

// Picker returns the underlying controller.
func (s *Session) Picker() PickerController {
	return s.picker
}

// Dispose releases the cancel listener and, if the picker was presented,
// dismisses it. Safe to call repeatedly and from handlers.
func (s *Session) Dispose() {
	s.mu.Lock()
	prev := s.state
	s.state = sessionDisposed
	unbind := s.unbindCancel
	s.unbindCancel = nil
	s.mu.Unlock()

	if unbind != nil {
		unbind()
	}
	if prev == sessionPresented {
		s.dismiss()
	}
}

// dismiss removes the picker once it has settled. While it is mid-transition
// the check is re-posted to the UI context until the transition ends.
func (s *Session) dismiss() {
	var deadline time.Time
	if s.dismissTimeout > 0 {
		deadline = time.Now().Add(s.dismissTimeout)
	}
	s.dismissWhenSettled(deadline)
}

func (s *Session) dismissWhenSettled(deadline time.Time) {
	if s.picker.IsTransitioning() {
		if deadline.IsZero() || time.Now().Before(deadline) {
			retry := func() { s.ui.post(func() { s.dismissWhenSettled(deadline) }) }
			if s.retryInterval > 0 {
				time.AfterFunc(s.retryInterval, retry)
			} else {
				retry()
			}
			return
		}
		errors.Report(&errors.Error{
			Op:   "imagepicker.dismiss",
			Kind: errors.KindPresentation,
			Err:  fmt.Errorf("picker still transitioning after %s, dismissing anyway", s.dismissTimeout),
		})
		s.picker.Dismiss(s.animated)
		return
	}
	if s.picker.IsPresented() {
		s.picker.Dismiss(s.animated)
	}
}

// DidFinish subscribes to completed picks. A payload that is not an info map
// arrives as a *CastError.
func (s *Session) DidFinish(handler func(Info, error)) (unsubscribe func()) {
	return s.picker.OnFinish(func(payload any) {
		info, err := infoFromPayload(payload)
		handler(info, err)
	})
}

// DidCancel subscribes to the user's cancel.
func (s *Session) DidCancel(handler func()) (unsubscribe func()) {
	return s.picker.OnCancel(handler)
}

func infoFromPayload(payload any) (Info, error) {
	switch p := payload.(type) {
	case Info:
		return p, nil
	case map[string]any:
		info := make(Info, len(p))
		for k, v := range p {
			info[InfoKey(k)] = v
		}
		return info, nil
	default:
		return nil, &CastError{Got: payload}
	}
}
