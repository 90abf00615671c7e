package platform

import (
	stderrors "errors"
	"sync/atomic"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// errSkipEvent is returned by a stream parser for events that belong to
// another listener (a different dialog or picker session).
var errSkipEvent = stderrors.New("platform: event skipped")

// Stream provides a multi-subscriber broadcast pattern for platform events.
// Unlike raw channels, multiple listeners can receive all events independently.
// Handlers run on the UI thread when a dispatcher is registered.
type Stream[T any] struct {
	eventChannel *EventChannel
	channelName  string
	parser       func(data any) (T, error)
}

// Listen subscribes to events and returns an unsubscribe function.
// Parse errors are reported via errors.Report.
func (s *Stream[T]) Listen(handler func(T)) (unsubscribe func()) {
	return s.ListenWithErrors(handler, nil)
}

// ListenWithErrors is Listen with an additional handler for parse failures.
// Parse failures are passed to onError instead of being reported when it is
// non-nil.
func (s *Stream[T]) ListenWithErrors(handler func(T), onError func(error)) (unsubscribe func()) {
	var stopped atomic.Bool
	sub := s.eventChannel.Listen(EventHandler{
		OnEvent: func(data any) {
			val, err := s.parser(data)
			if stderrors.Is(err, errSkipEvent) {
				return
			}
			if err != nil {
				if onError != nil {
					dispatchOrRun(func() {
						if !stopped.Load() {
							onError(err)
						}
					})
					return
				}
				errors.Report(&errors.Error{
					Op:      "stream.parse",
					Kind:    errors.KindParsing,
					Channel: s.channelName,
					Err:     err,
				})
				return
			}
			dispatchOrRun(func() {
				if !stopped.Load() {
					handler(val)
				}
			})
		},
		OnError: func(err error) {
			errors.Report(&errors.Error{
				Op:      "stream.error",
				Kind:    errors.KindPlatform,
				Channel: s.channelName,
				Err:     err,
			})
		},
	})
	return func() {
		stopped.Store(true)
		sub.Cancel()
	}
}

// NewStream creates a Stream wrapping an EventChannel.
// The parser converts raw event data to the typed value, returning error on parse failure.
func NewStream[T any](name string, channel *EventChannel, parser func(data any) (T, error)) *Stream[T] {
	return &Stream[T]{
		eventChannel: channel,
		channelName:  name,
		parser:       parser,
	}
}
