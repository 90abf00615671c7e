package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Op:   "imagepicker.extract",
		Kind: KindParsing,
		Err:  &ParseError{Channel: "drift/image_picker/events", DataType: "Info", Got: "invalid"},
	}
	got := err.Error()
	if !strings.HasPrefix(got, "imagepicker.extract [parsing]: ") {
		t.Errorf("Error() = %q, want op and kind prefix", got)
	}
}

func TestErrorWithChannel(t *testing.T) {
	err := &Error{
		Op:      "platform.startEventStream",
		Kind:    KindPlatform,
		Channel: "drift/dialogs/events",
		Err:     stderrors.New("bridge down"),
	}
	want := "channel=drift/dialogs/events"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("cause")
	err := &Error{Op: "op", Err: cause}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindParsing, "parsing"},
		{KindPermission, "permission"},
		{KindPresentation, "presentation"},
		{KindPanic, "panic"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom"}
	if got, want := err.Error(), "panic: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "platform.dialogAction"
	if got, want := err.Error(), "panic in platform.dialogAction: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *Error
	old := DefaultHandler
	SetHandler(&testHandler{onError: func(err *Error) { captured = err }})
	defer SetHandler(old)

	Report(&Error{Op: "test.op", Kind: KindPermission, Err: stderrors.New("denied")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	old := DefaultHandler
	SetHandler(&testHandler{onError: func(*Error) { called = true }})
	defer SetHandler(old)

	Report(nil)
	if called {
		t.Error("Report(nil) should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	old := DefaultHandler
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(old)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if captured.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestSetHandlerNil(t *testing.T) {
	old := DefaultHandler
	defer SetHandler(old)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}
	h.HandleError(&Error{Op: "imagepicker.dismiss", Kind: KindPresentation, Err: stderrors.New("still transitioning")})
	out := buf.String()
	for _, want := range []string{"ERR", "imagepicker error", `error="still transitioning"`, "op=imagepicker.dismiss"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
	if strings.Contains(out, "kind=") {
		t.Errorf("non-verbose output %q should not carry the kind", out)
	}

	buf.Reset()
	h.Verbose = true
	h.HandleError(&Error{
		Op:         "platform.HandleEvent",
		Kind:       KindPlatform,
		Channel:    "drift/image_picker/events",
		Err:        stderrors.New("not registered"),
		StackTrace: "frame",
		Timestamp:  time.Now(),
	})
	out = buf.String()
	for _, want := range []string{"kind=platform", "channel=drift/image_picker/events", "Stack trace:\nframe"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output %q should contain %q", out, want)
		}
	}

	buf.Reset()
	h.HandlePanic(&PanicError{Op: "op", Value: 1})
	out = buf.String()
	for _, want := range []string{"imagepicker panic", "op=op", "value=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("panic output %q should contain %q", out, want)
		}
	}
}

type testHandler struct {
	onError func(*Error)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *Error) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
