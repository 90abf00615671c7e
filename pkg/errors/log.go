package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// LogHandler is a Handler that writes reports to stderr (or Out when set)
// as zerolog console lines.
type LogHandler struct {
	// Verbose adds the kind, timestamp and stack trace of each report.
	Verbose bool
	// Out overrides the destination. Nil means os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

func (h *LogHandler) logger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true}
	if !h.Verbose {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return zerolog.New(cw)
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	w := h.out()
	log := h.logger(w)
	ev := log.Error().Str("op", err.Op)
	if err.Channel != "" {
		ev = ev.Str("channel", err.Channel)
	}
	if h.Verbose {
		ev = ev.Stringer("kind", err.Kind).Time(zerolog.TimestampFieldName, err.Timestamp)
	}
	ev.Err(err.Err).Msg("imagepicker error")
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	log := h.logger(w)
	ev := log.WithLevel(zerolog.PanicLevel).Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose {
		ev = ev.Time(zerolog.TimestampFieldName, err.Timestamp)
	}
	ev.Msg("imagepicker panic")
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}
