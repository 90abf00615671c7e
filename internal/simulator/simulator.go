// Package simulator is a scripted native host. It answers the bridge channels
// the way a device would and plays back a fixed set of user taps, so the
// picker flow can run end to end without a phone.
package simulator

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-drift/imagepicker/pkg/errors"
	"github.com/go-drift/imagepicker/pkg/platform"
)

// Picker results a Script can play back.
const (
	ResultFinish = "finish"
	ResultCancel = "cancel"
	ResultNone   = "none"
)

// Script describes the device and the user.
type Script struct {
	// Version is reported on drift/bridge.
	Version string
	// Permissions holds the current status per permission name ("camera",
	// "photos") using the bridge's status strings.
	Permissions map[string]string
	// Answers is the status a not_determined permission moves to when the
	// OS prompt is shown.
	Answers map[string]string
	// Usage holds the declared purpose strings.
	Usage map[string]string
	// Detached makes every view report that it left the window.
	Detached bool
	// SheetChoice is the action tapped on action sheets and PromptChoice the
	// one tapped on alerts. An empty or unknown title leaves the dialog open.
	SheetChoice  string
	PromptChoice string
	// Result is what the user does in the picker.
	Result string
	// Media is the image entry sent with a finish event, under both the
	// original and the edited key.
	Media map[string]any
}

// Call is one method invocation received from Go.
type Call struct {
	Channel string
	Method  string
	Args    map[string]any
}

// Bridge implements platform.NativeBridge for a Script.
type Bridge struct {
	outMu sync.Mutex
	out   io.Writer

	mu       sync.Mutex
	script   Script
	calls    []Call
	streams  map[string]bool
	settings int
	pending  sync.WaitGroup
}

// New returns a Bridge that narrates every call to out (which may be nil).
func New(script Script, out io.Writer) *Bridge {
	if script.Version == "" {
		script.Version = platform.ProtocolVersion
	}
	if script.Result == "" {
		script.Result = ResultFinish
	}
	script.Permissions = copyMap(script.Permissions)
	return &Bridge{out: out, script: script, streams: map[string]bool{}}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (b *Bridge) logf(format string, args ...any) {
	if b.out == nil {
		return
	}
	b.outMu.Lock()
	fmt.Fprintf(b.out, format+"\n", args...)
	b.outMu.Unlock()
}

// InvokeMethod answers one call from Go.
func (b *Bridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := platform.DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	m, _ := decoded.(map[string]any)

	b.mu.Lock()
	b.calls = append(b.calls, Call{Channel: channel, Method: method, Args: m})
	b.mu.Unlock()

	result, err := b.handle(channel, method, m)
	if err != nil {
		return nil, err
	}
	return platform.DefaultCodec.Encode(result)
}

func (b *Bridge) handle(channel, method string, args map[string]any) (any, error) {
	switch channel {
	case "drift/bridge":
		if method == "version" {
			return map[string]any{"version": b.script.Version}, nil
		}
	case "drift/permissions":
		return b.permissions(method, args)
	case "drift/presentation":
		if method == "isAttached" {
			return map[string]any{"attached": !b.script.Detached}, nil
		}
	case "drift/dialogs":
		return b.dialogs(method, args)
	case "drift/image_picker":
		return b.picker(method, args)
	}
	return nil, platform.NewChannelError("unimplemented", fmt.Sprintf("%s.%s", channel, method))
}

func (b *Bridge) permissions(method string, args map[string]any) (any, error) {
	name, _ := args["permission"].(string)
	switch method {
	case "check":
		return map[string]any{"status": b.status(name)}, nil
	case "request":
		b.mu.Lock()
		status := b.script.Permissions[name]
		if status == "" || status == string(platform.PermissionNotDetermined) {
			status = b.script.Answers[name]
			if status == "" {
				status = string(platform.PermissionDenied)
			}
			b.script.Permissions[name] = status
		}
		b.mu.Unlock()
		b.logf("os prompt %s: %s", name, status)
		b.emit("drift/permissions/changes", map[string]any{"permission": name, "status": status})
		return nil, nil
	case "usageDescription":
		return map[string]any{"description": b.script.Usage[name]}, nil
	case "openSettings":
		b.mu.Lock()
		b.settings++
		b.mu.Unlock()
		b.logf("open settings")
		return nil, nil
	}
	return nil, platform.NewChannelError("unimplemented", "drift/permissions."+method)
}

func (b *Bridge) status(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s := b.script.Permissions[name]; s != "" {
		return s
	}
	return string(platform.PermissionNotDetermined)
}

func (b *Bridge) dialogs(method string, args map[string]any) (any, error) {
	id, _ := args["dialog"].(string)
	switch method {
	case "show":
		style, _ := args["style"].(string)
		title, _ := args["title"].(string)
		choice := b.script.PromptChoice
		if style == string(platform.DialogStyleActionSheet) {
			choice = b.script.SheetChoice
		}
		actions, _ := args["actions"].([]any)
		var titles []string
		tapped := -1
		for i, raw := range actions {
			a, _ := raw.(map[string]any)
			t, _ := a["title"].(string)
			titles = append(titles, t)
			if tapped < 0 && choice != "" && t == choice {
				tapped = i
			}
		}
		b.logf("show %s %q %v", style, title, titles)
		if tapped >= 0 {
			b.logf("tap %q", choice)
			b.emit("drift/dialogs/events", map[string]any{"dialog": id, "action": tapped})
		}
		return nil, nil
	case "dismiss":
		b.logf("dismiss dialog")
		return nil, nil
	}
	return nil, platform.NewChannelError("unimplemented", "drift/dialogs."+method)
}

func (b *Bridge) picker(method string, args map[string]any) (any, error) {
	session, _ := args["session"].(string)
	switch method {
	case "present":
		source, _ := args["sourceType"].(string)
		b.logf("present picker source=%s editing=%v", source, args["allowsEditing"])
		events := []map[string]any{{"session": session, "event": "presented"}}
		switch b.script.Result {
		case ResultFinish:
			b.logf("user picks an image")
			events = append(events, map[string]any{
				"session": session,
				"event":   "finish",
				"info": map[string]any{
					platform.PickerInfoMediaType:     "public.image",
					platform.PickerInfoOriginalImage: b.script.Media,
					platform.PickerInfoEditedImage:   b.script.Media,
				},
			})
		case ResultCancel:
			b.logf("user cancels the picker")
			events = append(events, map[string]any{"session": session, "event": "cancel"})
		}
		b.emit("drift/image_picker/events", events...)
		return nil, nil
	case "dismiss":
		b.logf("dismiss picker")
		b.emit("drift/image_picker/events", map[string]any{"session": session, "event": "dismissed"})
		return nil, nil
	}
	return nil, platform.NewChannelError("unimplemented", "drift/image_picker."+method)
}

// emit delivers events in order from a separate goroutine, the way native
// callbacks arrive after the call that caused them has returned.
func (b *Bridge) emit(channel string, events ...map[string]any) {
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		for _, ev := range events {
			payload, err := platform.DefaultCodec.Encode(ev)
			if err == nil {
				err = platform.HandleEvent(channel, payload)
			}
			if err != nil {
				errors.Report(&errors.Error{
					Op:      "simulator.emit",
					Kind:    errors.KindPlatform,
					Channel: channel,
					Err:     err,
				})
			}
		}
	}()
}

// StartEventStream records that Go listens on channel.
func (b *Bridge) StartEventStream(channel string) error {
	b.mu.Lock()
	b.streams[channel] = true
	b.mu.Unlock()
	return nil
}

// StopEventStream records that Go stopped listening on channel.
func (b *Bridge) StopEventStream(channel string) error {
	b.mu.Lock()
	delete(b.streams, channel)
	b.mu.Unlock()
	return nil
}

// Listening reports whether Go currently listens on channel.
func (b *Bridge) Listening(channel string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams[channel]
}

// Calls returns the recorded calls to channel.method.
func (b *Bridge) Calls(channel, method string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Channel == channel && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// SettingsOpened returns how often the settings app was opened.
func (b *Bridge) SettingsOpened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// Wait blocks until every emitted event has been handed to Go.
func (b *Bridge) Wait() {
	b.pending.Wait()
}
