package platform

import (
	"errors"
	"testing"
)

func TestShowDialogSendsActions(t *testing.T) {
	bridge := newRecordingBridge(t, nil)
	view := &ViewController{ID: "root"}

	h, err := ShowDialog(view, Dialog{
		Title: "Choose",
		Style: DialogStyleActionSheet,
		Actions: []DialogAction{
			{Title: "Camera"},
			{Title: "Cancel", Style: DialogActionCancel},
		},
	})
	if err != nil {
		t.Fatalf("ShowDialog: %v", err)
	}

	calls := bridge.callsTo(dialogsChannelName, "show")
	if len(calls) != 1 {
		t.Fatalf("show invoked %d times, want 1", len(calls))
	}
	args := calls[0].args
	if parseString(args["dialog"]) != h.ID() {
		t.Errorf("dialog id = %v, want %s", args["dialog"], h.ID())
	}
	if parseString(args["style"]) != "actionSheet" || parseString(args["view"]) != "root" {
		t.Errorf("unexpected args %v", args)
	}
	actions, ok := args["actions"].([]any)
	if !ok || len(actions) != 2 {
		t.Fatalf("actions = %v", args["actions"])
	}
	if style := parseString(parseMap(actions[0])["style"]); style != "default" {
		t.Errorf("first action style = %q, want default", style)
	}
}

func TestShowDialogFiresOneAction(t *testing.T) {
	newRecordingBridge(t, nil)
	var fired []string
	h, err := ShowDialog(&ViewController{ID: "root"}, Dialog{
		Actions: []DialogAction{
			{Title: "Cancel", OnSelect: func() { fired = append(fired, "cancel") }},
			{Title: "Open Settings", OnSelect: func() { fired = append(fired, "settings") }},
		},
	})
	if err != nil {
		t.Fatalf("ShowDialog: %v", err)
	}

	_ = SendTestEvent(dialogEventsName, map[string]any{"dialog": "someone-else", "action": 0})
	_ = SendTestEvent(dialogEventsName, map[string]any{"dialog": h.ID(), "action": 1})
	_ = SendTestEvent(dialogEventsName, map[string]any{"dialog": h.ID(), "action": 0})

	if len(fired) != 1 || fired[0] != "settings" {
		t.Errorf("fired = %v, want [settings]", fired)
	}
}

func TestDialogDismiss(t *testing.T) {
	bridge := newRecordingBridge(t, nil)
	fired := false
	h, err := ShowDialog(&ViewController{ID: "root"}, Dialog{
		Actions: []DialogAction{{Title: "Cancel", OnSelect: func() { fired = true }}},
	})
	if err != nil {
		t.Fatalf("ShowDialog: %v", err)
	}

	h.Dismiss()
	h.Dismiss()
	_ = SendTestEvent(dialogEventsName, map[string]any{"dialog": h.ID(), "action": 0})

	if fired {
		t.Error("action fired after dismiss")
	}
	if n := len(bridge.callsTo(dialogsChannelName, "dismiss")); n != 1 {
		t.Errorf("dismiss invoked %d times, want 1", n)
	}
}

func TestShowDialogInvalid(t *testing.T) {
	newRecordingBridge(t, nil)
	if _, err := ShowDialog(nil, Dialog{Actions: []DialogAction{{Title: "x"}}}); !errors.Is(err, ErrNotAttached) {
		t.Errorf("nil view: err = %v, want ErrNotAttached", err)
	}
	if _, err := ShowDialog(&ViewController{ID: "root"}, Dialog{}); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("no actions: err = %v, want ErrInvalidArguments", err)
	}
}

func TestShowDialogBridgeError(t *testing.T) {
	newRecordingBridge(t, func(channel, method string, args map[string]any) (any, error) {
		return nil, NewChannelError("no_window", "no key window")
	})
	_, err := ShowDialog(&ViewController{ID: "root"}, Dialog{Actions: []DialogAction{{Title: "x"}}})
	var chErr *ChannelError
	if !errors.As(err, &chErr) || chErr.Code != "no_window" {
		t.Errorf("err = %v, want ChannelError no_window", err)
	}
}

func TestViewControllerIsAttached(t *testing.T) {
	newRecordingBridge(t, func(channel, method string, args map[string]any) (any, error) {
		return map[string]any{"attached": parseString(args["view"]) == "root"}, nil
	})
	if !(&ViewController{ID: "root"}).IsAttached() {
		t.Error("root should be attached")
	}
	if (&ViewController{ID: "gone"}).IsAttached() {
		t.Error("gone should not be attached")
	}
	var nilView *ViewController
	if nilView.IsAttached() {
		t.Error("nil view should not be attached")
	}
}
