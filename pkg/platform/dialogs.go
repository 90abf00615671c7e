package platform

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// DialogStyle selects between a centered alert and a bottom action sheet.
type DialogStyle string

const (
	DialogStyleAlert       DialogStyle = "alert"
	DialogStyleActionSheet DialogStyle = "actionSheet"
)

// DialogActionStyle mirrors the native button styles.
type DialogActionStyle string

const (
	DialogActionDefault     DialogActionStyle = "default"
	DialogActionCancel      DialogActionStyle = "cancel"
	DialogActionDestructive DialogActionStyle = "destructive"
)

// DialogAction is one button of a dialog.
type DialogAction struct {
	Title string
	Style DialogActionStyle
	// OnSelect runs on the UI thread when the user taps the button.
	OnSelect func()
}

// Dialog describes a native modal dialog.
type Dialog struct {
	Title   string
	Message string
	Style   DialogStyle
	Actions []DialogAction
}

// DialogHandle is a shown dialog. At most one of its actions fires.
type DialogHandle struct {
	id       string
	unsub    func()
	finished atomic.Bool
}

// ID returns the identifier the dialog was shown with.
func (h *DialogHandle) ID() string {
	return h.id
}

// Dismiss removes the dialog without firing any action.
// Dismissing a dialog whose action already fired is a no-op.
func (h *DialogHandle) Dismiss() {
	if !h.finished.CompareAndSwap(false, true) {
		return
	}
	h.unsub()
	if _, err := getDialogsChannel().Invoke("dismiss", map[string]any{"dialog": h.id}); err != nil {
		errors.Report(&errors.Error{
			Op:      "dialogs.dismiss",
			Kind:    errors.KindPresentation,
			Channel: dialogsChannelName,
			Err:     err,
		})
	}
}

const (
	dialogsChannelName = "drift/dialogs"
	dialogEventsName   = "drift/dialogs/events"
)

var (
	dialogsOnce    sync.Once
	dialogsChannel *MethodChannel
	dialogEvents   *EventChannel
)

func getDialogsChannel() *MethodChannel {
	dialogsOnce.Do(func() {
		dialogsChannel = NewMethodChannel(dialogsChannelName)
		dialogEvents = NewEventChannel(dialogEventsName)
	})
	return dialogsChannel
}

type dialogSelection struct {
	dialog string
	action int
}

// ShowDialog presents d on view. The listener for the dialog's buttons is
// bound before the native call so a fast tap is never lost.
func ShowDialog(view *ViewController, d Dialog) (*DialogHandle, error) {
	if view == nil || view.ID == "" {
		return nil, ErrNotAttached
	}
	if len(d.Actions) == 0 {
		return nil, fmt.Errorf("%w: dialog without actions", ErrInvalidArguments)
	}
	style := d.Style
	if style == "" {
		style = DialogStyleAlert
	}

	channel := getDialogsChannel()
	h := &DialogHandle{id: uuid.NewString()}

	selections := NewStream(dialogEventsName, dialogEvents, func(data any) (dialogSelection, error) {
		m := parseMap(data)
		if m == nil {
			return dialogSelection{}, &errors.ParseError{Channel: dialogEventsName, DataType: "DialogSelection", Got: data}
		}
		sel := dialogSelection{dialog: parseString(m["dialog"])}
		if sel.dialog != h.id {
			return sel, errSkipEvent
		}
		action, ok := toInt64(m["action"])
		if !ok || action < 0 || int(action) >= len(d.Actions) {
			return sel, &errors.ParseError{Channel: dialogEventsName, DataType: "DialogSelection", Got: data}
		}
		sel.action = int(action)
		return sel, nil
	})
	h.unsub = selections.Listen(func(sel dialogSelection) {
		if !h.finished.CompareAndSwap(false, true) {
			return
		}
		h.unsub()
		if fn := d.Actions[sel.action].OnSelect; fn != nil {
			defer errors.Recover("dialogs.onSelect")
			fn()
		}
	})

	actions := make([]map[string]any, len(d.Actions))
	for i, a := range d.Actions {
		actionStyle := a.Style
		if actionStyle == "" {
			actionStyle = DialogActionDefault
		}
		actions[i] = map[string]any{
			"id":    i,
			"title": a.Title,
			"style": string(actionStyle),
		}
	}

	_, err := channel.Invoke("show", map[string]any{
		"dialog":  h.id,
		"view":    view.ID,
		"title":   d.Title,
		"message": d.Message,
		"style":   string(style),
		"actions": actions,
	})
	if err != nil {
		h.finished.Store(true)
		h.unsub()
		return nil, err
	}
	return h, nil
}
