package imagepicker

import (
	"context"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// SettingsPrompt offers to open the OS settings when a capability is
// permanently unavailable.
type SettingsPrompt struct {
	config func() Config
	auth   Authorizer
	open   SettingsOpener
}

// Show presents the prompt on surface. With a nil capability the prompt has
// a generic title and no message. onDone runs once the user picks either
// action; "open settings" starts the navigation first and does not wait for
// it. Show must be called on the UI context.
func (p *SettingsPrompt) Show(surface Surface, capability *Capability, onDone func()) (Modal, error) {
	cfg := p.config()
	title, message := cfg.OpenSettingsTitle, ""
	if capability != nil {
		title, message = cfg.errorText(*capability)
		if message == "" {
			message = p.auth.UsageDescription(*capability)
		}
	}

	done := func() {
		if onDone != nil {
			onDone()
		}
	}
	return surface.ShowAlert(Alert{
		Title:   title,
		Message: message,
		Style:   AlertStyleAlert,
		Actions: []AlertAction{
			{Title: cfg.CancelTitle, Style: ActionCancel, Handler: done},
			{Title: cfg.OpenSettingsTitle, Style: ActionDefault, Handler: func() {
				go p.openSettings()
				done()
			}},
		},
	})
}

func (p *SettingsPrompt) openSettings() {
	if p.open == nil {
		return
	}
	if err := p.open(context.Background()); err != nil {
		errors.Report(&errors.Error{
			Op:   "imagepicker.openSettings",
			Kind: errors.KindPlatform,
			Err:  err,
		})
	}
}
