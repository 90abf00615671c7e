package imagepicker

import (
	"context"
	"sync/atomic"
)

// uiContext funnels work onto the single UI-owning execution context.
type uiContext struct {
	dispatch Dispatcher
}

const (
	taskPending int32 = iota
	taskRunning
	taskAbandoned
)

// run executes fn on the UI context and waits for it to return. If ctx ends
// before fn starts, fn is skipped and ctx's error returned; this also covers
// a dispatcher that accepts the task and never runs it. Once fn has started,
// run waits for it. fn must not block.
func (u uiContext) run(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var state atomic.Int32
	done := make(chan struct{})
	task := func() {
		defer close(done)
		if ctx.Err() != nil || !state.CompareAndSwap(taskPending, taskRunning) {
			return
		}
		fn()
	}
	u.post(task)

	select {
	case <-done:
	case <-ctx.Done():
		if state.CompareAndSwap(taskPending, taskAbandoned) {
			return ctx.Err()
		}
		<-done
	}
	if state.Load() != taskRunning {
		return ctx.Err()
	}
	return nil
}

// post schedules fn on the UI context without waiting. Without a registered
// dispatcher fn runs inline.
func (u uiContext) post(fn func()) {
	if u.dispatch == nil || !u.dispatch(fn) {
		fn()
	}
}
