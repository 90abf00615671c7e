package imagepicker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIRunWaitsForTask(t *testing.T) {
	loop := newUILoop(t)
	ui := uiContext{dispatch: loop.dispatch}

	ran := false
	require.NoError(t, ui.run(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestUIRunReturnsWhenTaskIsDropped(t *testing.T) {
	var dropped []func()
	ui := uiContext{dispatch: func(fn func()) bool {
		dropped = append(dropped, fn)
		return true
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errs := make(chan error, 1)
	go func() { errs <- ui.run(ctx, func() { t.Error("dropped task ran") }) }()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(eventually):
		t.Fatal("run still waiting on a task the dispatcher dropped")
	}

	// A late drain finds the task abandoned.
	require.Len(t, dropped, 1)
	dropped[0]()
}

func TestUIRunWaitsForStartedTask(t *testing.T) {
	loop := newUILoop(t)
	ui := uiContext{dispatch: loop.dispatch}
	ctx, cancel := context.WithCancel(context.Background())

	finished := false
	err := ui.run(ctx, func() {
		cancel()
		finished = true
	})
	assert.True(t, finished)
	assert.NoError(t, err, "a task that ran reports success even if ctx ended meanwhile")
}
