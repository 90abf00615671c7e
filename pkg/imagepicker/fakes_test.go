package imagepicker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// uiLoop is a serial executor standing in for the UI thread.
type uiLoop struct {
	tasks chan func()
	done  chan struct{}
}

func newUILoop(t *testing.T) *uiLoop {
	t.Helper()
	l := &uiLoop{tasks: make(chan func(), 1024), done: make(chan struct{})}
	go func() {
		for {
			select {
			case fn := <-l.tasks:
				fn()
			case <-l.done:
				return
			}
		}
	}()
	t.Cleanup(func() { close(l.done) })
	return l
}

func (l *uiLoop) dispatch(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *uiLoop) post(fn func()) { l.dispatch(fn) }

// flush waits until everything queued so far has run.
func (l *uiLoop) flush() {
	done := make(chan struct{})
	l.post(func() { close(done) })
	<-done
}

type fakeAuthorizer struct {
	mu       sync.Mutex
	status   map[Capability]AuthorizationStatus
	answer   map[Capability]AuthorizationStatus
	requests map[Capability]int
	usage    map[Capability]string
	err      error
}

func newFakeAuthorizer(camera, library AuthorizationStatus) *fakeAuthorizer {
	return &fakeAuthorizer{
		status:   map[Capability]AuthorizationStatus{Camera: camera, PhotoLibrary: library},
		answer:   map[Capability]AuthorizationStatus{Camera: StatusAuthorized, PhotoLibrary: StatusAuthorized},
		requests: map[Capability]int{},
		usage: map[Capability]string{
			Camera:       "Take a profile photo",
			PhotoLibrary: "Choose a profile photo",
		},
	}
}

func (a *fakeAuthorizer) Status(c Capability) AuthorizationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status[c]
}

func (a *fakeAuthorizer) Request(ctx context.Context, c Capability) (AuthorizationStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests[c]++
	if a.err != nil {
		return StatusNotDetermined, a.err
	}
	a.status[c] = a.answer[c]
	return a.status[c], nil
}

func (a *fakeAuthorizer) UsageDescription(c Capability) string {
	return a.usage[c]
}

func (a *fakeAuthorizer) requestCount(c Capability) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[c]
}

type fakeModal struct {
	dismissed atomic.Bool
	fired     atomic.Bool
}

func (m *fakeModal) Dismiss() { m.dismissed.Store(true) }

// fakeSurface records everything shown on it. tap picks the title of the
// action to press for each alert; "" leaves the alert open.
type fakeSurface struct {
	loop *uiLoop

	mu         sync.Mutex
	detached   bool
	alerts     []Alert
	modals     []*fakeModal
	presented  []*fakePicker
	presentErr error
	tap        func(Alert) string
	onPresent  func(*fakePicker)
}

func (s *fakeSurface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.detached
}

func (s *fakeSurface) ShowAlert(a Alert) (Modal, error) {
	m := &fakeModal{}
	s.mu.Lock()
	s.alerts = append(s.alerts, a)
	s.modals = append(s.modals, m)
	tap := s.tap
	s.mu.Unlock()

	if tap == nil {
		return m, nil
	}
	title := tap(a)
	for _, action := range a.Actions {
		if title == "" || action.Title != title {
			continue
		}
		handler := action.Handler
		s.loop.post(func() {
			if m.dismissed.Load() || !m.fired.CompareAndSwap(false, true) {
				return
			}
			handler()
		})
		break
	}
	return m, nil
}

func (s *fakeSurface) Present(p PickerController, animated bool) error {
	s.mu.Lock()
	if s.presentErr != nil {
		err := s.presentErr
		s.mu.Unlock()
		return err
	}
	fp := p.(*fakePicker)
	s.presented = append(s.presented, fp)
	hook := s.onPresent
	s.mu.Unlock()

	fp.mu.Lock()
	fp.presented = true
	fp.mu.Unlock()
	if hook != nil {
		hook(fp)
	}
	return nil
}

func (s *fakeSurface) alertsShown() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

func (s *fakeSurface) modal(i int) *fakeModal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.modals) {
		return nil
	}
	return s.modals[i]
}

func (s *fakeSurface) presentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.presented)
}

func actionTitles(a Alert) []string {
	titles := make([]string, len(a.Actions))
	for i, action := range a.Actions {
		titles[i] = action.Title
	}
	return titles
}

// tapSheet presses sheetTitle on the source sheet and promptTitle on any
// settings prompt.
func tapSheet(sheetTitle, promptTitle string) func(Alert) string {
	return func(a Alert) string {
		if a.Style == AlertStyleActionSheet {
			return sheetTitle
		}
		return promptTitle
	}
}

type fakePicker struct {
	mu             sync.Mutex
	source         Source
	allowsEditing  bool
	presented      bool
	transitioning  int
	settleAt       time.Time
	dismissals     int
	nextID         int
	finishHandlers map[int]func(any)
	cancelHandlers map[int]func()
}

func newFakePicker() *fakePicker {
	return &fakePicker{
		finishHandlers: map[int]func(any){},
		cancelHandlers: map[int]func(){},
	}
}

func (p *fakePicker) SetSource(s Source) {
	p.mu.Lock()
	p.source = s
	p.mu.Unlock()
}

func (p *fakePicker) SetAllowsEditing(allow bool) {
	p.mu.Lock()
	p.allowsEditing = allow
	p.mu.Unlock()
}

func (p *fakePicker) IsPresented() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presented
}

// IsTransitioning answers true for the first p.transitioning checks and
// until p.settleAt has passed.
func (p *fakePicker) IsTransitioning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Now().Before(p.settleAt) {
		return true
	}
	if p.transitioning > 0 {
		p.transitioning--
		return true
	}
	return false
}

func (p *fakePicker) Dismiss(animated bool) {
	p.mu.Lock()
	p.dismissals++
	p.presented = false
	p.mu.Unlock()
}

func (p *fakePicker) OnFinish(handler func(any)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.finishHandlers[id] = handler
	return func() {
		p.mu.Lock()
		delete(p.finishHandlers, id)
		p.mu.Unlock()
	}
}

func (p *fakePicker) OnCancel(handler func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.cancelHandlers[id] = handler
	return func() {
		p.mu.Lock()
		delete(p.cancelHandlers, id)
		p.mu.Unlock()
	}
}

func (p *fakePicker) finish(payload any) {
	p.mu.Lock()
	handlers := make([]func(any), 0, len(p.finishHandlers))
	for _, h := range p.finishHandlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(payload)
	}
}

func (p *fakePicker) cancel() {
	p.mu.Lock()
	handlers := make([]func(), 0, len(p.cancelHandlers))
	for _, h := range p.cancelHandlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

func (p *fakePicker) dismissCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dismissals
}

func (p *fakePicker) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.finishHandlers) + len(p.cancelHandlers)
}

// errorLog captures reported errors for the duration of a test.
type errorLog struct {
	mu     sync.Mutex
	errs   []*errors.Error
	panics []*errors.PanicError
}

func captureErrors(t *testing.T) *errorLog {
	t.Helper()
	l := &errorLog{}
	errors.SetHandler(l)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return l
}

func (l *errorLog) HandleError(err *errors.Error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

func (l *errorLog) HandlePanic(err *errors.PanicError) {
	l.mu.Lock()
	l.panics = append(l.panics, err)
	l.mu.Unlock()
}

func (l *errorLog) ops() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ops := make([]string, len(l.errs))
	for i, e := range l.errs {
		ops[i] = e.Op
	}
	return ops
}

// fixture wires a Picker to fakes running on a private UI loop.
type fixture struct {
	loop     *uiLoop
	auth     *fakeAuthorizer
	surface  *fakeSurface
	picker   *Picker
	settings atomic.Int32

	mu      sync.Mutex
	pickers []*fakePicker
	// setup runs on every new fake picker before it is handed out.
	setup func(*fakePicker)
}

func newFixture(t *testing.T, camera, library AuthorizationStatus, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		loop: newUILoop(t),
		auth: newFakeAuthorizer(camera, library),
	}
	f.surface = &fakeSurface{loop: f.loop}
	base := []Option{
		WithDispatcher(f.loop.dispatch),
		WithSettingsOpener(func(context.Context) error {
			f.settings.Add(1)
			return nil
		}),
	}
	f.picker = New(f.auth, f.newPicker, append(base, opts...)...)
	return f
}

func (f *fixture) newPicker() (PickerController, error) {
	p := newFakePicker()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setup != nil {
		f.setup(p)
	}
	f.pickers = append(f.pickers, p)
	return p, nil
}

func (f *fixture) lastPicker() *fakePicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pickers) == 0 {
		return nil
	}
	return f.pickers[len(f.pickers)-1]
}

// finishWith makes every presented picker complete with payload.
func (f *fixture) finishWith(payload any) {
	f.surface.onPresent = func(p *fakePicker) {
		f.loop.post(func() { p.finish(payload) })
	}
}
