package imagepicker

import (
	"context"
	"sync"

	"github.com/go-drift/imagepicker/pkg/errors"
	"github.com/go-drift/imagepicker/pkg/platform"
)

// Options configures one PresentImagePicker or Pick call.
type Options struct {
	// AllowEditing enables the native edit step and returns the edited image.
	AllowEditing bool
	// AllowDelete adds a destructive "delete" action to the source sheet.
	AllowDelete bool
	// Title and Message head the source sheet.
	Title   string
	Message string
	// Configure runs on the picker after the source and editing flag are set
	// and before it is presented. An error aborts the pick.
	Configure func(PickerController) error
}

// Outcome classifies a Result.
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeDeleted
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// Result is the single terminal outcome of a pick.
type Result struct {
	Outcome Outcome
	// Image is set for OutcomeSucceeded.
	Image *Image
	// Err is set for OutcomeFailed.
	Err error
}

// Cancelled reports whether the user backed out (or nothing could be offered).
func (r Result) Cancelled() bool { return r.Outcome == OutcomeCancelled }

// Deleted reports whether the user chose delete.
func (r Result) Deleted() bool { return r.Outcome == OutcomeDeleted }

// Picker is the entry point: authorization, source selection, picking and
// extraction in one call.
type Picker struct {
	auth     Authorizer
	ui       uiContext
	gate     *Gate
	prompt   *SettingsPrompt
	selector *Selector
	adapter  *Adapter

	mu     sync.RWMutex
	config Config
}

// Option customizes a Picker.
type Option func(*Picker)

// WithConfig replaces the default strings.
func WithConfig(cfg Config) Option {
	return func(p *Picker) { p.config = cfg }
}

// WithDispatcher sets how work reaches the UI context. The default is
// platform.Dispatch.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Picker) { p.ui = uiContext{dispatch: d} }
}

// WithSettingsOpener replaces platform.OpenAppSettings.
func WithSettingsOpener(open SettingsOpener) Option {
	return func(p *Picker) { p.prompt.open = open }
}

// WithAnimation toggles animated presentation and dismissal of the picker.
// The default is animated.
func WithAnimation(animated bool) Option {
	return func(p *Picker) { p.adapter.animated = animated }
}

// New builds a Picker around an authorizer and a picker factory.
func New(auth Authorizer, newPicker PickerFactory, opts ...Option) *Picker {
	p := &Picker{
		auth:   auth,
		ui:     uiContext{dispatch: platform.Dispatch},
		config: DefaultConfig(),
	}
	p.prompt = &SettingsPrompt{config: p.Config, auth: auth, open: platform.OpenAppSettings}
	p.adapter = &Adapter{
		newPicker:      newPicker,
		animated:       true,
		retryInterval:  dismissRetryInterval,
		dismissTimeout: dismissTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.adapter.ui = p.ui
	p.gate = &Gate{auth: auth, prompt: p.prompt, config: p.Config, ui: p.ui}
	p.selector = &Selector{gate: p.gate, config: p.Config, ui: p.ui}
	return p
}

// Config returns the current strings.
func (p *Picker) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// SetConfig replaces the strings for every later presentation.
func (p *Picker) SetConfig(cfg Config) {
	p.mu.Lock()
	p.config = cfg
	p.mu.Unlock()
}

// IsCameraAvailable reports whether the camera is authorized or limited.
func (p *Picker) IsCameraAvailable() bool {
	return p.gate.Available(Camera)
}

// IsPhotoLibraryAvailable reports whether the library is authorized or limited.
func (p *Picker) IsPhotoLibraryAvailable() bool {
	return p.gate.Available(PhotoLibrary)
}

// RequestAuthorization resolves a single capability; see Gate.Request.
func (p *Picker) RequestAuthorization(ctx context.Context, surface Surface, c Capability, canSkip bool) error {
	return p.gate.Request(ctx, surface, c, canSkip)
}

// RequestCameraAndPhotoAuthorization asks for the camera and then the photo
// library, never failing on a denial. The only error is ctx's.
func (p *Picker) RequestCameraAndPhotoAuthorization(ctx context.Context, surface Surface) error {
	return p.gate.RequestCameraAndPhoto(ctx, surface)
}

// PresentImagePicker runs Pick in the background and calls completion on the
// UI context with its Result. completion runs at most once, and not at all if
// the returned cancel (or ctx) fires first. Cancelling dismisses whatever
// is on screen.
func (p *Picker) PresentImagePicker(ctx context.Context, surface Surface, opts Options, completion func(Result)) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)
	go func() {
		defer errors.Recover("imagepicker.PresentImagePicker")
		res, err := p.Pick(ctx, surface, opts)
		if err != nil {
			cancel()
			return
		}
		p.ui.post(func() {
			if ctx.Err() != nil {
				return
			}
			cancel()
			if completion != nil {
				completion(res)
			}
		})
	}()
	return cancel
}

// Pick runs the whole flow and blocks until it ends. It returns ctx's error
// (and a zero Result) only when ctx ends first; every other ending, denial
// and payload failures included, is a Result. Pick must not be called on the
// UI context.
func (p *Picker) Pick(ctx context.Context, surface Surface, opts Options) (Result, error) {
	if err := p.gate.RequestCameraAndPhoto(ctx, surface); err != nil {
		return Result{}, err
	}
	if !p.gate.Available(Camera) && !p.gate.Available(PhotoLibrary) {
		return Result{Outcome: OutcomeCancelled}, nil
	}

	choice, err := p.selector.Choose(ctx, surface, opts)
	if err != nil {
		return Result{}, err
	}
	switch choice {
	case ChoiceCamera:
		return p.pickFrom(ctx, surface, SourceCamera, opts)
	case ChoiceLibrary:
		return p.pickFrom(ctx, surface, SourcePhotoLibrary, opts)
	case ChoiceDelete:
		return Result{Outcome: OutcomeDeleted}, nil
	default:
		return Result{Outcome: OutcomeCancelled}, nil
	}
}

type terminalEvent struct {
	info      Info
	err       error
	cancelled bool
}

func (p *Picker) pickFrom(ctx context.Context, surface Surface, source Source, opts Options) (Result, error) {
	configure := func(pc PickerController) error {
		pc.SetSource(source)
		pc.SetAllowsEditing(opts.AllowEditing)
		if opts.Configure != nil {
			return opts.Configure(pc)
		}
		return nil
	}

	events := make(chan terminalEvent, 1)
	deliver := func(ev terminalEvent) {
		select {
		case events <- ev:
		default:
		}
	}

	var (
		session                  *Session
		presentErr               error
		unsubFinish, unsubCancel func()
	)
	// Presenting and subscribing share one UI turn so no terminal event can
	// slip in between.
	err := p.ui.run(ctx, func() {
		session, presentErr = p.adapter.Present(surface, configure)
		if session == nil {
			return
		}
		unsubFinish = session.DidFinish(func(info Info, err error) {
			deliver(terminalEvent{info: info, err: err})
		})
		unsubCancel = session.DidCancel(func() {
			deliver(terminalEvent{cancelled: true})
		})
	})
	if err != nil {
		return Result{}, err
	}
	if presentErr != nil {
		return p.fail("imagepicker.present", errors.KindPresentation, presentErr), nil
	}
	if session == nil {
		return Result{Outcome: OutcomeCancelled}, nil
	}
	defer func() {
		p.ui.post(func() {
			unsubFinish()
			unsubCancel()
			session.Dispose()
		})
	}()

	select {
	case ev := <-events:
		if ev.cancelled {
			return Result{Outcome: OutcomeCancelled}, nil
		}
		if ev.err != nil {
			return p.fail("imagepicker.payload", errors.KindParsing, ev.err), nil
		}
		img, err := extractImage(ev.info, opts.AllowEditing)
		if err != nil {
			return p.fail("imagepicker.extract", errors.KindParsing, err), nil
		}
		return Result{Outcome: OutcomeSucceeded, Image: &img}, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (p *Picker) fail(op string, kind errors.Kind, err error) Result {
	errors.Report(&errors.Error{Op: op, Kind: kind, Err: err})
	return Result{Outcome: OutcomeFailed, Err: err}
}
