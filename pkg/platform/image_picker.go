package platform

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// ImageSource selects what the native picker shows.
type ImageSource string

const (
	ImageSourceCamera       ImageSource = "camera"
	ImageSourcePhotoLibrary ImageSource = "photoLibrary"
)

// Keys of the info map delivered with a finish event.
const (
	PickerInfoOriginalImage = "originalImage"
	PickerInfoEditedImage   = "editedImage"
	PickerInfoMediaType     = "mediaType"
	PickerInfoImageURL      = "imageURL"
)

const (
	imagePickerChannelName = "drift/image_picker"
	imagePickerEventsName  = "drift/image_picker/events"
)

var (
	imagePickerOnce    sync.Once
	imagePickerChannel *MethodChannel
	imagePickerEvents  *EventChannel

	// liveSessions holds every controller between Present and "dismissed".
	liveMu       sync.Mutex
	liveSessions = map[string]*ImagePickerController{}
)

func getImagePickerChannel() *MethodChannel {
	imagePickerOnce.Do(func() {
		imagePickerChannel = NewMethodChannel(imagePickerChannelName)
		imagePickerChannel.SetHandler(handleImagePickerCall)
		imagePickerEvents = NewEventChannel(imagePickerEventsName)
	})
	return imagePickerChannel
}

// handleImagePickerCall answers the host when it reconciles its picker
// views with Go, for example after the activity was recreated:
//
//	sessionState {session} -> {presented, transitioning}
//	liveSessions           -> {sessions: [id...]}
func handleImagePickerCall(method string, args any) (any, error) {
	switch method {
	case "sessionState":
		session := parseString(parseMap(args)["session"])
		if session == "" {
			return nil, fmt.Errorf("%w: sessionState needs a session", ErrInvalidArguments)
		}
		liveMu.Lock()
		c := liveSessions[session]
		liveMu.Unlock()
		if c == nil {
			return map[string]any{"presented": false, "transitioning": false}, nil
		}
		return map[string]any{"presented": c.IsPresented(), "transitioning": c.IsTransitioning()}, nil
	case "liveSessions":
		liveMu.Lock()
		ids := make([]any, 0, len(liveSessions))
		for id := range liveSessions {
			ids = append(ids, id)
		}
		liveMu.Unlock()
		return map[string]any{"sessions": ids}, nil
	}
	return nil, ErrMethodNotFound
}

func trackSession(c *ImagePickerController, live bool) {
	liveMu.Lock()
	defer liveMu.Unlock()
	if live {
		liveSessions[c.session] = c
	} else {
		delete(liveSessions, c.session)
	}
}

func resetImagePickerSessions() {
	liveMu.Lock()
	liveSessions = map[string]*ImagePickerController{}
	liveMu.Unlock()
}

// PickedMedia is one image entry of a finish event.
type PickedMedia struct {
	Path     string
	MimeType string
	Width    int
	Height   int
	Size     int64
	// Data holds the encoded image when native sends it inline.
	Data []byte
}

// ParsePickedMedia converts a native image entry.
func ParsePickedMedia(value any) (PickedMedia, error) {
	m := parseMap(value)
	if m == nil {
		return PickedMedia{}, &errors.ParseError{Channel: imagePickerEventsName, DataType: "PickedMedia", Got: value}
	}
	data, err := parseBytes(m["data"])
	if err != nil {
		return PickedMedia{}, err
	}
	media := PickedMedia{
		Path:     parseString(m["path"]),
		MimeType: parseString(m["mimeType"]),
		Width:    int(parseInt64(m["width"])),
		Height:   int(parseInt64(m["height"])),
		Size:     parseInt64(m["size"]),
		Data:     data,
	}
	if media.Path == "" && len(media.Data) == 0 {
		return PickedMedia{}, &errors.ParseError{Channel: imagePickerEventsName, DataType: "PickedMedia", Got: value}
	}
	if media.Size == 0 {
		media.Size = int64(len(media.Data))
	}
	return media, nil
}

type pickerEvent struct {
	session string
	kind    string
	info    any
}

// ImagePickerController drives one native picker session. Its presentation
// state mirrors what native reports: a present or dismiss call puts it in
// transition until the matching "presented" or "dismissed" event arrives.
type ImagePickerController struct {
	session string

	mu            sync.Mutex
	source        ImageSource
	allowsEditing bool
	presented     bool
	transitioning bool
	unsubState    func()
}

// NewImagePickerController creates a controller with a fresh session id.
// Nothing is shown until Present.
func NewImagePickerController() *ImagePickerController {
	getImagePickerChannel()
	return &ImagePickerController{
		session: uuid.NewString(),
		source:  ImageSourcePhotoLibrary,
	}
}

// Session returns the id that ties native events to this controller.
func (c *ImagePickerController) Session() string {
	return c.session
}

// SetSourceType selects the camera or the photo library.
func (c *ImagePickerController) SetSourceType(source ImageSource) {
	c.mu.Lock()
	c.source = source
	c.mu.Unlock()
}

// SourceType returns the selected source.
func (c *ImagePickerController) SourceType() ImageSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// SetAllowsEditing enables the native crop/edit step.
func (c *ImagePickerController) SetAllowsEditing(allow bool) {
	c.mu.Lock()
	c.allowsEditing = allow
	c.mu.Unlock()
}

// AllowsEditing reports whether the edit step is enabled.
func (c *ImagePickerController) AllowsEditing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowsEditing
}

// IsPresented reports whether the picker is on screen or on its way there.
func (c *ImagePickerController) IsPresented() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presented
}

// IsTransitioning reports whether a present or dismiss animation is running.
func (c *ImagePickerController) IsTransitioning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitioning
}

func (c *ImagePickerController) events(kind string) *Stream[pickerEvent] {
	return NewStream(imagePickerEventsName, imagePickerEvents, func(data any) (pickerEvent, error) {
		m := parseMap(data)
		if m == nil {
			return pickerEvent{}, &errors.ParseError{Channel: imagePickerEventsName, DataType: "PickerEvent", Got: data}
		}
		ev := pickerEvent{
			session: parseString(m["session"]),
			kind:    parseString(m["event"]),
			info:    m["info"],
		}
		if ev.session != c.session || (kind != "" && ev.kind != kind) {
			return ev, errSkipEvent
		}
		return ev, nil
	})
}

// Present shows the picker modally on view.
func (c *ImagePickerController) Present(view *ViewController, animated bool) error {
	if view == nil || view.ID == "" {
		return ErrNotAttached
	}
	channel := getImagePickerChannel()

	c.mu.Lock()
	if c.presented {
		c.mu.Unlock()
		return fmt.Errorf("%w: picker session %s already presented", ErrInvalidArguments, c.session)
	}
	c.presented = true
	c.transitioning = true
	if c.unsubState == nil {
		c.unsubState = c.events("").Listen(c.handleState)
	}
	args := map[string]any{
		"session":       c.session,
		"view":          view.ID,
		"sourceType":    string(c.source),
		"allowsEditing": c.allowsEditing,
		"animated":      animated,
	}
	c.mu.Unlock()
	trackSession(c, true)

	if _, err := channel.Invoke("present", args); err != nil {
		c.mu.Lock()
		c.presented = false
		c.transitioning = false
		c.releaseLocked()
		c.mu.Unlock()
		trackSession(c, false)
		return err
	}
	return nil
}

// Dismiss asks native to remove the picker. It is a no-op when the picker is
// not presented.
func (c *ImagePickerController) Dismiss(animated bool) {
	c.mu.Lock()
	if !c.presented {
		c.mu.Unlock()
		return
	}
	c.transitioning = true
	c.mu.Unlock()

	_, err := getImagePickerChannel().Invoke("dismiss", map[string]any{
		"session":  c.session,
		"animated": animated,
	})
	if err != nil {
		c.mu.Lock()
		c.transitioning = false
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:      "imagePicker.dismiss",
			Kind:    errors.KindPresentation,
			Channel: imagePickerChannelName,
			Err:     err,
		})
	}
}

func (c *ImagePickerController) handleState(ev pickerEvent) {
	c.mu.Lock()
	switch ev.kind {
	case "presented":
		c.transitioning = false
	case "dismissed":
		c.presented = false
		c.transitioning = false
		c.releaseLocked()
	}
	c.mu.Unlock()
	if ev.kind == "dismissed" {
		trackSession(c, false)
	}
}

func (c *ImagePickerController) releaseLocked() {
	if c.unsubState != nil {
		c.unsubState()
		c.unsubState = nil
	}
}

// OnFinish subscribes to the finish event. The handler receives the raw info
// payload, normally a map keyed by the PickerInfo constants.
func (c *ImagePickerController) OnFinish(handler func(info any)) (unsubscribe func()) {
	getImagePickerChannel()
	return c.events("finish").Listen(func(ev pickerEvent) {
		handler(ev.info)
	})
}

// OnCancel subscribes to the cancel event.
func (c *ImagePickerController) OnCancel(handler func()) (unsubscribe func()) {
	getImagePickerChannel()
	return c.events("cancel").Listen(func(pickerEvent) {
		handler()
	})
}
