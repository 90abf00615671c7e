package imagepicker

// Config holds every user-facing string. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	CameraTitle       string
	PhotoLibraryTitle string
	DeleteTitle       string
	CancelTitle       string
	OpenSettingsTitle string

	CameraErrorTitle         string
	CameraErrorMessage       string
	PhotoLibraryErrorTitle   string
	PhotoLibraryErrorMessage string
}

// DefaultConfig returns the English defaults. Error messages are empty so the
// OS usage description is shown instead.
func DefaultConfig() Config {
	return Config{
		CameraTitle:            "Camera",
		PhotoLibraryTitle:      "Photo Library",
		DeleteTitle:            "Delete",
		CancelTitle:            "Cancel",
		OpenSettingsTitle:      "Open Settings",
		CameraErrorTitle:       "Open Settings",
		PhotoLibraryErrorTitle: "Open Settings",
	}
}

// ButtonTitles overrides action titles. Empty fields keep the current value.
type ButtonTitles struct {
	Camera       string
	PhotoLibrary string
	Delete       string
	Cancel       string
	OpenSettings string
}

// SetButtonTitles applies the non-empty titles in t.
func (c *Config) SetButtonTitles(t ButtonTitles) {
	override(&c.CameraTitle, t.Camera)
	override(&c.PhotoLibraryTitle, t.PhotoLibrary)
	override(&c.DeleteTitle, t.Delete)
	override(&c.CancelTitle, t.Cancel)
	override(&c.OpenSettingsTitle, t.OpenSettings)
}

// SetErrorText overrides the settings prompt title and message shown for
// capability. Empty arguments keep the current value.
func (c *Config) SetErrorText(capability Capability, title, message string) {
	switch capability {
	case Camera:
		override(&c.CameraErrorTitle, title)
		override(&c.CameraErrorMessage, message)
	case PhotoLibrary:
		override(&c.PhotoLibraryErrorTitle, title)
		override(&c.PhotoLibraryErrorMessage, message)
	}
}

// errorText returns the configured title and message for capability.
func (c Config) errorText(capability Capability) (title, message string) {
	if capability == Camera {
		return c.CameraErrorTitle, c.CameraErrorMessage
	}
	return c.PhotoLibraryErrorTitle, c.PhotoLibraryErrorMessage
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
