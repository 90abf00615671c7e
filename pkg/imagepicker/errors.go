package imagepicker

import "fmt"

// CapabilityError reports that a capability is unavailable and could not be
// skipped. Title and Message are what the settings prompt showed.
type CapabilityError struct {
	Capability Capability
	Title      string
	Message    string
}

func (e *CapabilityError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("imagepicker: %s access denied: %s", e.Capability, e.Message)
	}
	return fmt.Sprintf("imagepicker: %s access denied", e.Capability)
}

// CastError reports a picker payload that did not carry the expected value.
type CastError struct {
	// Key is the info key that was looked up; empty when the whole payload
	// had the wrong shape.
	Key InfoKey
	Got any
}

func (e *CastError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("imagepicker: picker payload is %T, want an info map", e.Got)
	}
	if e.Got == nil {
		return fmt.Sprintf("imagepicker: picker payload has no %s", e.Key)
	}
	return fmt.Sprintf("imagepicker: picker payload %s is %T, want an image", e.Key, e.Got)
}

// ConfigurationError wraps an error returned by a caller's Configure callback.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "imagepicker: configure picker: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
