package platform

import "sync"

var (
	presentationOnce    sync.Once
	presentationChannel *MethodChannel
)

func getPresentationChannel() *MethodChannel {
	presentationOnce.Do(func() {
		presentationChannel = NewMethodChannel("drift/presentation")
	})
	return presentationChannel
}

// ViewController identifies a native view that can present modals.
// The ID is assigned by the native host.
type ViewController struct {
	ID string
}

// IsAttached reports whether the view is still in the window hierarchy.
// Any bridge failure counts as detached.
func (v *ViewController) IsAttached() bool {
	if v == nil || v.ID == "" {
		return false
	}
	result, err := getPresentationChannel().Invoke("isAttached", map[string]any{
		"view": v.ID,
	})
	if err != nil {
		return false
	}
	return parseBool(parseMap(result)["attached"])
}
