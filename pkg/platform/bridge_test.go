package platform

import (
	"sync"
	"testing"
)

type recordedCall struct {
	channel string
	method  string
	args    map[string]any
}

// recordingBridge records every method call and answers through respond.
type recordingBridge struct {
	mu      sync.Mutex
	calls   []recordedCall
	started map[string]int
	stopped map[string]int
	respond func(channel, method string, args map[string]any) (any, error)
}

func newRecordingBridge(t *testing.T, respond func(channel, method string, args map[string]any) (any, error)) *recordingBridge {
	t.Helper()
	b := &recordingBridge{
		started: map[string]int{},
		stopped: map[string]int{},
		respond: respond,
	}
	SetNativeBridge(b)
	RegisterDispatch(func(cb func()) { cb() })
	t.Cleanup(ResetForTest)
	return b
}

func (b *recordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, err := DefaultCodec.Decode(args)
	if err != nil {
		return nil, err
	}
	m := parseMap(decoded)
	b.mu.Lock()
	b.calls = append(b.calls, recordedCall{channel: channel, method: method, args: m})
	b.mu.Unlock()

	var result any
	if b.respond != nil {
		result, err = b.respond(channel, method, m)
		if err != nil {
			return nil, err
		}
	}
	return DefaultCodec.Encode(result)
}

func (b *recordingBridge) StartEventStream(channel string) error {
	b.mu.Lock()
	b.started[channel]++
	b.mu.Unlock()
	return nil
}

func (b *recordingBridge) StopEventStream(channel string) error {
	b.mu.Lock()
	b.stopped[channel]++
	b.mu.Unlock()
	return nil
}

func (b *recordingBridge) callsTo(channel, method string) []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedCall
	for _, c := range b.calls {
		if c.channel == channel && c.method == method {
			out = append(out, c)
		}
	}
	return out
}
