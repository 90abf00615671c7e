package platform

import (
	"fmt"
	"sync"

	"golang.org/x/mod/semver"
)

// ProtocolVersion is the bridge protocol this package speaks.
const ProtocolVersion = "v1.2.0"

// MinBridgeVersion is the oldest native bridge that implements every channel
// used here (dialogs and the picker event stream arrived in v1.1.0).
const MinBridgeVersion = "v1.1.0"

var (
	bridgeInfoOnce    sync.Once
	bridgeInfoChannel *MethodChannel
)

func getBridgeInfoChannel() *MethodChannel {
	bridgeInfoOnce.Do(func() {
		bridgeInfoChannel = NewMethodChannel("drift/bridge")
	})
	return bridgeInfoChannel
}

// BridgeVersion asks native for its protocol version in canonical semver form.
func BridgeVersion() (string, error) {
	result, err := getBridgeInfoChannel().Invoke("version", nil)
	if err != nil {
		return "", err
	}
	v := parseString(parseMap(result)["version"])
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: invalid version %q", ErrUnsupportedBridge, v)
	}
	return semver.Canonical(v), nil
}

// RequireBridgeVersion fails with ErrUnsupportedBridge when the connected
// bridge is older than min.
func RequireBridgeVersion(min string) error {
	v, err := BridgeVersion()
	if err != nil {
		return err
	}
	if semver.Compare(v, min) < 0 {
		return fmt.Errorf("%w: bridge %s, need %s or newer", ErrUnsupportedBridge, v, min)
	}
	return nil
}
