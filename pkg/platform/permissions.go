package platform

import (
	"context"
	"sync"
	"time"

	"github.com/go-drift/imagepicker/pkg/errors"
)

// PermissionResult represents the status of a permission.
type PermissionResult string

// Permission status constants.
const (
	// PermissionGranted indicates full access has been granted.
	PermissionGranted PermissionResult = "granted"

	// PermissionDenied indicates the user denied the permission.
	PermissionDenied PermissionResult = "denied"

	// PermissionPermanentlyDenied indicates the user denied and the system will not ask
	// again. Direct the user to Settings.
	PermissionPermanentlyDenied PermissionResult = "permanently_denied"

	// PermissionRestricted indicates a system policy prevents granting (parental controls,
	// MDM, enterprise policy). The user cannot change this; no dialog will be shown.
	PermissionRestricted PermissionResult = "restricted"

	// PermissionLimited indicates partial access. For Photos, this means the user
	// selected specific photos rather than granting full library access.
	PermissionLimited PermissionResult = "limited"

	// PermissionNotDetermined indicates the user has not yet been asked. Calling Request
	// will show the system permission dialog.
	PermissionNotDetermined PermissionResult = "not_determined"

	// PermissionResultUnknown indicates the status could not be determined.
	PermissionResultUnknown PermissionResult = "unknown"
)

// DefaultPermissionTimeout bounds a permission request whose context has no deadline.
const DefaultPermissionTimeout = 30 * time.Second

const (
	permissionsChannelName = "drift/permissions"
	permissionChangesName  = "drift/permissions/changes"
)

// Permission provides access to a runtime permission for a platform feature.
type Permission interface {
	// Status returns the current permission status.
	Status(ctx context.Context) (PermissionResult, error)

	// Request prompts the user for permission and blocks until they respond
	// or the context is canceled. If already in a terminal state, returns
	// immediately without showing a dialog.
	Request(ctx context.Context) (PermissionResult, error)

	// IsGranted returns true if permission is granted or limited.
	// Best-effort convenience: returns false on any error.
	IsGranted(ctx context.Context) bool

	// UsageDescription returns the purpose string the app declares for this
	// permission (the text the OS shows in its own prompt), or "".
	UsageDescription(ctx context.Context) string

	// Listen subscribes to permission status changes.
	// Returns an unsubscribe function.
	Listen(handler func(PermissionResult)) (unsubscribe func())
}

// isTerminalStatus returns true if the status is a terminal state that won't change
// from showing a permission dialog.
func isTerminalStatus(status PermissionResult) bool {
	switch status {
	case PermissionGranted, PermissionDenied, PermissionPermanentlyDenied,
		PermissionRestricted, PermissionLimited:
		return true
	default:
		return false
	}
}

var (
	permissionChangesOnce    sync.Once
	permissionChangesChannel *EventChannel
	permissionsMethodsOnce   sync.Once
	permissionsMethods       *MethodChannel
)

func getPermissionChangesChannel() *EventChannel {
	permissionChangesOnce.Do(func() {
		permissionChangesChannel = NewEventChannel(permissionChangesName)
	})
	return permissionChangesChannel
}

func getPermissionsChannel() *MethodChannel {
	permissionsMethodsOnce.Do(func() {
		permissionsMethods = NewMethodChannel(permissionsChannelName)
	})
	return permissionsMethods
}

// permissionType checks and requests a single named permission.
type permissionType struct {
	name    string
	channel *MethodChannel
	changes *EventChannel

	// Only one system dialog can be shown at a time.
	requestMu sync.Mutex
}

func newPermission(name string) *permissionType {
	return &permissionType{
		name:    name,
		channel: getPermissionsChannel(),
		changes: getPermissionChangesChannel(),
	}
}

func (p *permissionType) Status(ctx context.Context) (PermissionResult, error) {
	result, err := p.channel.Invoke("check", map[string]any{
		"permission": p.name,
	})
	if err != nil {
		return PermissionResultUnknown, err
	}
	return parsePermissionResult(result), nil
}

func (p *permissionType) Request(ctx context.Context) (PermissionResult, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPermissionTimeout)
		defer cancel()
	}

	p.requestMu.Lock()
	defer p.requestMu.Unlock()

	currentStatus, err := p.Status(ctx)
	if err != nil {
		return PermissionResultUnknown, err
	}
	if isTerminalStatus(currentStatus) {
		return currentStatus, nil
	}

	// Subscribe BEFORE triggering native request to avoid race condition
	resultChan := make(chan PermissionResult, 1)
	sub := p.changes.Listen(EventHandler{
		OnEvent: func(data any) {
			change, ok := parsePermissionChange(data)
			if ok && change.Permission == p.name {
				select {
				case resultChan <- change.Result:
				default:
				}
			}
		},
		OnError: func(err error) {
			errors.Report(&errors.Error{
				Op:      "permissions.request",
				Kind:    errors.KindPermission,
				Channel: permissionChangesName,
				Err:     err,
			})
		},
	})
	defer sub.Cancel()

	if _, err := p.channel.Invoke("request", map[string]any{"permission": p.name}); err != nil {
		return PermissionResultUnknown, err
	}

	select {
	case result := <-resultChan:
		return result, nil
	case <-ctx.Done():
		// Re-check status in case we missed the event
		if finalStatus, err := p.Status(context.Background()); err == nil && isTerminalStatus(finalStatus) {
			return finalStatus, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return PermissionResultUnknown, ErrTimeout
		}
		return PermissionResultUnknown, ErrCanceled
	}
}

func (p *permissionType) IsGranted(ctx context.Context) bool {
	status, err := p.Status(ctx)
	if err != nil {
		return false
	}
	return status == PermissionGranted || status == PermissionLimited
}

func (p *permissionType) UsageDescription(ctx context.Context) string {
	result, err := p.channel.Invoke("usageDescription", map[string]any{
		"permission": p.name,
	})
	if err != nil {
		return ""
	}
	return parseString(parseMap(result)["description"])
}

func (p *permissionType) Listen(handler func(PermissionResult)) (unsubscribe func()) {
	sub := p.changes.Listen(EventHandler{
		OnEvent: func(data any) {
			change, ok := parsePermissionChange(data)
			if !ok {
				errors.Report(&errors.Error{
					Op:      "permissions.parseChange",
					Kind:    errors.KindParsing,
					Channel: permissionChangesName,
					Err: &errors.ParseError{
						Channel:  permissionChangesName,
						DataType: "PermissionChange",
						Got:      data,
					},
				})
				return
			}
			if change.Permission == p.name {
				handler(change.Result)
			}
		},
		OnError: func(err error) {
			errors.Report(&errors.Error{
				Op:      "permissions.streamError",
				Kind:    errors.KindPlatform,
				Channel: permissionChangesName,
				Err:     err,
			})
		},
	})
	return sub.Cancel
}

// OpenAppSettings opens the system settings page for this app, where users can
// manage permissions manually. Use this when a permission is permanently denied
// and the app cannot request it again.
func OpenAppSettings(ctx context.Context) error {
	_, err := getPermissionsChannel().Invoke("openSettings", nil)
	return err
}

type permissionChange struct {
	Permission string
	Result     PermissionResult
}

func parsePermissionResult(result any) PermissionResult {
	if status := parseString(parseMap(result)["status"]); status != "" {
		return PermissionResult(status)
	}
	return PermissionResultUnknown
}

func parsePermissionChange(data any) (permissionChange, bool) {
	m := parseMap(data)
	if m == nil {
		return permissionChange{}, false
	}
	return permissionChange{
		Permission: parseString(m["permission"]),
		Result:     PermissionResult(parseString(m["status"])),
	}, true
}
