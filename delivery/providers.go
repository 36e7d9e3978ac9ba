package delivery

import "context"

// AuthState classifies a linked customer id.
type AuthState string

const (
	AuthStateUnknown       AuthState = "unknown"
	AuthStateAuthenticated AuthState = "authenticated"
	AuthStateLoggedOut     AuthState = "logged_out"
)

// ParseAuthState maps free text onto an AuthState, defaulting to unknown.
func ParseAuthState(s string) AuthState {
	switch AuthState(s) {
	case AuthStateAuthenticated, AuthStateLoggedOut:
		return AuthState(s)
	default:
		return AuthStateUnknown
	}
}

// LinkedID is an identifier synced through the identity service.
type LinkedID struct {
	ID        string
	Type      string
	AuthState AuthState
}

// Identity is what the identity service knows about the visitor.
type Identity struct {
	MarketingCloudID string
	Blob             string
	LocationHint     int
	LinkedIDs        []LinkedID
}

// Device describes the device and application.
type Device struct {
	UserAgent             string
	DeviceName            string
	DeviceType            string
	PlatformType          string
	AppID                 string
	AppName               string
	AppVersion            string
	ScreenWidth           int
	ScreenHeight          int
	ColorDepth            int
	Orientation           string
	TimezoneOffsetMinutes int
}

// IdentityProvider supplies shared identity. Optional.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, bool)
}

// DeviceProvider supplies device context. Required: a request cannot be
// built without it.
type DeviceProvider interface {
	Device(ctx context.Context) (Device, bool)
}

// LifecycleProvider supplies lifecycle metrics, added to every unit's
// parameters at the lowest precedence. Optional.
type LifecycleProvider interface {
	Lifecycle(ctx context.Context) map[string]string
}

// StaticDevice is a DeviceProvider returning a fixed Device.
type StaticDevice Device

// Device implements DeviceProvider.
func (d StaticDevice) Device(context.Context) (Device, bool) { return Device(d), true }
