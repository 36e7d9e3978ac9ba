package delivery

import (
	"context"
	stderrors "errors"
	"strings"

	apperrors "github.com/kbukum/deliverykit/errors"
	"github.com/kbukum/deliverykit/notification"
	"github.com/kbukum/deliverykit/params"
)

// ErrNoDeviceContext is the cause returned when the device provider has
// nothing to report.
var ErrNoDeviceContext = stderrors.New("delivery: device context unavailable")

// Unit is a content unit requested by a caller.
type Unit struct {
	Name       string
	Parameters *params.Parameters
	// DefaultContent answers the unit when the response has nothing for it.
	DefaultContent string
}

// Names returns the unit names in order.
func Names(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Name
	}
	return out
}

// BuildInput is everything a single request is assembled from.
type BuildInput struct {
	Prefetch      []Unit
	Execute       []Unit
	Global        *params.Parameters
	TntID         string
	ThirdPartyID  string
	Notifications []notification.Record
	PropertyToken string
	EnvironmentID int64
}

// Builder assembles wire requests.
type Builder struct {
	device    DeviceProvider
	identity  IdentityProvider
	lifecycle LifecycleProvider
}

// NewBuilder creates a Builder. identity and lifecycle may be nil.
func NewBuilder(device DeviceProvider, identity IdentityProvider, lifecycle LifecycleProvider) *Builder {
	return &Builder{device: device, identity: identity, lifecycle: lifecycle}
}

// Build assembles a Request. It fails when there is nothing to send or the
// device context is unavailable.
func (b *Builder) Build(ctx context.Context, in BuildInput) (*Request, error) {
	if len(in.Prefetch) == 0 && len(in.Execute) == 0 && len(in.Notifications) == 0 {
		return nil, apperrors.EmptyRequest("delivery request")
	}
	if b.device == nil {
		return nil, apperrors.Internal(ErrNoDeviceContext)
	}
	device, ok := b.device.Device(ctx)
	if !ok {
		return nil, apperrors.Internal(ErrNoDeviceContext)
	}

	var identity Identity
	if b.identity != nil {
		identity, _ = b.identity.Identity(ctx)
	}
	var lifecycle map[string]string
	if b.lifecycle != nil {
		lifecycle = b.lifecycle.Lifecycle(ctx)
	}

	req := &Request{
		ID:              visitorBlock(in, identity),
		ExperienceCloud: experienceCloudBlock(identity),
		Context:         contextBlock(device),
		Prefetch:        mboxBatch(in.Prefetch, in.Global, lifecycle),
		Execute:         mboxBatch(in.Execute, in.Global, lifecycle),
		EnvironmentID:   in.EnvironmentID,
	}
	if len(in.Notifications) > 0 {
		req.Notifications = in.Notifications
	}
	if token := strings.TrimSpace(in.PropertyToken); token != "" {
		req.Property = &Property{Token: token}
	}
	return req, nil
}

func visitorBlock(in BuildInput, identity Identity) *VisitorID {
	v := &VisitorID{
		TntID:                   in.TntID,
		ThirdPartyID:            in.ThirdPartyID,
		MarketingCloudVisitorID: identity.MarketingCloudID,
	}
	for _, l := range identity.LinkedIDs {
		if l.ID == "" {
			continue
		}
		state := l.AuthState
		if state == "" {
			state = AuthStateUnknown
		}
		v.CustomerIDs = append(v.CustomerIDs, CustomerID{ID: l.ID, IntegrationCode: l.Type, AuthenticatedState: state})
	}
	if v.isEmpty() {
		return nil
	}
	return v
}

func experienceCloudBlock(identity Identity) *ExperienceCloud {
	ec := &ExperienceCloud{Analytics: &Analytics{Logging: AnalyticsLoggingClientSide}}
	if identity.Blob != "" || identity.LocationHint != 0 {
		ec.AudienceManager = &AudienceManager{Blob: identity.Blob, LocationHint: identity.LocationHint}
	}
	return ec
}

func contextBlock(d Device) *Context {
	c := &Context{Channel: ChannelMobile, UserAgent: d.UserAgent}
	if d.DeviceName != "" || d.DeviceType != "" || d.PlatformType != "" {
		c.MobilePlatform = &MobilePlatform{DeviceName: d.DeviceName, DeviceType: d.DeviceType, PlatformType: d.PlatformType}
	}
	if d.AppID != "" || d.AppName != "" || d.AppVersion != "" {
		c.Application = &Application{ID: d.AppID, Name: d.AppName, Version: d.AppVersion}
	}
	if d.ScreenWidth != 0 || d.ScreenHeight != 0 || d.ColorDepth != 0 || d.Orientation != "" {
		c.Screen = &Screen{ColorDepth: d.ColorDepth, Width: d.ScreenWidth, Height: d.ScreenHeight, Orientation: d.Orientation}
	}
	offset := d.TimezoneOffsetMinutes
	c.TimeOffsetInMinutes = &offset
	return c
}

func mboxBatch(units []Unit, global *params.Parameters, lifecycle map[string]string) *MboxBatch {
	if len(units) == 0 {
		return nil
	}
	batch := &MboxBatch{Mboxes: make([]MboxRequest, 0, len(units))}
	for i, u := range units {
		p := params.Resolve(u.Parameters, global, lifecycle)
		batch.Mboxes = append(batch.Mboxes, MboxRequest{
			Index:             i,
			Name:              u.Name,
			Parameters:        p.Parameters,
			ProfileParameters: p.ProfileParameters,
			Order:             p.Order,
			Product:           p.Product,
		})
	}
	return batch
}
