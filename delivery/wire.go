package delivery

import (
	"github.com/kbukum/deliverykit/notification"
	"github.com/kbukum/deliverykit/params"
)

// ChannelMobile is the only channel this client reports.
const ChannelMobile = "mobile"

// AnalyticsLoggingClientSide asks the endpoint to return analytics payloads
// instead of forwarding them itself.
const AnalyticsLoggingClientSide = "client_side"

// Request is the wire payload of a delivery call. Every block is optional and
// omitted when empty.
type Request struct {
	ID              *VisitorID            `json:"id,omitempty"`
	ExperienceCloud *ExperienceCloud      `json:"experienceCloud,omitempty"`
	Context         *Context              `json:"context,omitempty"`
	Prefetch        *MboxBatch            `json:"prefetch,omitempty"`
	Execute         *MboxBatch            `json:"execute,omitempty"`
	Notifications   []notification.Record `json:"notifications,omitempty"`
	EnvironmentID   int64                 `json:"environmentId,omitempty"`
	Property        *Property             `json:"property,omitempty"`
}

// VisitorID identifies the visitor across products.
type VisitorID struct {
	TntID                   string       `json:"tntId,omitempty"`
	ThirdPartyID            string       `json:"thirdPartyId,omitempty"`
	MarketingCloudVisitorID string       `json:"marketingCloudVisitorId,omitempty"`
	CustomerIDs             []CustomerID `json:"customerIds,omitempty"`
}

func (v *VisitorID) isEmpty() bool {
	return v.TntID == "" && v.ThirdPartyID == "" && v.MarketingCloudVisitorID == "" && len(v.CustomerIDs) == 0
}

// CustomerID is a linked identifier from the identity service.
type CustomerID struct {
	ID                 string    `json:"id"`
	IntegrationCode    string    `json:"integrationCode"`
	AuthenticatedState AuthState `json:"authenticatedState"`
}

// ExperienceCloud carries audience and analytics integration settings.
type ExperienceCloud struct {
	AudienceManager *AudienceManager `json:"audienceManager,omitempty"`
	Analytics       *Analytics       `json:"analytics,omitempty"`
}

// AudienceManager carries the audience blob and location hint.
type AudienceManager struct {
	Blob         string `json:"blob,omitempty"`
	LocationHint int    `json:"locationHint,omitempty"`
}

// Analytics configures analytics forwarding.
type Analytics struct {
	Logging string `json:"logging"`
}

// Context describes the device and application making the call.
type Context struct {
	Channel             string          `json:"channel"`
	UserAgent           string          `json:"userAgent,omitempty"`
	MobilePlatform      *MobilePlatform `json:"mobilePlatform,omitempty"`
	Application         *Application    `json:"application,omitempty"`
	Screen              *Screen         `json:"screen,omitempty"`
	TimeOffsetInMinutes *int            `json:"timeOffsetInMinutes,omitempty"`
}

// MobilePlatform describes the device.
type MobilePlatform struct {
	DeviceName   string `json:"deviceName,omitempty"`
	DeviceType   string `json:"deviceType,omitempty"`
	PlatformType string `json:"platformType,omitempty"`
}

// Application describes the calling app.
type Application struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Screen describes the display.
type Screen struct {
	ColorDepth  int    `json:"colorDepth,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// MboxBatch lists the content units of a prefetch or execute block.
type MboxBatch struct {
	Mboxes []MboxRequest `json:"mboxes"`
}

// MboxRequest is one requested content unit.
type MboxRequest struct {
	Index             int               `json:"index"`
	Name              string            `json:"name"`
	Parameters        map[string]string `json:"parameters,omitempty"`
	ProfileParameters map[string]string `json:"profileParameters,omitempty"`
	Order             *params.Order     `json:"order,omitempty"`
	Product           *params.Product   `json:"product,omitempty"`
}

// Property scopes the request to a tenant property.
type Property struct {
	Token string `json:"token"`
}
