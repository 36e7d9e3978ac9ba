package orchestrator

import (
	"strings"
	"time"

	"github.com/kbukum/deliverykit/session"
	"github.com/kbukum/deliverykit/validation"
)

const (
	// DefaultSessionTimeout is the session window in seconds.
	DefaultSessionTimeout = 1800
	// DefaultNetworkTimeout is the round-trip timeout in seconds.
	DefaultNetworkTimeout = 2
)

// Config holds the delivery settings of an Orchestrator.
type Config struct {
	ClientCode     string `yaml:"client_code" mapstructure:"client_code" json:"client_code"`
	Server         string `yaml:"server" mapstructure:"server" json:"server" validate:"omitempty,endpoint_host"`
	EnvironmentID  int64  `yaml:"environment_id" mapstructure:"environment_id" json:"environment_id" validate:"gte=0"`
	PropertyToken  string `yaml:"property_token" mapstructure:"property_token" json:"property_token"`
	PrivacyStatus  string `yaml:"privacy_status" mapstructure:"privacy_status" json:"privacy_status" validate:"omitempty,oneof=optedin optedout unknown"`
	SessionTimeout int    `yaml:"session_timeout" mapstructure:"session_timeout" json:"session_timeout" validate:"gte=0"`
	NetworkTimeout int    `yaml:"network_timeout" mapstructure:"network_timeout" json:"network_timeout" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.ClientCode = strings.TrimSpace(c.ClientCode)
	c.Server = strings.TrimSpace(c.Server)
	if c.PrivacyStatus == "" {
		c.PrivacyStatus = string(session.PrivacyUnknown)
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	if c.NetworkTimeout == 0 {
		c.NetworkTimeout = DefaultNetworkTimeout
	}
}

// Validate checks field formats. A missing client code is not a
// configuration error; requests fail with MISSING_CLIENT_CODE instead.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Privacy returns the parsed privacy status.
func (c Config) Privacy() session.PrivacyStatus {
	return session.ParsePrivacyStatus(c.PrivacyStatus)
}

// SessionWindow returns the session timeout as a duration.
func (c Config) SessionWindow() time.Duration {
	if c.SessionTimeout <= 0 {
		return DefaultSessionTimeout * time.Second
	}
	return time.Duration(c.SessionTimeout) * time.Second
}

// RoundTripTimeout returns the network timeout as a duration.
func (c Config) RoundTripTimeout() time.Duration {
	if c.NetworkTimeout <= 0 {
		return DefaultNetworkTimeout * time.Second
	}
	return time.Duration(c.NetworkTimeout) * time.Second
}
