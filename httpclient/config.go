package httpclient

import (
	"fmt"
	"time"
)

const (
	defaultTimeout        = 2 * time.Second
	defaultConnectTimeout = 2 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// Timeout bounds a whole request when the caller passes none. Defaults to 2s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ConnectTimeout bounds dialing. Defaults to 2s.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// UserAgent is sent on every request when set.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("httpclient: connect timeout must be positive")
	}
	return nil
}
