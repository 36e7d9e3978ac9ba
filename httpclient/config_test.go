package httpclient

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 2*time.Second || cfg.ConnectTimeout != 2*time.Second {
		t.Errorf("expected 2s defaults, got %v / %v", cfg.Timeout, cfg.ConnectTimeout)
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{Timeout: 10 * time.Second, ConnectTimeout: time.Second}
	cfg.ApplyDefaults()
	if cfg.Timeout != 10*time.Second || cfg.ConnectTimeout != time.Second {
		t.Errorf("expected configured timeouts kept, got %v / %v", cfg.Timeout, cfg.ConnectTimeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Timeout: time.Second, ConnectTimeout: time.Second}, false},
		{"negative timeout", Config{Timeout: -1, ConnectTimeout: time.Second}, true},
		{"zero connect timeout", Config{Timeout: time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
