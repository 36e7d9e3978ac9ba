package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/deliverykit/config"
	"github.com/kbukum/deliverykit/httpclient"
	"github.com/kbukum/deliverykit/observability"
	"github.com/kbukum/deliverykit/orchestrator"
)

const (
	appName   = "mboxctl"
	envPrefix = "MBOXCTL"
)

// appConfig is the mboxctl configuration file.
type appConfig struct {
	config.BaseConfig `mapstructure:",squash"`

	Delivery  orchestrator.Config  `mapstructure:"delivery"`
	HTTP      httpclient.Config    `mapstructure:"http"`
	Store     storeConfig          `mapstructure:"store"`
	Device    deviceConfig         `mapstructure:"device"`
	Telemetry observability.Config `mapstructure:"telemetry"`
}

type storeConfig struct {
	// Path is the SQLite file holding the visitor profile.
	Path string `mapstructure:"path"`
	// LegacyPath is an older profile database migrated on first use.
	LegacyPath string `mapstructure:"legacy_path"`
}

type deviceConfig struct {
	Name         string `mapstructure:"name"`
	Type         string `mapstructure:"type"`
	ScreenWidth  int    `mapstructure:"screen_width"`
	ScreenHeight int    `mapstructure:"screen_height"`
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName, "profile.db")
	}
	return appName + ".db"
}

func loadAppConfig(configFile, envFile string) (*appConfig, error) {
	opts := []config.LoaderOption{
		config.WithEnvPrefix(envPrefix),
		config.WithDefaults(map[string]any{
			"name":                     appName,
			"delivery.privacy_status":  "optedin",
			"delivery.network_timeout": orchestrator.DefaultNetworkTimeout,
			"http.timeout":             orchestrator.DefaultNetworkTimeout * time.Second,
			"store.path":               defaultStorePath(),
			"device.type":              "desktop",
		}),
	}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg appConfig
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	cfg.Delivery.ApplyDefaults()
	cfg.HTTP.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Delivery.Validate(); err != nil {
		return nil, fmt.Errorf("config: delivery: %w", err)
	}
	if err := cfg.HTTP.Validate(); err != nil {
		return nil, fmt.Errorf("config: http: %w", err)
	}
	return &cfg, nil
}
