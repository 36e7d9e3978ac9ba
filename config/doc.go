// Package config loads layered configuration with viper.
//
// Values come, lowest precedence first, from registered defaults, a YAML
// file, a .env file and the process environment. Environment variables may
// carry a prefix (MBOXCTL_DELIVERY_CLIENT_CODE binds delivery.client_code).
//
//	var cfg Config
//	err := config.LoadConfig("mboxctl", &cfg,
//	    config.WithEnvPrefix("MBOXCTL"),
//	    config.WithDefaults(map[string]any{"delivery.network_timeout": 2}),
//	)
package config
