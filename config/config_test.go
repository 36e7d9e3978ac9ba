package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/deliverykit/logger"
)

type mockFS struct {
	files     map[string]bool
	configDir string
	loaded    []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func (m *mockFS) UserConfigDir() (string, error) { return m.configDir, nil }

func TestResolveFiles(t *testing.T) {
	home := filepath.Join("home", "user", ".config")
	tests := []struct {
		name       string
		files      []string
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "explicit paths win",
			files:      []string{"./mboxctl.yml", "./.env"},
			opts:       LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/x.env"},
			wantConfig: "/etc/x.yml",
			wantEnv:    "/etc/x.env",
		},
		{
			name:       "working directory first",
			files:      []string{"./mboxctl.yml", filepath.Join(home, "mboxctl", "config.yml"), "./.env"},
			wantConfig: "./mboxctl.yml",
			wantEnv:    "./.env",
		},
		{
			name:       "user config dir fallback",
			files:      []string{filepath.Join(home, "mboxctl", "config.yaml")},
			wantConfig: filepath.Join(home, "mboxctl", "config.yaml"),
		},
		{
			name:    "binary specific env file",
			files:   []string{"./.env.mboxctl", "./.env"},
			wantEnv: "./.env.mboxctl",
		},
		{
			name: "nothing found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}, configDir: home}
			for _, f := range tt.files {
				fs.files[f] = true
			}
			r := &Resolver{FileSystem: fs}
			got := r.ResolveFiles("mboxctl", tt.opts)
			if got.ConfigFile != tt.wantConfig {
				t.Errorf("ConfigFile = %q, want %q", got.ConfigFile, tt.wantConfig)
			}
			if got.EnvFile != tt.wantEnv {
				t.Errorf("EnvFile = %q, want %q", got.EnvFile, tt.wantEnv)
			}
		})
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("DELIVERY_CLIENT_CODE")
	want := map[string]bool{
		"delivery_client_code": false,
		"delivery.client.code": false,
		"delivery.client_code": false,
	}
	for _, v := range got {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("missing variant %q in %v", k, got)
		}
	}
	if single := generateEnvKeyVariants("DEBUG"); len(single) != 1 || single[0] != "debug" {
		t.Errorf("single = %v", single)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	got := removeDuplicates([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("got %v", got)
	}
}

type testConfig struct {
	BaseConfig `mapstructure:",squash"`
	Delivery   struct {
		ClientCode     string `mapstructure:"client_code"`
		NetworkTimeout int    `mapstructure:"network_timeout"`
	} `mapstructure:"delivery"`
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mboxctl.yml")
	body := "name: mboxctl\ndelivery:\n  client_code: fromfile\n  network_timeout: 5\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MBOXCTL_DELIVERY_CLIENT_CODE", "fromenv")
	t.Setenv("DELIVERY_NETWORK_TIMEOUT", "9")

	var cfg testConfig
	err := LoadConfig("mboxctl", &cfg,
		WithConfigFile(path),
		WithEnvFile(filepath.Join(dir, "missing.env")),
		WithEnvPrefix("mboxctl_"),
		WithDefaults(map[string]any{"environment": "staging"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "mboxctl" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Delivery.ClientCode != "fromenv" {
		t.Errorf("ClientCode = %q, want env override", cfg.Delivery.ClientCode)
	}
	if cfg.Delivery.NetworkTimeout != 5 {
		t.Errorf("NetworkTimeout = %d, unprefixed env must be ignored", cfg.Delivery.NetworkTimeout)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want default", cfg.Environment)
	}
}

func TestBaseConfig(t *testing.T) {
	c := BaseConfig{Name: "mboxctl", Debug: true}
	c.ApplyDefaults()
	if c.Environment != "development" {
		t.Errorf("Environment = %q", c.Environment)
	}
	if c.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", c.Logging.Level)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := BaseConfig{Name: "x", Environment: "qa", Logging: logger.Config{Level: "info", Format: "json"}}
	if err := bad.Validate(); err == nil {
		t.Error("expected environment error")
	}
	if err := (&BaseConfig{}).Validate(); err == nil {
		t.Error("expected name error")
	}
}
