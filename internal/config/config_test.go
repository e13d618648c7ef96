package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}

	if cfg.Server.Port != 9080 {
		t.Errorf("port = %d, want 9080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if !cfg.AutoInit {
		t.Error("auto_init should default to true")
	}
	if cfg.Vorld.GameAPIURL == "" || cfg.Vorld.AuthAPIURL == "" {
		t.Error("API URL defaults missing")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7000
vorld:
  app_id: app-from-yaml
  arena_game_id: arena-from-yaml
  stream_url: https://stream.example
auto_init: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Vorld.AppID != "app-from-yaml" {
		t.Errorf("app_id = %q", cfg.Vorld.AppID)
	}
	if cfg.AutoInit {
		t.Error("auto_init = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
vorld:
  app_id: from-yaml
  user_token: yaml-token
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VORLD_APP_ID", "from-env")
	t.Setenv("USER_TOKEN", "env-token")
	t.Setenv("BRIDGE_PORT", "6123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vorld.AppID != "from-env" {
		t.Errorf("app_id = %q, env must win", cfg.Vorld.AppID)
	}
	if cfg.Vorld.UserToken != "env-token" {
		t.Errorf("user_token = %q", cfg.Vorld.UserToken)
	}
	if cfg.Server.Port != 6123 {
		t.Errorf("port = %d, want 6123", cfg.Server.Port)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"AllPresent", func(c *Config) {}, false},
		{"NoAppID", func(c *Config) { c.Vorld.AppID = "" }, true},
		{"NoArenaGameID", func(c *Config) { c.Vorld.ArenaGameID = "" }, true},
		{"NoStreamURL", func(c *Config) { c.Vorld.StreamURL = "" }, true},
		{"NoToken", func(c *Config) { c.Vorld.UserToken = "" }, false}, // token can come later
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Vorld.AppID = "a"
			cfg.Vorld.ArenaGameID = "g"
			cfg.Vorld.StreamURL = "s"
			cfg.Vorld.UserToken = "t"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
