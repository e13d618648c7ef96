package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Vorld  VorldConfig  `yaml:"vorld"`
	// AutoInit controls whether the bridge initializes a game session at
	// startup when a token is already configured.
	AutoInit bool `yaml:"auto_init" env:"AUTO_INIT"`
}

type ServerConfig struct {
	Port int    `yaml:"port" env:"BRIDGE_PORT"`
	Host string `yaml:"host" env:"BRIDGE_HOST"`
}

type VorldConfig struct {
	AppID          string `yaml:"app_id" env:"VORLD_APP_ID"`
	ArenaGameID    string `yaml:"arena_game_id" env:"ARENA_GAME_ID"`
	UserToken      string `yaml:"user_token" env:"USER_TOKEN"`
	StreamURL      string `yaml:"stream_url" env:"STREAM_URL"`
	ArenaServerURL string `yaml:"arena_server_url" env:"ARENA_SERVER_URL"`
	GameAPIURL     string `yaml:"game_api_url" env:"GAME_API_URL"`
	AuthAPIURL     string `yaml:"auth_api_url" env:"AUTH_API_URL"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 9080,
			Host: "0.0.0.0",
		},
		Vorld: VorldConfig{
			GameAPIURL: "https://airdrop-arcade.onrender.com",
			AuthAPIURL: "https://vorld-auth.onrender.com/api",
		},
		AutoInit: true,
	}
}

// Load reads the YAML config file, then applies environment variable
// overrides. A missing file is not an error; a deployment may be driven by
// environment alone.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Validate checks the identifiers every deployment needs. The user token is
// deliberately not required here; it can be supplied later via the API.
func (c *Config) Validate() error {
	var missing []string
	if c.Vorld.AppID == "" {
		missing = append(missing, "VORLD_APP_ID")
	}
	if c.Vorld.ArenaGameID == "" {
		missing = append(missing, "ARENA_GAME_ID")
	}
	if c.Vorld.StreamURL == "" {
		missing = append(missing, "STREAM_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
