package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Gateways  map[string]GatewayConfig  `yaml:"gateways"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
	Tools     ToolsConfig               `yaml:"tools"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	Workspace string `yaml:"workspace"`
	OutputDir string `yaml:"output_dir"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type ToolsConfig struct {
	Disabled []string `yaml:"disabled"`
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:      "sutra",
			Workspace: "workspace",
			OutputDir: "artifacts",
		},
		Memory: MemoryConfig{
			Type: "sqlite",
			Path: "sutra.db",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns a gateway config if it is enabled.
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	gw, ok := c.Gateways[name]
	if ok && gw.Enabled {
		return gw, true
	}
	return GatewayConfig{}, false
}

// ToolDisabled reports whether a tool was switched off in the config.
func (c *Config) ToolDisabled(name string) bool {
	for _, t := range c.Tools.Disabled {
		if t == name {
			return true
		}
	}
	return false
}
