// Package config loads server configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Server is the on-disk server configuration.
type Server struct {
	// Address to listen on.
	Address string `yaml:"address"`

	// BasePath prefixes every resource path.
	BasePath string `yaml:"basePath"`

	// Host is the authority rendered into description base URIs.
	Host string `yaml:"host"`

	// ServiceName is the mDNS instance name; the registry name is
	// used when empty.
	ServiceName string `yaml:"serviceName"`

	// DisableAdvertise turns mDNS advertisement off.
	DisableAdvertise bool `yaml:"disableAdvertise"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the default server configuration.
func Default() Server {
	return Server{
		Address:  ":5683",
		LogLevel: "info",
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Address == "" {
		cfg.Address = ":5683"
	}
	return cfg, nil
}
