package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// AdminConfig holds the shared admin credential for key management.
type AdminConfig struct {
	Token string `yaml:"token"`
}

// AuthConfig holds the authentication switches.
// Disabled bypasses every credential check and is meant for trusted,
// internal deployments only. It is never a default.
type AuthConfig struct {
	Disabled bool `yaml:"disabled"`
}

// Config holds the configuration for the gateway, read once at startup.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Auth     AuthConfig     `yaml:"auth"`
	Port     int            `yaml:"port"`
	Debug    bool           `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file, then applies
// environment overrides. It returns the config and a potential warning message.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warning string

	data, err := os.ReadFile(path)
	if err == nil {
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	// If the file does not exist, continue with an empty config and rely on
	// environment variables.

	// Override with environment variables if they exist.
	if dsn := os.Getenv("GODUCK_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("GODUCK_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	// DATABASE_URL selects the networked postgres backend, matching the
	// deployment convention of hosting platforms.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.Type = "postgres"
		config.Database.DSN = url
	}
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		config.Admin.Token = token
	}
	if port := os.Getenv("GODUCK_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, "", fmt.Errorf("invalid GODUCK_PORT value: %q", port)
		}
		config.Port = p
	}
	if debug := os.Getenv("GODUCK_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}
	if bypass := os.Getenv("GODUCK_DISABLE_AUTH"); bypass != "" {
		config.Auth.Disabled = (bypass == "true")
	}

	// Default values.
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Database.Type == "" && config.Database.DSN == "" {
		config.Database.Type = "sqlite"
		config.Database.DSN = "api_keys.db"
		warning = "no database configured, falling back to embedded sqlite file api_keys.db"
	}

	// Final validation after overrides.
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must both be configured in config.yaml or via environment variables")
	}
	if !config.Auth.Disabled && config.Admin.Token == "" {
		return nil, "", fmt.Errorf("admin token must be configured (ADMIN_TOKEN) unless auth is disabled")
	}

	return &config, warning, nil
}
