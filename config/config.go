package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultRequestTimeout = 10 * time.Second

// defaultAllowedClients is the shipped whitelist policy. Operators override
// it via the config file or the --allow flag; it is never mutated at runtime.
var defaultAllowedClients = []string{
	"BeraGeth",
	"BeraReth",
	"bera-reth",
	"reth/v1.6.0-48941e6",
	"reth/v1.7.0-9d56da5",
}

// Config carries the operator-supplied settings for a peerctl run.
type Config struct {
	IPCPath        string   `toml:"IPCPath"`
	AllowedClients []string `toml:"AllowedClients"`
	RequestTimeout string   `toml:"RequestTimeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AllowedClients: append([]string(nil), defaultAllowedClients...),
		RequestTimeout: defaultRequestTimeout.String(),
	}
}

// Load reads a TOML config file. Fields left unset fall back to the built-in
// defaults; an empty path returns the defaults outright.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var file Config
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if file.IPCPath != "" {
		cfg.IPCPath = file.IPCPath
	}
	if meta.IsDefined("AllowedClients") {
		cfg.AllowedClients = file.AllowedClients
	}
	if file.RequestTimeout != "" {
		cfg.RequestTimeout = file.RequestTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if len(c.AllowedClients) == 0 {
		return fmt.Errorf("AllowedClients must not be empty")
	}
	for _, entry := range c.AllowedClients {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("AllowedClients contains a blank entry")
		}
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses the configured per-call deadline.
func (c *Config) Timeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return defaultRequestTimeout, nil
	}
	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid RequestTimeout %q: %w", c.RequestTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("RequestTimeout must be positive, got %q", c.RequestTimeout)
	}
	return timeout, nil
}

// ResolveIPCPath picks the socket path with CLI argument taking precedence
// over the IPC_SOCKET environment variable, then the config file.
func (c *Config) ResolveIPCPath(arg string) string {
	if strings.TrimSpace(arg) != "" {
		return arg
	}
	if env := os.Getenv("IPC_SOCKET"); strings.TrimSpace(env) != "" {
		return env
	}
	return c.IPCPath
}
