// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at the config file.
const EnvVar = "CUEBRIDGE_CONFIG"

// Config is the master configuration for Cuebridge commands.
type Config struct {
	// Host configures how to reach the workstation's scripting host.
	Host HostConfig `yaml:"host"`

	// Client configures registration identity and call deadlines.
	Client ClientConfig `yaml:"client"`

	// Sync configures marker batch dispatch.
	Sync SyncConfig `yaml:"sync"`
}

// HostConfig configures the transport to the scripting host.
type HostConfig struct {
	// Transport selects the dialer: "tcp" or "unix".
	Transport string `yaml:"transport"`

	// Address is the transport address: "host:port" for tcp, a
	// socket path for unix.
	Address string `yaml:"address"`
}

// ClientConfig configures the protocol client.
type ClientConfig struct {
	// CompanyName and ApplicationName identify this client to the
	// host during registration.
	CompanyName     string `yaml:"company_name"`
	ApplicationName string `yaml:"application_name"`

	// ConnectTimeout bounds the wait for channel readiness.
	// Zero means the client default (10s).
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// CommandTimeout is the per-call deadline for dispatched
	// commands. Zero means the client default (30s).
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// SyncConfig configures marker batch dispatch.
type SyncConfig struct {
	// Concurrency is the number of marker commands in flight at
	// once. Zero or one means sequential dispatch.
	Concurrency int `yaml:"concurrency"`

	// AuditLog, when non-empty, is the path of the zstd-compressed
	// dispatch audit log.
	AuditLog string `yaml:"audit_log"`
}

// Load reads the config file at path. If path is empty, the EnvVar
// environment variable is consulted. Unknown keys are errors: a typo
// in a deadline field must not silently fall back to a default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file: pass --config or set %s", EnvVar)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Host.Transport {
	case "tcp", "unix":
	case "":
		return fmt.Errorf("host.transport is required (\"tcp\" or \"unix\")")
	default:
		return fmt.Errorf("unknown host.transport %q", c.Host.Transport)
	}
	if c.Host.Address == "" {
		return fmt.Errorf("host.address is required")
	}
	if c.Client.CompanyName == "" {
		return fmt.Errorf("client.company_name is required")
	}
	if c.Sync.Concurrency < 0 {
		return fmt.Errorf("sync.concurrency must be >= 0, got %d", c.Sync.Concurrency)
	}
	return nil
}
