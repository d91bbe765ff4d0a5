// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cuebridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
host:
  transport: tcp
  address: "127.0.0.1:31416"
client:
  company_name: Cuebridge
  application_name: cuebridge-cli
  command_timeout: 45s
sync:
  concurrency: 4
  audit_log: /tmp/dispatch.log.zst
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Host.Address != "127.0.0.1:31416" {
		t.Errorf("address = %q", cfg.Host.Address)
	}
	if cfg.Client.CommandTimeout != 45*time.Second {
		t.Errorf("command_timeout = %v, want 45s", cfg.Client.CommandTimeout)
	}
	if cfg.Sync.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Sync.Concurrency)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
host:
  transport: unix
  address: /run/ptsl.sock
client:
  company_name: Cuebridge
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Host.Transport != "unix" {
		t.Errorf("transport = %q, want unix", cfg.Host.Transport)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
host:
  transport: tcp
  address: "127.0.0.1:31416"
  adress: typo
client:
  company_name: Cuebridge
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config with an unknown key")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing transport",
			content: `
host:
  address: "127.0.0.1:31416"
client:
  company_name: Cuebridge
`,
			wantErr: "host.transport",
		},
		{
			name: "unknown transport",
			content: `
host:
  transport: carrier-pigeon
  address: somewhere
client:
  company_name: Cuebridge
`,
			wantErr: "host.transport",
		},
		{
			name: "missing company name",
			content: `
host:
  transport: tcp
  address: "127.0.0.1:31416"
`,
			wantErr: "company_name",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("Load accepted an invalid config")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not mention %q", err, test.wantErr)
			}
		})
	}
}

func TestLoadNoPath(t *testing.T) {
	t.Setenv(EnvVar, "")
	if _, err := Load(""); err == nil {
		t.Fatal("Load with no path and no env var should fail")
	}
}
