// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for Cuebridge commands.
//
// Configuration comes from a single YAML file specified by:
//   - the CUEBRIDGE_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// There are no fallbacks or automatic discovery. This keeps the
// connection target and registration identity deterministic and
// auditable with no hidden overrides.
package config
