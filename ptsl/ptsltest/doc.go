// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package ptsltest provides an in-memory scripting host speaking the
// channel wire format, for testing the protocol client without a
// workstation. Tests register per-command handlers and point a real
// client at the server's TCP address.
package ptsltest
