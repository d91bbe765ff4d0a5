// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly,
// which makes connect-timeout and per-call-deadline behavior
// deterministic to test.
package clock
