// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Cuebridge's standard CBOR encoding.
//
// All envelopes on the scripting-host channel are CBOR with Core
// Deterministic Encoding: the same envelope always produces identical
// bytes, which keeps dispatch audit logs diffable and makes wire-level
// tests exact. Consumers import only this package, never fxamacker/cbor
// directly.
package codec
