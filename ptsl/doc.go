// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package ptsl implements the client side of the workstation's
// scripting-host protocol: a binary RPC channel carrying command
// envelopes (a CBOR header plus a JSON body) over a transport
// connection.
//
// The package is organized around the call path:
//
//   - wire.go: frame format and envelope encoding
//   - command.go: command ids and body types
//   - rates.go: symbolic sample-rate and timecode-rate vocabularies
//   - channel.go: connectivity state machine and watch registration
//   - client.go: connection lifecycle and envelope dispatch
//   - session.go: registration, command sending, session queries
//   - errors.go: the error classifier and its taxonomy
//   - compat.go: session compatibility validation
//
// A caller connects, registers to obtain a session, queries session
// parameters, and dispatches commands with per-call deadlines. Every
// failure, whether transport or command, surfaces as a
// *ClassifiedError carrying a retryability verdict and a one-line
// remediation. Retry is always the caller's decision; the client
// never retries on its own.
//
// The ptsltest subpackage provides an in-memory scripting host for
// tests.
package ptsl
