// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport opens the byte stream that carries the scripting
// host's binary RPC channel. The protocol client takes a Dialer and
// an address; everything above this package sees only a net.Conn.
//
// Two dialers exist: TCP for a host reachable over the network
// (including localhost), Unix for a host exposing a local socket.
package transport
