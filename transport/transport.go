// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"net"
	"time"
)

// Compile-time interface checks.
var (
	_ Dialer = (*TCPDialer)(nil)
	_ Dialer = (*UnixDialer)(nil)
)

// Dialer opens connections to a scripting host.
type Dialer interface {
	// DialContext opens a connection to the host at the given
	// transport address. The address format is dialer-specific:
	// "host:port" for TCP, a socket path for Unix.
	DialContext(ctx context.Context, address string) (net.Conn, error)
}

// TCPDialer opens TCP connections to a scripting host.
type TCPDialer struct {
	// Timeout is the maximum time to wait for the TCP connection to
	// be established. Zero means no standalone timeout; only the
	// context deadline applies.
	Timeout time.Duration
}

// DialContext opens a TCP connection to address (host:port).
func (d *TCPDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	return (&net.Dialer{Timeout: d.Timeout}).DialContext(ctx, "tcp", address)
}

// UnixDialer opens Unix domain socket connections to a scripting host
// on the same machine.
type UnixDialer struct {
	// Timeout is the maximum time to wait for the connection. Zero
	// means only the context deadline applies.
	Timeout time.Duration
}

// DialContext opens a connection to the socket at address.
func (d *UnixDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	return (&net.Dialer{Timeout: d.Timeout}).DialContext(ctx, "unix", address)
}
