// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"testing"
	"time"

	"github.com/cuebridge/cuebridge/lib/testutil"
)

func TestConnectivityTransitions(t *testing.T) {
	c := newConnectivity()
	if c.current() != StateIdle {
		t.Fatalf("initial state = %v, want idle", c.current())
	}

	watch, cancel := c.watch()
	defer cancel()

	c.transition(StateConnecting)
	c.transition(StateReady)

	first := testutil.RequireReceive(t, watch, time.Second, "first transition")
	if first != StateConnecting {
		t.Errorf("first observed transition = %v, want connecting", first)
	}
	second := testutil.RequireReceive(t, watch, time.Second, "second transition")
	if second != StateReady {
		t.Errorf("second observed transition = %v, want ready", second)
	}
}

func TestConnectivityAtMostOncePerTransition(t *testing.T) {
	c := newConnectivity()
	watch, cancel := c.watch()
	defer cancel()

	c.transition(StateConnecting)
	c.transition(StateConnecting) // self transition: no delivery

	got := testutil.RequireReceive(t, watch, time.Second, "transition")
	if got != StateConnecting {
		t.Errorf("observed %v, want connecting", got)
	}
	testutil.RequireNoReceive(t, watch, 50*time.Millisecond, "self transition must not be delivered")
}

func TestConnectivityShutdownTerminal(t *testing.T) {
	c := newConnectivity()
	c.transition(StateConnecting)
	c.transition(StateShutdown)
	c.transition(StateReady)
	if c.current() != StateShutdown {
		t.Errorf("state after shutdown = %v, want shutdown", c.current())
	}
}

func TestConnectivityWatchCancelReleasesRegistration(t *testing.T) {
	c := newConnectivity()
	_, cancel := c.watch()
	if c.watcherCount() != 1 {
		t.Fatalf("watcherCount = %d, want 1", c.watcherCount())
	}
	cancel()
	if c.watcherCount() != 0 {
		t.Errorf("watcherCount after cancel = %d, want 0", c.watcherCount())
	}
	// Cancel twice is harmless.
	cancel()
}

func TestConnectivitySlowWatcherKeepsNewest(t *testing.T) {
	c := newConnectivity()
	watch, cancel := c.watch()
	defer cancel()

	// Bounce well past the watch buffer without consuming.
	for i := 0; i < watchBuffer; i++ {
		c.transition(StateConnecting)
		c.transition(StateTransientFailure)
	}
	c.transition(StateShutdown)

	var last ConnectivityState
	for {
		var done bool
		select {
		case state := <-watch:
			last = state
		default:
			done = true
		}
		if done {
			break
		}
	}
	if last != StateShutdown {
		t.Errorf("newest observable transition = %v, want shutdown", last)
	}
}
