// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import "sync"

// ConnectivityState is the RPC channel's lifecycle state.
type ConnectivityState int

const (
	// StateIdle: no connection attempt has been made.
	StateIdle ConnectivityState = iota
	// StateConnecting: a dial is in flight.
	StateConnecting
	// StateReady: the channel is established and can carry calls.
	StateReady
	// StateTransientFailure: the channel broke or a dial failed; a
	// new Connect can recover.
	StateTransientFailure
	// StateShutdown: the client was explicitly disconnected.
	// Terminal.
	StateShutdown
)

func (s ConnectivityState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateTransientFailure:
		return "transient failure"
	case StateShutdown:
		return "shutdown"
	}
	return "unknown"
}

// watchBuffer is the per-watcher channel capacity. A consumer that
// falls more than watchBuffer transitions behind loses the oldest
// ones; each transition is delivered at most once.
const watchBuffer = 8

// connectivity tracks channel state and fans transitions out to
// watchers. Delivery is at-most-once per transition per watcher, so
// no consumer can double-handle a state change.
type connectivity struct {
	mu          sync.Mutex
	state       ConnectivityState
	watchers    map[int]chan ConnectivityState
	nextWatchID int
}

func newConnectivity() *connectivity {
	return &connectivity{
		state:    StateIdle,
		watchers: make(map[int]chan ConnectivityState),
	}
}

// current returns the state at this instant.
func (c *connectivity) current() ConnectivityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition moves to state to and notifies watchers. Self
// transitions are ignored, and nothing leaves StateShutdown.
func (c *connectivity) transition(to ConnectivityState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == to || c.state == StateShutdown {
		return
	}
	c.state = to
	for _, watcher := range c.watchers {
		select {
		case watcher <- to:
		default:
			// Watcher is watchBuffer transitions behind; drop the
			// oldest so the newest is always observable.
			select {
			case <-watcher:
			default:
			}
			watcher <- to
		}
	}
}

// watch registers a transition watcher. The returned cancel func
// unregisters it; canceling is safe at any time and required to
// avoid leaking the registration.
func (c *connectivity) watch() (<-chan ConnectivityState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWatchID
	c.nextWatchID++
	channel := make(chan ConnectivityState, watchBuffer)
	c.watchers[id] = channel

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
	return channel, cancel
}

// watcherCount reports registered watchers. Used by tests to verify
// that bounded waits release their registration.
func (c *connectivity) watcherCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watchers)
}
