// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cuebridge/cuebridge/lib/clock"
	"github.com/cuebridge/cuebridge/lib/taskid"
	"github.com/cuebridge/cuebridge/transport"
)

// Default bounds. Both are overridable per client; the command
// timeout is additionally overridable per call.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
)

// errNotReady is returned when a call is attempted on a channel that
// is not in StateReady. This is a usage error, not a classified
// transport failure: the caller skipped Connect or the channel has
// since gone down.
var errNotReady = errors.New("ptsl: channel is not ready")

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Dialer opens the transport connection. Required.
	Dialer transport.Dialer

	// Address is the scripting host's transport address. Required.
	Address string

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Clock stamps classified errors and bounds waits. If nil, the
	// real clock is used.
	Clock clock.Clock

	// ConnectTimeout bounds Connect's wait for channel readiness.
	// Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// CommandTimeout is the default per-call deadline. Zero means
	// DefaultCommandTimeout.
	CommandTimeout time.Duration
}

// Client is a protocol client over one logical channel to the
// scripting host. Independent calls may be issued concurrently; each
// carries its own deadline and outstanding calls share the channel.
type Client struct {
	dialer         transport.Dialer
	address        string
	logger         *slog.Logger
	clock          clock.Clock
	classifier     *Classifier
	connectTimeout time.Duration
	commandTimeout time.Duration

	connectivity *connectivity

	// mu guards conn, pending, session, lastError, and dialing.
	mu        sync.Mutex
	conn      net.Conn
	pending   map[string]*pendingCall
	session   *Session
	lastError error
	dialing   bool

	// writeMu serializes frame writes to the connection.
	writeMu sync.Mutex
}

// pendingCall routes responses for one outstanding task id.
type pendingCall struct {
	responses chan Response
	streaming bool
}

// NewClient creates a client. It does not touch the network; call
// Connect to establish the channel.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Dialer == nil {
		return nil, fmt.Errorf("ptsl: Dialer is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("ptsl: Address is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	connectTimeout := config.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	commandTimeout := config.CommandTimeout
	if commandTimeout == 0 {
		commandTimeout = DefaultCommandTimeout
	}

	return &Client{
		dialer:         config.Dialer,
		address:        config.Address,
		logger:         logger,
		clock:          clk,
		classifier:     NewClassifier(clk),
		connectTimeout: connectTimeout,
		commandTimeout: commandTimeout,
		connectivity:   newConnectivity(),
		pending:        make(map[string]*pendingCall),
	}, nil
}

// ConnectivityState reports the channel state at this instant.
func (c *Client) ConnectivityState() ConnectivityState {
	return c.connectivity.current()
}

// WatchConnectivity registers a watcher for state transitions. Each
// transition is delivered at most once. The caller must invoke the
// cancel func to release the registration.
func (c *Client) WatchConnectivity() (<-chan ConnectivityState, func()) {
	return c.connectivity.watch()
}

// Connect establishes the channel and waits until it is ready,
// bounded by the configured ConnectTimeout (and ctx). It does not
// register a session; registration is a distinct step. From
// StateTransientFailure it redials. Returns a classified error on
// dial failure or timeout.
func (c *Client) Connect(ctx context.Context) error {
	switch c.connectivity.current() {
	case StateShutdown:
		return c.classifier.newError(ErrorChannelFailure, "client is shut down", nil, nil)
	case StateReady:
		return nil
	}

	// Register the watch before initiating the dial so no transition
	// can slip past unobserved.
	watch, cancel := c.connectivity.watch()
	defer cancel()

	c.mu.Lock()
	if !c.dialing && c.connectivity.current() != StateReady {
		c.dialing = true
		c.connectivity.transition(StateConnecting)
		go c.dial()
	}
	c.mu.Unlock()

	deadline := c.clock.After(c.connectTimeout)
	for {
		select {
		case <-ctx.Done():
			return c.classifier.Transport(ctx.Err())
		case <-deadline:
			return c.classifier.newError(ErrorConnectionTimeout,
				fmt.Sprintf("channel not ready after %v", c.connectTimeout), nil,
				map[string]any{"address": c.address})
		case state := <-watch:
			switch state {
			case StateReady:
				return nil
			case StateTransientFailure:
				c.mu.Lock()
				cause := c.lastError
				c.mu.Unlock()
				if cause == nil {
					cause = errors.New("connection failed")
				}
				return c.classifier.Transport(cause)
			case StateShutdown:
				return c.classifier.newError(ErrorChannelFailure, "client was shut down", nil, nil)
			}
			// StateConnecting: keep waiting.
		}
	}
}

// dial runs in its own goroutine: one dial attempt, then a transition
// to Ready or TransientFailure.
func (c *Client) dial() {
	ctx, cancel := context.WithTimeout(context.Background(), c.connectTimeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, c.address)

	c.mu.Lock()
	c.dialing = false
	if c.connectivity.current() == StateShutdown {
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.lastError = err
		c.mu.Unlock()
		c.logger.Warn("dial failed", "address", c.address, "error", err)
		c.connectivity.transition(StateTransientFailure)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	c.connectivity.transition(StateReady)
	c.logger.Info("channel ready", "address", c.address)
}

// Disconnect tears the channel down, clears the session, and fails
// outstanding calls. Idempotent and safe from any state; the client
// is terminal afterwards.
func (c *Client) Disconnect() error {
	c.connectivity.transition(StateShutdown)

	c.mu.Lock()
	conn := c.conn
	c.session = nil
	c.mu.Unlock()

	// Closing the connection wakes the read loop, whose failure path
	// fails all outstanding calls. Only that goroutine completes
	// pending calls, so delivery and teardown never race.
	if conn != nil {
		conn.Close()
		c.logger.Info("disconnected", "address", c.address)
	}
	return nil
}

// readLoop owns reads on conn: it routes every response frame to its
// pending call until the connection fails.
func (c *Client) readLoop(conn net.Conn) {
	for {
		frame, err := ReadFrame(conn)
		if err != nil {
			c.handleChannelFailure(conn, err)
			return
		}
		response, err := DecodeResponse(frame)
		if err != nil {
			c.logger.Warn("discarding undecodable frame", "error", err)
			continue
		}
		c.deliver(frame.Type, response)
	}
}

// deliver routes one response to its pending call. A unary response
// or stream end completes the call; stream items leave it pending.
func (c *Client) deliver(frameType byte, response Response) {
	taskID := response.Header.TaskID

	c.mu.Lock()
	call, ok := c.pending[taskID]
	if ok && frameType != FrameStreamItem {
		delete(c.pending, taskID)
	}
	c.mu.Unlock()

	if !ok {
		// Late response for a call whose deadline already expired.
		c.logger.Debug("response for unknown task", "task_id", taskID,
			"command", response.Header.Command)
		return
	}
	call.responses <- response
}

// handleChannelFailure tears down after a read error: fail all
// outstanding calls, clear the session, and mark the channel
// recoverable. If the client was explicitly disconnected the
// Shutdown state stays.
func (c *Client) handleChannelFailure(conn net.Conn, cause error) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.lastError = cause
	c.session = nil
	pending := c.pending
	c.pending = make(map[string]*pendingCall)
	c.mu.Unlock()

	for _, call := range pending {
		close(call.responses)
	}

	if c.connectivity.current() != StateShutdown {
		c.logger.Warn("channel failed", "address", c.address, "error", cause)
		c.connectivity.transition(StateTransientFailure)
	}
}

// startCall registers a pending call and writes the request frame.
func (c *Client) startCall(request Request, streaming bool) (*pendingCall, error) {
	frame, err := EncodeRequest(request)
	if err != nil {
		return nil, err
	}

	capacity := 1
	if streaming {
		// Enough slack that a briefly slow consumer does not stall
		// the read loop's routing of other calls.
		capacity = 64
	}

	c.mu.Lock()
	if c.connectivity.current() != StateReady || c.conn == nil {
		c.mu.Unlock()
		return nil, errNotReady
	}
	conn := c.conn
	call := &pendingCall{
		responses: make(chan Response, capacity),
		streaming: streaming,
	}
	c.pending[request.Header.TaskID] = call
	c.mu.Unlock()

	c.writeMu.Lock()
	err = WriteFrame(conn, frame)
	c.writeMu.Unlock()
	if err != nil {
		c.endCall(request.Header.TaskID)
		return nil, fmt.Errorf("send %s %s: %w", request.Header.Command, request.Header.TaskID, err)
	}
	return call, nil
}

// endCall abandons a pending call (deadline expiry, write failure).
func (c *Client) endCall(taskID string) {
	c.mu.Lock()
	delete(c.pending, taskID)
	c.mu.Unlock()
}

// roundTrip is a unary call: write the request, wait for its single
// response under ctx's deadline.
func (c *Client) roundTrip(ctx context.Context, request Request) (Response, error) {
	call, err := c.startCall(request, false)
	if err != nil {
		return Response{}, err
	}

	select {
	case <-ctx.Done():
		c.endCall(request.Header.TaskID)
		return Response{}, fmt.Errorf("%s %s: %w", request.Header.Command, request.Header.TaskID, ctx.Err())
	case response, ok := <-call.responses:
		if !ok {
			return Response{}, c.channelLoss()
		}
		return response, nil
	}
}

// channelLoss describes a call failed by connection teardown.
func (c *Client) channelLoss() error {
	c.mu.Lock()
	cause := c.lastError
	c.mu.Unlock()
	if cause == nil {
		cause = errors.New("connection closed")
	}
	return fmt.Errorf("channel failure while awaiting response: %w", cause)
}

// newRequest builds a command envelope. sessionID is empty only for
// RegisterConnection.
func (c *Client) newRequest(command CommandID, sessionID, bodyJSON string) Request {
	return Request{
		Header: Header{
			TaskID:          taskid.New(),
			Command:         command,
			Version:         ProtocolVersion,
			VersionMinor:    ProtocolVersionMinor,
			VersionRevision: ProtocolVersionRevision,
			SessionID:       sessionID,
		},
		BodyJSON: bodyJSON,
	}
}
