// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotRegistered is returned when a command is dispatched before a
// session has been registered (or after the session was cleared by
// disconnect). This is a session-state error, distinct from any
// classified host failure.
var ErrNotRegistered = errors.New("ptsl: no registered session: connect and register first")

// Session is the product of a successful registration. It is an
// immutable value; the client also holds it for the lifetime of the
// connection and clears it on disconnect.
type Session struct {
	// ID is the opaque session token the host issued.
	ID string
	// CompanyName and ApplicationName are the identity this client
	// registered under.
	CompanyName     string
	ApplicationName string
}

// Session returns the registered session, if any.
func (c *Client) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// CallOption adjusts one command dispatch.
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the per-call deadline for one dispatch.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// RegisterConnection registers this client with the host and returns
// the established session. The registration envelope is the only one
// dispatched with an empty session id. An empty applicationName is
// passed through: whether to accept it is the host's decision.
func (c *Client) RegisterConnection(ctx context.Context, companyName, applicationName string) (Session, error) {
	if c.connectivity.current() != StateReady {
		return Session{}, fmt.Errorf("register: %w", errNotReady)
	}

	body, err := json.Marshal(RegisterConnectionRequest{
		CompanyName:     companyName,
		ApplicationName: applicationName,
	})
	if err != nil {
		return Session{}, c.classifier.newError(ErrorParsing,
			fmt.Sprintf("encode registration body: %v", err), err, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()

	response, err := c.roundTrip(ctx, c.newRequest(CommandRegisterConnection, "", string(body)))
	if err != nil {
		return Session{}, c.classifier.Transport(err)
	}
	if response.Status != StatusCompleted {
		return Session{}, c.commandFailure(response)
	}

	var parsed RegisterConnectionResponse
	if err := json.Unmarshal([]byte(response.BodyJSON), &parsed); err != nil {
		return Session{}, c.classifier.newError(ErrorSessionIDParse,
			fmt.Sprintf("malformed registration response: %v", err), err, nil)
	}
	if parsed.SessionID == "" {
		return Session{}, c.classifier.newError(ErrorSessionIDParse,
			"registration response carried no session_id", nil,
			map[string]any{"body": response.BodyJSON})
	}

	session := Session{
		ID:              parsed.SessionID,
		CompanyName:     companyName,
		ApplicationName: applicationName,
	}
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	c.logger.Info("session registered", "session_id", session.ID,
		"company", companyName, "application", applicationName)
	return session, nil
}

// ConnectAndRegister connects and registers in one step. On any
// failure the client is disconnected before the error propagates, so
// it is never left connected-but-unregistered.
func (c *Client) ConnectAndRegister(ctx context.Context, companyName, applicationName string) (Session, error) {
	if err := c.Connect(ctx); err != nil {
		c.Disconnect()
		return Session{}, err
	}
	session, err := c.RegisterConnection(ctx, companyName, applicationName)
	if err != nil {
		c.Disconnect()
		return Session{}, err
	}
	return session, nil
}

// SendCommand dispatches one command under the registered session
// with a per-call deadline (the client default unless WithTimeout is
// given). body may be nil, a pre-encoded JSON string, or any
// json-encodable value. On success the response body is returned; on
// any failure the error is a *ClassifiedError (except the
// ErrNotRegistered session-state error).
func (c *Client) SendCommand(ctx context.Context, command CommandID, body any, opts ...CallOption) (json.RawMessage, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil, fmt.Errorf("%s: %w", command, ErrNotRegistered)
	}

	options := callOptions{timeout: c.commandTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	bodyJSON, err := encodeBody(body)
	if err != nil {
		return nil, c.classifier.newError(ErrorParsing,
			fmt.Sprintf("encode %s body: %v", command, err), err, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	response, err := c.roundTrip(ctx, c.newRequest(command, session.ID, bodyJSON))
	if err != nil {
		return nil, c.classifier.Transport(err)
	}
	if response.Status != StatusCompleted {
		return nil, c.commandFailure(response)
	}
	return json.RawMessage(response.BodyJSON), nil
}

// SendCommandStream dispatches a streaming command: onItem is invoked
// for each stream item's body as it arrives, and the final stream-end
// status decides the call's outcome. A non-nil error from onItem
// abandons the stream.
func (c *Client) SendCommandStream(ctx context.Context, command CommandID, body any, onItem func(json.RawMessage) error, opts ...CallOption) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return fmt.Errorf("%s: %w", command, ErrNotRegistered)
	}

	options := callOptions{timeout: c.commandTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	bodyJSON, err := encodeBody(body)
	if err != nil {
		return c.classifier.newError(ErrorParsing,
			fmt.Sprintf("encode %s body: %v", command, err), err, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	request := c.newRequest(command, session.ID, bodyJSON)
	call, err := c.startCall(request, true)
	if err != nil {
		return c.classifier.Transport(err)
	}
	defer c.endCall(request.Header.TaskID)

	for {
		select {
		case <-ctx.Done():
			return c.classifier.Transport(fmt.Errorf("%s %s: %w", command, request.Header.TaskID, ctx.Err()))
		case response, ok := <-call.responses:
			if !ok {
				return c.classifier.Transport(c.channelLoss())
			}
			if response.Status == StatusFailed {
				return c.commandFailure(response)
			}
			if response.BodyJSON != "" {
				if err := onItem(json.RawMessage(response.BodyJSON)); err != nil {
					return fmt.Errorf("%s stream consumer: %w", command, err)
				}
			}
			if response.Status == StatusCompleted {
				return nil
			}
		}
	}
}

// commandFailure classifies the structured error payload of a failed
// command. A malformed payload is a contract violation and classifies
// as ErrorParsing, never as a host-reported condition.
func (c *Client) commandFailure(response Response) *ClassifiedError {
	var commandError CommandError
	if response.ErrorJSON != "" {
		if err := json.Unmarshal([]byte(response.ErrorJSON), &commandError); err != nil {
			return c.classifier.newError(ErrorParsing,
				fmt.Sprintf("malformed command error payload: %v", err), err,
				map[string]any{"command": response.Header.Command.String()})
		}
	}
	classified := c.classifier.Command(commandError)
	c.logger.Warn("command failed", "command", response.Header.Command,
		"task_id", response.Header.TaskID, "type", string(classified.Type),
		"retryable", classified.Retryable)
	return classified
}

// encodeBody renders a command body as JSON. nil means an empty body;
// a string is assumed to be pre-encoded JSON.
func encodeBody(body any) (string, error) {
	switch value := body.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case json.RawMessage:
		return string(value), nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// SessionInfo combines the session queries a compatibility check and
// a marker batch need: name, sample rate, and timecode rate.
type SessionInfo struct {
	// Name is the session name. May be empty; compatibility
	// validation flags that.
	Name string

	// SampleRateSymbol and SampleRate are the session sample rate,
	// symbolic and in Hz.
	SampleRateSymbol SampleRateSymbol
	SampleRate       int

	// TimeCodeRate and FrameRate are the session timecode rate,
	// symbolic and in fps.
	TimeCodeRate TimeCodeRateSymbol
	FrameRate    float64

	// PossibleTimeCodeRates are the rates the host could switch to.
	PossibleTimeCodeRates []TimeCodeRateSymbol
}

// GetSessionName returns the open session's name.
func (c *Client) GetSessionName(ctx context.Context) (string, error) {
	raw, err := c.SendCommand(ctx, CommandGetSessionName, nil)
	if err != nil {
		return "", err
	}
	var parsed GetSessionNameResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.classifier.newError(ErrorParsing,
			fmt.Sprintf("malformed session name response: %v", err), err, nil)
	}
	return parsed.SessionName, nil
}

// GetSessionSampleRate returns the session sample rate symbol.
func (c *Client) GetSessionSampleRate(ctx context.Context) (SampleRateSymbol, error) {
	raw, err := c.SendCommand(ctx, CommandGetSessionSampleRate, nil)
	if err != nil {
		return "", err
	}
	var parsed GetSessionSampleRateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.classifier.newError(ErrorParsing,
			fmt.Sprintf("malformed sample rate response: %v", err), err, nil)
	}
	if _, err := parsed.SampleRate.Hertz(); err != nil {
		return "", c.classifier.newError(ErrorParsing, err.Error(), err,
			map[string]any{"sample_rate": string(parsed.SampleRate)})
	}
	return parsed.SampleRate, nil
}

// GetSessionTimeCodeRate returns the session timecode rate and the
// settings the host could switch to.
func (c *Client) GetSessionTimeCodeRate(ctx context.Context) (GetSessionTimeCodeRateResponse, error) {
	raw, err := c.SendCommand(ctx, CommandGetSessionTimeCodeRate, nil)
	if err != nil {
		return GetSessionTimeCodeRateResponse{}, err
	}
	var parsed GetSessionTimeCodeRateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return GetSessionTimeCodeRateResponse{}, c.classifier.newError(ErrorParsing,
			fmt.Sprintf("malformed timecode rate response: %v", err), err, nil)
	}
	if _, err := parsed.CurrentSetting.FPS(); err != nil {
		return GetSessionTimeCodeRateResponse{}, c.classifier.newError(ErrorParsing, err.Error(), err,
			map[string]any{"current_setting": string(parsed.CurrentSetting)})
	}
	return parsed, nil
}

// CreateNewTracks adds tracks to the session and returns what the
// host actually created.
func (c *Client) CreateNewTracks(ctx context.Context, request CreateNewTracksRequest) (CreateNewTracksResponse, error) {
	raw, err := c.SendCommand(ctx, CommandCreateNewTracks, request)
	if err != nil {
		return CreateNewTracksResponse{}, err
	}
	var parsed CreateNewTracksResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return CreateNewTracksResponse{}, c.classifier.newError(ErrorParsing,
			fmt.Sprintf("malformed track creation response: %v", err), err, nil)
	}
	return parsed, nil
}

// GetSessionInfo fetches name, sample rate, and timecode rate as
// three independent outstanding calls and combines them once all
// complete. Any failure cancels the others and propagates.
func (c *Client) GetSessionInfo(ctx context.Context) (SessionInfo, error) {
	var info SessionInfo

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		name, err := c.GetSessionName(groupCtx)
		if err != nil {
			return err
		}
		info.Name = name
		return nil
	})
	group.Go(func() error {
		symbol, err := c.GetSessionSampleRate(groupCtx)
		if err != nil {
			return err
		}
		hertz, err := symbol.Hertz()
		if err != nil {
			return err
		}
		info.SampleRateSymbol = symbol
		info.SampleRate = hertz
		return nil
	})
	group.Go(func() error {
		rates, err := c.GetSessionTimeCodeRate(groupCtx)
		if err != nil {
			return err
		}
		fps, err := rates.CurrentSetting.FPS()
		if err != nil {
			return err
		}
		info.TimeCodeRate = rates.CurrentSetting
		info.FrameRate = fps
		info.PossibleTimeCodeRates = rates.PossibleSettings
		return nil
	})

	if err := group.Wait(); err != nil {
		return SessionInfo{}, err
	}
	return info, nil
}
