// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/cuebridge/cuebridge/lib/clock"
)

// ErrorType is one of the closed taxonomy of classified failures.
type ErrorType string

const (
	// ErrorConnectionRefused: the host application is not listening.
	ErrorConnectionRefused ErrorType = "CONNECTION_REFUSED"
	// ErrorConnectionTimeout: the host did not answer in time.
	ErrorConnectionTimeout ErrorType = "CONNECTION_TIMEOUT"
	// ErrorChannelFailure: the channel broke mid-call.
	ErrorChannelFailure ErrorType = "CHANNEL_FAILURE"
	// ErrorSDKVersionMismatch: client and host protocol versions
	// disagree.
	ErrorSDKVersionMismatch ErrorType = "SDK_VERSION_MISMATCH"
	// ErrorHostNotReady: the host is still loading.
	ErrorHostNotReady ErrorType = "PTSL_HOST_NOT_READY"
	// ErrorNotAvailable: the host's scripting interface is not
	// available in this state.
	ErrorNotAvailable ErrorType = "PTSL_NOT_AVAILABLE"
	// ErrorDisabled: the scripting preference is switched off.
	ErrorDisabled ErrorType = "PTSL_DISABLED"
	// ErrorSessionIDParse: registration succeeded on the wire but
	// the response carried no usable session id.
	ErrorSessionIDParse ErrorType = "SESSION_ID_PARSE_ERROR"
	// ErrorUnsupportedCommand: the host version does not implement
	// the command.
	ErrorUnsupportedCommand ErrorType = "UNSUPPORTED_COMMAND"
	// ErrorParsing: a payload violated its contract.
	ErrorParsing ErrorType = "PARSING_ERROR"
	// ErrorUnknown: the generic fallback.
	ErrorUnknown ErrorType = "UNKNOWN_ERROR"
)

// classification holds the fixed verdict for a taxonomy type.
type classification struct {
	retryable  bool
	userAction string
}

var taxonomy = map[ErrorType]classification{
	ErrorConnectionRefused:  {retryable: true, userAction: "Start the workstation application and try again."},
	ErrorConnectionTimeout:  {retryable: true, userAction: "Retry; check that the workstation is responsive."},
	ErrorChannelFailure:     {retryable: false, userAction: "Inspect transport and scripting-service health."},
	ErrorSDKVersionMismatch: {retryable: false, userAction: "Align the client and workstation protocol versions."},
	ErrorHostNotReady:       {retryable: true, userAction: "Wait for the workstation to finish loading."},
	ErrorNotAvailable:       {retryable: true, userAction: "Ensure the workstation's scripting interface is enabled."},
	ErrorDisabled:           {retryable: true, userAction: "Enable the scripting preference in the workstation settings."},
	ErrorSessionIDParse:     {retryable: false, userAction: "Re-register the connection; treat the session as invalid."},
	ErrorUnsupportedCommand: {retryable: false, userAction: "This workstation version does not support the feature."},
	ErrorParsing:            {retryable: false, userAction: "Payload contract violated; report this as a bug."},
	ErrorUnknown:            {retryable: false, userAction: "Check the workstation logs for details."},
}

// ClassifiedError is the caller-visible form of every failure. It is
// immutable after creation.
type ClassifiedError struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	UserAction string
	Context    map[string]any
	Timestamp  time.Time

	// cause is the underlying error, when one exists.
	cause error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("ptsl: %s: %s", e.Type, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

// IsType reports whether err is a *ClassifiedError of the given
// taxonomy type.
func IsType(err error, errorType ErrorType) bool {
	var classified *ClassifiedError
	return errors.As(err, &classified) && classified.Type == errorType
}

// CommandError is the structured error payload the host returns
// inside a transport-successful response with a failed status.
type CommandError struct {
	// Type is a value from the host's command-error vocabulary.
	Type string `json:"command_error_type"`
	// Message is the host's human-readable description.
	Message string `json:"command_error_message"`
	// IsWarning marks errors the host considers non-fatal.
	IsWarning bool `json:"is_warning"`
}

// The host's command-error vocabulary.
const (
	HostErrorSDKVersionMismatch    = "SDKVersionMismatch"
	HostErrorHostNotReady          = "HostNotReady"
	HostErrorScriptingNotAvailable = "ScriptingNotAvailable"
	HostErrorScriptingDisabled     = "ScriptingDisabled"
	HostErrorUnsupportedCommand    = "UnsupportedCommand"
	HostErrorInvalidParameter      = "InvalidParameter"
	HostErrorOperationFailed       = "OperationFailed"
)

// commandErrorTypes maps every vocabulary entry to exactly one
// taxonomy type. Anything absent degrades to ErrorUnknown.
var commandErrorTypes = map[string]ErrorType{
	HostErrorSDKVersionMismatch:    ErrorSDKVersionMismatch,
	HostErrorHostNotReady:          ErrorHostNotReady,
	HostErrorScriptingNotAvailable: ErrorNotAvailable,
	HostErrorScriptingDisabled:     ErrorDisabled,
	HostErrorUnsupportedCommand:    ErrorUnsupportedCommand,
	HostErrorInvalidParameter:      ErrorParsing,
	HostErrorOperationFailed:       ErrorUnknown,
}

// Classifier turns transport failures and command-error payloads into
// ClassifiedErrors. Classification is total: any input yields some
// ClassifiedError, never a secondary failure.
type Classifier struct {
	clock clock.Clock
}

// NewClassifier returns a Classifier stamping errors with times from
// clk. nil means the real clock.
func NewClassifier(clk clock.Clock) *Classifier {
	if clk == nil {
		clk = clock.Real()
	}
	return &Classifier{clock: clk}
}

// Transport classifies a failure from the RPC boundary: dial errors,
// deadline expiry, connection loss. An err that is already a
// *ClassifiedError passes through unchanged.
func (c *Classifier) Transport(err error) *ClassifiedError {
	// The classifier is total: even a nil err yields a verdict.
	if err == nil {
		return c.newError(ErrorUnknown, "transport failure without detail", nil, nil)
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	errorType := ErrorUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err):
		errorType = ErrorConnectionTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		errorType = ErrorConnectionRefused
	case errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EACCES):
		errorType = ErrorChannelFailure
	case isChannelFailureText(err):
		errorType = ErrorChannelFailure
	}
	return c.newError(errorType, err.Error(), err, nil)
}

// Command classifies the structured error payload of a failed
// command. An unknown or empty vocabulary entry degrades to
// ErrorUnknown.
func (c *Classifier) Command(commandError CommandError) *ClassifiedError {
	errorType, ok := commandErrorTypes[commandError.Type]
	if !ok {
		errorType = ErrorUnknown
	}
	message := commandError.Message
	if message == "" {
		message = "command failed without detail"
	}
	return c.newError(errorType, message, nil, map[string]any{
		"command_error_type": commandError.Type,
		"is_warning":         commandError.IsWarning,
	})
}

// newError builds a ClassifiedError from the taxonomy. An errorType
// outside the taxonomy gets the ErrorUnknown verdict; the classifier
// must never fail.
func (c *Classifier) newError(errorType ErrorType, message string, cause error, context map[string]any) *ClassifiedError {
	verdict, ok := taxonomy[errorType]
	if !ok {
		errorType = ErrorUnknown
		verdict = taxonomy[ErrorUnknown]
	}
	return &ClassifiedError{
		Type:       errorType,
		Message:    message,
		Retryable:  verdict.retryable,
		UserAction: verdict.userAction,
		Context:    context,
		Timestamp:  c.clock.Now(),
		cause:      cause,
	}
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isChannelFailureText matches free-text transport failures that have
// no sentinel: mid-call connection loss and channel teardown.
func isChannelFailureText(err error) bool {
	text := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"channel",
		"connection reset",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}
