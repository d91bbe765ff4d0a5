// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cuebridge/cuebridge/lib/codec"
)

// Frame type constants for the channel wire format. Each frame is a
// 5-byte header (1 byte type + 4 byte big-endian payload length)
// followed by a CBOR payload.
const (
	// FrameRequest carries a Request envelope. Client→host only.
	FrameRequest byte = 0x01

	// FrameResponse carries the single Response of a unary call.
	// Host→client only.
	FrameResponse byte = 0x02

	// FrameStreamItem carries one Response of a streaming call.
	// Host→client only; zero or more per call.
	FrameStreamItem byte = 0x03

	// FrameStreamEnd carries the final Response of a streaming call.
	// Its status is the call's completion status.
	FrameStreamEnd byte = 0x04
)

// frameHeaderLength is the fixed size of a frame header.
const frameHeaderLength = 5

// maxPayloadLength caps a frame payload. Command bodies are small
// JSON documents; anything near this limit is a protocol violation.
const maxPayloadLength = 16 * 1024 * 1024

// Header is the envelope header shared by requests and responses.
type Header struct {
	// TaskID matches a response to its request. Unique per process
	// lifetime.
	TaskID string `cbor:"task_id"`

	// Command identifies the operation.
	Command CommandID `cbor:"command"`

	// Version, VersionMinor, VersionRevision form the protocol
	// version triple this client speaks.
	Version         int `cbor:"version"`
	VersionMinor    int `cbor:"version_minor"`
	VersionRevision int `cbor:"version_revision"`

	// SessionID is the registered session token. Empty only on the
	// RegisterConnection command itself.
	SessionID string `cbor:"session_id,omitempty"`
}

// Request is a command envelope sent to the scripting host.
type Request struct {
	Header   Header `cbor:"header"`
	BodyJSON string `cbor:"body_json,omitempty"`
}

// CommandStatus is the host's completion status for a command. It is
// distinct from transport success: a delivered response can still
// report a failed command.
type CommandStatus int

const (
	// StatusPending means the host queued the command.
	StatusPending CommandStatus = iota
	// StatusInProgress means the host is executing the command.
	// Streaming calls report progress with this status.
	StatusInProgress
	// StatusCompleted means the command succeeded.
	StatusCompleted
	// StatusFailed means the command failed; ErrorJSON carries the
	// structured error payload.
	StatusFailed
)

func (s CommandStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Response is a command envelope received from the scripting host.
type Response struct {
	Header   Header        `cbor:"header"`
	Status   CommandStatus `cbor:"status"`
	BodyJSON string        `cbor:"body_json,omitempty"`
	ErrorJSON string       `cbor:"error_json,omitempty"`
}

// Frame is one wire frame: a type byte and its CBOR payload.
type Frame struct {
	Type    byte
	Payload []byte
}

// WriteFrame writes a framed message to w.
func WriteFrame(w io.Writer, frame Frame) error {
	var header [frameHeaderLength]byte
	header[0] = frame.Type
	binary.BigEndian.PutUint32(header[1:5], uint32(len(frame.Payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(frame.Payload) > 0 {
		if _, err := w.Write(frame.Payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads one framed message from r. Returns an error if the
// stream is malformed or the payload exceeds maxPayloadLength.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}
	payloadLength := binary.BigEndian.Uint32(header[1:5])
	if payloadLength > maxPayloadLength {
		return Frame{}, fmt.Errorf("frame payload length %d exceeds maximum %d", payloadLength, maxPayloadLength)
	}
	payload := make([]byte, payloadLength)
	if payloadLength > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return Frame{Type: header[0], Payload: payload}, nil
}

// EncodeRequest encodes request into a FrameRequest frame.
func EncodeRequest(request Request) (Frame, error) {
	payload, err := codec.Marshal(request)
	if err != nil {
		return Frame{}, fmt.Errorf("encode request %s: %w", request.Header.TaskID, err)
	}
	return Frame{Type: FrameRequest, Payload: payload}, nil
}

// DecodeRequest decodes a FrameRequest payload.
func DecodeRequest(frame Frame) (Request, error) {
	if frame.Type != FrameRequest {
		return Request{}, fmt.Errorf("frame type 0x%02x is not a request", frame.Type)
	}
	var request Request
	if err := codec.Unmarshal(frame.Payload, &request); err != nil {
		return Request{}, fmt.Errorf("decode request payload: %w", err)
	}
	return request, nil
}

// EncodeResponse encodes response into a frame of the given type
// (FrameResponse, FrameStreamItem, or FrameStreamEnd).
func EncodeResponse(frameType byte, response Response) (Frame, error) {
	payload, err := codec.Marshal(response)
	if err != nil {
		return Frame{}, fmt.Errorf("encode response %s: %w", response.Header.TaskID, err)
	}
	return Frame{Type: frameType, Payload: payload}, nil
}

// DecodeResponse decodes a response-carrying frame.
func DecodeResponse(frame Frame) (Response, error) {
	switch frame.Type {
	case FrameResponse, FrameStreamItem, FrameStreamEnd:
	default:
		return Response{}, fmt.Errorf("frame type 0x%02x is not a response", frame.Type)
	}
	var response Response
	if err := codec.Unmarshal(frame.Payload, &response); err != nil {
		return Response{}, fmt.Errorf("decode response payload: %w", err)
	}
	return response, nil
}
