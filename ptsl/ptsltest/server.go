// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsltest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/cuebridge/cuebridge/ptsl"
)

// SessionID is the session token the default registration handler
// issues.
const SessionID = "test-session-1"

// Handler produces the single response of a unary command.
type Handler func(request ptsl.Request) ptsl.Response

// StreamHandler produces the responses of a streaming command. All
// but the last are sent as stream items; the last is the stream end
// and its status decides the call's outcome.
type StreamHandler func(request ptsl.Request) []ptsl.Response

// Server is an in-memory scripting host. Each request is handled in
// its own goroutine, so concurrent outstanding calls interleave the
// way a real host's do.
type Server struct {
	listener net.Listener

	mu             sync.Mutex
	handlers       map[ptsl.CommandID]Handler
	streamHandlers map[ptsl.CommandID]StreamHandler
	conns          map[net.Conn]struct{}
	closed         bool
}

// NewServer starts a server on a loopback TCP port. It answers
// RegisterConnection with SessionID out of the box; everything else
// fails with UnsupportedCommand until a handler is registered. The
// server shuts down via t.Cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ptsltest: listen: %v", err)
	}

	server := &Server{
		listener:       listener,
		handlers:       make(map[ptsl.CommandID]Handler),
		streamHandlers: make(map[ptsl.CommandID]StreamHandler),
		conns:          make(map[net.Conn]struct{}),
	}
	server.Handle(ptsl.CommandRegisterConnection, func(request ptsl.Request) ptsl.Response {
		return Completed(request, fmt.Sprintf(`{"session_id": %q}`, SessionID))
	})

	go server.serve()
	t.Cleanup(server.Close)
	return server
}

// Address returns the server's TCP address for a client dialer.
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Handle registers (or replaces) the unary handler for a command.
func (s *Server) Handle(command ptsl.CommandID, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[command] = handler
}

// HandleStream registers the streaming handler for a command.
func (s *Server) HandleStream(command ptsl.CommandID, handler StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamHandlers[command] = handler
}

// Close shuts the server down, dropping live connections so clients
// observe a channel failure. Idempotent.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	s.listener.Close()
	for _, conn := range conns {
		conn.Close()
	}
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	var writeMu sync.Mutex
	for {
		frame, err := ptsl.ReadFrame(conn)
		if err != nil {
			return
		}
		request, err := ptsl.DecodeRequest(frame)
		if err != nil {
			continue
		}
		go s.dispatch(conn, &writeMu, request)
	}
}

func (s *Server) dispatch(conn net.Conn, writeMu *sync.Mutex, request ptsl.Request) {
	s.mu.Lock()
	handler, isUnary := s.handlers[request.Header.Command]
	streamHandler, isStream := s.streamHandlers[request.Header.Command]
	s.mu.Unlock()

	write := func(frameType byte, response ptsl.Response) {
		frame, err := ptsl.EncodeResponse(frameType, response)
		if err != nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		ptsl.WriteFrame(conn, frame)
	}

	switch {
	case isStream:
		responses := streamHandler(request)
		for i, response := range responses {
			if i == len(responses)-1 {
				write(ptsl.FrameStreamEnd, response)
			} else {
				write(ptsl.FrameStreamItem, response)
			}
		}
	case isUnary:
		write(ptsl.FrameResponse, handler(request))
	default:
		write(ptsl.FrameResponse, Failed(request, ptsl.HostErrorUnsupportedCommand,
			fmt.Sprintf("no handler for %s", request.Header.Command)))
	}
}

// Completed builds a successful response echoing the request header.
func Completed(request ptsl.Request, bodyJSON string) ptsl.Response {
	return ptsl.Response{
		Header:   request.Header,
		Status:   ptsl.StatusCompleted,
		BodyJSON: bodyJSON,
	}
}

// InProgress builds a stream-item response echoing the request header.
func InProgress(request ptsl.Request, bodyJSON string) ptsl.Response {
	return ptsl.Response{
		Header:   request.Header,
		Status:   ptsl.StatusInProgress,
		BodyJSON: bodyJSON,
	}
}

// Failed builds a failed response carrying a structured command error
// from the host vocabulary.
func Failed(request ptsl.Request, hostErrorType, message string) ptsl.Response {
	payload, err := json.Marshal(ptsl.CommandError{
		Type:    hostErrorType,
		Message: message,
	})
	if err != nil {
		panic(errors.New("ptsltest: encode command error: " + err.Error()))
	}
	return ptsl.Response{
		Header:    request.Header,
		Status:    ptsl.StatusFailed,
		ErrorJSON: string(payload),
	}
}
