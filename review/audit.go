// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package review

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// auditEntry is one dispatch outcome in the audit log.
type auditEntry struct {
	Time      time.Time `json:"time"`
	Marker    string    `json:"marker"`
	Timestamp string    `json:"timestamp"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	ErrorType string    `json:"error_type,omitempty"`
}

// auditLog writes dispatch outcomes as zstd-compressed JSON lines.
// Batches can run to thousands of entries, so the log is compressed
// on the way down rather than post-hoc.
type auditLog struct {
	mu      sync.Mutex
	file    *os.File
	writer  *zstd.Encoder
	encoder *json.Encoder
}

func openAuditLog(path string) (*auditLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("review: open audit log: %w", err)
	}
	writer, err := zstd.NewWriter(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("review: audit log compressor: %w", err)
	}
	return &auditLog{
		file:    file,
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

func (l *auditLog) record(entry auditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// An audit write failure must not fail the batch; the markers
	// themselves matter more than the record of creating them.
	l.encoder.Encode(entry)
}

func (l *auditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Close(); err != nil {
		l.file.Close()
		return fmt.Errorf("review: flush audit log: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("review: close audit log: %w", err)
	}
	return nil
}
