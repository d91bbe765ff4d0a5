// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/cuebridge/cuebridge/ptsl"
)

// fakeHost scripts the client surface a sync touches.
type fakeHost struct {
	mu       sync.Mutex
	session  ptsl.Session
	hasState bool
	info     ptsl.SessionInfo
	infoErr  error
	sent     []ptsl.CreateMemoryLocationRequest
	fail     func(body ptsl.CreateMemoryLocationRequest) error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		session:  ptsl.Session{ID: "s1"},
		hasState: true,
		info: ptsl.SessionInfo{
			Name:       "Mix v3",
			SampleRate: 48000,
			FrameRate:  29.97,
		},
	}
}

func (h *fakeHost) Session() (ptsl.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session, h.hasState
}

func (h *fakeHost) GetSessionInfo(ctx context.Context) (ptsl.SessionInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.infoErr != nil {
		return ptsl.SessionInfo{}, h.infoErr
	}
	return h.info, nil
}

func (h *fakeHost) SendCommand(ctx context.Context, command ptsl.CommandID, body any, opts ...ptsl.CallOption) (json.RawMessage, error) {
	request, ok := body.(ptsl.CreateMemoryLocationRequest)
	if !ok {
		return nil, errors.New("fakeHost: unexpected body type")
	}
	h.mu.Lock()
	fail := h.fail
	h.mu.Unlock()
	if fail != nil {
		if err := fail(request); err != nil {
			return nil, err
		}
	}
	h.mu.Lock()
	h.sent = append(h.sent, request)
	h.mu.Unlock()
	return json.RawMessage(`{}`), nil
}

func (h *fakeHost) setFrameRate(fps float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info.FrameRate = fps
}

func smallBatch(n int) *Batch {
	batch := &Batch{Title: "Round 2", FrameRate: 29.97}
	for i := 0; i < n; i++ {
		batch.Comments = append(batch.Comments, Comment{
			Author:    "Dana",
			Text:      "note",
			Timestamp: "01:00:30:15",
		})
	}
	return batch
}

func TestSyncCreatesMarkers(t *testing.T) {
	host := newFakeHost()
	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}

	result, err := syncer.Sync(context.Background(), smallBatch(3))
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Created != 3 || result.Total != 3 || len(result.Failures) != 0 {
		t.Errorf("result = %+v", result)
	}
	if result.SessionFingerprint == "" {
		t.Error("result carries no session fingerprint")
	}
	if len(host.sent) != 3 {
		t.Fatalf("host saw %d commands", len(host.sent))
	}
	if host.sent[0].Comments == "" || !strings.Contains(host.sent[0].Comments, "Round 2") {
		t.Errorf("marker comments = %q", host.sent[0].Comments)
	}
}

func TestSyncProgressCountsCompletions(t *testing.T) {
	host := newFakeHost()
	var reports []Progress
	syncer, err := NewSyncer(SyncerConfig{
		Host:       host,
		OnProgress: func(p Progress) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}

	if _, err := syncer.Sync(context.Background(), smallBatch(4)); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(reports) != 4 {
		t.Fatalf("got %d progress reports, want 4", len(reports))
	}
	for i, report := range reports {
		if report.Current != i+1 || report.Total != 4 {
			t.Errorf("report %d = %d/%d", i, report.Current, report.Total)
		}
	}
	if last := reports[3]; last.Percent != 100 {
		t.Errorf("final percent = %g", last.Percent)
	}
}

func TestSyncCollectsFailuresWithoutRetrying(t *testing.T) {
	host := newFakeHost()
	calls := 0
	host.fail = func(body ptsl.CreateMemoryLocationRequest) error {
		calls++
		if calls == 2 {
			return &ptsl.ClassifiedError{
				Type:      ptsl.ErrorHostNotReady,
				Message:   "still loading",
				Retryable: true,
			}
		}
		return nil
	}

	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	result, err := syncer.Sync(context.Background(), smallBatch(3))
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Created != 2 || len(result.Failures) != 1 {
		t.Fatalf("result = %+v", result)
	}
	failure := result.Failures[0]
	if !failure.Retryable || !ptsl.IsType(failure.Err, ptsl.ErrorHostNotReady) {
		t.Errorf("failure = %+v", failure)
	}
	if calls != 3 {
		t.Errorf("host saw %d dispatches, want 3 (no auto-retry)", calls)
	}
}

func TestSyncInvalidTimestampIsPerCommentFailure(t *testing.T) {
	host := newFakeHost()
	batch := smallBatch(2)
	batch.Comments[1].Timestamp = "01:00:30:29" // frame 29 invalid at 29.97

	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	result, err := syncer.Sync(context.Background(), batch)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Created != 1 || len(result.Failures) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Failures[0].Retryable {
		t.Error("a build failure is not retryable")
	}
}

func TestSyncAbortsWhenSessionChanges(t *testing.T) {
	host := newFakeHost()
	// Swap the session's frame rate after the first failure so the
	// failure-triggered verification sees a changed fingerprint.
	host.fail = func(body ptsl.CreateMemoryLocationRequest) error {
		host.setFrameRate(24)
		return errors.New("command rejected")
	}

	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	result, err := syncer.Sync(context.Background(), smallBatch(5))
	if !errors.Is(err, ErrSessionChanged) {
		t.Fatalf("err = %v, want ErrSessionChanged", err)
	}
	if result == nil {
		t.Fatal("partial result missing on abort")
	}
	if result.Created+len(result.Failures) >= result.Total {
		t.Errorf("abort did not stop remaining work: %+v", result)
	}
}

func TestSyncRequiresRegisteredSession(t *testing.T) {
	host := newFakeHost()
	host.hasState = false

	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	result, err := syncer.Sync(context.Background(), smallBatch(1))
	if !errors.Is(err, ptsl.ErrNotRegistered) {
		t.Errorf("err = %v, want ErrNotRegistered", err)
	}
	if result == nil {
		t.Error("result is nil on early failure")
	}
}

func TestSyncResultNeverNil(t *testing.T) {
	// Callers print result.Created/result.Failures even when Sync
	// errors, so every exit path must return a usable result.
	host := newFakeHost()
	host.infoErr = &ptsl.ClassifiedError{
		Type:    ptsl.ErrorChannelFailure,
		Message: "connection dropped",
	}

	syncer, err := NewSyncer(SyncerConfig{Host: host})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	result, err := syncer.Sync(context.Background(), smallBatch(3))
	if err == nil {
		t.Fatal("Sync succeeded with a failing session query")
	}
	if result == nil {
		t.Fatal("result is nil when the session query fails")
	}
	if result.Total != 3 || result.Created != 0 || len(result.Failures) != 0 {
		t.Errorf("early-failure result = %+v", result)
	}
}

func TestSyncWritesAuditLog(t *testing.T) {
	host := newFakeHost()
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl.zst")

	syncer, err := NewSyncer(SyncerConfig{Host: host, AuditPath: auditPath})
	if err != nil {
		t.Fatalf("NewSyncer failed: %v", err)
	}
	if _, err := syncer.Sync(context.Background(), smallBatch(2)); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	file, err := os.Open(auditPath)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer file.Close()
	reader, err := zstd.NewReader(file)
	if err != nil {
		t.Fatalf("audit log is not zstd: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("audit log has %d entries, want 2", len(lines))
	}
	var entry struct {
		Outcome string `json:"outcome"`
		Marker  string `json:"marker"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("audit entry not JSON: %v", err)
	}
	if entry.Outcome != "created" || entry.Marker == "" {
		t.Errorf("audit entry = %+v", entry)
	}
}
