// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package review

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/cuebridge/cuebridge/lib/clock"
	"github.com/cuebridge/cuebridge/marker"
	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/timefmt"
)

// ErrSessionChanged aborts a sync whose session was swapped or
// reconfigured mid-batch. Markers already created stay; the rest are
// not dispatched, because the batch was validated against the old
// session's parameters.
var ErrSessionChanged = errors.New("review: session changed mid-batch")

// staleCheckInterval is how many completions pass between session
// fingerprint re-verifications.
const staleCheckInterval = 50

// Host is the client surface a sync needs. Satisfied by ptsl.Client.
type Host interface {
	Session() (ptsl.Session, bool)
	GetSessionInfo(ctx context.Context) (ptsl.SessionInfo, error)
	SendCommand(ctx context.Context, command ptsl.CommandID, body any, opts ...ptsl.CallOption) (json.RawMessage, error)
}

// Progress reports one completed dispatch. Current counts actual
// completions, not issuance, so a progress bar never runs ahead of
// the host.
type Progress struct {
	Current int
	Total   int
	Percent float64
	Comment Comment
	Err     error
}

// Failure is one comment whose marker was not created. Retryable
// carries the classifier's verdict; the syncer itself never retries.
type Failure struct {
	Comment   Comment
	Err       error
	Retryable bool
}

// Result summarizes a sync run.
type Result struct {
	Total    int
	Created  int
	Failures []Failure

	// SessionFingerprint identifies the session parameters the batch
	// ran against, hex-encoded.
	SessionFingerprint string
}

// SyncerConfig holds configuration for creating a Syncer.
type SyncerConfig struct {
	// Host dispatches the marker commands. Required, and must hold a
	// registered session by the time Sync runs.
	Host Host

	// Concurrency bounds in-flight marker commands. Zero or one
	// means sequential dispatch in batch order.
	Concurrency int

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Clock stamps audit entries. If nil, the real clock is used.
	Clock clock.Clock

	// OnProgress, when set, is called after every completion.
	OnProgress func(Progress)

	// AuditPath, when set, writes a zstd-compressed JSON-lines
	// record of every dispatch outcome.
	AuditPath string
}

// Syncer turns comment batches into timeline markers.
type Syncer struct {
	host        Host
	concurrency int
	logger      *slog.Logger
	clock       clock.Clock
	onProgress  func(Progress)
	auditPath   string
}

// NewSyncer creates a syncer.
func NewSyncer(config SyncerConfig) (*Syncer, error) {
	if config.Host == nil {
		return nil, fmt.Errorf("review: Host is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Syncer{
		host:        config.Host,
		concurrency: concurrency,
		logger:      logger,
		clock:       clk,
		onProgress:  config.OnProgress,
		auditPath:   config.AuditPath,
	}, nil
}

// Sync creates one marker per comment. Each dispatch carries its own
// deadline (the host client's default). The returned Result is never
// nil, even when err is non-nil: it covers whatever work was done
// before the failure, which may be none.
func (s *Syncer) Sync(ctx context.Context, batch *Batch) (*Result, error) {
	result := &Result{Total: batch.Len()}

	session, ok := s.host.Session()
	if !ok {
		return result, fmt.Errorf("review: sync: %w", ptsl.ErrNotRegistered)
	}
	info, err := s.host.GetSessionInfo(ctx)
	if err != nil {
		return result, fmt.Errorf("review: fetch session info: %w", err)
	}

	converter, err := timefmt.NewConverter(info.SampleRate, info.FrameRate, s.logger)
	if err != nil {
		return result, fmt.Errorf("review: sync: %w", err)
	}
	builder, err := marker.NewBuilder(converter)
	if err != nil {
		return result, fmt.Errorf("review: sync: %w", err)
	}

	fingerprint := sessionFingerprint(session.ID, info)
	result.SessionFingerprint = hex.EncodeToString(fingerprint[:])

	var audit *auditLog
	if s.auditPath != "" {
		audit, err = openAuditLog(s.auditPath)
		if err != nil {
			return result, err
		}
		defer audit.Close()
	}

	s.logger.Info("sync starting", "comments", batch.Len(),
		"session", info.Name, "fingerprint", result.SessionFingerprint,
		"concurrency", s.concurrency)

	run := &syncRun{
		syncer:      s,
		batch:       batch,
		builder:     builder,
		sessionID:   session.ID,
		fingerprint: fingerprint,
		result:      result,
		audit:       audit,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, comment := range batch.Comments {
		comment := comment
		group.Go(func() error {
			return run.dispatch(groupCtx, comment)
		})
	}
	err = group.Wait()

	s.logger.Info("sync finished", "created", result.Created,
		"failed", len(result.Failures), "total", result.Total)
	return result, err
}

// syncRun is the mutable state of one Sync invocation.
type syncRun struct {
	syncer      *Syncer
	batch       *Batch
	builder     *marker.Builder
	sessionID   string
	fingerprint [32]byte
	result      *Result
	audit       *auditLog

	// mu guards completed and the result fields.
	mu        sync.Mutex
	completed int
}

// dispatch creates the marker for one comment and records the
// completion. A per-comment failure is collected, not propagated;
// only a stale session aborts the run.
func (run *syncRun) dispatch(ctx context.Context, comment Comment) error {
	// An earlier abort cancels the group context; skip the remaining
	// comments rather than recording them as failures.
	if err := ctx.Err(); err != nil {
		return err
	}
	err := run.createMarker(ctx, comment)
	return run.complete(ctx, comment, err)
}

func (run *syncRun) createMarker(ctx context.Context, comment Comment) error {
	location := marker.MainRuler
	if comment.Track != "" {
		location = marker.Track
	}
	body, err := run.builder.CreateMemoryLocation(marker.Spec{
		Name:       comment.markerName(),
		StartTime:  comment.Timestamp,
		Comments:   comment.markerComments(run.batch.Title),
		ColorIndex: comment.Color,
		Location:   location,
		TrackName:  comment.Track,
	})
	if err != nil {
		return err
	}
	_, err = run.syncer.host.SendCommand(ctx, ptsl.CommandCreateMemoryLocation, body)
	return err
}

// complete records one outcome, reports progress, and periodically
// re-verifies the session fingerprint. A dispatch failure also
// triggers a verification, since a swapped session is a likely cause.
func (run *syncRun) complete(ctx context.Context, comment Comment, dispatchErr error) error {
	run.mu.Lock()
	run.completed++
	current := run.completed
	if dispatchErr == nil {
		run.result.Created++
	} else {
		run.result.Failures = append(run.result.Failures, Failure{
			Comment:   comment,
			Err:       dispatchErr,
			Retryable: isRetryable(dispatchErr),
		})
	}
	checkDue := dispatchErr != nil || current%staleCheckInterval == 0
	run.mu.Unlock()

	if run.audit != nil {
		run.audit.record(run.auditEntry(comment, dispatchErr))
	}
	if dispatchErr != nil {
		run.syncer.logger.Warn("marker not created", "marker", comment.markerName(),
			"timestamp", comment.Timestamp, "error", dispatchErr)
	}
	if handler := run.syncer.onProgress; handler != nil {
		handler(Progress{
			Current: current,
			Total:   run.result.Total,
			Percent: 100 * float64(current) / float64(run.result.Total),
			Comment: comment,
			Err:     dispatchErr,
		})
	}

	if checkDue && current < run.result.Total {
		if err := run.verifySession(ctx); err != nil {
			return err
		}
	}
	return nil
}

// verifySession re-fetches session parameters and compares the
// fingerprint captured at batch start.
func (run *syncRun) verifySession(ctx context.Context) error {
	session, ok := run.syncer.host.Session()
	if !ok || session.ID != run.sessionID {
		return fmt.Errorf("session %q is gone: %w", run.sessionID, ErrSessionChanged)
	}
	info, err := run.syncer.host.GetSessionInfo(ctx)
	if err != nil {
		return fmt.Errorf("review: verify session: %w", err)
	}
	if sessionFingerprint(session.ID, info) != run.fingerprint {
		return fmt.Errorf("session %q parameters changed (now %d Hz, %g fps): %w",
			info.Name, info.SampleRate, info.FrameRate, ErrSessionChanged)
	}
	return nil
}

func (run *syncRun) auditEntry(comment Comment, dispatchErr error) auditEntry {
	entry := auditEntry{
		Time:      run.syncer.clock.Now(),
		Marker:    comment.markerName(),
		Timestamp: comment.Timestamp,
		Outcome:   "created",
	}
	if dispatchErr != nil {
		entry.Outcome = "failed"
		entry.Error = dispatchErr.Error()
		var classified *ptsl.ClassifiedError
		if errors.As(dispatchErr, &classified) {
			entry.ErrorType = string(classified.Type)
		}
	}
	return entry
}

func isRetryable(err error) bool {
	var classified *ptsl.ClassifiedError
	return errors.As(err, &classified) && classified.Retryable
}

// sessionFingerprint hashes the parameters marker placement depends
// on. A changed fingerprint means previously validated conversions no
// longer hold.
func sessionFingerprint(sessionID string, info ptsl.SessionInfo) [32]byte {
	return blake3.Sum256(fmt.Appendf(nil, "%s|%d|%g", sessionID, info.SampleRate, info.FrameRate))
}
