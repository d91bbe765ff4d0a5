// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import (
	"context"
	"fmt"
	"math"
)

// Issue codes used in compatibility reports.
const (
	IssueSessionNameEmpty       = "SESSION_NAME_EMPTY"
	IssueUnsupportedSampleRate  = "UNSUPPORTED_SAMPLE_RATE"
	IssueUnsupportedTimeCodeRate = "UNSUPPORTED_TIMECODE_RATE"
	IssueDropFrameTimecode      = "DROP_FRAME_TIMECODE"
	IssueFrameRateMismatch      = "FRAME_RATE_MISMATCH"
	IssueNoCommentsFound        = "NO_COMMENTS_FOUND"
	IssueLargeBatch             = "LARGE_BATCH"
)

// largeBatchThreshold is the comment count above which dispatch time
// becomes noticeable and the report carries a performance warning.
const largeBatchThreshold = 1000

// compatibleSampleRates are the session sample rates marker creation
// has been verified against.
var compatibleSampleRates = map[int]bool{
	44100: true, 48000: true, 88200: true,
	96000: true, 176400: true, 192000: true,
}

// compatibleTimeCodeRates are the timecode rates marker creation has
// been verified against. Drop-frame variants are compatible but get a
// recommendation, not an error.
var compatibleTimeCodeRates = map[TimeCodeRateSymbol]bool{
	TimeCodeRate23976: true, TimeCodeRate24: true, TimeCodeRate25: true,
	TimeCodeRate2997: true, TimeCodeRate2997Drop: true,
	TimeCodeRate30: true, TimeCodeRate30Drop: true,
	TimeCodeRate5994: true, TimeCodeRate60: true,
}

// CommentBatch is the view of an incoming comment batch the
// compatibility validator needs. Implemented by review.Batch.
type CommentBatch interface {
	// Len is the number of comments.
	Len() int
	// DeclaredFrameRate is the frame rate the batch explicitly
	// declares, or 0 when it declares none.
	DeclaredFrameRate() float64
	// ImpliedFrameRate is the frame rate the batch's timecodes
	// imply: the declared rate when present, otherwise the smallest
	// standard rate that fits every timecode's frame field. 0 when
	// unknown. Without a declaration this is a lower bound, not an
	// exact rate.
	ImpliedFrameRate() float64
}

// Issue is one finding in a compatibility report.
type Issue struct {
	Code    string
	Message string
}

// CompatibilityReport is the outcome of pre-flighting a marker
// creation batch against the current session. Computed on demand,
// never persisted.
type CompatibilityReport struct {
	SessionInfo SessionInfo

	// IsCompatible is true when no blocking errors were found.
	IsCompatible bool

	Errors          []Issue
	Warnings        []Issue
	Recommendations []Issue

	// MarkerCreationReady is true only when IsCompatible holds and
	// zero blocking errors were found.
	MarkerCreationReady bool

	Summary string
}

// ValidateSessionCompatibility fetches current session info and
// evaluates it, optionally against an incoming comment batch (nil
// means session-only validation). The returned error covers only the
// session queries themselves; findings live in the report.
func (c *Client) ValidateSessionCompatibility(ctx context.Context, batch CommentBatch) (*CompatibilityReport, error) {
	info, err := c.GetSessionInfo(ctx)
	if err != nil {
		return nil, err
	}
	return EvaluateCompatibility(info, batch), nil
}

// EvaluateCompatibility is the pure half of compatibility validation:
// session parameters plus an optional batch in, report out.
func EvaluateCompatibility(info SessionInfo, batch CommentBatch) *CompatibilityReport {
	report := &CompatibilityReport{SessionInfo: info}

	if info.Name == "" {
		report.Errors = append(report.Errors, Issue{
			Code:    IssueSessionNameEmpty,
			Message: "no session is open, or the session has no name",
		})
	}
	if !compatibleSampleRates[info.SampleRate] {
		report.Errors = append(report.Errors, Issue{
			Code:    IssueUnsupportedSampleRate,
			Message: fmt.Sprintf("session sample rate %d Hz is not in the supported set", info.SampleRate),
		})
	}
	if !compatibleTimeCodeRates[info.TimeCodeRate] {
		report.Errors = append(report.Errors, Issue{
			Code:    IssueUnsupportedTimeCodeRate,
			Message: fmt.Sprintf("session timecode rate %q is not in the supported set", string(info.TimeCodeRate)),
		})
	} else if info.TimeCodeRate.DropFrame() {
		report.Recommendations = append(report.Recommendations, Issue{
			Code: IssueDropFrameTimecode,
			Message: "session uses drop-frame timecode; supply comment times as samples or " +
				"milliseconds to avoid frame-counting ambiguity",
		})
	}

	if batch != nil {
		if batch.Len() == 0 {
			report.Warnings = append(report.Warnings, Issue{
				Code:    IssueNoCommentsFound,
				Message: "comment batch is empty; nothing to create",
			})
		} else {
			// A declared rate must match exactly. An inferred rate
			// is only a lower bound on what the batch's timecodes
			// need, so it blocks only when the session rate cannot
			// fit them.
			if declared := batch.DeclaredFrameRate(); declared > 0 && !sameFrameRate(declared, info.FrameRate) {
				report.Errors = append(report.Errors, Issue{
					Code: IssueFrameRateMismatch,
					Message: fmt.Sprintf("comment batch declares %g fps but the session runs %g fps; "+
						"markers would land at the wrong instants", declared, info.FrameRate),
				})
			} else if implied := batch.ImpliedFrameRate(); declared == 0 && implied > info.FrameRate+0.001 {
				report.Errors = append(report.Errors, Issue{
					Code: IssueFrameRateMismatch,
					Message: fmt.Sprintf("comment batch timecodes need at least %g fps but the session "+
						"runs %g fps; markers would land at the wrong instants", implied, info.FrameRate),
				})
			}
			if batch.Len() > largeBatchThreshold {
				report.Warnings = append(report.Warnings, Issue{
					Code:    IssueLargeBatch,
					Message: fmt.Sprintf("batch has %d comments; dispatch will take a while", batch.Len()),
				})
			}
		}
	}

	report.IsCompatible = len(report.Errors) == 0
	report.MarkerCreationReady = report.IsCompatible
	report.Summary = summarize(report)
	return report
}

func sameFrameRate(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func summarize(report *CompatibilityReport) string {
	if report.MarkerCreationReady {
		return fmt.Sprintf("session %q is ready for marker creation (%d Hz, %g fps)",
			report.SessionInfo.Name, report.SessionInfo.SampleRate, report.SessionInfo.FrameRate)
	}
	return fmt.Sprintf("session %q is not ready: %d blocking error(s), %d warning(s)",
		report.SessionInfo.Name, len(report.Errors), len(report.Warnings))
}
