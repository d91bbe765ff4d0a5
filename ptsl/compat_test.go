// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl_test

import (
	"context"
	"testing"

	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/ptsl/ptsltest"
)

// fakeBatch satisfies CommentBatch with fixed answers. fps fills
// both rate methods, the way a batch with a declared rate behaves;
// inferred overrides the implied rate for inference-only batches.
type fakeBatch struct {
	count    int
	fps      float64
	inferred float64
}

func (b fakeBatch) Len() int                   { return b.count }
func (b fakeBatch) DeclaredFrameRate() float64 { return b.fps }
func (b fakeBatch) ImpliedFrameRate() float64 {
	if b.fps > 0 {
		return b.fps
	}
	return b.inferred
}

func goodSession() ptsl.SessionInfo {
	return ptsl.SessionInfo{
		Name:             "Mix v3",
		SampleRateSymbol: ptsl.SampleRate48000,
		SampleRate:       48000,
		TimeCodeRate:     ptsl.TimeCodeRate2997,
		FrameRate:        29.97,
	}
}

func hasIssue(issues []ptsl.Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestCompatibilityCleanSession(t *testing.T) {
	report := ptsl.EvaluateCompatibility(goodSession(), fakeBatch{count: 10, fps: 29.97})
	if !report.IsCompatible || !report.MarkerCreationReady {
		t.Fatalf("clean session reported incompatible: %+v", report)
	}
	if len(report.Errors)+len(report.Warnings)+len(report.Recommendations) != 0 {
		t.Errorf("unexpected findings: %+v", report)
	}
	if report.Summary == "" {
		t.Error("summary is empty")
	}
}

func TestCompatibilityFrameRateMismatch(t *testing.T) {
	// A batch authored against 24 fps film timecode pushed at a
	// 29.97 session must be blocked, not silently shifted.
	report := ptsl.EvaluateCompatibility(goodSession(), fakeBatch{count: 5, fps: 24})
	if report.IsCompatible || report.MarkerCreationReady {
		t.Fatal("frame rate mismatch did not block marker creation")
	}
	if !hasIssue(report.Errors, ptsl.IssueFrameRateMismatch) {
		t.Errorf("errors = %+v, want FRAME_RATE_MISMATCH", report.Errors)
	}
}

func TestCompatibilityInferredRateIsLowerBound(t *testing.T) {
	// A 29.97 batch whose frame fields all stay below 24 infers 24;
	// that must not block a 29.97 session, since 29.97 fits every
	// frame field just as well.
	report := ptsl.EvaluateCompatibility(goodSession(), fakeBatch{count: 5, inferred: 24})
	if hasIssue(report.Errors, ptsl.IssueFrameRateMismatch) {
		t.Errorf("inference-only lower bound flagged as mismatch: %+v", report.Errors)
	}
	if !report.IsCompatible {
		t.Errorf("report = %+v", report)
	}

	// The inferred rate still blocks when the session cannot fit the
	// batch's frame fields at all.
	info := goodSession()
	info.TimeCodeRate = ptsl.TimeCodeRate24
	info.FrameRate = 24
	report = ptsl.EvaluateCompatibility(info, fakeBatch{count: 5, inferred: 30})
	if !hasIssue(report.Errors, ptsl.IssueFrameRateMismatch) {
		t.Errorf("errors = %+v, want FRAME_RATE_MISMATCH for unfittable frame fields", report.Errors)
	}
}

func TestCompatibilityFrameRateTolerance(t *testing.T) {
	// 23.976 vs the exact NTSC ratio differs by well under the
	// comparison tolerance.
	info := goodSession()
	info.TimeCodeRate = ptsl.TimeCodeRate23976
	info.FrameRate = 23.976
	report := ptsl.EvaluateCompatibility(info, fakeBatch{count: 5, fps: 24000.0 / 1001.0})
	if hasIssue(report.Errors, ptsl.IssueFrameRateMismatch) {
		t.Errorf("near-identical rates flagged as mismatch: %+v", report.Errors)
	}
}

func TestCompatibilityEmptyBatch(t *testing.T) {
	report := ptsl.EvaluateCompatibility(goodSession(), fakeBatch{count: 0, fps: 24})
	if !report.IsCompatible {
		t.Fatal("empty batch must warn, not block")
	}
	if !hasIssue(report.Warnings, ptsl.IssueNoCommentsFound) {
		t.Errorf("warnings = %+v, want NO_COMMENTS_FOUND", report.Warnings)
	}
	// An empty batch has no implied frame rate worth checking.
	if hasIssue(report.Errors, ptsl.IssueFrameRateMismatch) {
		t.Error("empty batch should skip the frame rate check")
	}
}

func TestCompatibilityLargeBatch(t *testing.T) {
	report := ptsl.EvaluateCompatibility(goodSession(), fakeBatch{count: 1001, fps: 29.97})
	if !report.IsCompatible {
		t.Fatal("large batch must warn, not block")
	}
	if !hasIssue(report.Warnings, ptsl.IssueLargeBatch) {
		t.Errorf("warnings = %+v, want LARGE_BATCH", report.Warnings)
	}
}

func TestCompatibilityNilBatch(t *testing.T) {
	report := ptsl.EvaluateCompatibility(goodSession(), nil)
	if !report.IsCompatible {
		t.Errorf("session-only validation failed: %+v", report)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("nil batch produced batch findings: %+v", report.Warnings)
	}
}

func TestCompatibilitySessionErrors(t *testing.T) {
	info := ptsl.SessionInfo{
		Name:         "",
		SampleRate:   22050,
		TimeCodeRate: ptsl.TimeCodeRateSymbol("TCR_119"),
		FrameRate:    119,
	}
	report := ptsl.EvaluateCompatibility(info, nil)
	if report.IsCompatible || report.MarkerCreationReady {
		t.Fatal("broken session reported compatible")
	}
	for _, code := range []string{
		ptsl.IssueSessionNameEmpty,
		ptsl.IssueUnsupportedSampleRate,
		ptsl.IssueUnsupportedTimeCodeRate,
	} {
		if !hasIssue(report.Errors, code) {
			t.Errorf("errors = %+v, want %s", report.Errors, code)
		}
	}
}

func TestCompatibilityDropFrameRecommendation(t *testing.T) {
	info := goodSession()
	info.TimeCodeRate = ptsl.TimeCodeRate2997Drop
	report := ptsl.EvaluateCompatibility(info, fakeBatch{count: 3, fps: 29.97})
	if !report.IsCompatible {
		t.Fatalf("drop-frame session must stay compatible: %+v", report)
	}
	if !hasIssue(report.Recommendations, ptsl.IssueDropFrameTimecode) {
		t.Errorf("recommendations = %+v, want DROP_FRAME_TIMECODE", report.Recommendations)
	}
}

func TestValidateSessionCompatibility(t *testing.T) {
	server := ptsltest.NewServer(t)
	sessionHandlers(server, "Mix v3")

	client := newTestClient(t, server)
	if _, err := client.ConnectAndRegister(context.Background(), "Cuebridge", "app"); err != nil {
		t.Fatalf("ConnectAndRegister failed: %v", err)
	}

	report, err := client.ValidateSessionCompatibility(context.Background(), fakeBatch{count: 2, fps: 29.97})
	if err != nil {
		t.Fatalf("ValidateSessionCompatibility failed: %v", err)
	}
	if !report.MarkerCreationReady {
		t.Errorf("live session not ready: %+v", report)
	}
	if report.SessionInfo.Name != "Mix v3" {
		t.Errorf("report session info = %+v", report.SessionInfo)
	}
}
