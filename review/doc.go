// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package review models reviewer comment batches and syncs them to a
// workstation session as timeline markers.
//
// Batches load from YAML or JSONC files. A batch either declares its
// frame rate or has one inferred from its timecode timestamps, which
// the compatibility validator cross-checks against the session before
// any marker is created.
//
// The Syncer dispatches one marker per comment with bounded
// concurrency and per-call deadlines. It fingerprints the session at
// batch start and aborts if the session changes mid-batch, so markers
// never land in a session the batch was not validated against.
// Per-comment failures are collected with their retry verdicts;
// nothing is retried automatically.
package review
