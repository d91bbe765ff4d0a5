// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskid generates process-unique task identifiers for
// command envelopes. The scripting host matches responses to requests
// by task id, so ids must be unique for the life of the process;
// unpredictability is not required.
package taskid
