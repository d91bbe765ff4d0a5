// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package marker builds scripting-host command bodies for timeline
// markers and tracks.
//
// A Spec describes one marker the way a reviewer's comment does: a
// name, a start time in any supported format, an optional end time,
// and placement. The Builder turns a Spec into a CreateMemoryLocation
// body, selecting the protocol's reference and location enumerations
// from the detected time format. Human-facing track descriptions
// ("mono", "stereo", "audio") map to protocol values by exhaustive
// switch; an unrecognized value is an error, never a silent default.
package marker
