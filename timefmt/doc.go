// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package timefmt detects, validates, and converts the five time
// encodings a workstation session can express:
//
//   - Timecode "HH:MM:SS:FF" (";" before the frame field marks
//     drop-frame), tied to the session frame rate
//   - Samples, a raw sample count
//   - Bars|Beats|Ticks, a musical position
//   - Milliseconds, a decimal duration
//   - Feet+Frames, 35 mm film length (16 frames per foot, 24 fps)
//
// A Converter is parameterized by one session's sample rate and frame
// rate and reduces every encoding to a canonical integer sample count.
// Bars|Beats|Ticks is the exception: without tempo information there
// is no sample-domain equivalent, and conversion fails with
// ErrInsufficientTempo rather than guessing.
//
// Detection that matches no format falls back to Timecode. This is
// the timecode fallback leniency: most call sites assume a playable
// time exists, so an unrecognized string is treated as a (probably
// invalid) timecode and reported through validation, with a
// diagnostic logged at detection time.
package timefmt
