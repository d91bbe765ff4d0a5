// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import (
	"fmt"
	"log/slog"
)

// TicksPerQuarterNote is the workstation's fixed tick resolution for
// musical positions.
const TicksPerQuarterNote = 960000

// Film constants for the feet+frames encoding (35 mm convention).
const (
	framesPerFoot = 16
	filmFrameRate = 24.0
)

// Converter interprets time strings against one session's parameters.
// A Converter is immutable; if the session's sample rate or frame
// rate changes, build a new Converter; results from the old one are
// stale.
type Converter struct {
	sampleRate int
	frameRate  float64
	logger     *slog.Logger
}

// NewConverter returns a Converter for a session with the given
// sample rate (Hz) and timecode frame rate (fps). Logger is used for
// detection-fallback diagnostics; nil means slog.Default().
func NewConverter(sampleRate int, frameRate float64, logger *slog.Logger) (*Converter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("timefmt: sample rate must be positive, got %d", sampleRate)
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("timefmt: frame rate must be positive, got %g", frameRate)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{sampleRate: sampleRate, frameRate: frameRate, logger: logger}, nil
}

// SampleRate returns the session sample rate in Hz.
func (c *Converter) SampleRate() int { return c.sampleRate }

// FrameRate returns the session timecode frame rate in fps.
func (c *Converter) FrameRate() float64 { return c.frameRate }

// Detect reports the format of s, applying the timecode fallback
// leniency: an unrecognized string is classified as Timecode and a
// diagnostic is logged. Use Validate to learn whether the string is
// actually usable.
func (c *Converter) Detect(s string) Format {
	format, ok := DetectStrict(s)
	if !ok {
		c.logger.Warn("time string matched no known format, assuming timecode",
			"value", s)
	}
	return format
}

// ReferenceFor reports how a marker at time s must be anchored:
// BarBeat for a musical position, Absolute for everything else.
func (c *Converter) ReferenceFor(s string) Reference {
	if format, _ := DetectStrict(s); format == BarsBeats {
		return BarBeat
	}
	return Absolute
}
