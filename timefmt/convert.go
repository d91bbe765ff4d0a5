// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientTempo is returned when a bars|beats|ticks position is
// converted to samples. The musical position is well-formed; the
// session's tempo map is simply not available over the scripting
// interface, so there is no correct answer. Callers must surface this
// rather than substitute a guess.
var ErrInsufficientTempo = errors.New(
	"timefmt: bars|beats|ticks position requires tempo information to convert to samples")

// ToSamples converts s to a canonical sample count using the
// session's sample rate and frame rate. The result is floored to the
// sample boundary at or before the decoded instant.
//
// A bars|beats|ticks position returns ErrInsufficientTempo after its
// fields validate; an invalid string of any format returns the
// validation error.
func (c *Converter) ToSamples(s string) (int64, error) {
	format, recognized := DetectStrict(s)
	if !recognized {
		// Timecode fallback: parseTimecode reports the real problem.
		format = Timecode
	}

	switch format {
	case Timecode:
		value, err := c.parseTimecode(s)
		if err != nil {
			return 0, err
		}
		seconds := float64(value.hours*3600+value.minutes*60+value.seconds) +
			float64(value.frames)/c.frameRate
		return int64(math.Floor(seconds * float64(c.sampleRate))), nil

	case Samples:
		return parseSamples(s)

	case BarsBeats:
		if _, err := parseBarsBeats(s); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%q: %w", s, ErrInsufficientTempo)

	case Milliseconds:
		ms, err := parseMilliseconds(s)
		if err != nil {
			return 0, err
		}
		// Multiply before dividing: 1500.5ms at 48 kHz is exactly
		// 72024 samples, and this ordering keeps it exact.
		return int64(math.Floor(ms * float64(c.sampleRate) / 1000)), nil

	case FeetFrames:
		value, err := parseFeetFrames(s)
		if err != nil {
			return 0, err
		}
		totalFrames := float64(value.feet*framesPerFoot + value.frames)
		return int64(math.Floor(totalFrames / filmFrameRate * float64(c.sampleRate))), nil
	}
	panic("timefmt: unhandled format " + format.String())
}

// SamplesToTimecode renders a sample count as a non-drop "HH:MM:SS:FF"
// timecode at the session's frame rate. For sample counts produced by
// ToSamples from a valid timecode, the rendering round-trips to the
// same sample count.
//
// Sample positions that fall in the sliver between the last
// representable frame of a second and the next second boundary (only
// possible at fractional frame rates) clamp to the last frame.
func (c *Converter) SamplesToTimecode(samples int64) string {
	if samples < 0 {
		samples = 0
	}
	totalSeconds := float64(samples) / float64(c.sampleRate)
	whole := int64(math.Floor(totalSeconds))

	frames := int(math.Round((totalSeconds - float64(whole)) * c.frameRate))
	if maxFrames := int(math.Floor(c.frameRate)); frames >= maxFrames {
		frames = maxFrames - 1
	}

	hours := whole / 3600
	minutes := whole % 3600 / 60
	seconds := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
