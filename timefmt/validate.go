// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import (
	"fmt"
	"math"
	"strconv"
)

// Validation is the result of checking a time string against a
// session's parameters.
type Validation struct {
	// IsValid reports whether the string parses and every field is
	// within range for the detected format.
	IsValid bool

	// DetectedFormat is the format the string was classified as
	// (Timecode when nothing matched, per the fallback leniency).
	DetectedFormat Format

	// FormatMatches reports whether DetectedFormat equals the
	// caller's expected format. Always true when no expectation was
	// given.
	FormatMatches bool

	// Err describes why the string is invalid. Nil when IsValid.
	Err error
}

// Validate checks s with no format expectation.
func (c *Converter) Validate(s string) Validation {
	return c.validate(s, nil)
}

// ValidateExpecting checks s and additionally reports whether its
// detected format matches expected.
func (c *Converter) ValidateExpecting(s string, expected Format) Validation {
	return c.validate(s, &expected)
}

func (c *Converter) validate(s string, expected *Format) Validation {
	format, recognized := DetectStrict(s)
	result := Validation{
		DetectedFormat: format,
		FormatMatches:  expected == nil || *expected == format,
	}
	if !recognized {
		result.Err = fmt.Errorf("timefmt: %q matches no known time format", s)
		return result
	}

	var err error
	switch format {
	case Timecode:
		_, err = c.parseTimecode(s)
	case Samples:
		_, err = parseSamples(s)
	case BarsBeats:
		_, err = parseBarsBeats(s)
	case Milliseconds:
		_, err = parseMilliseconds(s)
	case FeetFrames:
		_, err = parseFeetFrames(s)
	}
	result.Err = err
	result.IsValid = err == nil
	return result
}

// timecodeValue is a decoded HH:MM:SS:FF string.
type timecodeValue struct {
	hours, minutes, seconds, frames int
	dropFrame                       bool
}

func (c *Converter) parseTimecode(s string) (timecodeValue, error) {
	match := timecodePattern.FindStringSubmatch(s)
	if match == nil {
		return timecodeValue{}, fmt.Errorf("timefmt: %q is not a timecode", s)
	}
	value := timecodeValue{
		hours:     mustAtoi(match[1]),
		minutes:   mustAtoi(match[2]),
		seconds:   mustAtoi(match[3]),
		frames:    mustAtoi(match[5]),
		dropFrame: match[4] == ";",
	}
	if value.minutes >= 60 {
		return value, fmt.Errorf("timefmt: timecode %q: minutes %d out of range", s, value.minutes)
	}
	if value.seconds >= 60 {
		return value, fmt.Errorf("timefmt: timecode %q: seconds %d out of range", s, value.seconds)
	}
	if maxFrames := int(math.Floor(c.frameRate)); value.frames >= maxFrames {
		return value, fmt.Errorf("timefmt: timecode %q: frame %d out of range for %g fps (max %d)",
			s, value.frames, c.frameRate, maxFrames-1)
	}
	return value, nil
}

func parseSamples(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timefmt: sample count %q: %w", s, err)
	}
	return n, nil
}

// barsBeatsValue is a decoded bars|beats|ticks string.
type barsBeatsValue struct {
	bars, beats, ticks int
}

func parseBarsBeats(s string) (barsBeatsValue, error) {
	match := barsBeatsPattern.FindStringSubmatch(s)
	if match == nil {
		return barsBeatsValue{}, fmt.Errorf("timefmt: %q is not a bars|beats|ticks position", s)
	}
	// The fields are unbounded digit runs, so overflow is a range
	// error, not a parse bug.
	var value barsBeatsValue
	var err error
	if value.bars, err = strconv.Atoi(match[1]); err != nil {
		return value, fmt.Errorf("timefmt: position %q: bars out of range", s)
	}
	if value.beats, err = strconv.Atoi(match[2]); err != nil {
		return value, fmt.Errorf("timefmt: position %q: beats out of range", s)
	}
	if value.ticks, err = strconv.Atoi(match[3]); err != nil {
		return value, fmt.Errorf("timefmt: position %q: ticks out of range", s)
	}
	if value.bars < 1 {
		return value, fmt.Errorf("timefmt: position %q: bars must be >= 1", s)
	}
	if value.beats < 1 {
		return value, fmt.Errorf("timefmt: position %q: beats must be >= 1", s)
	}
	if value.ticks >= TicksPerQuarterNote {
		return value, fmt.Errorf("timefmt: position %q: ticks %d out of range (max %d)",
			s, value.ticks, TicksPerQuarterNote-1)
	}
	return value, nil
}

func parseMilliseconds(s string) (float64, error) {
	match := millisecondsPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("timefmt: %q is not a millisecond duration", s)
	}
	ms, err := strconv.ParseFloat(match[1], 64)
	if err != nil || math.IsInf(ms, 0) || math.IsNaN(ms) {
		return 0, fmt.Errorf("timefmt: millisecond duration %q is not a finite number", s)
	}
	return ms, nil
}

// feetFramesValue is a decoded feet+frames string.
type feetFramesValue struct {
	feet, frames int
}

func parseFeetFrames(s string) (feetFramesValue, error) {
	match := feetFramesPattern.FindStringSubmatch(s)
	if match == nil {
		return feetFramesValue{}, fmt.Errorf("timefmt: %q is not a feet+frames length", s)
	}
	feet, err := strconv.Atoi(match[1])
	if err != nil {
		return feetFramesValue{}, fmt.Errorf("timefmt: length %q: feet out of range", s)
	}
	value := feetFramesValue{
		feet:   feet,
		frames: mustAtoi(match[2]),
	}
	if value.frames >= framesPerFoot {
		return value, fmt.Errorf("timefmt: length %q: frame %d out of range (max %d per foot)",
			s, value.frames, framesPerFoot-1)
	}
	return value, nil
}

// mustAtoi converts a regexp submatch of at most two digits. Only
// safe for the bounded \d{1,2} fields; unbounded digit runs go
// through strconv.Atoi with a range error instead.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("timefmt: non-numeric submatch " + strconv.Quote(s))
	}
	return n
}
