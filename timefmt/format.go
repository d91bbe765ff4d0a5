// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import "regexp"

// Format identifies one of the five supported time encodings.
type Format int

const (
	// Timecode is "HH:MM:SS:FF" (or "HH:MM:SS;FF" for drop-frame).
	Timecode Format = iota
	// Samples is a bare integer sample count.
	Samples
	// BarsBeats is "bars|beats|ticks", a musical position.
	BarsBeats
	// Milliseconds is a decimal duration, "1500.25" or "1500ms".
	Milliseconds
	// FeetFrames is "feet+frames", 35 mm film length.
	FeetFrames
)

func (f Format) String() string {
	switch f {
	case Timecode:
		return "timecode"
	case Samples:
		return "samples"
	case BarsBeats:
		return "bars|beats"
	case Milliseconds:
		return "milliseconds"
	case FeetFrames:
		return "feet+frames"
	}
	return "unknown"
}

// Reference selects how the workstation anchors a time value: in the
// absolute sample domain, or at a musical bar/beat position. The two
// are not interchangeable without tempo data, so the reference must
// follow the detected format.
type Reference int

const (
	// Absolute anchors at a sample-domain position.
	Absolute Reference = iota
	// BarBeat anchors at a musical position.
	BarBeat
)

func (r Reference) String() string {
	if r == BarBeat {
		return "bar|beat"
	}
	return "absolute"
}

var (
	timecodePattern     = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})([:;])(\d{1,2})$`)
	samplesPattern      = regexp.MustCompile(`^\d+$`)
	barsBeatsPattern    = regexp.MustCompile(`^(\d+)\|(\d+)\|(\d+)$`)
	millisecondsPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\s*ms)?$`)
	feetFramesPattern   = regexp.MustCompile(`^(\d+)\+(\d{1,2})$`)
)

// DetectStrict reports which format s matches, trying patterns in the
// fixed priority order Timecode, Samples, BarsBeats, Milliseconds,
// FeetFrames. The boolean is false when nothing matches.
//
// Note the priority matters: a bare integer matches both the Samples
// and Milliseconds patterns and is always classified as Samples; a
// millisecond value is recognized by its decimal point or "ms" suffix.
func DetectStrict(s string) (Format, bool) {
	switch {
	case timecodePattern.MatchString(s):
		return Timecode, true
	case samplesPattern.MatchString(s):
		return Samples, true
	case barsBeatsPattern.MatchString(s):
		return BarsBeats, true
	case millisecondsPattern.MatchString(s):
		return Milliseconds, true
	case feetFramesPattern.MatchString(s):
		return FeetFrames, true
	}
	return Timecode, false
}

// IsDropFrame reports whether s is a timecode using the drop-frame
// separator (";" before the frame field).
func IsDropFrame(s string) bool {
	match := timecodePattern.FindStringSubmatch(s)
	return match != nil && match[4] == ";"
}
