// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import (
	"errors"
	"testing"
)

func newTestConverter(t *testing.T, sampleRate int, frameRate float64) *Converter {
	t.Helper()
	converter, err := NewConverter(sampleRate, frameRate, nil)
	if err != nil {
		t.Fatalf("NewConverter(%d, %g) failed: %v", sampleRate, frameRate, err)
	}
	return converter
}

func TestDetectStrict(t *testing.T) {
	tests := []struct {
		input      string
		want       Format
		recognized bool
	}{
		{"01:00:30:15", Timecode, true},
		{"01:00:30;15", Timecode, true},
		{"9:05:30:00", Timecode, true},
		{"1234567", Samples, true},
		{"0", Samples, true},
		{"33|2|480000", BarsBeats, true},
		{"1500.25", Milliseconds, true},
		{"250ms", Milliseconds, true},
		{"250 ms", Milliseconds, true},
		{"12+08", FeetFrames, true},
		{"0+00", FeetFrames, true},
		{"half past nine", Timecode, false},
		{"", Timecode, false},
		{"1:2", Timecode, false},
	}
	for _, test := range tests {
		format, recognized := DetectStrict(test.input)
		if format != test.want || recognized != test.recognized {
			t.Errorf("DetectStrict(%q) = (%v, %t), want (%v, %t)",
				test.input, format, recognized, test.want, test.recognized)
		}
	}
}

func TestDetectFallsBackToTimecode(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)
	if format := converter.Detect("not a time at all"); format != Timecode {
		t.Errorf("Detect fallback = %v, want Timecode", format)
	}
}

func TestIsDropFrame(t *testing.T) {
	if !IsDropFrame("01:00:00;00") {
		t.Error("semicolon separator not detected as drop-frame")
	}
	if IsDropFrame("01:00:00:00") {
		t.Error("colon separator detected as drop-frame")
	}
	if IsDropFrame("1234567") {
		t.Error("sample count detected as drop-frame")
	}
}

func TestValidateTimecode(t *testing.T) {
	converter := newTestConverter(t, 48000, 29.97)

	tests := []struct {
		input string
		valid bool
	}{
		{"01:00:30:15", true},
		{"00:00:00:00", true},
		{"01:00:30:28", true},  // last representable frame at 29.97
		{"01:00:30:29", false}, // 29 >= floor(29.97)
		{"01:00:30:30", false},
		{"01:60:30:15", false},
		{"01:00:60:15", false},
	}
	for _, test := range tests {
		result := converter.Validate(test.input)
		if result.DetectedFormat != Timecode {
			t.Errorf("Validate(%q) detected %v, want Timecode", test.input, result.DetectedFormat)
		}
		if result.IsValid != test.valid {
			t.Errorf("Validate(%q).IsValid = %t, want %t (err: %v)",
				test.input, result.IsValid, test.valid, result.Err)
		}
	}
}

func TestValidateFrameBoundaryIntegerRate(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)
	if result := converter.Validate("00:00:01:23"); !result.IsValid {
		t.Errorf("frame 23 at 24 fps should be valid: %v", result.Err)
	}
	if result := converter.Validate("00:00:01:24"); result.IsValid {
		t.Error("frame 24 at 24 fps should be invalid")
	}
}

func TestValidateBarsBeats(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)

	tests := []struct {
		input string
		valid bool
	}{
		{"1|1|0", true},
		{"33|2|959999", true},
		{"0|1|0", false},
		{"1|0|0", false},
		{"1|1|960000", false},
	}
	for _, test := range tests {
		result := converter.Validate(test.input)
		if result.IsValid != test.valid {
			t.Errorf("Validate(%q).IsValid = %t, want %t (err: %v)",
				test.input, result.IsValid, test.valid, result.Err)
		}
	}
}

func TestValidateFeetFrames(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)
	if result := converter.Validate("12+15"); !result.IsValid {
		t.Errorf("frame 15 per foot should be valid: %v", result.Err)
	}
	if result := converter.Validate("12+16"); result.IsValid {
		t.Error("frame 16 per foot should be invalid")
	}
}

func TestValidateHugeFieldsReportRangeError(t *testing.T) {
	// Unbounded digit runs must surface as invalid, never crash the
	// converter: these strings come straight from batch files.
	converter := newTestConverter(t, 48000, 29.97)

	tests := []string{
		"99999999999999999999|1|0",
		"1|99999999999999999999|0",
		"1|1|99999999999999999999",
		"99999999999999999999+5",
		"99999999999999999999",
	}
	for _, input := range tests {
		result := converter.Validate(input)
		if result.IsValid {
			t.Errorf("Validate(%q) accepted an overflowing field", input)
		}
		if result.Err == nil {
			t.Errorf("Validate(%q) invalid without an error", input)
		}
	}
}

func TestValidateExpecting(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)

	result := converter.ValidateExpecting("1234567", Samples)
	if !result.IsValid || !result.FormatMatches {
		t.Errorf("samples with matching expectation: %+v", result)
	}

	result = converter.ValidateExpecting("1234567", Timecode)
	if !result.IsValid {
		t.Errorf("valid string should stay valid under a mismatched expectation: %+v", result)
	}
	if result.FormatMatches {
		t.Error("FormatMatches should be false when detection disagrees with expectation")
	}
}

func TestValidateUnrecognized(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)
	result := converter.Validate("garbage")
	if result.IsValid {
		t.Error("unrecognized string should not validate")
	}
	if result.DetectedFormat != Timecode {
		t.Errorf("unrecognized string detected as %v, want Timecode fallback", result.DetectedFormat)
	}
}

func TestReferenceFor(t *testing.T) {
	converter := newTestConverter(t, 48000, 24)

	tests := []struct {
		input string
		want  Reference
	}{
		{"33|2|0", BarBeat},
		{"01:00:00:00", Absolute},
		{"1234567", Absolute},
		{"1500.25", Absolute},
		{"12+08", Absolute},
		{"unrecognized", Absolute}, // fallback is timecode, hence absolute
	}
	for _, test := range tests {
		if got := converter.ReferenceFor(test.input); got != test.want {
			t.Errorf("ReferenceFor(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestBarsBeatsConversionAlwaysTempoError(t *testing.T) {
	converter := newTestConverter(t, 48000, 29.97)
	for _, input := range []string{"1|1|0", "128|4|959999", "5|3|480000"} {
		_, err := converter.ToSamples(input)
		if !errors.Is(err, ErrInsufficientTempo) {
			t.Errorf("ToSamples(%q) error = %v, want ErrInsufficientTempo", input, err)
		}
	}

	// An out-of-range position reports the range problem, not the
	// tempo gap.
	_, err := converter.ToSamples("0|1|0")
	if errors.Is(err, ErrInsufficientTempo) {
		t.Error("invalid bars value should fail validation, not tempo conversion")
	}
	if err == nil {
		t.Error("invalid bars value should fail")
	}
}
