// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import "testing"

func TestSampleRateSymbols(t *testing.T) {
	tests := []struct {
		symbol SampleRateSymbol
		hertz  int
	}{
		{SampleRate44100, 44100},
		{SampleRate48000, 48000},
		{SampleRate88200, 88200},
		{SampleRate96000, 96000},
		{SampleRate176400, 176400},
		{SampleRate192000, 192000},
	}
	for _, test := range tests {
		hertz, err := test.symbol.Hertz()
		if err != nil {
			t.Errorf("%s: %v", test.symbol, err)
			continue
		}
		if hertz != test.hertz {
			t.Errorf("%s = %d Hz, want %d", test.symbol, hertz, test.hertz)
		}
	}

	if _, err := SampleRateSymbol("SR_8000").Hertz(); err == nil {
		t.Error("unknown sample rate symbol did not error")
	}
}

func TestTimeCodeRateSymbols(t *testing.T) {
	tests := []struct {
		symbol    TimeCodeRateSymbol
		fps       float64
		dropFrame bool
	}{
		{TimeCodeRate23976, 23.976, false},
		{TimeCodeRate24, 24, false},
		{TimeCodeRate25, 25, false},
		{TimeCodeRate2997, 29.97, false},
		{TimeCodeRate2997Drop, 29.97, true},
		{TimeCodeRate30, 30, false},
		{TimeCodeRate30Drop, 30, true},
		{TimeCodeRate5994, 59.94, false},
		{TimeCodeRate60, 60, false},
	}
	for _, test := range tests {
		fps, err := test.symbol.FPS()
		if err != nil {
			t.Errorf("%s: %v", test.symbol, err)
			continue
		}
		if fps != test.fps {
			t.Errorf("%s = %g fps, want %g", test.symbol, fps, test.fps)
		}
		if test.symbol.DropFrame() != test.dropFrame {
			t.Errorf("%s drop frame = %v, want %v", test.symbol, !test.dropFrame, test.dropFrame)
		}
	}

	if _, err := TimeCodeRateSymbol("TCR_48").FPS(); err == nil {
		t.Error("unknown timecode rate symbol did not error")
	}
}
