// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import "fmt"

// SampleRateSymbol is the host's symbolic name for a session sample
// rate.
type SampleRateSymbol string

const (
	SampleRate44100  SampleRateSymbol = "SR_44100"
	SampleRate48000  SampleRateSymbol = "SR_48000"
	SampleRate88200  SampleRateSymbol = "SR_88200"
	SampleRate96000  SampleRateSymbol = "SR_96000"
	SampleRate176400 SampleRateSymbol = "SR_176400"
	SampleRate192000 SampleRateSymbol = "SR_192000"
)

var sampleRateHertz = map[SampleRateSymbol]int{
	SampleRate44100:  44100,
	SampleRate48000:  48000,
	SampleRate88200:  88200,
	SampleRate96000:  96000,
	SampleRate176400: 176400,
	SampleRate192000: 192000,
}

// Hertz returns the numeric rate for a symbolic sample rate.
func (s SampleRateSymbol) Hertz() (int, error) {
	hz, ok := sampleRateHertz[s]
	if !ok {
		return 0, fmt.Errorf("ptsl: unknown sample rate symbol %q", string(s))
	}
	return hz, nil
}

// TimeCodeRateSymbol is the host's symbolic name for a session
// timecode frame rate.
type TimeCodeRateSymbol string

const (
	TimeCodeRate23976    TimeCodeRateSymbol = "TCR_23976"
	TimeCodeRate24       TimeCodeRateSymbol = "TCR_24"
	TimeCodeRate25       TimeCodeRateSymbol = "TCR_25"
	TimeCodeRate2997     TimeCodeRateSymbol = "TCR_2997"
	TimeCodeRate2997Drop TimeCodeRateSymbol = "TCR_2997_DROP"
	TimeCodeRate30       TimeCodeRateSymbol = "TCR_30"
	TimeCodeRate30Drop   TimeCodeRateSymbol = "TCR_30_DROP"
	TimeCodeRate5994     TimeCodeRateSymbol = "TCR_5994"
	TimeCodeRate60       TimeCodeRateSymbol = "TCR_60"
)

type timeCodeRateInfo struct {
	fps  float64
	drop bool
}

var timeCodeRates = map[TimeCodeRateSymbol]timeCodeRateInfo{
	TimeCodeRate23976:    {fps: 23.976},
	TimeCodeRate24:       {fps: 24},
	TimeCodeRate25:       {fps: 25},
	TimeCodeRate2997:     {fps: 29.97},
	TimeCodeRate2997Drop: {fps: 29.97, drop: true},
	TimeCodeRate30:       {fps: 30},
	TimeCodeRate30Drop:   {fps: 30, drop: true},
	TimeCodeRate5994:     {fps: 59.94},
	TimeCodeRate60:       {fps: 60},
}

// FPS returns the numeric frame rate for a symbolic timecode rate.
func (r TimeCodeRateSymbol) FPS() (float64, error) {
	info, ok := timeCodeRates[r]
	if !ok {
		return 0, fmt.Errorf("ptsl: unknown timecode rate symbol %q", string(r))
	}
	return info.fps, nil
}

// DropFrame reports whether the symbolic rate counts drop-frame.
func (r TimeCodeRateSymbol) DropFrame() bool {
	return timeCodeRates[r].drop
}
