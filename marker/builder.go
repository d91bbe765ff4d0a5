// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package marker

import (
	"fmt"

	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/timefmt"
)

// Protocol enumeration values for marker placement and anchoring.
const (
	referenceAbsolute = "RT_Absolute"
	referenceBarBeat  = "RT_BarBeat"

	locationMainRuler  = "MLC_MainRuler"
	locationTrack      = "MLC_Track"
	locationNamedRuler = "MLC_NamedRuler"

	timePropertiesMarker    = "TP_Marker"
	timePropertiesSelection = "TP_Selection"
)

// Location places a marker on the main ruler, a specific track, or a
// named ruler.
type Location int

const (
	MainRuler Location = iota
	Track
	NamedRuler
)

func (l Location) String() string {
	switch l {
	case MainRuler:
		return "mainRuler"
	case Track:
		return "track"
	case NamedRuler:
		return "namedRuler"
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// ParseLocation maps a human-facing location string to its Location.
func ParseLocation(s string) (Location, error) {
	switch s {
	case "mainRuler", "":
		return MainRuler, nil
	case "track":
		return Track, nil
	case "namedRuler":
		return NamedRuler, nil
	}
	return MainRuler, fmt.Errorf("marker: unknown location %q (want mainRuler, track, or namedRuler)", s)
}

// Spec describes one marker to create. It is built per reviewer
// comment, consumed once by the builder, and discarded.
type Spec struct {
	// Name is the marker's display name. Required.
	Name string

	// StartTime is the marker position in any supported time format.
	// Required.
	StartTime string

	// EndTime, when set, makes the marker a range selection instead
	// of a point. Must be in the same format as StartTime.
	EndTime string

	// Comments is free text stored with the marker.
	Comments string

	// ColorIndex selects the marker color, 0 for the host default.
	ColorIndex int

	// Location places the marker; Track requires TrackName.
	Location  Location
	TrackName string

	// Number requests an explicit marker slot, 0 for host-assigned.
	Number int
}

// Builder turns marker and track descriptions into command bodies.
// The converter carries the session's sample rate and frame rate, so
// a builder is valid only for the session it was built from.
type Builder struct {
	converter *timefmt.Converter
}

// NewBuilder creates a builder over the session's time converter.
func NewBuilder(converter *timefmt.Converter) (*Builder, error) {
	if converter == nil {
		return nil, fmt.Errorf("marker: converter is required")
	}
	return &Builder{converter: converter}, nil
}

// CreateMemoryLocation builds the command body for one marker. The
// reference anchoring follows the start time's detected format:
// musical positions anchor bar|beat, everything else absolute.
func (b *Builder) CreateMemoryLocation(spec Spec) (ptsl.CreateMemoryLocationRequest, error) {
	var request ptsl.CreateMemoryLocationRequest

	if spec.Name == "" {
		return request, fmt.Errorf("marker: marker name is required")
	}
	if spec.StartTime == "" {
		return request, fmt.Errorf("marker: start time is required")
	}
	if validation := b.converter.Validate(spec.StartTime); !validation.IsValid {
		return request, fmt.Errorf("marker: invalid start time %q: %w", spec.StartTime, validation.Err)
	}

	reference, err := referenceValue(b.converter.ReferenceFor(spec.StartTime))
	if err != nil {
		return request, err
	}

	timeProperties := timePropertiesMarker
	if spec.EndTime != "" {
		if validation := b.converter.Validate(spec.EndTime); !validation.IsValid {
			return request, fmt.Errorf("marker: invalid end time %q: %w", spec.EndTime, validation.Err)
		}
		if b.converter.Detect(spec.EndTime) != b.converter.Detect(spec.StartTime) {
			return request, fmt.Errorf("marker: end time %q is not in the start time's format %s",
				spec.EndTime, b.converter.Detect(spec.StartTime))
		}
		timeProperties = timePropertiesSelection
	}

	location, err := locationValue(spec.Location)
	if err != nil {
		return request, err
	}
	if spec.Location == Track && spec.TrackName == "" {
		return request, fmt.Errorf("marker: track placement requires a track name")
	}

	return ptsl.CreateMemoryLocationRequest{
		Name:           spec.Name,
		StartTime:      spec.StartTime,
		EndTime:        spec.EndTime,
		TimeProperties: timeProperties,
		Reference:      reference,
		Comments:       spec.Comments,
		ColorIndex:     spec.ColorIndex,
		Location:       location,
		Number:         spec.Number,
		TrackName:      spec.TrackName,
	}, nil
}

// NewTracksRequest builds the command body for adding tracks. The
// human-facing type and format strings map by exhaustive switch.
// Unlike marker bodies this needs no time conversion, so it is not a
// Builder method.
func NewTracksRequest(count int, trackType, trackFormat, trackName string) (ptsl.CreateNewTracksRequest, error) {
	var request ptsl.CreateNewTracksRequest

	if count < 1 {
		return request, fmt.Errorf("marker: track count must be at least 1, got %d", count)
	}

	protocolType, err := trackTypeValue(trackType)
	if err != nil {
		return request, err
	}
	protocolFormat, err := trackFormatValue(trackFormat)
	if err != nil {
		return request, err
	}

	return ptsl.CreateNewTracksRequest{
		NumberOfTracks: count,
		TrackType:      protocolType,
		TrackFormat:    protocolFormat,
		TrackName:      trackName,
	}, nil
}

func referenceValue(reference timefmt.Reference) (string, error) {
	switch reference {
	case timefmt.Absolute:
		return referenceAbsolute, nil
	case timefmt.BarBeat:
		return referenceBarBeat, nil
	}
	return "", fmt.Errorf("marker: unknown time reference %v", reference)
}

func locationValue(location Location) (string, error) {
	switch location {
	case MainRuler:
		return locationMainRuler, nil
	case Track:
		return locationTrack, nil
	case NamedRuler:
		return locationNamedRuler, nil
	}
	return "", fmt.Errorf("marker: unknown location %v", location)
}

func trackTypeValue(trackType string) (string, error) {
	switch trackType {
	case "audio", "":
		return "TT_Audio", nil
	case "midi":
		return "TT_Midi", nil
	case "aux":
		return "TT_Aux", nil
	case "instrument":
		return "TT_Instrument", nil
	case "videoOnly":
		return "TT_Video", nil
	}
	return "", fmt.Errorf("marker: unknown track type %q (want audio, midi, aux, instrument, or videoOnly)", trackType)
}

func trackFormatValue(trackFormat string) (string, error) {
	switch trackFormat {
	case "mono", "":
		return "TF_Mono", nil
	case "stereo":
		return "TF_Stereo", nil
	case "surround51":
		return "TF_51Surround", nil
	}
	return "", fmt.Errorf("marker: unknown track format %q (want mono, stereo, or surround51)", trackFormat)
}
