// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package ptsl

import "fmt"

// Protocol version triple this client speaks. The host rejects
// registration from an incompatible major version with an
// SDKVersionMismatch command error.
const (
	ProtocolVersion         = 2
	ProtocolVersionMinor    = 1
	ProtocolVersionRevision = 0
)

// CommandID identifies a scripting-host operation.
type CommandID int

const (
	// CommandRegisterConnection registers this client and yields a
	// session id. The only command dispatched without a session id.
	CommandRegisterConnection CommandID = 1

	// CommandGetSessionName returns the open session's name.
	CommandGetSessionName CommandID = 2

	// CommandGetSessionSampleRate returns the session sample rate as
	// a symbolic constant.
	CommandGetSessionSampleRate CommandID = 3

	// CommandGetSessionTimeCodeRate returns the session timecode
	// rate and the rates the host could switch to.
	CommandGetSessionTimeCodeRate CommandID = 4

	// CommandCreateMemoryLocation creates a timeline marker.
	CommandCreateMemoryLocation CommandID = 5

	// CommandCreateNewTracks adds tracks to the session.
	CommandCreateNewTracks CommandID = 6
)

func (id CommandID) String() string {
	switch id {
	case CommandRegisterConnection:
		return "RegisterConnection"
	case CommandGetSessionName:
		return "GetSessionName"
	case CommandGetSessionSampleRate:
		return "GetSessionSampleRate"
	case CommandGetSessionTimeCodeRate:
		return "GetSessionTimeCodeRate"
	case CommandCreateMemoryLocation:
		return "CreateMemoryLocation"
	case CommandCreateNewTracks:
		return "CreateNewTracks"
	}
	return fmt.Sprintf("Command(%d)", int(id))
}

// RegisterConnectionRequest is the RegisterConnection command body.
type RegisterConnectionRequest struct {
	CompanyName     string `json:"company_name"`
	ApplicationName string `json:"application_name"`
}

// RegisterConnectionResponse is the RegisterConnection response body.
type RegisterConnectionResponse struct {
	SessionID string `json:"session_id"`
}

// GetSessionNameResponse is the GetSessionName response body.
type GetSessionNameResponse struct {
	SessionName string `json:"session_name"`
}

// GetSessionSampleRateResponse is the GetSessionSampleRate response
// body. The rate is symbolic, one of the SampleRate constants.
type GetSessionSampleRateResponse struct {
	SampleRate SampleRateSymbol `json:"sample_rate"`
}

// GetSessionTimeCodeRateResponse is the GetSessionTimeCodeRate
// response body.
type GetSessionTimeCodeRateResponse struct {
	CurrentSetting   TimeCodeRateSymbol   `json:"current_setting"`
	PossibleSettings []TimeCodeRateSymbol `json:"possible_settings"`
}

// CreateMemoryLocationRequest is the CreateMemoryLocation command
// body. Time-valued fields carry the caller's original time strings;
// Reference and Location carry protocol enumeration values selected
// by the marker builder.
type CreateMemoryLocationRequest struct {
	Name              string                   `json:"name"`
	StartTime         string                   `json:"start_time"`
	EndTime           string                   `json:"end_time,omitempty"`
	TimeProperties    string                   `json:"time_properties"`
	Reference         string                   `json:"reference"`
	GeneralProperties MemoryLocationProperties `json:"general_properties"`
	Comments          string                   `json:"comments,omitempty"`
	ColorIndex        int                      `json:"color_index,omitempty"`
	Location          string                   `json:"location"`
	Number            int                      `json:"number,omitempty"`
	TrackName         string                   `json:"track_name,omitempty"`
}

// MemoryLocationProperties are the marker's stored view settings.
type MemoryLocationProperties struct {
	ZoomSettings        bool `json:"zoom_settings"`
	PrePostRollTimes    bool `json:"pre_post_roll_times"`
	TrackVisibility     bool `json:"track_visibility"`
	TrackHeights        bool `json:"track_heights"`
	GroupEnables        bool `json:"group_enables"`
	WindowConfiguration bool `json:"window_configuration"`
}

// CreateNewTracksRequest is the CreateNewTracks command body. This
// command predates the host's snake_case convention and keeps its
// camelCase field names.
type CreateNewTracksRequest struct {
	NumberOfTracks int    `json:"numberOfTracks"`
	TrackType      string `json:"trackType"`
	TrackFormat    string `json:"trackFormat"`
	TrackName      string `json:"trackName,omitempty"`
}

// CreateNewTracksResponse is the CreateNewTracks response body.
type CreateNewTracksResponse struct {
	NumberOfTracks    int      `json:"numberOfTracks"`
	CreatedTrackNames []string `json:"createdTrackNames"`
}
