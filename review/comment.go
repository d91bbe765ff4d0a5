// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package review

import (
	"strings"

	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/timefmt"
)

var _ ptsl.CommentBatch = (*Batch)(nil)

// Comment is one reviewer note against a position in the program.
type Comment struct {
	// Author is who left the note.
	Author string `yaml:"author" json:"author"`

	// Text is the note body. Its first line names the marker.
	Text string `yaml:"text" json:"text"`

	// Timestamp is the position in any supported time format.
	Timestamp string `yaml:"timestamp" json:"timestamp"`

	// Color is the marker color index, 0 for the host default.
	Color int `yaml:"color,omitempty" json:"color,omitempty"`

	// Track targets a specific track instead of the main ruler.
	Track string `yaml:"track,omitempty" json:"track,omitempty"`
}

// Batch is a set of comments from one review round.
type Batch struct {
	// Title names the review round, used in marker comments.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// FrameRate is the rate the batch's timecodes were authored
	// against. Zero means infer from the timecodes themselves.
	FrameRate float64 `yaml:"frameRate,omitempty" json:"frameRate,omitempty"`

	// Comments are the notes, in review order.
	Comments []Comment `yaml:"comments" json:"comments"`
}

// Len is the number of comments in the batch.
func (b *Batch) Len() int {
	return len(b.Comments)
}

// DeclaredFrameRate is the rate the batch explicitly declares, 0
// when it declares none.
func (b *Batch) DeclaredFrameRate() float64 {
	return b.FrameRate
}

// ImpliedFrameRate is the frame rate the batch's times run at: the
// declared rate when present, otherwise the smallest standard rate
// that fits every timecode's frame field. Zero when the batch has no
// timecode timestamps to infer from.
func (b *Batch) ImpliedFrameRate() float64 {
	if b.FrameRate > 0 {
		return b.FrameRate
	}

	maxFrame := -1
	dropFrame := false
	for _, comment := range b.Comments {
		format, ok := timefmt.DetectStrict(comment.Timestamp)
		if !ok || format != timefmt.Timecode {
			continue
		}
		if timefmt.IsDropFrame(comment.Timestamp) {
			dropFrame = true
		}
		fields := strings.FieldsFunc(comment.Timestamp, func(r rune) bool {
			return r == ':' || r == ';'
		})
		frame := 0
		for _, c := range fields[len(fields)-1] {
			frame = frame*10 + int(c-'0')
		}
		if frame > maxFrame {
			maxFrame = frame
		}
	}
	if maxFrame < 0 {
		return 0
	}
	if dropFrame {
		return 29.97
	}
	for _, rate := range []float64{24, 25, 30, 60} {
		if float64(maxFrame) < rate {
			return rate
		}
	}
	return 0
}

// markerName derives a marker display name from the comment: the
// first line of the text, capped so ruler labels stay readable.
func (c Comment) markerName() string {
	const maxNameLength = 48

	line := c.Text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		line = "Review comment"
	}
	if runes := []rune(line); len(runes) > maxNameLength {
		line = string(runes[:maxNameLength-1]) + "…"
	}
	return line
}

// markerComments renders the stored comment body: full text plus
// attribution and the review round.
func (c Comment) markerComments(batchTitle string) string {
	var parts []string
	if text := strings.TrimSpace(c.Text); text != "" {
		parts = append(parts, text)
	}
	if c.Author != "" {
		parts = append(parts, "- "+c.Author)
	}
	if batchTitle != "" {
		parts = append(parts, "("+batchTitle+")")
	}
	return strings.Join(parts, "\n")
}
