package script

import (
	"strings"

	"github.com/google/uuid"
)

// Segment is one (text, voice) unit of a script, the atomic unit of synthesis.
// The ID is an opaque token assigned at creation and stable for the segment's
// lifetime; it exists for idempotent UI binding, not business logic.
type Segment struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoiceID    string `json:"voice_id,omitempty"`
	VoiceLabel string `json:"voice_label,omitempty"`
}

// NewSegment creates a new empty segment with a fresh ID
func NewSegment() *Segment {
	return &Segment{
		ID:         uuid.New().String(),
		Text:       "",
		VoiceLabel: "Choose voice",
	}
}

// Valid reports whether the segment has non-empty trimmed text and an assigned voice
func (s *Segment) Valid() bool {
	return strings.TrimSpace(s.Text) != "" && s.VoiceID != ""
}

// SetVoice assigns a voice to the segment, keeping the display label consistent
func (s *Segment) SetVoice(voiceID, label string) {
	s.VoiceID = voiceID
	s.VoiceLabel = label
}

// Script is an ordered sequence of segments. Order is meaningful: it is both
// generation order and playback order for merged output. A script has a single
// writer (the owning session); it is not safe for concurrent mutation.
type Script struct {
	Segments []*Segment `json:"segments"`
}

// NewScript creates a script with one empty segment, matching the editor's
// initial state
func NewScript() *Script {
	return &Script{Segments: []*Segment{NewSegment()}}
}

// Append adds a new empty segment to the end of the script and returns it
func (sc *Script) Append() *Segment {
	seg := NewSegment()
	sc.Segments = append(sc.Segments, seg)
	return seg
}

// Remove deletes the segment with the given ID, if present
func (sc *Script) Remove(id string) bool {
	for i, seg := range sc.Segments {
		if seg.ID == id {
			sc.Segments = append(sc.Segments[:i], sc.Segments[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets the script to a single empty segment
func (sc *Script) Clear() {
	sc.Segments = []*Segment{NewSegment()}
}

// Len returns the number of segments in the script
func (sc *Script) Len() int {
	return len(sc.Segments)
}
