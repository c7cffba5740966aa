package script

import (
	"reflect"
	"testing"
)

func segment(text, voiceID string) *Segment {
	seg := NewSegment()
	seg.Text = text
	if voiceID != "" {
		seg.SetVoice(voiceID, "Voice "+voiceID)
	}
	return seg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		segments []*Segment
		want     []int
	}{
		{
			name:     "all valid",
			segments: []*Segment{segment("hello", "v1"), segment("world", "v2")},
			want:     nil,
		},
		{
			name:     "empty text",
			segments: []*Segment{segment("", "v1")},
			want:     []int{1},
		},
		{
			name:     "whitespace-only text",
			segments: []*Segment{segment("   \t\n", "v1")},
			want:     []int{1},
		},
		{
			name:     "missing voice",
			segments: []*Segment{segment("hello", "")},
			want:     []int{1},
		},
		{
			name: "reports every failing position",
			segments: []*Segment{
				segment("ok", "v1"),
				segment("", "v1"),
				segment("ok", ""),
				segment("ok", "v2"),
				segment(" ", ""),
			},
			want: []int{2, 3, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &Script{Segments: tt.segments}
			got := Validate(sc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_EmptyIffAllValid(t *testing.T) {
	sc := &Script{Segments: []*Segment{segment("a", "v1"), segment("b", "v1"), segment("c", "v2")}}
	if got := Validate(sc); len(got) != 0 {
		t.Errorf("Expected no invalid positions, got %v", got)
	}

	sc.Segments[1].Text = ""
	if got := Validate(sc); len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected [2], got %v", got)
	}
}

func TestNewScript(t *testing.T) {
	sc := NewScript()
	if sc.Len() != 1 {
		t.Fatalf("Expected new script to have 1 segment, got %d", sc.Len())
	}
	if sc.Segments[0].ID == "" {
		t.Error("Expected segment to have an ID")
	}
	if sc.Segments[0].Valid() {
		t.Error("Expected fresh segment to be invalid")
	}
}

func TestScript_AppendRemoveClear(t *testing.T) {
	sc := NewScript()
	seg := sc.Append()
	if sc.Len() != 2 {
		t.Fatalf("Expected 2 segments after append, got %d", sc.Len())
	}

	if !sc.Remove(seg.ID) {
		t.Error("Expected Remove to find the segment")
	}
	if sc.Len() != 1 {
		t.Errorf("Expected 1 segment after remove, got %d", sc.Len())
	}
	if sc.Remove("no-such-id") {
		t.Error("Expected Remove to report a missing segment")
	}

	sc.Append()
	sc.Append()
	sc.Clear()
	if sc.Len() != 1 {
		t.Errorf("Expected clear to reset to 1 segment, got %d", sc.Len())
	}
}

func TestSegment_IDStability(t *testing.T) {
	seg := NewSegment()
	id := seg.ID
	seg.Text = "edited"
	seg.SetVoice("v9", "Nine")
	if seg.ID != id {
		t.Error("Expected segment ID to be stable across edits")
	}
}

func TestSegment_SetVoiceKeepsLabelConsistent(t *testing.T) {
	seg := NewSegment()
	seg.SetVoice("v1", "Alice")
	if seg.VoiceID != "v1" || seg.VoiceLabel != "Alice" {
		t.Errorf("Expected voice v1/Alice, got %s/%s", seg.VoiceID, seg.VoiceLabel)
	}
}
