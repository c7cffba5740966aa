package synth

import (
	"context"
	"fmt"

	"github.com/narravox/tts-studio/internal/store"
)

// Synthesizer issues a single text-to-audio request to the provider
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Recorder persists one generation record per successfully synthesized segment
type Recorder interface {
	InsertGeneration(ctx context.Context, rec store.GenerationRecord) error
}

// SegmentError describes a failed segment within a batch, tagged with its
// 1-based position in the script
type SegmentError struct {
	Position  int
	SegmentID string
	Err       error
}

func (e SegmentError) Error() string {
	return fmt.Sprintf("Segment %d: %v", e.Position, e.Err)
}

func (e SegmentError) Unwrap() error {
	return e.Err
}

// EventStatus labels a progress event for one segment
type EventStatus string

const (
	StatusSynthesizing EventStatus = "synthesizing"
	StatusDone         EventStatus = "done"
	StatusFailed       EventStatus = "failed"
)

// Event reports per-segment progress during a running batch
type Event struct {
	Position  int         `json:"position"` // 1-based
	Total     int         `json:"total"`
	SegmentID string      `json:"segment_id"`
	Status    EventStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
}

// Progress receives per-segment events as the batch advances. May be nil.
type Progress func(Event)
