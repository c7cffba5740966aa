package synth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/store"
)

// fakeSynthesizer returns canned audio and fails for configured texts
type fakeSynthesizer struct {
	failOn map[string]error
	calls  []string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	f.calls = append(f.calls, text)
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	return []byte("audio:" + text), nil
}

// fakeRecorder captures generation records and optionally fails
type fakeRecorder struct {
	records []store.GenerationRecord
	err     error
}

func (f *fakeRecorder) InsertGeneration(ctx context.Context, rec store.GenerationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func newTestSession(texts ...string) *script.Session {
	sess := script.NewSession("user-1")
	sess.Script.Segments = nil
	for i, text := range texts {
		seg := sess.Script.Append()
		seg.Text = text
		seg.SetVoice(fmt.Sprintf("voice-%d", i+1), fmt.Sprintf("Voice %d", i+1))
	}
	return sess
}

func newTestBatch(t *testing.T, client Synthesizer, recorder Recorder) *BatchSynthesizer {
	t.Helper()
	sink, err := audio.NewSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewSink() failed: %v", err)
	}
	return NewBatchSynthesizer(client, recorder, sink, "mp3_44100_128", 5*time.Second)
}

func TestGenerate_AllSucceed(t *testing.T) {
	client := &fakeSynthesizer{}
	recorder := &fakeRecorder{}
	batch := newTestBatch(t, client, recorder)
	sess := newTestSession("one", "two", "three")

	clips, errs := batch.Generate(context.Background(), sess, nil)

	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}
	if len(clips) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(clips))
	}
	for i, c := range clips {
		if c.Ordinal != i+1 {
			t.Errorf("Clip %d has ordinal %d, want %d", i, c.Ordinal, i+1)
		}
		if c.Bytes == 0 {
			t.Errorf("Clip %d has zero byte length", i)
		}
	}
	if len(recorder.records) != 3 {
		t.Errorf("Expected 3 generation records, got %d", len(recorder.records))
	}
	if recorder.records[0].UserID != "user-1" {
		t.Errorf("Record user = %s, want user-1", recorder.records[0].UserID)
	}
}

func TestGenerate_PartialFailure(t *testing.T) {
	client := &fakeSynthesizer{failOn: map[string]error{"two": errors.New("provider exploded")}}
	recorder := &fakeRecorder{}
	batch := newTestBatch(t, client, recorder)
	sess := newTestSession("one", "two", "three", "four")

	clips, errs := batch.Generate(context.Background(), sess, nil)

	// One bad segment must not block the rest
	if len(client.calls) != 4 {
		t.Errorf("Expected all 4 segments attempted, got %d calls", len(client.calls))
	}
	if len(clips) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(clips))
	}
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if errs[0].Position != 2 {
		t.Errorf("Error position = %d, want 2", errs[0].Position)
	}

	// Clips stay in script order with their source ordinals
	wantOrdinals := []int{1, 3, 4}
	for i, c := range clips {
		if c.Ordinal != wantOrdinals[i] {
			t.Errorf("Clip %d ordinal = %d, want %d", i, c.Ordinal, wantOrdinals[i])
		}
	}

	// Every segment is accounted for in exactly one of the two lists
	if len(clips)+len(errs) != sess.Script.Len() {
		t.Errorf("clips+errs = %d, want %d", len(clips)+len(errs), sess.Script.Len())
	}

	// Only successes produce generation records
	if len(recorder.records) != 3 {
		t.Errorf("Expected 3 generation records, got %d", len(recorder.records))
	}
}

func TestGenerate_RecorderFailureDoesNotInvalidateClip(t *testing.T) {
	client := &fakeSynthesizer{}
	recorder := &fakeRecorder{err: errors.New("db down")}
	batch := newTestBatch(t, client, recorder)
	sess := newTestSession("one", "two")

	clips, errs := batch.Generate(context.Background(), sess, nil)

	if len(errs) != 0 {
		t.Fatalf("Expected record failures to be non-fatal, got %v", errs)
	}
	if len(clips) != 2 {
		t.Errorf("Expected 2 clips despite record failures, got %d", len(clips))
	}
}

func TestGenerate_SegmentErrorMessage(t *testing.T) {
	err := SegmentError{Position: 3, SegmentID: "abc", Err: errors.New("boom")}
	if got := err.Error(); got != "Segment 3: boom" {
		t.Errorf("Error() = %q, want %q", got, "Segment 3: boom")
	}
}

func TestGenerate_ProgressEvents(t *testing.T) {
	client := &fakeSynthesizer{failOn: map[string]error{"two": errors.New("boom")}}
	batch := newTestBatch(t, client, &fakeRecorder{})
	sess := newTestSession("one", "two")

	var events []Event
	clips, _ := batch.Generate(context.Background(), sess, func(ev Event) {
		events = append(events, ev)
	})

	if len(clips) != 1 {
		t.Fatalf("Expected 1 clip, got %d", len(clips))
	}

	// synthesizing+done for segment 1, synthesizing+failed for segment 2
	if len(events) != 4 {
		t.Fatalf("Expected 4 progress events, got %d", len(events))
	}
	if events[1].Status != StatusDone || events[1].Position != 1 {
		t.Errorf("Event 1 = %+v, want done for position 1", events[1])
	}
	if events[3].Status != StatusFailed || events[3].Position != 2 {
		t.Errorf("Event 3 = %+v, want failed for position 2", events[3])
	}
}

func TestGenerate_AbortedContext(t *testing.T) {
	client := &fakeSynthesizer{}
	batch := newTestBatch(t, client, &fakeRecorder{})
	sess := newTestSession("one", "two", "three")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clips, errs := batch.Generate(ctx, sess, nil)

	if len(clips) != 0 {
		t.Errorf("Expected no clips from aborted batch, got %d", len(clips))
	}
	if len(errs) != 3 {
		t.Errorf("Expected every segment reported as failed, got %d", len(errs))
	}
	if len(client.calls) != 0 {
		t.Errorf("Expected no provider calls after abort, got %d", len(client.calls))
	}
}
