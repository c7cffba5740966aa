package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/store"
)

// BatchSynthesizer drives per-segment synthesis over an ordered script with
// partial-failure tolerance: one bad segment never blocks the rest. Callers
// are expected to have run the validator and the quota guard first.
type BatchSynthesizer struct {
	client      Synthesizer
	recorder    Recorder
	sink        *audio.Sink
	clipFormat  audio.Format
	callTimeout time.Duration
	logger      zerolog.Logger
}

// NewBatchSynthesizer creates a batch synthesizer. outputFormat is the
// provider output format string (e.g. pcm_44100), callTimeout bounds each
// provider call.
func NewBatchSynthesizer(client Synthesizer, recorder Recorder, sink *audio.Sink, outputFormat string, callTimeout time.Duration) *BatchSynthesizer {
	return &BatchSynthesizer{
		client:      client,
		recorder:    recorder,
		sink:        sink,
		clipFormat:  audio.FormatForOutput(outputFormat),
		callTimeout: callTimeout,
		logger:      observability.ComponentLogger("synth"),
	}
}

// Generate synthesizes every segment of the session's script in order.
// Clips come back ordered by segment ordinal; errs holds one entry per failed
// segment. Every segment ends up in exactly one of the two lists. Synthesis
// failures are isolated per segment; a generation-record write failure is
// logged but does not invalidate the already-produced clip. No retries are
// performed.
func (b *BatchSynthesizer) Generate(ctx context.Context, session *script.Session, progress Progress) ([]audio.Clip, []SegmentError) {
	segments := session.Script.Segments
	total := len(segments)
	observability.RecordBatchStart(total)

	var clips []audio.Clip
	var errs []SegmentError

	for i, seg := range segments {
		position := i + 1

		// A mid-batch abort leaves already-synthesized clips valid; the
		// remaining segments are reported as failed, never rolled back.
		if err := ctx.Err(); err != nil {
			errs = append(errs, SegmentError{Position: position, SegmentID: seg.ID, Err: fmt.Errorf("batch aborted: %w", err)})
			b.notify(progress, Event{Position: position, Total: total, SegmentID: seg.ID, Status: StatusFailed, Error: err.Error()})
			continue
		}

		b.notify(progress, Event{Position: position, Total: total, SegmentID: seg.ID, Status: StatusSynthesizing})

		callCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
		start := time.Now()
		data, err := b.client.Synthesize(callCtx, seg.Text, seg.VoiceID)
		cancel()
		observability.RecordSynthesis(err == nil, time.Since(start).Seconds())

		if err != nil {
			segErr := SegmentError{Position: position, SegmentID: seg.ID, Err: err}
			errs = append(errs, segErr)
			b.logger.Warn().
				Int("position", position).
				Err(err).
				Msg("Segment synthesis failed, continuing batch")
			b.notify(progress, Event{Position: position, Total: total, SegmentID: seg.ID, Status: StatusFailed, Error: err.Error()})
			continue
		}

		path, size, err := b.sink.SaveClip(data, b.clipFormat)
		if err != nil {
			segErr := SegmentError{Position: position, SegmentID: seg.ID, Err: fmt.Errorf("save clip: %w", err)}
			errs = append(errs, segErr)
			observability.RecordError("clip_save", "synth")
			b.notify(progress, Event{Position: position, Total: total, SegmentID: seg.ID, Status: StatusFailed, Error: segErr.Error()})
			continue
		}

		clips = append(clips, audio.Clip{
			SegmentID: seg.ID,
			Ordinal:   position,
			Path:      path,
			Format:    b.clipFormat,
			Bytes:     size,
		})

		// Quota bookkeeping may undercount if this write fails; the clip
		// itself stays valid.
		rec := store.GenerationRecord{
			UserID:     session.UserID,
			Text:       seg.Text,
			VoiceID:    seg.VoiceID,
			VoiceLabel: seg.VoiceLabel,
		}
		if err := b.recorder.InsertGeneration(ctx, rec); err != nil {
			observability.RecordError("record_write", "synth")
			b.logger.Warn().
				Int("position", position).
				Err(err).
				Msg("Failed to persist generation record")
		}

		b.notify(progress, Event{Position: position, Total: total, SegmentID: seg.ID, Status: StatusDone})
	}

	b.logger.Info().
		Int("segments", total).
		Int("clips", len(clips)).
		Int("errors", len(errs)).
		Msg("Generation batch finished")

	return clips, errs
}

func (b *BatchSynthesizer) notify(progress Progress, ev Event) {
	if progress != nil {
		progress(ev)
	}
}
