package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/store"
	"github.com/narravox/tts-studio/internal/synth"
)

// fakeProvider synthesizes fixed-size PCM and fails for configured texts
type fakeProvider struct {
	failOn map[string]bool
}

func (f *fakeProvider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if f.failOn[text] {
		return nil, errors.New("synthesis failed")
	}
	return make([]byte, 200), nil
}

type nopRecorder struct{}

func (nopRecorder) InsertGeneration(ctx context.Context, rec store.GenerationRecord) error {
	return nil
}

// fixedCounter reports a constant generation count
type fixedCounter struct {
	generations int
}

func (f *fixedCounter) CountVoices(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (f *fixedCounter) CountGenerations(ctx context.Context, userID string) (int, error) {
	return f.generations, nil
}

func newTestPipeline(t *testing.T, provider *fakeProvider, used int) *Pipeline {
	t.Helper()
	sink, err := audio.NewSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewSink() failed: %v", err)
	}
	asm, err := audio.NewAssembler(t.TempDir(), 300*time.Millisecond)
	if err != nil {
		t.Fatalf("NewAssembler() failed: %v", err)
	}
	guard := quota.NewGuard(&fixedCounter{generations: used}, 1, 5)
	batch := synth.NewBatchSynthesizer(provider, nopRecorder{}, sink, "pcm_44100", time.Second)
	return New(guard, batch, asm)
}

func newSession(texts ...string) *script.Session {
	sess := script.NewSession("user-1")
	sess.Script.Segments = nil
	for _, text := range texts {
		seg := sess.Script.Append()
		seg.Text = text
		seg.SetVoice("v1", "Alice")
	}
	return sess
}

func TestRun_MergedArtifact(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 0)
	sess := newSession("one", "two")

	result, err := p.Run(context.Background(), sess, Options{Merge: true, EnforceQuota: true}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(result.Clips) != 2 || len(result.Errors) != 0 {
		t.Fatalf("Expected 2 clips and no errors, got %d/%d", len(result.Clips), len(result.Errors))
	}
	if result.ArtifactType != "merged" {
		t.Errorf("ArtifactType = %s, want merged", result.ArtifactType)
	}
	if !strings.HasSuffix(result.ArtifactPath, ".wav") {
		t.Errorf("ArtifactPath = %s, want wav file", result.ArtifactPath)
	}
	if len(sess.LastClips) != 2 {
		t.Errorf("Expected session to track 2 clips, got %d", len(sess.LastClips))
	}
}

func TestRun_BundledArtifact(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 0)
	sess := newSession("one", "two")

	result, err := p.Run(context.Background(), sess, Options{Bundle: true}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.ArtifactType != "archive" {
		t.Errorf("ArtifactType = %s, want archive", result.ArtifactType)
	}
	if !strings.HasSuffix(result.ArtifactPath, ".zip") {
		t.Errorf("ArtifactPath = %s, want zip file", result.ArtifactPath)
	}
}

func TestRun_NoArtifactRequested(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 0)
	sess := newSession("one")

	result, err := p.Run(context.Background(), sess, Options{EnforceQuota: true}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.ArtifactPath != "" {
		t.Errorf("Expected no artifact, got %s", result.ArtifactPath)
	}
	if len(result.Clips) != 1 {
		t.Errorf("Expected 1 clip, got %d", len(result.Clips))
	}
}

func TestRun_ValidationError(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 0)
	sess := newSession("one", "", "three")
	sess.Script.Segments[2].VoiceID = ""

	_, err := p.Run(context.Background(), sess, Options{EnforceQuota: true}, nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Positions) != 2 || verr.Positions[0] != 2 || verr.Positions[1] != 3 {
		t.Errorf("Positions = %v, want [2 3]", verr.Positions)
	}
}

func TestRun_QuotaDenied(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 5)
	sess := newSession("one")

	_, err := p.Run(context.Background(), sess, Options{EnforceQuota: true}, nil)

	var qerr *QuotaError
	if !errors.As(err, &qerr) {
		t.Fatalf("Expected QuotaError, got %v", err)
	}
	if qerr.Decision.Reason != quota.ReasonLimitReached {
		t.Errorf("Reason = %v, want limit reached", qerr.Decision.Reason)
	}
}

func TestRun_QuotaBypassed(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{}, 5)
	sess := newSession("one")

	result, err := p.Run(context.Background(), sess, Options{}, nil)
	if err != nil {
		t.Fatalf("Run() failed with quota off: %v", err)
	}
	if len(result.Clips) != 1 {
		t.Errorf("Expected 1 clip, got %d", len(result.Clips))
	}
}

func TestRun_PartialFailureStillAssembles(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{failOn: map[string]bool{"two": true}}, 0)
	sess := newSession("one", "two", "three")

	result, err := p.Run(context.Background(), sess, Options{Merge: true, EnforceQuota: true}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(result.Clips) != 2 || len(result.Errors) != 1 {
		t.Fatalf("Expected 2 clips and 1 error, got %d/%d", len(result.Clips), len(result.Errors))
	}
	if result.Errors[0].Position != 2 {
		t.Errorf("Error position = %d, want 2", result.Errors[0].Position)
	}
	if result.ArtifactPath == "" {
		t.Error("Expected artifact from surviving clips")
	}
}

func TestRun_AllSegmentsFailNoArtifact(t *testing.T) {
	p := newTestPipeline(t, &fakeProvider{failOn: map[string]bool{"one": true, "two": true}}, 0)
	sess := newSession("one", "two")

	result, err := p.Run(context.Background(), sess, Options{Merge: true, EnforceQuota: true}, nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(result.Errors))
	}
	if result.ArtifactPath != "" {
		t.Errorf("Expected no artifact when nothing synthesized, got %s", result.ArtifactPath)
	}
}
