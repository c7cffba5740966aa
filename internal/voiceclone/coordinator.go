package voiceclone

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/store"
)

// Outcome discriminates the result of a clone attempt
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailed  Outcome = "failed"
)

// Result is the typed outcome of a clone operation
type Result struct {
	Outcome Outcome
	VoiceID string
	Reason  string
}

// Cloner is the provider-side voice surface the coordinator drives
type Cloner interface {
	CloneVoice(ctx context.Context, samplePath, name string) (string, error)
	DeleteVoice(ctx context.Context, voiceID string) error
}

// VoiceStore persists and removes voice ownership records
type VoiceStore interface {
	InsertVoice(ctx context.Context, rec store.VoiceRecord) error
	DeleteVoice(ctx context.Context, userID, voiceID string) error
}

// Gatekeeper enforces the per-user voice cap before any provider call
type Gatekeeper interface {
	CheckVoice(ctx context.Context, userID string) (quota.Decision, error)
}

// Coordinator orchestrates instant voice cloning: quota check, sample upload,
// provider clone, record persistence, and the compensating provider-side
// delete when persistence fails. A cloned voice is never silently left
// orphaned on the provider.
type Coordinator struct {
	provider    Cloner
	voices      VoiceStore
	guard       Gatekeeper
	samplesDir  string
	callTimeout time.Duration
	logger      zerolog.Logger
}

// NewCoordinator creates a voice clone coordinator. Uploaded samples are kept
// under samplesDir; callTimeout bounds the provider clone call.
func NewCoordinator(provider Cloner, voices VoiceStore, guard Gatekeeper, samplesDir string, callTimeout time.Duration) (*Coordinator, error) {
	if err := os.MkdirAll(samplesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create samples dir: %w", err)
	}
	return &Coordinator{
		provider:    provider,
		voices:      voices,
		guard:       guard,
		samplesDir:  samplesDir,
		callTimeout: callTimeout,
		logger:      observability.ComponentLogger("voiceclone"),
	}, nil
}

// Clone runs the full cloning flow for a user. sample is the uploaded audio,
// sampleName its original filename, requestedName the desired voice name
// (blank falls back to a generated one).
func (c *Coordinator) Clone(ctx context.Context, userID string, sample io.Reader, sampleName, requestedName string) Result {
	// Step 1: quota. A denial short-circuits with zero provider calls.
	decision, err := c.guard.CheckVoice(ctx, userID)
	if err != nil {
		observability.RecordClone(string(OutcomeFailed))
		c.logger.Error().Err(err).Msg("Voice quota check failed")
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("quota check failed: %v", err)}
	}
	if !decision.Allowed {
		observability.RecordClone(string(OutcomeDenied))
		return Result{Outcome: OutcomeDenied, Reason: decision.Message}
	}

	// Step 2: persist the sample. Failure is terminal, the provider is never
	// contacted.
	samplePath, err := c.saveSample(sample, sampleName)
	if err != nil {
		observability.RecordClone(string(OutcomeFailed))
		observability.RecordError("sample_upload", "voiceclone")
		c.logger.Error().Err(err).Msg("Failed to save voice sample")
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to save sample: %v", err)}
	}

	// Step 3: effective name.
	name := strings.TrimSpace(requestedName)
	if name == "" {
		name = "cloned_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	}

	// Step 4: provider clone.
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	voiceID, err := c.provider.CloneVoice(callCtx, samplePath, name)
	cancel()
	if err != nil {
		observability.RecordClone(string(OutcomeFailed))
		c.logger.Error().Err(err).Str("name", name).Msg("Provider voice clone failed")
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("voice clone failed: %v", err)}
	}

	// Step 5: record ownership; compensate on failure so the provider-side
	// voice does not linger uncounted.
	rec := store.VoiceRecord{UserID: userID, VoiceID: voiceID, VoiceName: name}
	if err := c.voices.InsertVoice(ctx, rec); err != nil {
		observability.RecordClone(string(OutcomeFailed))
		observability.RecordError("record_write", "voiceclone")
		c.logger.Error().Err(err).Str("voice_id", voiceID).Msg("Failed to persist voice record, reversing provider clone")
		c.compensate(ctx, voiceID)
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to record voice: %v", err)}
	}

	observability.RecordClone(string(OutcomeSuccess))
	c.logger.Info().Str("voice_id", voiceID).Str("name", name).Msg("Voice clone completed")
	return Result{Outcome: OutcomeSuccess, VoiceID: voiceID}
}

// Remove deletes a user's cloned voice from the provider and then drops the
// ownership record
func (c *Coordinator) Remove(ctx context.Context, userID, voiceID string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := c.provider.DeleteVoice(callCtx, voiceID); err != nil {
		return fmt.Errorf("delete provider voice: %w", err)
	}
	if err := c.voices.DeleteVoice(ctx, userID, voiceID); err != nil {
		return fmt.Errorf("delete voice record: %w", err)
	}
	return nil
}

// compensate best-effort deletes the just-created provider voice. Failure is
// logged, not retried.
func (c *Coordinator) compensate(ctx context.Context, voiceID string) {
	observability.RecordCloneCompensation()
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := c.provider.DeleteVoice(callCtx, voiceID); err != nil {
		c.logger.Error().Err(err).Str("voice_id", voiceID).Msg("Compensating voice delete failed")
	}
}

func (c *Coordinator) saveSample(sample io.Reader, sampleName string) (string, error) {
	name := fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.New().String(), "-", ""), filepath.Base(sampleName))
	path := filepath.Join(c.samplesDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create sample file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, sample); err != nil {
		return "", fmt.Errorf("write sample file: %w", err)
	}
	return path, nil
}
