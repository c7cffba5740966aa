package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/synth"
)

// ValidationError reports every failing segment position in one shot. The
// batch never starts when validation fails.
type ValidationError struct {
	Positions []int // 1-based
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid segments at positions %v", e.Positions)
}

// QuotaError reports a generation quota denial
type QuotaError struct {
	Decision quota.Decision
}

func (e *QuotaError) Error() string {
	return e.Decision.Message
}

// Options selects which optional steps of the pipeline run. The same pipeline
// serves plain per-segment generation, generate-and-merge, and bundled output.
type Options struct {
	Merge        bool // concatenate clips into one stream, archive on failure
	Bundle       bool // package clips into an archive without merging
	EnforceQuota bool
}

// Result is the outcome of one generation run
type Result struct {
	Clips        []audio.Clip
	Errors       []synth.SegmentError
	ArtifactPath string // empty when no artifact was requested or no clips succeeded
	ArtifactType string // "merged" or "archive"
}

// Pipeline wires the validator, quota guard, batch synthesizer, and assembler
// into the single generation entry point used by every surface (HTTP, CLI).
type Pipeline struct {
	guard     *quota.Guard
	batch     *synth.BatchSynthesizer
	assembler *audio.Assembler
	logger    zerolog.Logger
}

// New creates a pipeline over the given components
func New(guard *quota.Guard, batch *synth.BatchSynthesizer, assembler *audio.Assembler) *Pipeline {
	return &Pipeline{
		guard:     guard,
		batch:     batch,
		assembler: assembler,
		logger:    observability.ComponentLogger("pipeline"),
	}
}

// Run validates the session's script, enforces the generation quota, drives
// per-segment synthesis, and assembles the requested artifact. Per-segment
// synthesis failures are reported in Result.Errors, not as a run error; only
// validation failure, quota denial, and a failed fallback assembly abort.
func (p *Pipeline) Run(ctx context.Context, session *script.Session, opts Options, progress synth.Progress) (*Result, error) {
	if invalid := script.Validate(session.Script); len(invalid) > 0 {
		return nil, &ValidationError{Positions: invalid}
	}

	if opts.EnforceQuota {
		decision, err := p.guard.CheckGenerations(ctx, session.UserID, session.Script.Len())
		if err != nil {
			return nil, fmt.Errorf("generation quota check: %w", err)
		}
		if !decision.Allowed {
			return nil, &QuotaError{Decision: decision}
		}
	}

	clips, errs := p.batch.Generate(ctx, session, progress)

	session.LastClips = session.LastClips[:0]
	for _, c := range clips {
		session.LastClips = append(session.LastClips, c.Path)
	}

	result := &Result{Clips: clips, Errors: errs}

	if len(clips) == 0 {
		return result, nil
	}

	switch {
	case opts.Merge:
		path, err := p.assembler.Assemble(clips, true)
		if err != nil {
			return result, fmt.Errorf("assemble artifact: %w", err)
		}
		result.ArtifactPath = path
		result.ArtifactType = artifactType(path)
	case opts.Bundle:
		path, err := p.assembler.Archive(clips)
		if err != nil {
			return result, fmt.Errorf("archive clips: %w", err)
		}
		result.ArtifactPath = path
		result.ArtifactType = "archive"
	}

	return result, nil
}

func artifactType(path string) string {
	if len(path) >= 4 && path[len(path)-4:] == ".zip" {
		return "archive"
	}
	return "merged"
}
