package quota

import (
	"context"
	"fmt"

	"github.com/narravox/tts-studio/internal/observability"
)

// Reason discriminates why a quota check denied a request
type Reason int

const (
	// ReasonNone means the request was allowed
	ReasonNone Reason = iota
	// ReasonLimitReached means the user has no allowance left at all
	ReasonLimitReached
	// ReasonBatchTooLarge means the batch exceeds the remaining allowance
	ReasonBatchTooLarge
)

// Decision is the typed outcome of a quota check. Callers branch on Allowed
// rather than on error identity.
type Decision struct {
	Allowed   bool
	Reason    Reason
	Remaining int
	Message   string
}

// Allow returns a positive decision with the remaining allowance
func Allow(remaining int) Decision {
	return Decision{Allowed: true, Reason: ReasonNone, Remaining: remaining}
}

// Counter reads persisted per-user usage counts
type Counter interface {
	CountVoices(ctx context.Context, userID string) (int, error)
	CountGenerations(ctx context.Context, userID string) (int, error)
}

// Guard enforces per-user voice and generation caps. Checks are pure decisions
// over externally supplied counts; the count-then-insert sequence is not
// transactional, so concurrent batches for one user can exceed the effective
// quota (known gap, see DESIGN.md).
type Guard struct {
	counter       Counter
	voiceCap      int
	generationCap int
}

// NewGuard creates a quota guard with the given caps
func NewGuard(counter Counter, voiceCap, generationCap int) *Guard {
	return &Guard{
		counter:       counter,
		voiceCap:      voiceCap,
		generationCap: generationCap,
	}
}

// CheckGenerations decides whether a batch of requested generations may start.
// requested must be at least 1. The two denial reasons are distinct so the
// caller can report them separately.
func (g *Guard) CheckGenerations(ctx context.Context, userID string, requested int) (Decision, error) {
	if requested < 1 {
		return Decision{}, fmt.Errorf("requested count must be at least 1, got %d", requested)
	}

	current, err := g.counter.CountGenerations(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("read generation count: %w", err)
	}

	remaining := g.generationCap - current
	if remaining <= 0 {
		observability.RecordQuotaDenial("generation")
		return Decision{
			Allowed: false,
			Reason:  ReasonLimitReached,
			Message: fmt.Sprintf("generation limit of %d reached", g.generationCap),
		}, nil
	}
	if requested > remaining {
		observability.RecordQuotaDenial("generation")
		return Decision{
			Allowed:   false,
			Reason:    ReasonBatchTooLarge,
			Remaining: remaining,
			Message:   fmt.Sprintf("%d generation(s) remaining, but %d segment(s) requested", remaining, requested),
		}, nil
	}

	return Allow(remaining), nil
}

// CheckVoice decides whether the user may create another cloned voice
func (g *Guard) CheckVoice(ctx context.Context, userID string) (Decision, error) {
	current, err := g.counter.CountVoices(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("read voice count: %w", err)
	}

	remaining := g.voiceCap - current
	if remaining <= 0 {
		observability.RecordQuotaDenial("voice")
		return Decision{
			Allowed: false,
			Reason:  ReasonLimitReached,
			Message: fmt.Sprintf("voice limit of %d reached, delete the existing voice first", g.voiceCap),
		}, nil
	}

	return Allow(remaining), nil
}
