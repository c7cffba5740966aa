package quota

import (
	"context"
	"errors"
	"testing"
)

// fakeCounter supplies fixed usage counts
type fakeCounter struct {
	voices      int
	generations int
	err         error
}

func (f *fakeCounter) CountVoices(ctx context.Context, userID string) (int, error) {
	return f.voices, f.err
}

func (f *fakeCounter) CountGenerations(ctx context.Context, userID string) (int, error) {
	return f.generations, f.err
}

func TestCheckGenerations(t *testing.T) {
	tests := []struct {
		name        string
		cap         int
		current     int
		requested   int
		wantAllowed bool
		wantReason  Reason
	}{
		{name: "fresh user single segment", cap: 5, current: 0, requested: 1, wantAllowed: true},
		{name: "exact remaining allowance", cap: 5, current: 2, requested: 3, wantAllowed: true},
		{name: "limit already reached", cap: 5, current: 5, requested: 1, wantAllowed: false, wantReason: ReasonLimitReached},
		{name: "over limit", cap: 5, current: 7, requested: 1, wantAllowed: false, wantReason: ReasonLimitReached},
		{name: "batch exceeds remaining", cap: 5, current: 3, requested: 3, wantAllowed: false, wantReason: ReasonBatchTooLarge},
		{name: "limit reached ignores batch size", cap: 5, current: 5, requested: 100, wantAllowed: false, wantReason: ReasonLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := NewGuard(&fakeCounter{generations: tt.current}, 1, tt.cap)
			decision, err := guard.CheckGenerations(context.Background(), "user-1", tt.requested)
			if err != nil {
				t.Fatalf("CheckGenerations() failed: %v", err)
			}
			if decision.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", decision.Allowed, tt.wantAllowed, decision.Message)
			}
			if !tt.wantAllowed && decision.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", decision.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheckGenerations_RemainingReported(t *testing.T) {
	guard := NewGuard(&fakeCounter{generations: 2}, 1, 5)
	decision, err := guard.CheckGenerations(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("CheckGenerations() failed: %v", err)
	}
	if decision.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", decision.Remaining)
	}
}

func TestCheckGenerations_InvalidRequest(t *testing.T) {
	guard := NewGuard(&fakeCounter{}, 1, 5)
	if _, err := guard.CheckGenerations(context.Background(), "user-1", 0); err == nil {
		t.Error("Expected error for requested count 0")
	}
}

func TestCheckGenerations_CounterError(t *testing.T) {
	guard := NewGuard(&fakeCounter{err: errors.New("db down")}, 1, 5)
	if _, err := guard.CheckGenerations(context.Background(), "user-1", 1); err == nil {
		t.Error("Expected counter error to propagate")
	}
}

func TestCheckVoice(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		wantAllowed bool
	}{
		{name: "no voice yet", current: 0, wantAllowed: true},
		{name: "cap reached", current: 1, wantAllowed: false},
		{name: "over cap", current: 2, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := NewGuard(&fakeCounter{voices: tt.current}, 1, 5)
			decision, err := guard.CheckVoice(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("CheckVoice() failed: %v", err)
			}
			if decision.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.wantAllowed)
			}
		})
	}
}
