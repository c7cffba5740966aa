package voices

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/elevenlabs"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/resilience"
)

// Lister fetches the voices available on the provider account
type Lister interface {
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
}

// Catalog caches the provider voice list for the editor's voice picker. The
// refresh is the one provider call that is retried: it is an idempotent read
// and a stale cache is an acceptable fallback.
type Catalog struct {
	client      Lister
	retryCfg    *resilience.RetryConfig
	callTimeout time.Duration
	logger      zerolog.Logger

	mu     sync.RWMutex
	cached []elevenlabs.Voice
}

// NewCatalog creates a voice catalog over the given provider client
func NewCatalog(client Lister, attempts int, callTimeout time.Duration) *Catalog {
	cfg := resilience.DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	return &Catalog{
		client:      client,
		retryCfg:    cfg,
		callTimeout: callTimeout,
		logger:      observability.ComponentLogger("voices"),
	}
}

// Refresh fetches the provider voice list and updates the cache. On failure
// it returns the last cached list so the editor keeps working offline.
func (c *Catalog) Refresh(ctx context.Context) []elevenlabs.Voice {
	var fetched []elevenlabs.Voice
	err := resilience.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
		voices, err := c.client.ListVoices(callCtx)
		if err != nil {
			return err
		}
		fetched = voices
		return nil
	}, c.retryCfg, resilience.IsRetryableNetworkError)

	if err != nil {
		observability.RecordError("voice_fetch", "voices")
		c.logger.Warn().Err(err).Msg("Failed to refresh voice list, serving cached copy")
		return c.Cached()
	}

	c.mu.Lock()
	c.cached = fetched
	c.mu.Unlock()
	return fetched
}

// Cached returns the last fetched voice list without contacting the provider
func (c *Catalog) Cached() []elevenlabs.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]elevenlabs.Voice, len(c.cached))
	copy(out, c.cached)
	return out
}

// Invalidate drops the cached list, forcing the next Refresh to hit the
// provider. Called after a clone or delete changes the account's voices.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}
