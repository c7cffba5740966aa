package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the TTS studio service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// ElevenLabs API configuration
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY" required:"true"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
	ElevenLabsModel   string `envconfig:"ELEVENLABS_MODEL" default:"eleven_multilingual_v2"`
	OutputFormat      string `envconfig:"ELEVENLABS_OUTPUT_FORMAT" default:"pcm_44100"` // pcm_44100 (mergeable) or mp3_44100_128
	SynthesisTimeout  int    `envconfig:"SYNTHESIS_TIMEOUT" default:"30"`               // seconds, per synthesis call
	CloneTimeout      int    `envconfig:"CLONE_TIMEOUT" default:"60"`                   // seconds, per clone upload

	// Default voice tuning applied to every synthesis request
	VoiceStability    float64 `envconfig:"VOICE_STABILITY" default:"0.0"`        // 0.0-1.0
	VoiceSimilarity   float64 `envconfig:"VOICE_SIMILARITY_BOOST" default:"1.0"` // 0.0-1.0
	VoiceStyle        float64 `envconfig:"VOICE_STYLE" default:"0.0"`            // 0.0-1.0
	VoiceSpeakerBoost bool    `envconfig:"VOICE_SPEAKER_BOOST" default:"true"`
	VoiceSpeed        float64 `envconfig:"VOICE_SPEED" default:"1.0"` // Speed multiplier (1.0 = normal)

	// Per-user usage limits
	MaxVoicesPerUser      int `envconfig:"MAX_VOICES_PER_USER" default:"1"`
	MaxGenerationsPerUser int `envconfig:"MAX_GENERATIONS_PER_USER" default:"5"`

	// Storage configuration
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/studio.db"`  // SQLite database file
	SamplesDir   string `envconfig:"SAMPLES_DIR" default:"data/voicesamples"` // Uploaded voice samples
	OutputsDir   string `envconfig:"OUTPUTS_DIR" default:"outputs/tts"`       // Generated clips and artifacts
	MergeGapMs   int    `envconfig:"MERGE_GAP_MS" default:"300"`              // Silence between merged clips in milliseconds

	// Voice list refresh
	VoiceFetchTimeout  int `envconfig:"VOICE_FETCH_TIMEOUT" default:"8"`  // seconds
	VoiceFetchAttempts int `envconfig:"VOICE_FETCH_ATTEMPTS" default:"3"` // Retry attempts for voice list refresh only

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// SynthesisCallTimeout returns the per-call synthesis timeout as a duration
func (c *Config) SynthesisCallTimeout() time.Duration {
	return time.Duration(c.SynthesisTimeout) * time.Second
}

// CloneCallTimeout returns the per-call voice clone timeout as a duration
func (c *Config) CloneCallTimeout() time.Duration {
	return time.Duration(c.CloneTimeout) * time.Second
}

// VoiceFetchCallTimeout returns the voice list fetch timeout as a duration
func (c *Config) VoiceFetchCallTimeout() time.Duration {
	return time.Duration(c.VoiceFetchTimeout) * time.Second
}

// MergeGap returns the inter-segment silence gap as a duration
func (c *Config) MergeGap() time.Duration {
	return time.Duration(c.MergeGapMs) * time.Millisecond
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate required fields
	if cfg.ElevenLabsAPIKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	if cfg.MaxVoicesPerUser < 1 {
		return nil, fmt.Errorf("MAX_VOICES_PER_USER must be at least 1")
	}
	if cfg.MaxGenerationsPerUser < 1 {
		return nil, fmt.Errorf("MAX_GENERATIONS_PER_USER must be at least 1")
	}

	return &cfg, nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
