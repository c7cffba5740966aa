package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ElevenLabsAPIKey != "test-elevenlabs-key" {
		t.Errorf("Expected ElevenLabsAPIKey 'test-elevenlabs-key', got '%s'", cfg.ElevenLabsAPIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("ELEVENLABS_API_KEY")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when required keys are missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.ElevenLabsModel != "eleven_multilingual_v2" {
		t.Errorf("Expected default ElevenLabsModel 'eleven_multilingual_v2', got '%s'", cfg.ElevenLabsModel)
	}

	if cfg.OutputFormat != "pcm_44100" {
		t.Errorf("Expected default OutputFormat 'pcm_44100', got '%s'", cfg.OutputFormat)
	}

	if cfg.MaxVoicesPerUser != 1 {
		t.Errorf("Expected default MaxVoicesPerUser 1, got %d", cfg.MaxVoicesPerUser)
	}

	if cfg.MaxGenerationsPerUser != 5 {
		t.Errorf("Expected default MaxGenerationsPerUser 5, got %d", cfg.MaxGenerationsPerUser)
	}

	if cfg.MergeGapMs != 300 {
		t.Errorf("Expected default MergeGapMs 300, got %d", cfg.MergeGapMs)
	}

	if cfg.SynthesisTimeout != 30 {
		t.Errorf("Expected default SynthesisTimeout 30, got %d", cfg.SynthesisTimeout)
	}

	if cfg.VoiceFetchAttempts != 3 {
		t.Errorf("Expected default VoiceFetchAttempts 3, got %d", cfg.VoiceFetchAttempts)
	}
}

func TestLoad_VoiceTuningDefaults(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.VoiceStability != 0.0 {
		t.Errorf("Expected default VoiceStability 0.0, got %f", cfg.VoiceStability)
	}

	if cfg.VoiceSimilarity != 1.0 {
		t.Errorf("Expected default VoiceSimilarity 1.0, got %f", cfg.VoiceSimilarity)
	}

	if cfg.VoiceStyle != 0.0 {
		t.Errorf("Expected default VoiceStyle 0.0, got %f", cfg.VoiceStyle)
	}

	if !cfg.VoiceSpeakerBoost {
		t.Error("Expected default VoiceSpeakerBoost true, got false")
	}

	if cfg.VoiceSpeed != 1.0 {
		t.Errorf("Expected default VoiceSpeed 1.0, got %f", cfg.VoiceSpeed)
	}
}

func TestLoad_InvalidCaps(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	os.Setenv("MAX_VOICES_PER_USER", "0")
	defer os.Unsetenv("ELEVENLABS_API_KEY")
	defer os.Unsetenv("MAX_VOICES_PER_USER")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for zero voice cap")
	}
}

func TestLoad_DurationHelpers(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got := cfg.MergeGap().Milliseconds(); got != 300 {
		t.Errorf("Expected MergeGap 300ms, got %dms", got)
	}

	if got := cfg.SynthesisCallTimeout().Seconds(); got != 30 {
		t.Errorf("Expected SynthesisCallTimeout 30s, got %fs", got)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_KEY", "test-value")
	defer os.Unsetenv("TEST_KEY")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}

func TestLoad_ObservabilityDefaults(t *testing.T) {
	os.Setenv("ELEVENLABS_API_KEY", "test-elevenlabs-key")
	os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}

	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
}
