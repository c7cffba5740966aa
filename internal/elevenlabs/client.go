package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/config"
	"github.com/narravox/tts-studio/internal/observability"
)

// Client wraps the ElevenLabs HTTP API. All methods return explicit errors;
// provider failures are never signalled through sentinel values.
type Client struct {
	config     *config.Config
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// synthesizeRequest is the request payload for the text-to-speech endpoint
type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// cloneResponse is the response payload from the voice add endpoint
type cloneResponse struct {
	VoiceID string `json:"voice_id"`
}

// listVoicesResponse is the response payload from the voices endpoint
type listVoicesResponse struct {
	Voices []Voice `json:"voices"`
}

// NewClient creates a new ElevenLabs API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config:     cfg,
		apiKey:     cfg.ElevenLabsAPIKey,
		baseURL:    cfg.ElevenLabsBaseURL,
		httpClient: &http.Client{},
		logger:     observability.ComponentLogger("elevenlabs"),
	}
}

// Synthesize converts text to audio with the given voice and returns the raw
// audio bytes in the configured output format
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	settings := VoiceSettings{
		Stability:       c.config.VoiceStability,
		SimilarityBoost: c.config.VoiceSimilarity,
		Style:           c.config.VoiceStyle,
		SpeakerBoost:    c.config.VoiceSpeakerBoost,
		Speed:           c.config.VoiceSpeed,
	}

	reqBody := synthesizeRequest{
		Text:          text,
		ModelID:       c.config.ElevenLabsModel,
		VoiceSettings: settings,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, c.config.OutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("text-to-speech", resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("provider returned empty audio stream")
	}

	c.logger.Debug().
		Str("voice_id", voiceID).
		Int("bytes", len(audio)).
		Msg("Synthesized segment audio")

	return audio, nil
}

// CloneVoice uploads a voice sample and creates a new instant voice clone.
// Returns the provider-assigned voice identifier.
func (c *Client) CloneVoice(ctx context.Context, samplePath, name string) (string, error) {
	sample, err := os.Open(samplePath)
	if err != nil {
		return "", fmt.Errorf("failed to open voice sample: %w", err)
	}
	defer sample.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", name); err != nil {
		return "", fmt.Errorf("failed to write name field: %w", err)
	}
	part, err := writer.CreateFormFile("files", filepath.Base(samplePath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, sample); err != nil {
		return "", fmt.Errorf("failed to copy voice sample: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/v1/voices/add", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError("voices/add", resp)
	}

	var cloned cloneResponse
	if err := json.NewDecoder(resp.Body).Decode(&cloned); err != nil {
		return "", fmt.Errorf("failed to decode clone response: %w", err)
	}
	if cloned.VoiceID == "" {
		return "", fmt.Errorf("provider returned no voice id")
	}

	c.logger.Info().
		Str("voice_id", cloned.VoiceID).
		Str("name", name).
		Msg("Created instant voice clone")

	return cloned.VoiceID, nil
}

// DeleteVoice removes a voice from the provider account
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	url := fmt.Sprintf("%s/v1/voices/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError("voices/delete", resp)
	}

	c.logger.Info().Str("voice_id", voiceID).Msg("Deleted provider voice")
	return nil
}

// ListVoices fetches all voices available on the provider account
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	url := fmt.Sprintf("%s/v1/voices", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("voices", resp)
	}

	var listed listVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	return listed.Voices, nil
}

// apiError builds an error from a non-200 provider response, including a
// truncated body excerpt for diagnostics
func (c *Client) apiError(endpoint string, resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	observability.RecordError("provider_api", "elevenlabs")
	return fmt.Errorf("elevenlabs %s returned status %d: %s", endpoint, resp.StatusCode, string(excerpt))
}
