package elevenlabs

// VoiceSettings holds the voice tuning parameters sent with every synthesis request
type VoiceSettings struct {
	Stability       float64 `json:"stability"`         // 0.0-1.0
	SimilarityBoost float64 `json:"similarity_boost"`  // 0.0-1.0
	Style           float64 `json:"style"`             // 0.0-1.0
	SpeakerBoost    bool    `json:"use_speaker_boost"` // Boost similarity to the original speaker
	Speed           float64 `json:"speed"`             // Speed multiplier (1.0 = normal)
}

// Voice represents one voice available on the provider account
type Voice struct {
	VoiceID    string `json:"voice_id"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}
