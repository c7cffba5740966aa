package script

import (
	"github.com/narravox/tts-studio/internal/elevenlabs"
)

// Session is the explicit editing context for one user: the script being
// edited, the cached provider voice list, and the clips from the most recent
// generation batch. It replaces ambient shared state so every pipeline call
// receives constructed inputs.
type Session struct {
	UserID       string
	Script       *Script
	CachedVoices []elevenlabs.Voice
	LastClips    []string // paths of the most recently generated clips
}

// NewSession creates a session for a user with a fresh single-segment script
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		Script: NewScript(),
	}
}

// VoiceLabel resolves a cached voice ID to its display name, falling back to
// the ID itself when the cache has no entry
func (s *Session) VoiceLabel(voiceID string) string {
	for _, v := range s.CachedVoices {
		if v.VoiceID == voiceID {
			if v.Name != "" {
				return v.Name
			}
			return v.VoiceID
		}
	}
	return voiceID
}
