package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/voiceclone"
)

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	id, _ := s.createSession(req.UserID)
	s.writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id})
}

func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Script)
}

type segmentUpdate struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoiceID    string `json:"voice_id"`
	VoiceLabel string `json:"voice_label"`
}

// handleUpdateScript applies the editor's current segment contents. Unknown
// segment IDs are ignored; segment order and membership change through the
// append/remove/clear endpoints.
func (s *Server) handleUpdateScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var updates []segmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid script payload")
		return
	}

	byID := make(map[string]segmentUpdate, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}
	for _, seg := range sess.Script.Segments {
		if u, ok := byID[seg.ID]; ok {
			seg.Text = u.Text
			label := u.VoiceLabel
			if label == "" {
				label = sess.VoiceLabel(u.VoiceID)
			}
			seg.SetVoice(u.VoiceID, label)
		}
	}

	s.writeJSON(w, http.StatusOK, sess.Script)
}

func (s *Server) handleAppendSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	seg := sess.Script.Append()
	s.writeJSON(w, http.StatusCreated, seg)
}

func (s *Server) handleRemoveSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if !sess.Script.Remove(r.PathValue("segmentID")) {
		s.writeError(w, http.StatusNotFound, "segment not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Script)
}

func (s *Server) handleClearScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	sess.Script.Clear()
	s.writeJSON(w, http.StatusOK, sess.Script)
}

type generateRequest struct {
	Merge  bool `json:"merge"`
	Bundle bool `json:"bundle"`
}

type generateResponse struct {
	Clips        []clipView `json:"clips"`
	Errors       []string   `json:"errors,omitempty"`
	ArtifactName string     `json:"artifact_name,omitempty"`
	ArtifactType string     `json:"artifact_type,omitempty"`
}

type clipView struct {
	SegmentID string `json:"segment_id"`
	Ordinal   int    `json:"ordinal"`
	Name      string `json:"name"`
	Bytes     int64  `json:"bytes"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req generateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	opts := pipeline.Options{Merge: req.Merge, Bundle: req.Bundle, EnforceQuota: true}
	result, err := s.pipe.Run(r.Context(), sess, opts, nil)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toGenerateResponse(result))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	voicesUsed, err := s.usage.CountVoices(r.Context(), sess.UserID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read voice usage")
		return
	}
	generationsUsed, err := s.usage.CountGenerations(r.Context(), sess.UserID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read generation usage")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{
		"voices_used":      voicesUsed,
		"voices_cap":       s.cfg.MaxVoicesPerUser,
		"generations_used": generationsUsed,
		"generations_cap":  s.cfg.MaxGenerationsPerUser,
	})
}

type ownedVoiceView struct {
	VoiceID   string    `json:"voice_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// handleListOwnVoices lists the user's cloned voices from the usage store,
// newest first. This is how a user finds the voice ID to delete.
func (s *Server) handleListOwnVoices(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	records, err := s.usage.ListVoices(r.Context(), sess.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list owned voices")
		s.writeError(w, http.StatusInternalServerError, "failed to list voices")
		return
	}

	views := make([]ownedVoiceView, 0, len(records))
	for _, rec := range records {
		views = append(views, ownedVoiceView{
			VoiceID:   rec.VoiceID,
			Name:      rec.VoiceName,
			CreatedAt: rec.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

type generationView struct {
	Text       string    `json:"text"`
	VoiceID    string    `json:"voice_id"`
	VoiceLabel string    `json:"voice_label"`
	CreatedAt  time.Time `json:"created_at"`
}

// handleListGenerations returns the user's generation history, newest first
func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	records, err := s.usage.ListGenerations(r.Context(), sess.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list generation history")
		s.writeError(w, http.StatusInternalServerError, "failed to list generations")
		return
	}

	views := make([]generationView, 0, len(records))
	for _, rec := range records {
		views = append(views, generationView{
			Text:       rec.Text,
			VoiceID:    rec.VoiceID,
			VoiceLabel: rec.VoiceLabel,
			CreatedAt:  rec.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") != "" {
		s.writeJSON(w, http.StatusOK, s.catalog.Refresh(r.Context()))
		return
	}
	s.writeJSON(w, http.StatusOK, s.catalog.Cached())
}

func (s *Server) handleCloneVoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "a single audio file is required")
		return
	}
	defer file.Close()

	result := s.cloner.Clone(r.Context(), sess.UserID, file, header.Filename, r.FormValue("name"))
	switch result.Outcome {
	case voiceclone.OutcomeSuccess:
		s.catalog.Invalidate()
		sess.CachedVoices = s.catalog.Refresh(r.Context())
		s.writeJSON(w, http.StatusCreated, map[string]string{"voice_id": result.VoiceID})
	case voiceclone.OutcomeDenied:
		s.writeError(w, http.StatusForbidden, result.Reason)
	default:
		s.writeError(w, http.StatusBadGateway, result.Reason)
	}
}

func (s *Server) handleDeleteVoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := s.cloner.Remove(r.Context(), sess.UserID, r.PathValue("voiceID")); err != nil {
		s.logger.Error().Err(err).Msg("Voice delete failed")
		s.writeError(w, http.StatusBadGateway, "failed to delete voice")
		return
	}
	s.catalog.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	f, err := s.sink.Open(r.PathValue("name"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	defer f.Close()

	name := r.PathValue("name")
	switch {
	case strings.HasSuffix(name, ".zip"):
		w.Header().Set("Content-Type", "application/zip")
	case strings.HasSuffix(name, ".mp3"):
		w.Header().Set("Content-Type", "audio/mpeg")
	default:
		w.Header().Set("Content-Type", "audio/wav")
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn().Err(err).Str("artifact", name).Msg("Artifact stream interrupted")
	}
}

func toGenerateResponse(result *pipeline.Result) generateResponse {
	resp := generateResponse{}
	for _, c := range result.Clips {
		resp.Clips = append(resp.Clips, clipView{
			SegmentID: c.SegmentID,
			Ordinal:   c.Ordinal,
			Name:      baseName(c.Path),
			Bytes:     c.Bytes,
		})
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	if result.ArtifactPath != "" {
		resp.ArtifactName = baseName(result.ArtifactPath)
		resp.ArtifactType = result.ArtifactType
	}
	return resp
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var valErr *pipeline.ValidationError
	var quotaErr *pipeline.QuotaError
	switch {
	case errors.As(err, &valErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":             "invalid segments",
			"invalid_positions": valErr.Positions,
		})
	case errors.As(err, &quotaErr):
		s.writeError(w, http.StatusForbidden, quotaErr.Decision.Message)
	default:
		s.logger.Error().Err(err).Msg("Generation failed")
		s.writeError(w, http.StatusInternalServerError, "generation failed")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
