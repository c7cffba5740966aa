package httpapi

import (
	"net/http"
	"sync"

	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/synth"
)

// wsMessage is one frame of the generation progress stream. Segment progress
// frames carry an event; the closing frame carries the batch summary.
type wsMessage struct {
	Type    string            `json:"type"` // "progress" or "result" or "error"
	Event   *synth.Event      `json:"event,omitempty"`
	Result  *generateResponse `json:"result,omitempty"`
	Message string            `json:"message,omitempty"`
}

// handleGenerateWS runs a generation batch and streams per-segment progress
// over a websocket, closing with the final batch summary. Query parameters
// merge=1 and bundle=1 select the artifact step.
func (s *Server) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	opts := pipeline.Options{
		Merge:        r.URL.Query().Get("merge") != "",
		Bundle:       r.URL.Query().Get("bundle") != "",
		EnforceQuota: true,
	}

	// Gorilla connections allow one concurrent writer; the progress callback
	// runs on the batch goroutine, so serialize frames.
	var writeMu sync.Mutex
	send := func(msg wsMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug().Err(err).Msg("Progress frame dropped, client gone")
		}
	}

	progress := func(ev synth.Event) {
		send(wsMessage{Type: "progress", Event: &ev})
	}

	result, err := s.pipe.Run(r.Context(), sess, opts, progress)
	if err != nil {
		send(wsMessage{Type: "error", Message: err.Error()})
		return
	}

	resp := toGenerateResponse(result)
	send(wsMessage{Type: "result", Result: &resp})
}
