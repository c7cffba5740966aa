package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/config"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/script"
	"github.com/narravox/tts-studio/internal/store"
	"github.com/narravox/tts-studio/internal/voiceclone"
	"github.com/narravox/tts-studio/internal/voices"
)

// Server exposes the authoring pipeline to the presentation layer. Each
// session owns one script with a single writer; the registry lock only guards
// the session map itself.
type Server struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	cloner   *voiceclone.Coordinator
	catalog  *voices.Catalog
	usage    UsageReader
	sink     *audio.Sink
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*script.Session
}

// UsageReader reads the persisted per-user usage records for the usage and
// listing endpoints
type UsageReader interface {
	quota.Counter
	ListVoices(ctx context.Context, userID string) ([]store.VoiceRecord, error)
	ListGenerations(ctx context.Context, userID string) ([]store.GenerationRecord, error)
}

// NewServer creates the API server over the assembled components
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline, cloner *voiceclone.Coordinator, catalog *voices.Catalog, usage UsageReader, sink *audio.Sink) *Server {
	return &Server{
		cfg:     cfg,
		pipe:    pipe,
		cloner:  cloner,
		catalog: catalog,
		usage:   usage,
		sink:    sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   observability.ComponentLogger("httpapi"),
		sessions: make(map[string]*script.Session),
	}
}

// Register attaches all API routes to the mux
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}/script", s.handleGetScript)
	mux.HandleFunc("PUT /api/sessions/{id}/script", s.handleUpdateScript)
	mux.HandleFunc("POST /api/sessions/{id}/segments", s.handleAppendSegment)
	mux.HandleFunc("DELETE /api/sessions/{id}/segments/{segmentID}", s.handleRemoveSegment)
	mux.HandleFunc("POST /api/sessions/{id}/clear", s.handleClearScript)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("GET /ws/sessions/{id}/generate", s.handleGenerateWS)
	mux.HandleFunc("GET /api/sessions/{id}/usage", s.handleUsage)
	mux.HandleFunc("GET /api/sessions/{id}/voices", s.handleListOwnVoices)
	mux.HandleFunc("GET /api/sessions/{id}/generations", s.handleListGenerations)
	mux.HandleFunc("GET /api/voices", s.handleListVoices)
	mux.HandleFunc("POST /api/sessions/{id}/voices/clone", s.handleCloneVoice)
	mux.HandleFunc("DELETE /api/sessions/{id}/voices/{voiceID}", s.handleDeleteVoice)
	mux.HandleFunc("GET /api/artifacts/{name}", s.handleDownloadArtifact)
}

func (s *Server) session(id string) (*script.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) createSession(userID string) (string, *script.Session) {
	id := uuid.New().String()
	sess := script.NewSession(userID)
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id, sess
}
