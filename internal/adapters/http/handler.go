package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

const (
	chatFailedMessage  = "Failed to process request"
	voiceFailedMessage = "Failed to process voice command"
)

// StatusProber reports whether the model service is up with a model of the
// wanted family loaded.
type StatusProber interface {
	HasModelFamily(ctx context.Context, family string) bool
}

// Capabilities are the local speech flags reported by /api/status.
type Capabilities struct {
	Recognition bool
	Synthesis   bool
}

type Deps struct {
	Router        *router.Router
	Catalog       *catalog.Catalog
	Prober        StatusProber
	ModelFamily   string
	Capabilities  Capabilities
	Transcripts   domain.TranscriptStore
	MeterInterval time.Duration
}

type Server struct {
	deps Deps
}

func NewServer(deps Deps) http.Handler {
	s := &Server{deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/voice", s.handleVoice)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/features", s.handleFeatures)
	mux.Handle("GET /api/voice/live", &liveHandler{deps: deps})

	logger := observability.Logger()
	return chainMiddlewares(mux,
		withCORS,
		func(h http.Handler) http.Handler { return withRecover(logger, h) },
		func(h http.Handler) http.Handler { return withAccessLog(logger, h) },
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message        string        `json:"message"`
	History        []historyItem `json:"history"`
	CurrentFeature *string       `json:"currentFeature"`
}

type chatResponse struct {
	Response string  `json:"response"`
	Feature  *string `json:"feature"`
	Speak    bool    `json:"speak"`
}

type voiceRequest struct {
	Command string `json:"command"`
}

type voiceResponse struct {
	Response string  `json:"response"`
	Feature  *string `json:"feature"`
}

type statusResponse struct {
	Ollama bool `json:"ollama"`
	Vosk   bool `json:"vosk"`
	TTS    bool `json:"tts"`
}

type featuresResponse struct {
	Features   []domain.FeatureRecord `json:"features"`
	Categories []domain.Category      `json:"categories"`
	Total      int                    `json:"total"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		processingError(ctx, w, chatFailedMessage, err)
		return
	}

	in := router.ChatRequest{
		Message: req.Message,
		History: toTurns(req.History),
	}
	if req.CurrentFeature != nil {
		in.CurrentFeature = *req.CurrentFeature
	}

	out, err := s.deps.Router.Chat(ctx, in)
	if err != nil {
		processingError(ctx, w, chatFailedMessage, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: out.Response,
		Feature:  featureName(out.Feature),
		Speak:    out.Speak,
	})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		processingError(ctx, w, voiceFailedMessage, err)
		return
	}

	out, err := s.deps.Router.Voice(ctx, router.VoiceRequest{Command: req.Command})
	if err != nil {
		processingError(ctx, w, voiceFailedMessage, err)
		return
	}

	writeJSON(w, http.StatusOK, voiceResponse{
		Response: out.Response,
		Feature:  featureName(out.Feature),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Ollama: s.deps.Prober.HasModelFamily(r.Context(), s.deps.ModelFamily),
		Vosk:   s.deps.Capabilities.Recognition,
		TTS:    s.deps.Capabilities.Synthesis,
	})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	features := s.deps.Catalog.Search(r.URL.Query().Get("q"))
	if features == nil {
		features = []domain.FeatureRecord{}
	}
	writeJSON(w, http.StatusOK, featuresResponse{
		Features:   features,
		Categories: s.deps.Catalog.Categories(),
		Total:      s.deps.Catalog.Len(),
	})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toTurns(items []historyItem) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, 0, len(items))
	for _, it := range items {
		turns = append(turns, domain.ConversationTurn{
			ID:      domain.TurnID(uuid.NewString()),
			Role:    domain.ParseRole(it.Role),
			Content: it.Content,
		})
	}
	return turns
}

func featureName(f *domain.FeatureRecord) *string {
	if f == nil {
		return nil
	}
	name := f.Name
	return &name
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// processingError logs err and answers with the generic failure body; clients
// never see the underlying cause.
func processingError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	observability.LoggerFromContext(ctx).Error(msg, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": msg,
	})
}
