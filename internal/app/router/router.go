// Package router holds the two entry points of a turn: typed chat and spoken
// commands. Each call detects the feature first, then generates the reply.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/friday-agent/internal/app/detection"
	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal failure")
)

// Responder produces the reply text for one turn. It must not fail.
type Responder interface {
	Generate(ctx context.Context, sc domain.SessionContext, mode domain.Mode) string
}

type Router struct {
	detector  *detection.Detector
	responder Responder
}

func New(detector *detection.Detector, responder Responder) *Router {
	return &Router{
		detector:  detector,
		responder: responder,
	}
}

type ChatRequest struct {
	Message        string
	History        []domain.ConversationTurn
	CurrentFeature string
}

type ChatResponse struct {
	Response string
	Feature  *domain.FeatureRecord
	Speak    bool
}

type VoiceRequest struct {
	Command string
}

type VoiceResponse struct {
	Response string
	Feature  *domain.FeatureRecord
}

// Chat handles a typed message. Feature detection matches trigger commands and
// feature name words.
func (r *Router) Chat(ctx context.Context, req ChatRequest) (resp ChatResponse, err error) {
	defer recoverTurn(ctx, &err)

	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("chat turn received",
		"history", len(req.History),
		"current_feature", req.CurrentFeature,
	)

	sc := domain.SessionContext{
		CurrentMessage: req.Message,
		RecentHistory:  nonEmptyTurns(req.History),
	}
	if f, ok := r.detector.Detect(req.Message); ok {
		sc.ActiveFeature = &f
		log.Info("feature detected", "feature", f.Name)
	}

	return ChatResponse{
		Response: r.responder.Generate(ctx, sc, domain.ModeText),
		Feature:  sc.ActiveFeature,
		Speak:    true,
	}, nil
}

// Voice handles a transcribed command. Only trigger commands select a feature;
// name words are ignored on this path.
func (r *Router) Voice(ctx context.Context, req VoiceRequest) (resp VoiceResponse, err error) {
	defer recoverTurn(ctx, &err)

	if strings.TrimSpace(req.Command) == "" {
		return VoiceResponse{}, fmt.Errorf("%w: command is required", ErrInvalidRequest)
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("voice command received")

	sc := domain.SessionContext{CurrentMessage: req.Command}
	if f, ok := r.detector.DetectCommand(req.Command); ok {
		sc.ActiveFeature = &f
		log.Info("feature detected", "feature", f.Name)
	}

	return VoiceResponse{
		Response: r.responder.Generate(ctx, sc, domain.ModeVoice),
		Feature:  sc.ActiveFeature,
	}, nil
}

func recoverTurn(ctx context.Context, err *error) {
	if p := recover(); p != nil {
		observability.LoggerFromContext(ctx).Error("turn panicked", "panic", p)
		*err = fmt.Errorf("%w: %v", ErrInternal, p)
	}
}

// nonEmptyTurns drops turns without content; the model protocol rejects them.
func nonEmptyTurns(turns []domain.ConversationTurn) []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
