// Package generation implements the two-tier response strategy: the remote model
// when it answers its probe, the rule-based engine otherwise.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

const DefaultChatTimeout = 30 * time.Second

var ErrEmptyReply = errors.New("model returned empty content")

// Availability decides the tier for a turn.
type Availability interface {
	IsAvailable(ctx context.Context) bool
}

// Fallback is the deterministic tier.
type Fallback interface {
	Fallback(message string, feature *domain.FeatureRecord) string
	VoiceFallback(command string, feature *domain.FeatureRecord) string
}

type Generator struct {
	client      domain.LLMClient
	prober      Availability
	fallback    Fallback
	chatTimeout time.Duration
}

func NewGenerator(client domain.LLMClient, prober Availability, fb Fallback, chatTimeout time.Duration) *Generator {
	if chatTimeout <= 0 {
		chatTimeout = DefaultChatTimeout
	}
	return &Generator{
		client:      client,
		prober:      prober,
		fallback:    fb,
		chatTimeout: chatTimeout,
	}
}

// Generate always yields a reply. The remote call is attempted at most once and
// only when the prober says yes; any failure falls through to the rule engine.
func (g *Generator) Generate(ctx context.Context, sc domain.SessionContext, mode domain.Mode) string {
	log := observability.LoggerFromContext(ctx).With(
		"mode", mode,
		"feature", sc.FeatureName(),
	)

	if g.prober.IsAvailable(ctx) {
		reply, err := g.remote(ctx, sc, mode)
		if err == nil {
			log.Info("reply generated", "tier", "remote", "backend", g.client.Name())
			return reply
		}
		log.Warn("remote generation failed, using fallback", "backend", g.client.Name(), "error", err)
	} else {
		log.Info("model service unavailable, using fallback")
	}

	return g.local(sc, mode)
}

func (g *Generator) remote(ctx context.Context, sc domain.SessionContext, mode domain.Mode) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.chatTimeout)
	defer cancel()

	reply, err := g.client.Chat(ctx, BuildMessages(sc, mode))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func (g *Generator) local(sc domain.SessionContext, mode domain.Mode) string {
	if mode == domain.ModeVoice {
		return g.fallback.VoiceFallback(sc.CurrentMessage, sc.ActiveFeature)
	}
	return g.fallback.Fallback(sc.CurrentMessage, sc.ActiveFeature)
}
