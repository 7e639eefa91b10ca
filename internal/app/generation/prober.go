package generation

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

const (
	DefaultProbeTimeout  = time.Second
	DefaultStatusTimeout = 2 * time.Second
)

// Prober checks whether the model service answers its listing call.
// Results are never cached: every turn probes again.
type Prober struct {
	client        domain.LLMClient
	probeTimeout  time.Duration
	statusTimeout time.Duration
}

func NewProber(client domain.LLMClient, probeTimeout, statusTimeout time.Duration) *Prober {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if statusTimeout <= 0 {
		statusTimeout = DefaultStatusTimeout
	}
	return &Prober{
		client:        client,
		probeTimeout:  probeTimeout,
		statusTimeout: statusTimeout,
	}
}

// IsAvailable reports false on any error, non-success status or timeout.
func (p *Prober) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	if _, err := p.client.ListModels(ctx); err != nil {
		observability.LoggerFromContext(ctx).Debug("model service probe failed",
			"backend", p.client.Name(),
			"error", err,
		)
		return false
	}
	return true
}

// HasModelFamily reports whether the service is reachable and has loaded a model
// whose name contains family, compared case-insensitively.
func (p *Prober) HasModelFamily(ctx context.Context, family string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.statusTimeout)
	defer cancel()

	models, err := p.client.ListModels(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug("model listing failed",
			"backend", p.client.Name(),
			"error", err,
		)
		return false
	}

	family = strings.ToLower(family)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), family) {
			return true
		}
	}
	return false
}
