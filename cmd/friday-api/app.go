package main

import (
	"context"
	"fmt"
	"net/http"

	httpadapter "github.com/PabloGalante/friday-agent/internal/adapters/http"
	"github.com/PabloGalante/friday-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/friday-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/friday-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/friday-agent/internal/app/detection"
	"github.com/PabloGalante/friday-agent/internal/app/fallback"
	"github.com/PabloGalante/friday-agent/internal/app/generation"
	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/config"
	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

// transcriptLimit bounds the turns kept per live session.
const transcriptLimit = 100

type app struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	prober  *generation.Prober
	router  *router.Router
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prober := generation.NewProber(client, cfg.LLM.ProbeTimeout, cfg.LLM.StatusTimeout)
	gen := generation.NewGenerator(client, prober, fallback.NewEngine(c), cfg.LLM.ChatTimeout)

	observability.Logger().Info("assistant ready",
		"backend", client.Name(),
		"model", cfg.LLM.Model,
		"features", c.Len(),
		"catalog", cfg.CatalogSource,
	)

	return &app{
		cfg:     cfg,
		catalog: c,
		prober:  prober,
		router:  router.New(detection.NewDetector(c), gen),
	}, nil
}

func (a *app) handler() http.Handler {
	return httpadapter.NewServer(httpadapter.Deps{
		Router:      a.router,
		Catalog:     a.catalog,
		Prober:      a.prober,
		ModelFamily: a.cfg.LLM.ModelFamily,
		Capabilities: httpadapter.Capabilities{
			Recognition: a.cfg.VoiceRecognition,
			Synthesis:   a.cfg.VoiceSynthesis,
		},
		Transcripts:   memstore.NewTranscriptStore(transcriptLimit),
		MeterInterval: a.cfg.MeterInterval,
	})
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.LLM.Backend {
	case config.BackendOllama:
		return llm.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model, nil), nil
	case config.BackendOpenAI:
		return llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, nil), nil
	case config.BackendVertex:
		client, err := llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("init vertex client: %w", err)
		}
		return client, nil
	case config.BackendMock:
		return llm.NewMockLLM(), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLM.Backend)
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch cfg.CatalogSource {
	case config.CatalogEmbedded:
		return catalog.Default()
	case config.CatalogFile:
		return catalog.Load(ctx, catalog.FileSource{Path: cfg.CatalogPath})
	case config.CatalogFirestore:
		src, err := firestorestore.NewCatalogSource(ctx, cfg.GCPProjectID, cfg.CatalogCollection)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return catalog.Load(ctx, src)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}
