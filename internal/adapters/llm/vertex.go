package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

const DefaultVertexModel = "gemini-2.5-flash-lite"

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates an LLMClient backed by Gemini on Vertex AI.
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("gcp project and location must be set for the vertex backend")
	}
	if modelName == "" {
		modelName = DefaultVertexModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

func (v *VertexClient) Name() string {
	return "vertex"
}

// ListModels implements domain.LLMClient. Only the first page is read; it is
// enough to tell whether the service answers and which families it serves.
func (v *VertexClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := v.client.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("vertex list models: %w", err)
	}

	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, m.Name)
	}
	return names, nil
}

// Chat implements domain.LLMClient. System messages become the system instruction.
func (v *VertexClient) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	contents, system := toGenaiContents(messages)

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 1024,
	}
	if system != "" {
		// The SDK examples send the system instruction with the user role.
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	return res.Text(), nil
}

func toGenaiContents(messages []domain.ChatMessage) ([]*genai.Content, string) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}
