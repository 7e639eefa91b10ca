package domain

import "context"

// ChatMessage is the {role, content} pair sent to the remote model.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LLMClient defines how the core application talks to the remote model service.
type LLMClient interface {
	// Name identifies the backend in logs.
	Name() string

	// ListModels enumerates the models the service has loaded.
	ListModels(ctx context.Context) ([]string, error)

	// Chat sends the full message list and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// CatalogSource loads the ordered feature records.
type CatalogSource interface {
	LoadFeatures(ctx context.Context) ([]FeatureRecord, error)
}
