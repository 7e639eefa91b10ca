package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

// MockLLM is an always-available backend for local development. It echoes the
// last user message so the remote tier can be exercised without a model server.
type MockLLM struct {
	models []string
}

func NewMockLLM() *MockLLM {
	return &MockLLM{models: []string{"qwen2.5:mock"}}
}

func (m *MockLLM) Name() string {
	return "mock"
}

func (m *MockLLM) ListModels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.models, nil
}

func (m *MockLLM) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var last, feature string
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			last = msg.Content
		case domain.RoleSystem:
			if _, after, ok := strings.Cut(msg.Content, "feature context: "); ok {
				feature = after
			} else if _, after, ok := strings.Cut(msg.Content, "Executing feature: "); ok {
				feature = after
			}
		}
	}

	if feature != "" {
		return fmt.Sprintf("Working on %s. You said %q.", feature, last), nil
	}
	return fmt.Sprintf("You said %q. How can I help with that?", last), nil
}
