package generation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/friday-agent/internal/app/generation"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

type fakeClient struct {
	mu        sync.Mutex
	models    []string
	listErr   error
	listDelay time.Duration
	reply     string
	chatErr   error
	chatBlock bool
	calls     [][]domain.ChatMessage
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) ListModels(ctx context.Context) ([]string, error) {
	if f.listDelay > 0 {
		select {
		case <-time.After(f.listDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.models, f.listErr
}

func (f *fakeClient) Chat(ctx context.Context, msgs []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msgs)
	f.mu.Unlock()

	if f.chatBlock {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.chatErr
}

func (f *fakeClient) chatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixedAvailability bool

func (a fixedAvailability) IsAvailable(context.Context) bool { return bool(a) }

type stubFallback struct{}

func (stubFallback) Fallback(message string, f *domain.FeatureRecord) string {
	if f != nil {
		return "text-fallback:" + f.Name
	}
	return "text-fallback:" + message
}

func (stubFallback) VoiceFallback(command string, f *domain.FeatureRecord) string {
	return "voice-fallback:" + command
}

func history(n int) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, n)
	for i := range turns {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		turns[i] = domain.ConversationTurn{Role: role, Content: string(rune('a' + i))}
	}
	return turns
}

func TestGenerateUnavailableNeverCallsRemote(t *testing.T) {
	client := &fakeClient{reply: "remote"}
	g := generation.NewGenerator(client, fixedAvailability(false), stubFallback{}, time.Second)

	got := g.Generate(context.Background(), domain.SessionContext{CurrentMessage: "hi"}, domain.ModeText)

	assert.Equal(t, "text-fallback:hi", got)
	assert.Zero(t, client.chatCalls())
}

func TestGenerateRemoteRequestShape(t *testing.T) {
	client := &fakeClient{reply: "  Sure thing.  "}
	g := generation.NewGenerator(client, fixedAvailability(true), stubFallback{}, time.Second)
	sc := domain.SessionContext{
		CurrentMessage: "set a timer",
		RecentHistory:  history(7),
		ActiveFeature:  &domain.FeatureRecord{Name: "Set Timer"},
	}

	got := g.Generate(context.Background(), sc, domain.ModeText)

	require.Equal(t, "Sure thing.", got)
	require.Equal(t, 1, client.chatCalls())

	got0 := client.calls[0]
	wantTail := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "c"},
		{Role: domain.RoleAssistant, Content: "d"},
		{Role: domain.RoleUser, Content: "e"},
		{Role: domain.RoleAssistant, Content: "f"},
		{Role: domain.RoleUser, Content: "g"},
		{Role: domain.RoleUser, Content: "set a timer"},
	}
	assert.Equal(t, domain.RoleSystem, got0[0].Role)
	assert.Contains(t, got0[0].Content, "Current feature context: Set Timer")
	if diff := cmp.Diff(wantTail, got0[1:]); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateVoiceSendsNoHistory(t *testing.T) {
	client := &fakeClient{reply: "On it."}
	g := generation.NewGenerator(client, fixedAvailability(true), stubFallback{}, time.Second)
	sc := domain.SessionContext{CurrentMessage: "lights on", RecentHistory: history(3)}

	got := g.Generate(context.Background(), sc, domain.ModeVoice)

	require.Equal(t, "On it.", got)
	want := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: generation.SystemPrompt(domain.ModeVoice, "")},
		{Role: domain.RoleUser, Content: "lights on"},
	}
	if diff := cmp.Diff(want, client.calls[0]); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFallsBackOnRemoteFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		mode   domain.Mode
		want   string
	}{
		{"chat error", &fakeClient{chatErr: errors.New("connection refused")}, domain.ModeText, "text-fallback:ping"},
		{"empty content", &fakeClient{reply: "   "}, domain.ModeText, "text-fallback:ping"},
		{"voice chat error", &fakeClient{chatErr: errors.New("status 500")}, domain.ModeVoice, "voice-fallback:ping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := generation.NewGenerator(tt.client, fixedAvailability(true), stubFallback{}, time.Second)

			got := g.Generate(context.Background(), domain.SessionContext{CurrentMessage: "ping"}, tt.mode)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.client.chatCalls(), "remote attempted exactly once")
		})
	}
}

func TestGenerateChatTimeoutFallsBack(t *testing.T) {
	client := &fakeClient{chatBlock: true}
	g := generation.NewGenerator(client, fixedAvailability(true), stubFallback{}, 20*time.Millisecond)
	feature := &domain.FeatureRecord{Name: "Set Reminder"}

	start := time.Now()
	got := g.Generate(context.Background(), domain.SessionContext{CurrentMessage: "remind me", ActiveFeature: feature}, domain.ModeText)

	assert.Equal(t, "text-fallback:Set Reminder", got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProberIsAvailable(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
		want   bool
	}{
		{"reachable", &fakeClient{models: []string{"qwen2.5:latest"}}, true},
		{"reachable without models", &fakeClient{}, true},
		{"error", &fakeClient{listErr: errors.New("dial tcp: refused")}, false},
		{"slower than timeout", &fakeClient{listDelay: time.Second}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := generation.NewProber(tt.client, 20*time.Millisecond, 20*time.Millisecond)
			assert.Equal(t, tt.want, p.IsAvailable(context.Background()))
		})
	}
}

func TestProberHasModelFamily(t *testing.T) {
	p := generation.NewProber(&fakeClient{models: []string{"llama3:8b", "Qwen2.5:7b"}}, 0, 0)

	assert.True(t, p.HasModelFamily(context.Background(), "qwen"))
	assert.False(t, p.HasModelFamily(context.Background(), "mistral"))

	down := generation.NewProber(&fakeClient{listErr: errors.New("down")}, 0, 0)
	assert.False(t, down.HasModelFamily(context.Background(), "qwen"))
}

func TestSystemPrompt(t *testing.T) {
	assert.NotContains(t, generation.SystemPrompt(domain.ModeText, ""), "Current feature context")
	assert.Contains(t, generation.SystemPrompt(domain.ModeVoice, "Play Music"), "Executing feature: Play Music")
	assert.Contains(t, generation.SystemPrompt(domain.ModeVoice, ""), "under 3 sentences")
}
