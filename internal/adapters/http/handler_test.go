package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/friday-agent/internal/adapters/http"
	"github.com/PabloGalante/friday-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/friday-agent/internal/app/detection"
	"github.com/PabloGalante/friday-agent/internal/app/fallback"
	"github.com/PabloGalante/friday-agent/internal/app/generation"
	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

type stubModel struct {
	models []string
	err    error
}

func (s stubModel) Name() string { return "stub" }

func (s stubModel) ListModels(context.Context) ([]string, error) { return s.models, s.err }

func (s stubModel) Chat(context.Context, []domain.ChatMessage) (string, error) {
	return "", errors.New("not used")
}

type testEnv struct {
	handler     http.Handler
	transcripts *memory.TranscriptStore
}

func newTestEnv(t *testing.T, model stubModel, caps httpadapter.Capabilities) testEnv {
	t.Helper()

	c, err := catalog.New([]domain.FeatureRecord{
		{Name: "Set Reminder", Category: domain.CategoryProductivity, TriggerCommand: "remind", Description: "Create reminders"},
		{Name: "Countdown Timer", Category: domain.CategoryUtilities, TriggerCommand: "timer", Description: "Start a countdown"},
	})
	require.NoError(t, err)

	prober := generation.NewProber(model, 50*time.Millisecond, 50*time.Millisecond)
	gen := generation.NewGenerator(model, prober, fallback.NewEngine(c), 50*time.Millisecond)
	transcripts := memory.NewTranscriptStore(50)

	return testEnv{
		handler: httpadapter.NewServer(httpadapter.Deps{
			Router:        router.New(detection.NewDetector(c), gen),
			Catalog:       c,
			Prober:        prober,
			ModelFamily:   "qwen",
			Capabilities:  caps,
			Transcripts:   transcripts,
			MeterInterval: 20 * time.Millisecond,
		}),
		transcripts: transcripts,
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestEnv(t, stubModel{err: errors.New("connection refused")}, httpadapter.Capabilities{Recognition: true, Synthesis: true}).handler
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestChatKeywordFallback(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/chat",
		`{"message":"What's the weather","history":[],"currentFeature":null}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["response"], "72")
	assert.Contains(t, body["response"], "sunny")
	assert.Nil(t, body["feature"])
	assert.Contains(t, body, "feature")
	assert.Equal(t, true, body["speak"])
}

func TestChatDetectsFeature(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/chat",
		`{"message":"set a reminder for 5pm","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"Hello!"}],"currentFeature":"Weather Forecast"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Set Reminder", body["feature"])
	assert.Equal(t, "I've created your reminder. You'll be notified at the specified time.", body["response"])
}

func TestChatBadRequestsAreGenericErrors(t *testing.T) {
	for name, payload := range map[string]string{
		"malformed json": `{"message":`,
		"empty message":  `{"message":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, newTestServer(t), http.MethodPost, "/api/chat", payload)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, map[string]any{"error": "Failed to process request"}, decode(t, w))
		})
	}
}

func TestVoiceCommand(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/voice", `{"command":"hello friday"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Yes, I'm here. How can I assist you?", body["response"])
	assert.Nil(t, body["feature"])
	assert.NotContains(t, body, "speak")

	w = do(t, h, http.MethodPost, "/api/voice", `{"command":"start a timer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Countdown Timer", decode(t, w)["feature"])

	w = do(t, h, http.MethodPost, "/api/voice", `not json`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to process voice command", decode(t, w)["error"])
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		model stubModel
		caps  httpadapter.Capabilities
		want  map[string]any
	}{
		{"qwen loaded", stubModel{models: []string{"llama3", "qwen2.5:latest"}}, httpadapter.Capabilities{Recognition: true, Synthesis: true},
			map[string]any{"ollama": true, "vosk": true, "tts": true}},
		{"other family only", stubModel{models: []string{"llama3"}}, httpadapter.Capabilities{Synthesis: true},
			map[string]any{"ollama": false, "vosk": false, "tts": true}},
		{"unreachable", stubModel{err: errors.New("refused")}, httpadapter.Capabilities{},
			map[string]any{"ollama": false, "vosk": false, "tts": false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.model, tt.caps)
			w := do(t, env.handler, http.MethodGet, "/api/status", "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decode(t, w))
		})
	}
}

func TestFeatures(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/features", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["features"], 2)
	assert.Equal(t, []any{"Productivity", "Utilities"}, body["categories"])
	assert.EqualValues(t, 2, body["total"])

	w = do(t, h, http.MethodGet, "/api/features?q=countdown", "")
	features := decode(t, w)["features"].([]any)
	require.Len(t, features, 1)
	assert.Equal(t, "Countdown Timer", features[0].(map[string]any)["name"])

	w = do(t, h, http.MethodGet, "/api/features?q=nothing-matches", "")
	assert.Equal(t, []any{}, decode(t, w)["features"])
}

func TestMiddleware(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, h, http.MethodOptions, "/api/chat", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
