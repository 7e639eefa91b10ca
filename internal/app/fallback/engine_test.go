package fallback_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/friday-agent/internal/app/fallback"
	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.FeatureRecord{
		{Name: "Set Reminder", Category: domain.CategoryProductivity, TriggerCommand: "remind", Description: "Create reminders"},
		{Name: "Daily Briefing", Category: domain.CategoryPersonalAssistant, Description: "Morning summary"},
		{Name: "Flashlight", Category: domain.CategoryUtilities, Description: "Turn on the torch"},
	})
	require.NoError(t, err)
	return c
}

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.March, 8, hour, 5, 9, 0, time.UTC)
	}
}

func newEngine(t *testing.T, opts ...fallback.Option) *fallback.Engine {
	t.Helper()
	opts = append([]fallback.Option{fallback.WithClock(fixedClock(15)), fallback.WithRandom(func(int) int { return 1 })}, opts...)
	return fallback.NewEngine(testCatalog(t), opts...)
}

func TestFallbackFeatureCannedReply(t *testing.T) {
	e := newEngine(t)
	reminder := &domain.FeatureRecord{Name: "Set Reminder"}

	got := e.Fallback("set a reminder for 5pm", reminder)

	assert.Equal(t, "I've created your reminder. You'll be notified at the specified time.", got)
}

func TestFallbackFeatureTemplate(t *testing.T) {
	e := newEngine(t)
	torch := &domain.FeatureRecord{Name: "Flashlight", Description: "Turn on the torch"}

	got := e.Fallback("hello", torch)

	assert.Equal(t, "Activating Flashlight feature. Turn on the torch. How can I assist you further with this?", got)
}

func TestFallbackDailyBriefingUsesClock(t *testing.T) {
	briefing := &domain.FeatureRecord{Name: "Daily Briefing"}

	morning := newEngine(t, fallback.WithClock(fixedClock(9))).Fallback("", briefing)
	afternoon := newEngine(t, fallback.WithClock(fixedClock(12))).Fallback("", briefing)

	assert.Contains(t, morning, "Good morning!")
	assert.Contains(t, afternoon, "Good afternoon!")
}

func TestFallbackKeywordCascade(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"greeting", "Hello there", []string{"Hello! I'm F.R.I.D.A.Y", "3 active features"}},
		{"capabilities", "What can you do?", []string{"3 active features across 3 categories"}},
		{"weather", "What's the weather", []string{"72", "sunny"}},
		{"time", "What TIME is it", []string{"The current time is 3:05:09 PM."}},
		{"date", "today's date please", []string{"Today's date is Friday, March 8, 2024."}},
		{"reminder", "remind me later", []string{"I've set a reminder for you."}},
		{"calculation", "do some math", []string{"I can help with calculations."}},
		{"music", "play music", []string{"I would love to play music for you!"}},
		{"joke", "tell me a joke", []string{"What do you call an AI that sings? A-dell!"}},
		{"catch-all", "xyzzy", []string{"3 active features"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Fallback(tt.message, nil)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestFallbackFirstPredicateWins(t *testing.T) {
	e := newEngine(t)

	// matches greeting, weather and joke; greeting comes first
	got := e.Fallback("hi, weather joke", nil)

	assert.Contains(t, got, "Hello! I'm F.R.I.D.A.Y")
}

func TestFallbackJokeUsesRandomSource(t *testing.T) {
	var gotN int
	e := newEngine(t, fallback.WithRandom(func(n int) int {
		gotN = n
		return 2
	}))

	got := e.Fallback("a joke", nil)

	assert.Equal(t, 3, gotN)
	assert.Equal(t, "Why don't AIs ever get lost? They always follow the algorithm!", got)
}

func TestFallbackIsTotal(t *testing.T) {
	e := fallback.NewEngine(testCatalog(t))
	inputs := []string{"", " ", "\x00", "日本語", "what can you do", "calculate", "song"}
	features := []*domain.FeatureRecord{nil, {Name: "Set Reminder"}, {Name: ""}, {Name: "Unknown", Description: ""}}

	for _, in := range inputs {
		for _, f := range features {
			assert.NotEmpty(t, e.Fallback(in, f))
			assert.NotEmpty(t, e.VoiceFallback(in, f))
		}
	}
}

func TestVoiceFallbackCascade(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"wake word before greeting", "hello friday", "Yes, I'm here. How can I assist you?"},
		{"greeting", "hi there", "Hello! I'm F.R.I.D.A.Y. How may I assist you?"},
		{"weather", "weather outside", "The current weather is 72 degrees and sunny. Perfect conditions!"},
		{"time", "what time is it", "The time is 3:05 PM."},
		{"thanks", "thank you", "You're welcome! Let me know if you need anything else."},
		{"help", "I need help", "I have 3 features available. Try asking me about weather, reminders, timers, smart home control, or any other task."},
		{"default", "xyzzy", "I'm processing your command. For full AI capabilities, please ensure the local language model is running."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.VoiceFallback(tt.command, nil))
		})
	}
}

func TestVoiceFallbackFeature(t *testing.T) {
	e := newEngine(t)

	got := e.VoiceFallback("remind me", &domain.FeatureRecord{Name: "Set Reminder"})

	assert.Equal(t, "Activating Set Reminder. How can I help you with this?", got)
}
