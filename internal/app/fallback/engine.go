// Package fallback produces deterministic canned replies when the remote model
// cannot be used. Every function here returns a non-empty string.
package fallback

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PabloGalante/friday-agent/internal/catalog"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

// Engine selects canned responses with a fixed priority cascade.
type Engine struct {
	features   int
	categories int
	now        func() time.Time
	intn       func(n int) int
}

type Option func(*Engine)

// WithClock overrides the clock used for time, date and briefing replies.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandom overrides the source used to pick a joke. intn must return [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		features:   c.Len(),
		categories: len(c.Categories()),
		now:        time.Now,
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var jokes = []string{
	"Why did the AI go to therapy? It had too many neural networks!",
	"What do you call an AI that sings? A-dell!",
	"Why don't AIs ever get lost? They always follow the algorithm!",
}

// rule is one keyword predicate of a cascade. The first rule with a matching
// keyword wins, regardless of how many other rules would match.
type rule struct {
	name     string
	keywords []string
	reply    func(e *Engine) string
}

func (r rule) matches(folded string) bool {
	for _, k := range r.keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

var textRules = []rule{
	{"greeting", []string{"hello", "hi"}, func(e *Engine) string {
		return fmt.Sprintf("Hello! I'm F.R.I.D.A.Y, your AI assistant with %d active features. How can I assist you today?", e.features)
	}},
	{"capabilities", []string{"what can you do", "capabilities"}, func(e *Engine) string {
		return fmt.Sprintf("I have %d active features across %d categories including productivity, communication, health tracking, smart home control, finance management, and much more. Try asking about specific tasks like setting reminders, weather updates, or controlling smart devices!", e.features, e.categories)
	}},
	{"weather", []string{"weather"}, func(*Engine) string {
		return "The current weather is sunny with a temperature of 72°F (22°C). It's a beautiful day! Would you like an extended forecast?"
	}},
	{"time", []string{"time"}, func(e *Engine) string {
		return fmt.Sprintf("The current time is %s.", e.now().Format("3:04:05 PM"))
	}},
	{"date", []string{"date"}, func(e *Engine) string {
		return fmt.Sprintf("Today's date is %s.", e.now().Format("Monday, January 2, 2006"))
	}},
	{"reminder", []string{"remind"}, func(*Engine) string {
		return "I've set a reminder for you. You'll receive a notification at the specified time."
	}},
	{"calculation", []string{"calculate", "math"}, func(*Engine) string {
		return "I can help with calculations. What would you like me to compute?"
	}},
	{"music", []string{"play music", "song"}, func(*Engine) string {
		return "I would love to play music for you! This feature works best when connected to your music streaming service."
	}},
	{"joke", []string{"joke"}, func(e *Engine) string {
		return jokes[e.intn(len(jokes))]
	}},
}

var voiceRules = []rule{
	{"wake", []string{"friday"}, func(*Engine) string {
		return "Yes, I'm here. How can I assist you?"
	}},
	{"greeting", []string{"hello", "hi"}, func(*Engine) string {
		return "Hello! I'm F.R.I.D.A.Y. How may I assist you?"
	}},
	{"weather", []string{"weather"}, func(*Engine) string {
		return "The current weather is 72 degrees and sunny. Perfect conditions!"
	}},
	{"time", []string{"time"}, func(e *Engine) string {
		return fmt.Sprintf("The time is %s.", e.now().Format("3:04 PM"))
	}},
	{"thanks", []string{"thank"}, func(*Engine) string {
		return "You're welcome! Let me know if you need anything else."
	}},
	{"help", []string{"help"}, func(e *Engine) string {
		return fmt.Sprintf("I have %d features available. Try asking me about weather, reminders, timers, smart home control, or any other task.", e.features)
	}},
}

// cannedFeatureReplies are keyed by feature name.
var cannedFeatureReplies = map[string]func(e *Engine) string{
	"Set Reminder": func(*Engine) string {
		return "I've created your reminder. You'll be notified at the specified time."
	},
	"Weather Forecast": func(*Engine) string {
		return "The weather looks great today! Temperature: 72°F, Conditions: Sunny with light clouds."
	},
	"Calculator": func(*Engine) string {
		return "I can perform any calculation you need. What would you like me to compute?"
	},
	"Play Music": func(*Engine) string {
		return "Starting music playback. Connect to your preferred streaming service for full functionality."
	},
	"Set Timer": func(*Engine) string {
		return "Timer activated! I'll notify you when the time is up."
	},
	"Task Management": func(*Engine) string {
		return "I've added that task to your to-do list. Stay productive!"
	},
	"News Updates": func(*Engine) string {
		return "Here are today's top headlines: Technology stocks surge, Climate summit concludes, Sports championship results announced."
	},
	"Send Email": func(*Engine) string {
		return "Email composed and ready to send. Please review and confirm."
	},
	"Daily Briefing": func(e *Engine) string {
		part := "afternoon"
		if e.now().Hour() < 12 {
			part = "morning"
		}
		return fmt.Sprintf("Good %s! Here's your briefing: You have 3 tasks today, 2 meetings scheduled, and the weather is pleasant. Stay productive!", part)
	},
}

// Fallback answers a text chat turn.
func (e *Engine) Fallback(message string, feature *domain.FeatureRecord) string {
	if feature != nil {
		if reply, ok := cannedFeatureReplies[feature.Name]; ok {
			return reply(e)
		}
		return fmt.Sprintf("Activating %s feature. %s. How can I assist you further with this?", feature.Name, feature.Description)
	}

	if reply, ok := e.cascade(textRules, message); ok {
		return reply
	}

	return fmt.Sprintf("I understand your request. With %d active features at my disposal, I can help with a wide variety of tasks. For full AI-powered responses, please ensure the local language model is running. What specific task would you like assistance with?", e.features)
}

// VoiceFallback answers a spoken command. Replies are kept short for synthesis.
func (e *Engine) VoiceFallback(command string, feature *domain.FeatureRecord) string {
	if feature != nil {
		return fmt.Sprintf("Activating %s. How can I help you with this?", feature.Name)
	}

	if reply, ok := e.cascade(voiceRules, command); ok {
		return reply
	}

	return "I'm processing your command. For full AI capabilities, please ensure the local language model is running."
}

func (e *Engine) cascade(rules []rule, input string) (string, bool) {
	folded := strings.ToLower(input)
	for _, r := range rules {
		if r.matches(folded) {
			return r.reply(e), true
		}
	}
	return "", false
}
