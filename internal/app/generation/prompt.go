package generation

import (
	"github.com/PabloGalante/friday-agent/internal/domain"
)

// HistoryWindow is how many prior turns are sent with a text chat request.
const HistoryWindow = 5

const chatPersona = "You are F.R.I.D.A.Y (Female Replacement Intelligent Digital Assistant Youth), " +
	"an advanced AI assistant. You help the user with everyday tasks across many features: " +
	"productivity, communication, information, smart home control and more. " +
	"Be helpful, efficient, and conversational. Keep responses concise and actionable."

const voicePersona = "You are F.R.I.D.A.Y, an advanced AI voice assistant. " +
	"Respond conversationally and concisely to voice commands. " +
	"Keep responses under 3 sentences for voice output."

// SystemPrompt returns the persona for the mode, followed by the active feature
// line when a feature was detected.
func SystemPrompt(mode domain.Mode, feature string) string {
	switch mode {
	case domain.ModeVoice:
		if feature == "" {
			return voicePersona
		}
		return voicePersona + "\n\nExecuting feature: " + feature
	default:
		if feature == "" {
			return chatPersona
		}
		return chatPersona + "\n\nCurrent feature context: " + feature
	}
}

// BuildMessages assembles the request for the model: system persona, the last
// HistoryWindow turns reduced to {role, content}, then the new user message.
// Voice turns carry no history.
func BuildMessages(sc domain.SessionContext, mode domain.Mode) []domain.ChatMessage {
	var history []domain.ConversationTurn
	if mode != domain.ModeVoice {
		history = sc.Window(HistoryWindow)
	}

	msgs := make([]domain.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: SystemPrompt(mode, sc.FeatureName()),
	})
	for _, t := range history {
		role := t.Role
		if role != domain.RoleAssistant {
			role = domain.RoleUser
		}
		msgs = append(msgs, domain.ChatMessage{Role: role, Content: t.Content})
	}
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: sc.CurrentMessage})

	return msgs
}
