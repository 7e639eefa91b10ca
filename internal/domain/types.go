package domain

import "time"

type FeatureID string
type TurnID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a client-supplied role onto the roles the model protocol accepts.
// Anything that is not the assistant is treated as the user.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAssistant, "agent", "model":
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}

// Mode selects the persona and fallback cascade used for a turn.
type Mode string

const (
	ModeText  Mode = "text"  // Typed chat, history aware
	ModeVoice Mode = "voice" // Spoken command, short replies
)

type Timestamp = time.Time
