package domain

// ConversationTurn is one message of a session's timeline (user or assistant).
// Content is never empty.
type ConversationTurn struct {
	ID          TurnID
	Role        Role
	Content     string
	Timestamp   Timestamp
	FeatureName string // optional
}

// SessionContext is the per-request bundle handed to the response generator.
// It is built fresh for every turn and never shared.
type SessionContext struct {
	CurrentMessage string
	RecentHistory  []ConversationTurn // most recent last
	ActiveFeature  *FeatureRecord
}

// Window returns at most the last n turns of the history.
func (s SessionContext) Window(n int) []ConversationTurn {
	if n <= 0 {
		return nil
	}
	if len(s.RecentHistory) <= n {
		return s.RecentHistory
	}
	return s.RecentHistory[len(s.RecentHistory)-n:]
}

// FeatureName returns the active feature's name or "" when none is active.
func (s SessionContext) FeatureName() string {
	if s.ActiveFeature == nil {
		return ""
	}
	return s.ActiveFeature.Name
}

type SessionID string

// TranscriptStore keeps the turns of one live session. Nothing outlives the
// session: Drop discards everything recorded under the id.
type TranscriptStore interface {
	Append(id SessionID, turn ConversationTurn) error
	Recent(id SessionID, limit int) ([]ConversationTurn, error)
	Drop(id SessionID) error
}
