package domain

// VoiceSessionState is owned by the voice session controller; transitions are the
// only legal mutations.
type VoiceSessionState string

const (
	VoiceIdle       VoiceSessionState = "idle"
	VoiceListening  VoiceSessionState = "listening"
	VoiceProcessing VoiceSessionState = "processing"
	VoiceSpeaking   VoiceSessionState = "speaking"
)

// VoiceInfo describes a synthesis voice offered by the host.
type VoiceInfo struct {
	Name    string `json:"name"`
	Lang    string `json:"lang,omitempty"`
	Default bool   `json:"default,omitempty"`
}

// Utterance is one unit of synthesized speech.
type Utterance struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"` // empty = host default
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}
