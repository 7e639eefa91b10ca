package voice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/friday-agent/internal/app/voice"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

func TestSelectVoice(t *testing.T) {
	tests := []struct {
		name   string
		voices []domain.VoiceInfo
		want   string
	}{
		{"none", nil, ""},
		{"no preferred", []domain.VoiceInfo{{Name: "Alex", Default: true}, {Name: "Daniel"}}, ""},
		{"host order wins", []domain.VoiceInfo{{Name: "Karen"}, {Name: "Google US English Female"}}, "Karen"},
		{"substring", []domain.VoiceInfo{{Name: "Microsoft Zira - English (United States) female"}}, "Microsoft Zira - English (United States) female"},
		{"case sensitive labels", []domain.VoiceInfo{{Name: "samantha"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, voice.SelectVoice(tt.voices))
		})
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 0, voice.Level(nil))
	assert.Equal(t, 0, voice.Level([]byte{0, 0}))
	assert.Equal(t, 100, voice.Level([]byte{255, 255}))
	assert.Equal(t, 50, voice.Level([]byte{0, 255}))
}
