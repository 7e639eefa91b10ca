package voice

import (
	"strings"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

// preferredVoices are matched as substrings of the host voice names, in order of
// the host list.
var preferredVoices = []string{"Female", "female", "Samantha", "Victoria", "Karen", "Moira", "Tessa", "Fiona"}

// SelectVoice returns the first host voice whose name contains a preferred label,
// or "" to let the host use its default.
func SelectVoice(voices []domain.VoiceInfo) string {
	for _, v := range voices {
		for _, p := range preferredVoices {
			if strings.Contains(v.Name, p) {
				return v.Name
			}
		}
	}
	return ""
}

// Prosody holds the synthesis parameters of a reply.
type Prosody struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

var (
	VoiceReplyProsody = Prosody{Rate: 0.95, Pitch: 1.1, Volume: 1.0}
	TextReplyProsody  = Prosody{Rate: 1.0, Pitch: 1.2, Volume: 1.0}
)

// Level converts frequency bins into a 0-100 input level.
func Level(bins []byte) int {
	if len(bins) == 0 {
		return 0
	}
	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	avg := float64(sum) / float64(len(bins))
	return int(avg/255*100 + 0.5)
}
