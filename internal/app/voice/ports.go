package voice

import (
	"context"

	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

// Recognizer controls continuous speech recognition. Results come back to the
// controller through Interim, Final and RecognitionError.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Synthesizer plays utterances. Completion is reported through UtteranceDone.
type Synthesizer interface {
	Voices() []domain.VoiceInfo
	Speak(u domain.Utterance) error
	Cancel() error
}

// AudioCapture opens the microphone analysis stream used for level metering.
type AudioCapture interface {
	Open(ctx context.Context) (AudioStream, error)
}

type AudioStream interface {
	// ByteFrequencyData returns the latest frequency bins, each 0-255.
	ByteFrequencyData() []byte
	Close() error
}

// Responder answers a spoken command.
type Responder interface {
	Voice(ctx context.Context, req router.VoiceRequest) (router.VoiceResponse, error)
}

// Hooks observe the session. OnLevel is called from the metering goroutine; the
// others from the controller loop. Nil hooks are skipped.
type Hooks struct {
	OnState      func(domain.VoiceSessionState)
	OnTranscript func(text string, final bool)
	OnLevel      func(level int)
	OnReply      func(command string, resp router.VoiceResponse)
	OnError      func(err error)
}
