// Package voice implements the voice session controller: a single event loop that
// coordinates continuous recognition, microphone metering and speech output so
// that the session never listens and speaks at the same time.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

const DefaultMeterInterval = 16 * time.Millisecond

var ErrAlreadyRunning = errors.New("voice controller already running")

type eventKind int

const (
	evStart eventKind = iota
	evStop
	evInterim
	evFinal
	evRecognitionError
	evResponse
	evSpeakText
	evUtteranceDone
	evSetMuted
)

type event struct {
	kind  eventKind
	text  string
	id    string
	muted bool
	err   error

	// evResponse only
	epoch uint64
	resp  router.VoiceResponse
}

type Option func(*Controller)

func WithRecognizer(r Recognizer) Option { return func(c *Controller) { c.recognizer = r } }
func WithSynthesizer(s Synthesizer) Option { return func(c *Controller) { c.synth = s } }
func WithAudioCapture(a AudioCapture) Option { return func(c *Controller) { c.capture = a } }
func WithHooks(h Hooks) Option { return func(c *Controller) { c.hooks = h } }

func WithMeterInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.meterInterval = d
		}
	}
}

// WithIDGenerator overrides how utterance IDs are made.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// Controller owns the VoiceSessionState. All fields below the loop marker are
// touched only by the Run goroutine.
type Controller struct {
	responder     Responder
	recognizer    Recognizer
	synth         Synthesizer
	capture       AudioCapture
	hooks         Hooks
	meterInterval time.Duration
	newID         func() string

	events  chan event
	done    chan struct{}
	running atomic.Bool
	current atomic.Value // domain.VoiceSessionState
	workers sync.WaitGroup

	// loop
	ctx         context.Context
	state       domain.VoiceSessionState
	listening   bool
	recognizing bool
	muted       bool
	inFlight    bool
	epoch       uint64
	speaking    string
	queue       []string
	meter       *meter
}

func NewController(responder Responder, opts ...Option) *Controller {
	c := &Controller{
		responder:     responder,
		meterInterval: DefaultMeterInterval,
		newID:         uuid.NewString,
		events:        make(chan event, 64),
		done:          make(chan struct{}),
		state:         domain.VoiceIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(domain.VoiceIdle)
	return c
}

// CanListen reports whether speech recognition is available in this session.
func (c *Controller) CanListen() bool { return c.recognizer != nil }

// CanSpeak reports whether speech synthesis is available in this session.
func (c *Controller) CanSpeak() bool { return c.synth != nil }

// State is safe to call from any goroutine.
func (c *Controller) State() domain.VoiceSessionState {
	return c.current.Load().(domain.VoiceSessionState)
}

func (c *Controller) Start() { c.post(event{kind: evStart}) }
func (c *Controller) Stop() { c.post(event{kind: evStop}) }
func (c *Controller) Interim(text string) { c.post(event{kind: evInterim, text: text}) }
func (c *Controller) Final(text string) { c.post(event{kind: evFinal, text: text}) }
func (c *Controller) RecognitionError(err error) {
	c.post(event{kind: evRecognitionError, err: err})
}

// SpeakText narrates a speak-flagged text chat reply.
func (c *Controller) SpeakText(text string) { c.post(event{kind: evSpeakText, text: text}) }
func (c *Controller) UtteranceDone(id string) { c.post(event{kind: evUtteranceDone, id: id}) }
func (c *Controller) SetMuted(muted bool) { c.post(event{kind: evSetMuted, muted: muted}) }

func (c *Controller) post(e event) bool {
	select {
	case c.events <- e:
		return true
	case <-c.done:
		return false
	}
}

// Run processes events until ctx is cancelled. Recognition, metering and any
// active utterance are released before it returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	c.ctx = ctx
	log := observability.LoggerFromContext(ctx)

	defer func() {
		close(c.done)
		c.shutdown()
		c.workers.Wait()
		log.Debug("voice controller stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-c.events:
			c.handle(e)
		}
	}
}

func (c *Controller) handle(e event) {
	switch e.kind {
	case evStart:
		c.start()
	case evStop:
		c.stop()
	case evInterim:
		if c.listening {
			c.emitTranscript(e.text, false)
		}
	case evFinal:
		c.final(e.text)
	case evRecognitionError:
		c.recognitionError(e.err)
	case evResponse:
		c.response(e)
	case evSpeakText:
		c.speak(e.text, TextReplyProsody)
	case evUtteranceDone:
		if e.id != "" && e.id == c.speaking {
			c.speaking = ""
		}
	case evSetMuted:
		c.setMuted(e.muted)
	}
	c.settle()
}

func (c *Controller) start() {
	if c.recognizer == nil || c.listening {
		return
	}
	c.listening = true
	c.openMeter()
}

func (c *Controller) stop() {
	if !c.listening && c.speaking == "" && !c.inFlight {
		return
	}
	c.endSession()
	// An utterance still playing is left to finish but no longer tracked.
	c.speaking = ""
}

func (c *Controller) recognitionError(err error) {
	c.recognizing = false
	if err == nil {
		err = errors.New("speech recognition failed")
	}
	observability.LoggerFromContext(c.ctx).Warn("speech recognition error", "error", err)
	c.emitError(err)
	c.endSession()
}

// endSession leaves listening mode and forgets queued and in-flight work.
func (c *Controller) endSession() {
	c.listening = false
	c.inFlight = false
	c.queue = nil
	c.epoch++
	c.closeMeter()
}

func (c *Controller) final(text string) {
	text = strings.TrimSpace(text)
	if text == "" || !c.listening {
		return
	}
	c.emitTranscript(text, true)
	c.queue = append(c.queue, text)
}

func (c *Controller) dispatch(command string) {
	c.inFlight = true
	epoch := c.epoch
	ctx := c.ctx

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		resp, err := c.responder.Voice(ctx, router.VoiceRequest{Command: command})
		c.post(event{kind: evResponse, text: command, epoch: epoch, resp: resp, err: err})
	}()
}

func (c *Controller) response(e event) {
	if e.epoch != c.epoch {
		return
	}
	c.inFlight = false

	if e.err != nil {
		observability.LoggerFromContext(c.ctx).Error("voice turn failed", "error", e.err)
		c.emitError(e.err)
		return
	}
	if c.hooks.OnReply != nil {
		c.hooks.OnReply(e.text, e.resp)
	}
	c.speak(e.resp.Response, VoiceReplyProsody)
}

// speak starts one utterance, cancelling whatever is playing first.
func (c *Controller) speak(text string, p Prosody) {
	text = strings.TrimSpace(text)
	if c.synth == nil || c.muted || text == "" {
		return
	}

	c.cancelSpeech()

	u := domain.Utterance{
		ID:     c.newID(),
		Text:   text,
		Voice:  SelectVoice(c.synth.Voices()),
		Rate:   p.Rate,
		Pitch:  p.Pitch,
		Volume: p.Volume,
	}
	if c.recognizing {
		c.stopRecognizer()
	}
	if err := c.synth.Speak(u); err != nil {
		observability.LoggerFromContext(c.ctx).Warn("speech synthesis failed", "error", err)
		c.emitError(err)
		return
	}
	c.speaking = u.ID
}

func (c *Controller) setMuted(muted bool) {
	c.muted = muted
	if muted && c.speaking != "" {
		c.cancelSpeech()
		c.speaking = ""
	}
}

func (c *Controller) cancelSpeech() {
	if c.synth == nil {
		return
	}
	if err := c.synth.Cancel(); err != nil {
		observability.LoggerFromContext(c.ctx).Warn("cancel speech failed", "error", err)
	}
}

// settle reconciles recognition with the session flags, starts the next queued
// command when idle in listening mode, and publishes the resulting state.
func (c *Controller) settle() {
	if c.listening && c.speaking == "" && !c.inFlight && len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.dispatch(next)
	}

	wantRecognition := c.listening && c.speaking == ""
	switch {
	case wantRecognition && !c.recognizing:
		if err := c.recognizer.Start(c.ctx); err != nil {
			observability.LoggerFromContext(c.ctx).Warn("start recognition failed", "error", err)
			c.emitError(err)
			c.endSession()
		} else {
			c.recognizing = true
		}
	case !wantRecognition && c.recognizing:
		c.stopRecognizer()
	}

	next := domain.VoiceIdle
	switch {
	case c.speaking != "":
		next = domain.VoiceSpeaking
	case c.inFlight:
		next = domain.VoiceProcessing
	case c.listening:
		next = domain.VoiceListening
	}
	if next != c.state {
		c.state = next
		c.current.Store(next)
		if c.hooks.OnState != nil {
			c.hooks.OnState(next)
		}
	}
}

func (c *Controller) stopRecognizer() {
	c.recognizing = false
	if err := c.recognizer.Stop(); err != nil {
		observability.LoggerFromContext(c.ctx).Warn("stop recognition failed", "error", err)
	}
}

func (c *Controller) shutdown() {
	if c.recognizing {
		c.stopRecognizer()
	}
	c.closeMeter()
	if c.speaking != "" {
		c.cancelSpeech()
		c.speaking = ""
	}
	c.listening = false
	if c.state != domain.VoiceIdle {
		c.state = domain.VoiceIdle
		c.current.Store(domain.VoiceIdle)
		if c.hooks.OnState != nil {
			c.hooks.OnState(domain.VoiceIdle)
		}
	}
}

func (c *Controller) openMeter() {
	if c.capture == nil || c.meter != nil {
		return
	}
	m, err := startMeter(c.ctx, c.capture, c.meterInterval, c.hooks.OnLevel)
	if err != nil {
		// Listening continues without a level display.
		observability.LoggerFromContext(c.ctx).Warn("audio capture unavailable", "error", err)
		return
	}
	c.meter = m
}

func (c *Controller) closeMeter() {
	if c.meter == nil {
		return
	}
	c.meter.stop()
	c.meter = nil
}

func (c *Controller) emitTranscript(text string, final bool) {
	if c.hooks.OnTranscript != nil {
		c.hooks.OnTranscript(text, final)
	}
}

func (c *Controller) emitError(err error) {
	if c.hooks.OnError != nil {
		c.hooks.OnError(err)
	}
}
