package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/friday-agent/internal/app/generation"
	"github.com/PabloGalante/friday-agent/internal/app/router"
	"github.com/PabloGalante/friday-agent/internal/app/voice"
	"github.com/PabloGalante/friday-agent/internal/domain"
	"github.com/PabloGalante/friday-agent/internal/observability"
)

const (
	liveReadLimit    = 64 << 10
	liveWriteTimeout = 5 * time.Second
	livePingInterval = 20 * time.Second
	liveOutboundSize = 64
)

var errSessionClosed = errors.New("live session closed")

// Client → server event types.
const (
	clientStart            = "start"
	clientStop             = "stop"
	clientInterim          = "interim"
	clientFinal            = "final"
	clientRecognitionError = "recognition_error"
	clientFrequency        = "frequency"
	clientUtteranceDone    = "utterance_done"
	clientMute             = "mute"
	clientUnmute           = "unmute"
	clientVoices           = "voices"
	clientSay              = "say"
)

// Server → client event types.
const (
	serverReady            = "ready"
	serverState            = "state"
	serverTranscript       = "transcript"
	serverLevel            = "level"
	serverSpeak            = "speak"
	serverCancel           = "cancel"
	serverRecognitionStart = "recognition_start"
	serverRecognitionStop  = "recognition_stop"
	serverReply            = "reply"
	serverError            = "error"
)

type clientEvent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Bins   []int              `json:"bins,omitempty"`
	ID     string             `json:"id,omitempty"`
	Voices []domain.VoiceInfo `json:"voices,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type liveCapabilities struct {
	Recognition bool `json:"recognition"`
	Synthesis   bool `json:"synthesis"`
}

type serverEvent struct {
	Type         string            `json:"type"`
	SessionID    string            `json:"session_id,omitempty"`
	State        string            `json:"state,omitempty"`
	Text         string            `json:"text,omitempty"`
	Final        bool              `json:"final,omitempty"`
	Level        *int              `json:"level,omitempty"`
	Utterance    *domain.Utterance `json:"utterance,omitempty"`
	Feature      *string           `json:"feature,omitempty"`
	Speak        bool              `json:"speak,omitempty"`
	Error        string            `json:"error,omitempty"`
	Capabilities *liveCapabilities `json:"capabilities,omitempty"`
}

// liveHandler serves /api/voice/live: one voice controller per connection, its
// recognizer, synthesizer and microphone being the browser on the other end.
type liveHandler struct {
	deps Deps
}

func (h *liveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(liveReadLimit)

	sessionID := uuid.NewString()
	ctx := observability.WithSessionID(r.Context(), sessionID)
	log := observability.LoggerFromContext(ctx)
	log.Info("live session opened")

	s := newLiveSession(h.deps, domain.SessionID(sessionID))
	defer func() {
		if err := h.deps.Transcripts.Drop(s.id); err != nil {
			log.Warn("drop transcript failed", "error", err)
		}
	}()

	err = s.run(ctx, conn)
	if err != nil && !errors.Is(err, errSessionClosed) && !errors.Is(err, context.Canceled) {
		log.Warn("live session ended with error", "error", err)
		return
	}
	log.Info("live session closed")
}

type liveSession struct {
	id    domain.SessionID
	deps  Deps
	out   chan serverEvent
	ctrl  *voice.Controller
	synth *remoteSynthesizer
	audio *remoteAudio

	// ctx is the session context, set before any loop starts.
	ctx   context.Context
	turns sync.WaitGroup
}

func newLiveSession(deps Deps, id domain.SessionID) *liveSession {
	s := &liveSession{
		id:   id,
		deps: deps,
		out:  make(chan serverEvent, liveOutboundSize),
	}

	opts := []voice.Option{
		voice.WithMeterInterval(deps.MeterInterval),
		voice.WithHooks(voice.Hooks{
			OnState:      s.onState,
			OnTranscript: s.onTranscript,
			OnLevel:      s.onLevel,
			OnReply:      s.onReply,
			OnError:      s.onError,
		}),
	}
	if deps.Capabilities.Recognition {
		s.audio = &remoteAudio{}
		opts = append(opts,
			voice.WithRecognizer(&remoteRecognizer{send: s.post}),
			voice.WithAudioCapture(s.audio),
		)
	}
	if deps.Capabilities.Synthesis {
		s.synth = &remoteSynthesizer{send: s.post}
		opts = append(opts, voice.WithSynthesizer(s.synth))
	}

	s.ctrl = voice.NewController(deps.Router, opts...)
	return s
}

// run drives the reader, the writer and the controller until one of them stops.
func (s *liveSession) run(ctx context.Context, conn *websocket.Conn) error {
	g, ctx := errgroup.WithContext(ctx)
	s.ctx = ctx

	g.Go(func() error { return s.ctrl.Run(ctx) })
	g.Go(func() error { return s.writeLoop(ctx, conn) })
	g.Go(func() error { return s.readLoop(ctx, conn) })

	s.post(serverEvent{
		Type:      serverReady,
		SessionID: string(s.id),
		Capabilities: &liveCapabilities{
			Recognition: s.ctrl.CanListen(),
			Synthesis:   s.ctrl.CanSpeak(),
		},
	})

	err := g.Wait()
	s.turns.Wait()
	return err
}

func (s *liveSession) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return errSessionClosed
			}
			return err
		}
		s.dispatch(ctx, ev)
	}
}

func (s *liveSession) dispatch(ctx context.Context, ev clientEvent) {
	switch ev.Type {
	case clientStart:
		s.ctrl.Start()
	case clientStop:
		s.ctrl.Stop()
	case clientInterim:
		s.ctrl.Interim(ev.Text)
	case clientFinal:
		s.ctrl.Final(ev.Text)
	case clientRecognitionError:
		msg := ev.Error
		if msg == "" {
			msg = "speech recognition failed"
		}
		s.ctrl.RecognitionError(errors.New(msg))
	case clientFrequency:
		if s.audio != nil {
			s.audio.update(ev.Bins)
		}
	case clientUtteranceDone:
		s.ctrl.UtteranceDone(ev.ID)
	case clientMute:
		s.ctrl.SetMuted(true)
	case clientUnmute:
		s.ctrl.SetMuted(false)
	case clientVoices:
		if s.synth != nil {
			s.synth.setVoices(ev.Voices)
		}
	case clientSay:
		if strings.TrimSpace(ev.Text) == "" {
			return
		}
		s.turns.Add(1)
		go func() {
			defer s.turns.Done()
			s.say(ctx, ev.Text)
		}()
	default:
		s.post(serverEvent{Type: serverError, Error: "unknown event type " + ev.Type})
	}
}

// say runs a typed chat turn inside the session, with the session transcript as
// history, and narrates the reply.
func (s *liveSession) say(ctx context.Context, text string) {
	history, err := s.deps.Transcripts.Recent(s.id, generation.HistoryWindow)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("read transcript failed", "error", err)
	}

	resp, err := s.deps.Router.Chat(ctx, router.ChatRequest{Message: text, History: history})
	if err != nil {
		observability.LoggerFromContext(ctx).Error(chatFailedMessage, "error", err)
		s.post(serverEvent{Type: serverError, Error: chatFailedMessage})
		return
	}

	s.record(ctx, text, resp.Response, resp.Feature)
	s.post(serverEvent{
		Type:    serverReply,
		Text:    resp.Response,
		Feature: featureName(resp.Feature),
		Speak:   resp.Speak,
	})
	if resp.Speak {
		s.ctrl.SpeakText(resp.Response)
	}
}

func (s *liveSession) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(liveWriteTimeout))
			_ = conn.Close()
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return err
			}
		case ev := <-s.out:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		}
	}
}

// post queues ev for the writer, giving up once the session is over.
func (s *liveSession) post(ev serverEvent) {
	select {
	case s.out <- ev:
	case <-s.ctx.Done():
	}
}

func (s *liveSession) record(ctx context.Context, command, reply string, feature *domain.FeatureRecord) {
	now := time.Now()
	name := ""
	if feature != nil {
		name = feature.Name
	}
	turns := []domain.ConversationTurn{
		{ID: domain.TurnID(uuid.NewString()), Role: domain.RoleUser, Content: command, Timestamp: now, FeatureName: name},
		{ID: domain.TurnID(uuid.NewString()), Role: domain.RoleAssistant, Content: reply, Timestamp: now, FeatureName: name},
	}
	for _, t := range turns {
		if err := s.deps.Transcripts.Append(s.id, t); err != nil {
			observability.LoggerFromContext(ctx).Warn("append transcript failed", "error", err)
		}
	}
}

// Controller hooks. They run on the controller loop (OnLevel on the meter
// goroutine) and must not block it for long.

func (s *liveSession) onState(st domain.VoiceSessionState) {
	s.trySend(serverEvent{Type: serverState, State: string(st)})
}

func (s *liveSession) onTranscript(text string, final bool) {
	s.trySend(serverEvent{Type: serverTranscript, Text: text, Final: final})
}

func (s *liveSession) onLevel(level int) {
	s.trySend(serverEvent{Type: serverLevel, Level: &level})
}

func (s *liveSession) onReply(command string, resp router.VoiceResponse) {
	s.record(s.ctx, command, resp.Response, resp.Feature)
	s.trySend(serverEvent{Type: serverReply, Text: resp.Response, Feature: featureName(resp.Feature)})
}

func (s *liveSession) onError(err error) {
	s.trySend(serverEvent{Type: serverError, Error: err.Error()})
}

// trySend drops the event when the writer is behind.
func (s *liveSession) trySend(ev serverEvent) {
	select {
	case s.out <- ev:
	default:
	}
}

// remoteRecognizer asks the browser to start or stop its speech recognition.
type remoteRecognizer struct {
	send func(serverEvent)
}

func (r *remoteRecognizer) Start(context.Context) error {
	r.send(serverEvent{Type: serverRecognitionStart})
	return nil
}

func (r *remoteRecognizer) Stop() error {
	r.send(serverEvent{Type: serverRecognitionStop})
	return nil
}

// remoteSynthesizer forwards utterances to the browser's speech synthesis.
type remoteSynthesizer struct {
	send func(serverEvent)

	mu     sync.Mutex
	voices []domain.VoiceInfo
}

func (s *remoteSynthesizer) setVoices(v []domain.VoiceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = v
}

func (s *remoteSynthesizer) Voices() []domain.VoiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices
}

func (s *remoteSynthesizer) Speak(u domain.Utterance) error {
	s.send(serverEvent{Type: serverSpeak, Utterance: &u})
	return nil
}

func (s *remoteSynthesizer) Cancel() error {
	s.send(serverEvent{Type: serverCancel})
	return nil
}

// remoteAudio exposes the latest frequency frame the browser sent.
type remoteAudio struct {
	mu     sync.Mutex
	bins   []byte
	closed bool
}

func (a *remoteAudio) update(bins []int) {
	frame := make([]byte, len(bins))
	for i, b := range bins {
		frame[i] = byte(min(max(b, 0), 255))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.bins = frame
	}
}

func (a *remoteAudio) Open(context.Context) (voice.AudioStream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = false
	a.bins = nil
	return a, nil
}

func (a *remoteAudio) ByteFrequencyData() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bins
}

func (a *remoteAudio) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.bins = nil
	return nil
}
