package memory

import (
	"errors"
	"strings"
	"sync"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

var ErrEmptyTurn = errors.New("turn content is empty")

// TranscriptStore is the in-memory domain.TranscriptStore used by live sessions.
type TranscriptStore struct {
	mu    sync.RWMutex
	turns map[domain.SessionID][]domain.ConversationTurn
	limit int
}

// NewTranscriptStore keeps at most limit turns per session; 0 keeps all.
func NewTranscriptStore(limit int) *TranscriptStore {
	return &TranscriptStore{
		turns: make(map[domain.SessionID][]domain.ConversationTurn),
		limit: limit,
	}
}

func (s *TranscriptStore) Append(id domain.SessionID, turn domain.ConversationTurn) error {
	if strings.TrimSpace(turn.Content) == "" {
		return ErrEmptyTurn
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[id], turn)
	if s.limit > 0 && len(turns) > s.limit {
		turns = append([]domain.ConversationTurn(nil), turns[len(turns)-s.limit:]...)
	}
	s.turns[id] = turns
	return nil
}

// Recent returns a copy of the last limit turns, oldest first.
func (s *TranscriptStore) Recent(id domain.SessionID, limit int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[id]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]domain.ConversationTurn(nil), turns...), nil
}

func (s *TranscriptStore) Drop(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.turns, id)
	return nil
}
