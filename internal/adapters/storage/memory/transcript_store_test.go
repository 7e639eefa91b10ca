package memory_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/friday-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/friday-agent/internal/domain"
)

func turn(content string) domain.ConversationTurn {
	return domain.ConversationTurn{Role: domain.RoleUser, Content: content}
}

func TestTranscriptStoreRecent(t *testing.T) {
	s := memory.NewTranscriptStore(0)
	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append("s1", turn(c)))
	}
	require.NoError(t, s.Append("s2", turn("other")))

	got, err := s.Recent("s1", 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConversationTurn{turn("b"), turn("c")}, got)

	all, err := s.Recent("s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTranscriptStoreBoundsAndDrop(t *testing.T) {
	s := memory.NewTranscriptStore(2)
	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append("s1", turn(c)))
	}

	got, _ := s.Recent("s1", 0)
	assert.Equal(t, []domain.ConversationTurn{turn("b"), turn("c")}, got)

	require.NoError(t, s.Drop("s1"))
	got, _ = s.Recent("s1", 0)
	assert.Empty(t, got)
}

func TestTranscriptStoreRejectsEmptyTurns(t *testing.T) {
	s := memory.NewTranscriptStore(0)
	assert.ErrorIs(t, s.Append("s1", turn("  ")), memory.ErrEmptyTurn)
}

func TestTranscriptStoreConcurrentAppends(t *testing.T) {
	s := memory.NewTranscriptStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append("s1", turn(fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()

	got, _ := s.Recent("s1", 0)
	assert.Len(t, got, 20)
}
