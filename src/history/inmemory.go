package history

import (
	"context"
	"sync"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// InMemoryStore keeps transcripts in process memory. The default store; fine
// for single-instance deployments and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]assistant.ConversationTurn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]assistant.ConversationTurn)}
}

func (s *InMemoryStore) Load(_ context.Context, sessionID string) ([]assistant.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.sessions[sessionID]
	turns := make([]assistant.ConversationTurn, len(stored))
	copy(turns, stored)
	return turns, nil
}

func (s *InMemoryStore) Save(_ context.Context, sessionID string, turns []assistant.ConversationTurn) error {
	stored := make([]assistant.ConversationTurn, len(turns))
	copy(stored, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = stored
	return nil
}

func (s *InMemoryStore) Close(context.Context) error { return nil }
