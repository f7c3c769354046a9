package memory

import (
	"context"
	"sync"

	"alyra/pkg/domain"
	audit "alyra/pkg/platform/audit"
)

// InMemoryStore keeps events per ballot in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.BallotID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.BallotID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.BallotID] = append(s.events[event.BallotID], event)
	return nil
}

func (s *InMemoryStore) ListByBallot(_ context.Context, ballotID domain.BallotID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[ballotID]...), nil
}

// Clear drops every stored event.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.BallotID][]audit.Event)
}
