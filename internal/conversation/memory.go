package conversation

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps conversation state in process memory. This is the
// default store when Redis is not configured.
type memoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
	now    func() time.Time
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		states: make(map[int64]State),
		now:    time.Now,
	}
}

// NewMemoryStoreWithClock returns an in-memory Store with an injected clock.
func NewMemoryStoreWithClock(now func() time.Time) Store {
	return &memoryStore{
		states: make(map[int64]State),
		now:    now,
	}
}

func (s *memoryStore) Get(_ context.Context, participantID int64) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[participantID], nil
}

func (s *memoryStore) Set(_ context.Context, participantID int64, state State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[participantID] = state
	return nil
}

func (s *memoryStore) Clear(_ context.Context, participantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, participantID)
	return nil
}

func (s *memoryStore) Snapshot(_ context.Context) (map[int64]State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]State, len(s.states))
	for id, state := range s.states {
		if !state.Active() {
			continue
		}
		out[id] = state
	}
	return out, nil
}
