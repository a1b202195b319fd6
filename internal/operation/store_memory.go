package operation

import (
	"context"
	"sync"

	id "medgate/pkg/domain"
)

// InMemoryStore keeps operation state in process. The map-level mutex guards
// only entry lookup and insertion; each entry carries its own mutex so
// concurrent transitions on different operations never contend.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.OperationID]*stateEntry
}

type stateEntry struct {
	mu    sync.Mutex
	state State
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.OperationID]*stateEntry)}
}

func (s *InMemoryStore) Insert(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state.OperationID] = &stateEntry{state: state}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, operationID id.OperationID) (State, error) {
	s.mu.RLock()
	entry, ok := s.entries[operationID]
	s.mu.RUnlock()
	if !ok {
		return State{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, nil
}

func (s *InMemoryStore) Update(_ context.Context, operationID id.OperationID, apply func(State) (State, error)) (State, error) {
	s.mu.RLock()
	entry, ok := s.entries[operationID]
	s.mu.RUnlock()
	if !ok {
		return State{}, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	next, err := apply(entry.state)
	if err != nil {
		return entry.state, err
	}
	entry.state = next
	return next, nil
}
