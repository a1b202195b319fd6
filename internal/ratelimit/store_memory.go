package ratelimit

import (
	"context"
	"sync"
	"time"

	id "medgate/pkg/domain"
)

// InMemoryStore keeps window counters in process, one entry per principal.
// The map-level mutex only guards entry lookup and creation; acquisition
// itself serializes on the entry's own mutex, so principals never contend
// with each other.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[id.PrincipalID]*principalCounters
}

type principalCounters struct {
	mu    sync.Mutex
	short Counter
	long  Counter
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[id.PrincipalID]*principalCounters)}
}

func (s *InMemoryStore) Acquire(_ context.Context, principalID id.PrincipalID, now time.Time, windows Windows) (Result, error) {
	entry := s.entry(principalID, now)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return evaluate(&entry.short, &entry.long, now, windows), nil
}

func (s *InMemoryStore) entry(principalID id.PrincipalID, now time.Time) *principalCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.counters[principalID]; ok {
		return entry
	}
	entry := &principalCounters{
		short: Counter{WindowStart: now},
		long:  Counter{WindowStart: now},
	}
	s.counters[principalID] = entry
	return entry
}
