package consent

import (
	"context"
	"sync"

	id "medgate/pkg/domain"
)

// InMemoryStore keeps consent records in process. Tests and single-process
// deployments seed it via Save; production reads from the consent system's
// Postgres replica instead.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.PrincipalID][]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.PrincipalID][]Record)}
}

// Save seeds a record. Not part of the Store interface; the gateway itself
// never writes consent.
func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubjectID] = append(s.records[record.SubjectID], record)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.PrincipalID, purpose id.OperationKind) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records[subjectID] {
		if r.Purpose == purpose {
			out = append(out, r)
		}
	}
	return out, nil
}
