package rendezvous

import (
	"context"
	"sync"
)

// MemoryMarkerStore keeps join markers in process memory, for
// single-process deployments and tests. The mutex gives Exchange the
// same atomicity the redis script provides.
type MemoryMarkerStore struct {
	mu      sync.Mutex
	markers map[string]string
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{markers: make(map[string]string)}
}

func (s *MemoryMarkerStore) Exchange(ctx context.Context, roomID, identity string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	holder, ok := s.markers[roomID]
	if !ok {
		s.markers[roomID] = identity
		return "", nil
	}
	if holder == identity {
		return holder, nil
	}
	delete(s.markers, roomID)
	return holder, nil
}

func (s *MemoryMarkerStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, roomID)
	return nil
}
