package request

import (
	"sync"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

// store holds the transient requests of this process.
type store struct {
	mu    sync.RWMutex
	items map[string]models.RideRequest
}

func newStore() *store {
	return &store{items: make(map[string]models.RideRequest)}
}

func (s *store) get(id string) (models.RideRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	return r, ok
}

// insert fails when id is taken.
func (s *store) insert(r models.RideRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return false
	}
	s.items[r.ID] = r
	return true
}

func (s *store) put(r models.RideRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = r
}

func (s *store) list() []models.RideRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RideRequest, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	return out
}
