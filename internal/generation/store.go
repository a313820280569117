package generation

import (
	"sort"
	"sync"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/domain"
)

// Store owns the job records. It is injected into the Service so tests can
// substitute their own implementation. Reads return copies; records are only
// ever mutated through Update, under the store's lock, so a lookup never
// observes a half-written record.
type Store interface {
	Insert(gen domain.Generation)
	Get(id string) (domain.Generation, bool)
	// Update applies fn to the record under the store lock. It is a no-op
	// for unknown ids and for records already in a terminal status.
	Update(id string, fn func(*domain.Generation))
	// List returns all records newest first; ties on CreatedAt keep
	// insertion order.
	List() []domain.Generation
}

// MemoryStore keeps all records in process memory. Nothing survives a
// restart; the table starts empty and is never compacted.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Generation
	order []*domain.Generation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*domain.Generation)}
}

func (s *MemoryStore) Insert(gen domain.Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &gen
	s.byID[gen.ID] = rec
	s.order = append(s.order, rec)
}

func (s *MemoryStore) Get(id string) (domain.Generation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return domain.Generation{}, false
	}
	return *rec, true
}

func (s *MemoryStore) Update(id string, fn func(*domain.Generation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok || rec.Status.Terminal() {
		return
	}
	fn(rec)
}

func (s *MemoryStore) List() []domain.Generation {
	s.mu.RLock()
	out := make([]domain.Generation, len(s.order))
	for i, rec := range s.order {
		out[i] = *rec
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ Store = (*MemoryStore)(nil)
