package saga

import (
	"context"
	"sync"
)

// Store tracks saga instances while they run
type Store interface {
	Save(ctx context.Context, instance *Instance) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps in-flight instances. Finished instances are deleted by the orchestrator.
type MemoryStore struct {
	instances map[string]*Instance
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[string]*Instance),
	}
}

func (s *MemoryStore) Save(ctx context.Context, instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instance.ID] = instance
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, id)
	return nil
}

// InFlight returns the number of running instances
func (s *MemoryStore) InFlight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}
