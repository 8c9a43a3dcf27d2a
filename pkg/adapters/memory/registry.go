package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
)

// RegistryStore implements ports.RegistryStore in memory.
// Safe for concurrent use.
type RegistryStore struct {
	mu         sync.Mutex
	registries map[domain.RegistryName]*Registry
}

// NewRegistryStore creates an empty in-memory registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{
		registries: make(map[domain.RegistryName]*Registry),
	}
}

// Registry returns the named registry, creating it on first use.
func (s *RegistryStore) Registry(name domain.RegistryName) ports.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registries[name]
	if !ok {
		reg = &Registry{}
		s.registries[name] = reg
	}
	return reg
}

// Registry implements ports.Registry as an ordered slice of records.
type Registry struct {
	mu      sync.RWMutex
	records []domain.Record
}

// Add appends the record unless one for the same entity exists.
func (r *Registry) Add(ctx context.Context, rec domain.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.EntityID == rec.EntityID {
			return false, nil
		}
	}
	r.records = append(r.records, copyRecord(rec))
	return true, nil
}

// Contains reports whether a record for the entity exists.
func (r *Registry) Contains(ctx context.Context, id domain.EntityID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.records {
		if existing.EntityID == id {
			return true, nil
		}
	}
	return false, nil
}

// RemoveWhere deletes all matching records.
func (r *Registry) RemoveWhere(ctx context.Context, match func(domain.Record) bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	removed := 0
	for _, rec := range r.records {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return removed, nil
}

// List returns a copy of the records so callers can't mutate registry state by reference.
func (r *Registry) List(ctx context.Context) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

func copyRecord(rec domain.Record) domain.Record {
	rec.Fields = maps.Clone(rec.Fields)
	return rec
}
