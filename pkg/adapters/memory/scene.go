package memory

import (
	"slices"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
)

// Scene implements ports.Scene in memory.
// It is not safe for concurrent use: like a canvas, it belongs to a single event loop.
// Concurrent hosts serialize access per workspace (see session.Manager).
type Scene struct {
	order     []domain.EntityID
	entities  map[domain.EntityID]*domain.Entity
	observers map[int]ports.InsertObserver
	nextObs   int
	selected  map[domain.EntityID]bool
	redraws   int
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		entities:  make(map[domain.EntityID]*domain.Entity),
		observers: make(map[int]ports.InsertObserver),
		selected:  make(map[domain.EntityID]bool),
	}
}

// Insert adds the entity and notifies observers. Duplicates are ignored.
func (s *Scene) Insert(e *domain.Entity) bool {
	if e == nil {
		return false
	}
	if _, ok := s.entities[e.ID]; ok {
		return false
	}
	s.entities[e.ID] = e
	s.order = append(s.order, e.ID)

	// Observers may insert in turn; iterate over a stable snapshot of keys.
	keys := make([]int, 0, len(s.observers))
	for k := range s.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := s.observers[k]; ok {
			fn(e)
		}
	}
	return true
}

// Remove deletes the entity. Absence is not an error.
func (s *Scene) Remove(id domain.EntityID) bool {
	if _, ok := s.entities[id]; !ok {
		return false
	}
	delete(s.entities, id)
	delete(s.selected, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Get returns the entity under id.
func (s *Scene) Get(id domain.EntityID) (*domain.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Contains reports whether an entity is present.
func (s *Scene) Contains(id domain.EntityID) bool {
	_, ok := s.entities[id]
	return ok
}

// List returns the present entities in insertion order.
func (s *Scene) List() []*domain.Entity {
	out := make([]*domain.Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// RequestRedraw records a redraw request.
func (s *Scene) RequestRedraw() {
	s.redraws++
}

// Redraws returns how many redraws were requested so far.
func (s *Scene) Redraws() int {
	return s.redraws
}

// OnInsert registers an insertion observer.
func (s *Scene) OnInsert(fn ports.InsertObserver) func() {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

// Select marks a present entity as selected.
func (s *Scene) Select(id domain.EntityID) bool {
	if !s.Contains(id) {
		return false
	}
	s.selected[id] = true
	return true
}

// Selected returns the selected entity IDs in scene order.
func (s *Scene) Selected() []domain.EntityID {
	var out []domain.EntityID
	for _, id := range s.order {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// ClearSelection implements ports.Selectable.
func (s *Scene) ClearSelection() {
	clear(s.selected)
}

var (
	_ ports.Scene      = (*Scene)(nil)
	_ ports.Selectable = (*Scene)(nil)
)
