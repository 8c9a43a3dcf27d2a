package ports

import "github.com/aretw0/planner/pkg/domain"

// InsertObserver is notified synchronously after an entity has been inserted.
type InsertObserver func(e *domain.Entity)

// Scene is the retained scene graph the journal mutates.
// It never reports rendering state; entity presence is all the journal queries.
type Scene interface {
	// Insert adds the entity. Returns false if an entity with the same ID is already present.
	Insert(e *domain.Entity) bool

	// Remove deletes the entity. Returns false if it was not present.
	Remove(id domain.EntityID) bool

	// Get returns the entity currently present under id.
	Get(id domain.EntityID) (*domain.Entity, bool)

	// Contains reports whether an entity is present.
	Contains(id domain.EntityID) bool

	// List returns the present entities in insertion order.
	List() []*domain.Entity

	// RequestRedraw asks the host to repaint at its next opportunity.
	RequestRedraw()

	// OnInsert registers an observer for insertions and returns a function removing it.
	OnInsert(fn InsertObserver) (cancel func())
}

// Selectable is implemented by scenes that track an active selection.
type Selectable interface {
	ClearSelection()
}
