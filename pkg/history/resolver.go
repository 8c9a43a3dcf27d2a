package history

import (
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
)

// Resolver finds the entities that travel with a primary entity.
type Resolver struct {
	scene ports.Scene
}

// NewResolver creates a Resolver over a scene.
func NewResolver(scene ports.Scene) *Resolver {
	return &Resolver{scene: scene}
}

// FindRelated returns the label of a device or region: the linked one if present,
// otherwise a label in the scene whose owner is e. Other kinds have no related
// entities. Call it when building a command, not when replaying one.
func (r *Resolver) FindRelated(e *domain.Entity) []*domain.Entity {
	if e == nil || !e.Kind.HasLabel() {
		return nil
	}
	if e.Label != "" {
		if label, ok := r.scene.Get(e.Label); ok && label.Kind == domain.KindLabel {
			return []*domain.Entity{label}
		}
	}
	for _, candidate := range r.scene.List() {
		if candidate.Kind == domain.KindLabel && candidate.Owner == e.ID {
			return []*domain.Entity{candidate}
		}
	}
	return nil
}
