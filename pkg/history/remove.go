package history

import (
	"context"
	"maps"

	"github.com/aretw0/planner/pkg/domain"
)

// restoration is the property snapshot of one member, captured before any mutation.
type restoration struct {
	fields      map[string]string
	hidden      bool
	incident    []domain.EntityID
	endpoints   [2]domain.EntityID
	label       domain.EntityID
	labelHidden bool
	record      *domain.Record
}

// RemoveCommand removes a primary entity and its related entities.
type RemoveCommand struct {
	members
	snapshot map[domain.EntityID]restoration
	// neighbours holds the incidence order of surviving wall nodes whose edges are removed.
	neighbours map[domain.EntityID][]domain.EntityID
}

// NewRemoveCommand creates a Remove and snapshots what its Undo needs to restore.
func NewRemoveCommand(env *Env, primary *domain.Entity, related ...*domain.Entity) *RemoveCommand {
	c := &RemoveCommand{
		members:  newMembers(env, primary, related),
		snapshot: make(map[domain.EntityID]restoration),
	}
	for _, e := range c.all() {
		c.snapshot[e.ID] = c.capture(e)
	}
	c.captureNeighbours()
	return c
}

func (c *RemoveCommand) captureNeighbours() {
	if c.env.Walls == nil {
		return
	}
	for _, e := range c.all() {
		if e.Kind != domain.KindWallEdge {
			continue
		}
		for _, n := range c.snapshot[e.ID].endpoints {
			if n == "" || c.has(n) {
				continue
			}
			if _, seen := c.neighbours[n]; seen {
				continue
			}
			if c.neighbours == nil {
				c.neighbours = make(map[domain.EntityID][]domain.EntityID)
			}
			c.neighbours[n] = c.env.Walls.Incident(n)
		}
	}
}

// Primary returns the primary entity.
func (c *RemoveCommand) Primary() *domain.Entity {
	return c.primary
}

// Related returns the related entities.
func (c *RemoveCommand) Related() []*domain.Entity {
	return c.related
}

func (c *RemoveCommand) capture(e *domain.Entity) restoration {
	s := restoration{
		fields:    maps.Clone(e.Fields),
		hidden:    e.Hidden,
		endpoints: e.Endpoints,
	}
	if c.env.Walls != nil {
		switch e.Kind {
		case domain.KindWallNode:
			s.incident = c.env.Walls.Incident(e.ID)
		case domain.KindWallEdge:
			if ends, ok := c.env.Walls.Endpoints(e.ID); ok {
				s.endpoints = ends
			}
		}
	}
	if e.Kind.HasLabel() {
		if label := c.labelOf(e); label != nil {
			s.label = label.ID
			s.labelHidden = label.Hidden
		}
	}
	if _, ok := e.Kind.Registry(); ok {
		rec := domain.NewRecord(e)
		s.record = &rec
	}
	return s
}

func (c *RemoveCommand) labelOf(e *domain.Entity) *domain.Entity {
	for _, r := range c.related {
		if r.Kind == domain.KindLabel && (r.ID == e.Label || r.Owner == e.ID) {
			return r
		}
	}
	if e.Label != "" {
		if label, ok := c.env.Scene.Get(e.Label); ok {
			return label
		}
	}
	return nil
}

// Execute removes every member and cleans up after them.
func (c *RemoveCommand) Execute(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	c.remove()
	err := c.performCleanup(ctx)
	c.env.itemsChanged(ctx, registriesOf(c.all()))
	c.env.Scene.RequestRedraw()
	return err
}

// Undo reinserts every member and reapplies the snapshot.
func (c *RemoveCommand) Undo(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	c.insert()
	err := c.restoreObjectData(ctx)
	c.scheduleCoverage()
	c.env.itemsChanged(ctx, registriesOf(c.all()))
	c.env.Scene.RequestRedraw()
	return err
}

// restoreObjectData reapplies field values, visibility, wall index entries, label
// visibility and registry membership from the snapshot.
func (c *RemoveCommand) restoreObjectData(ctx context.Context) error {
	all := c.all()
	for _, e := range all {
		s := c.snapshot[e.ID]
		if s.fields != nil {
			e.Fields = maps.Clone(s.fields)
		}
		e.Hidden = s.hidden
	}

	if c.env.Walls != nil {
		// Edges first: node incidence only links edges that are attached.
		for _, e := range all {
			if s := c.snapshot[e.ID]; e.Kind == domain.KindWallEdge && s.endpoints[0] != "" {
				c.env.Walls.Attach(e.ID, s.endpoints[0], s.endpoints[1])
			}
		}
		for _, e := range all {
			if e.Kind == domain.KindWallNode {
				c.env.Walls.Restore(e.ID, c.snapshot[e.ID].incident)
			}
		}
		for n, order := range c.neighbours {
			c.env.Walls.Restore(n, order)
		}
	}

	for _, e := range all {
		s := c.snapshot[e.ID]
		if s.label == "" {
			continue
		}
		if label, ok := c.env.Scene.Get(s.label); ok {
			label.Hidden = s.labelHidden
		}
	}

	return c.register(ctx, func(e *domain.Entity) domain.Record {
		if s := c.snapshot[e.ID]; s.record != nil {
			return *s.record
		}
		return domain.NewRecord(e)
	})
}
