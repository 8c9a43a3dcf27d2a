package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/planner/pkg/domain"
)

// members is the entity set a leaf command acts on. The related set is fixed at
// construction and travels with the command.
type members struct {
	env     *Env
	primary *domain.Entity
	related []*domain.Entity
}

func newMembers(env *Env, primary *domain.Entity, related []*domain.Entity) members {
	m := members{env: env, primary: primary}
	for _, r := range related {
		if r != nil && r != primary && !m.has(r.ID) {
			m.related = append(m.related, r)
		}
	}
	return m
}

func (m *members) all() []*domain.Entity {
	out := make([]*domain.Entity, 0, len(m.related)+1)
	if m.primary != nil {
		out = append(out, m.primary)
	}
	return append(out, m.related...)
}

func (m *members) has(id domain.EntityID) bool {
	if m.primary != nil && m.primary.ID == id {
		return true
	}
	for _, r := range m.related {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (m *members) insert() {
	for _, e := range m.all() {
		m.env.Scene.Insert(e)
	}
}

func (m *members) remove() {
	for _, e := range m.all() {
		m.env.Scene.Remove(e.ID)
	}
}

// register adds a record for every registry-bearing member that has none yet.
func (m *members) register(ctx context.Context, record func(*domain.Entity) domain.Record) error {
	var errs []error
	for _, e := range m.all() {
		name, ok := e.Kind.Registry()
		if !ok {
			continue
		}
		if _, err := m.env.Registries.Registry(name).Add(ctx, record(e)); err != nil {
			errs = append(errs, fmt.Errorf("register %s in %s: %w", e.ID, name, err))
		}
	}
	return errors.Join(errs...)
}

// attachWalls indexes every wall edge among the members.
func (m *members) attachWalls() {
	if m.env.Walls == nil {
		return
	}
	for _, e := range m.all() {
		if e.Kind == domain.KindWallEdge && e.Endpoints[0] != "" {
			m.env.Walls.Attach(e.ID, e.Endpoints[0], e.Endpoints[1])
		}
	}
}

func (m *members) scheduleCoverage() {
	for _, e := range m.all() {
		if e.Coverage {
			m.env.scheduleRecompute(e.ID)
		}
	}
}

// performCleanup undoes the side effects of membership once the members have left
// the scene: registry records, derived overlays and handles, pending recomputes and
// wall index entries.
func (m *members) performCleanup(ctx context.Context) error {
	all := m.all()
	ids := domain.IDs(all)

	var errs []error
	for _, name := range registriesOf(all) {
		_, err := m.env.Registries.Registry(name).RemoveWhere(ctx, func(rec domain.Record) bool {
			return containsID(ids, rec.EntityID)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("strip %s: %w", name, err))
		}
	}

	for _, e := range m.env.Scene.List() {
		if (e.Kind == domain.KindOverlay || e.Kind == domain.KindHandle) && containsID(ids, e.Owner) {
			m.env.Scene.Remove(e.ID)
		}
	}

	for _, e := range all {
		if e.Coverage {
			m.env.cancelRecompute(e.ID)
		}
		if m.env.Walls == nil {
			continue
		}
		switch e.Kind {
		case domain.KindWallEdge:
			m.env.Walls.Detach(e.ID)
		case domain.KindWallNode:
			m.env.Walls.Forget(e.ID)
		}
	}
	return errors.Join(errs...)
}
