package history

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aretw0/planner/pkg/domain"
)

// Router turns a delete request on the active entity into the matching command.
type Router struct {
	env      *Env
	resolver *Resolver
	manager  *Manager
	logger   *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(env *Env, resolver *Resolver, manager *Manager) *Router {
	return &Router{
		env:      env,
		resolver: resolver,
		manager:  manager,
		logger:   env.logger(),
	}
}

// Delete builds the removal of active and hands it to the manager.
// Reports false when nothing was deleted.
func (r *Router) Delete(ctx context.Context, active *domain.Entity) bool {
	cmd, ok := r.Build(active)
	if !ok {
		return false
	}
	r.logger.Debug("Routing delete", "entity_id", active.ID, "kind", active.Kind)
	return r.manager.ExecuteCommand(ctx, cmd)
}

// Build classifies active by kind and constructs its removal. Handles, overlays and
// guides are not deletable by themselves.
func (r *Router) Build(active *domain.Entity) (Command, bool) {
	if active == nil || !r.env.Scene.Contains(active.ID) {
		return nil, false
	}
	switch active.Kind {
	case domain.KindHandle, domain.KindOverlay, domain.KindGuide:
		return nil, false
	case domain.KindWallNode:
		return r.buildNode(active), true
	case domain.KindWallEdge:
		return r.buildEdge(active), true
	}
	return NewRemoveCommand(r.env, active, r.resolver.FindRelated(active)...), true
}

// buildNode removes a wall node, its incident edges and every neighbour left without
// edges, as one Composite.
func (r *Router) buildNode(node *domain.Entity) Command {
	cmds := []Command{NewRemoveCommand(r.env, node)}
	if r.env.Walls == nil {
		return NewCompositeCommand(cmds...)
	}

	edges := r.env.Walls.Incident(node.ID)
	var orphans []domain.EntityID
	for _, edgeID := range edges {
		if edge, ok := r.env.Scene.Get(edgeID); ok {
			cmds = append(cmds, NewRemoveCommand(r.env, edge))
		}
		ends, _ := r.env.Walls.Endpoints(edgeID)
		for _, neighbour := range ends {
			if neighbour == node.ID || neighbour == "" || slices.Contains(orphans, neighbour) {
				continue
			}
			if r.orphaned(neighbour, edges) {
				orphans = append(orphans, neighbour)
			}
		}
	}
	for _, id := range orphans {
		if e, ok := r.env.Scene.Get(id); ok {
			cmds = append(cmds, NewRemoveCommand(r.env, e))
		}
	}
	return NewCompositeCommand(cmds...)
}

// buildEdge removes a wall edge together with the endpoints it was the only edge of.
func (r *Router) buildEdge(edge *domain.Entity) Command {
	var related []*domain.Entity
	if r.env.Walls != nil {
		ends, _ := r.env.Walls.Endpoints(edge.ID)
		for _, id := range ends {
			if id == "" || !r.orphaned(id, []domain.EntityID{edge.ID}) {
				continue
			}
			if e, ok := r.env.Scene.Get(id); ok {
				related = append(related, e)
			}
		}
	}
	return NewRemoveCommand(r.env, edge, related...)
}

// orphaned reports whether every edge of node is among removed.
func (r *Router) orphaned(node domain.EntityID, removed []domain.EntityID) bool {
	for _, edge := range r.env.Walls.Incident(node) {
		if !slices.Contains(removed, edge) {
			return false
		}
	}
	return true
}
