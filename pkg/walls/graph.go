// Package walls keeps the wall graph index: which wall edges exist, which nodes they
// join, and which edges are incident to each node.
package walls

import (
	"slices"

	"github.com/aretw0/planner/pkg/domain"
)

// Graph is the edge index shared by the wall tools and the journal.
// Incidence lists are kept in attachment order so restores are deterministic.
type Graph struct {
	endpoints map[domain.EntityID][2]domain.EntityID
	incident  map[domain.EntityID][]domain.EntityID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		endpoints: make(map[domain.EntityID][2]domain.EntityID),
		incident:  make(map[domain.EntityID][]domain.EntityID),
	}
}

// Attach registers edge between nodes a and b. Attaching an edge twice is a no-op.
func (g *Graph) Attach(edge, a, b domain.EntityID) {
	if _, ok := g.endpoints[edge]; ok {
		return
	}
	g.endpoints[edge] = [2]domain.EntityID{a, b}
	g.link(a, edge)
	if b != a {
		g.link(b, edge)
	}
}

// Detach removes edge from the index and from its endpoints' incidence lists.
// Returns false if the edge was not attached.
func (g *Graph) Detach(edge domain.EntityID) bool {
	ends, ok := g.endpoints[edge]
	if !ok {
		return false
	}
	delete(g.endpoints, edge)
	g.unlink(ends[0], edge)
	g.unlink(ends[1], edge)
	return true
}

// Forget drops the incidence list of a node. Edges still attached to it keep their
// endpoints; they detach themselves when removed.
func (g *Graph) Forget(node domain.EntityID) {
	delete(g.incident, node)
}

// Restore re-links a node to a previously captured list of incident edges, in
// captured order and ahead of edges attached since. Only edges that are attached and
// actually end at node are linked; duplicates are ignored.
func (g *Graph) Restore(node domain.EntityID, edges []domain.EntityID) {
	current := g.incident[node]
	restored := make([]domain.EntityID, 0, len(edges)+len(current))
	for _, edge := range edges {
		ends, ok := g.endpoints[edge]
		if !ok || (ends[0] != node && ends[1] != node) || slices.Contains(restored, edge) {
			continue
		}
		restored = append(restored, edge)
	}
	for _, edge := range current {
		if !slices.Contains(restored, edge) {
			restored = append(restored, edge)
		}
	}
	if len(restored) == 0 {
		return
	}
	g.incident[node] = restored
}

// Incident returns the edges incident to node.
func (g *Graph) Incident(node domain.EntityID) []domain.EntityID {
	return slices.Clone(g.incident[node])
}

// Degree returns the number of edges incident to node.
func (g *Graph) Degree(node domain.EntityID) int {
	return len(g.incident[node])
}

// Endpoints returns the nodes joined by edge.
func (g *Graph) Endpoints(edge domain.EntityID) ([2]domain.EntityID, bool) {
	ends, ok := g.endpoints[edge]
	return ends, ok
}

// Has reports whether edge is attached.
func (g *Graph) Has(edge domain.EntityID) bool {
	_, ok := g.endpoints[edge]
	return ok
}

// Edges returns every attached edge, sorted by ID.
func (g *Graph) Edges() []domain.EntityID {
	out := make([]domain.EntityID, 0, len(g.endpoints))
	for edge := range g.endpoints {
		out = append(out, edge)
	}
	slices.Sort(out)
	return out
}

// Nodes returns every node with at least one incident edge, sorted by ID.
func (g *Graph) Nodes() []domain.EntityID {
	out := make([]domain.EntityID, 0, len(g.incident))
	for node, edges := range g.incident {
		if len(edges) > 0 {
			out = append(out, node)
		}
	}
	slices.Sort(out)
	return out
}

func (g *Graph) link(node, edge domain.EntityID) {
	if slices.Contains(g.incident[node], edge) {
		return
	}
	g.incident[node] = append(g.incident[node], edge)
}

func (g *Graph) unlink(node, edge domain.EntityID) {
	edges := g.incident[node]
	if i := slices.Index(edges, edge); i >= 0 {
		edges = slices.Delete(edges, i, i+1)
	}
	if len(edges) == 0 {
		delete(g.incident, node)
		return
	}
	g.incident[node] = edges
}
