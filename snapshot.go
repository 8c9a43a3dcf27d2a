package planner

import (
	"context"
	"fmt"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
)

// WallEdge is a wall graph edge as seen in a Snapshot.
type WallEdge struct {
	ID   domain.EntityID `json:"id"`
	From domain.EntityID `json:"from"`
	To   domain.EntityID `json:"to"`
}

// Snapshot is the observable state of a workspace, detached from the live scene.
type Snapshot struct {
	ID         string                                  `json:"id"`
	Entities   []domain.Entity                         `json:"entities"`
	Registries map[domain.RegistryName][]domain.Record `json:"registries"`
	Walls      []WallEdge                              `json:"walls,omitempty"`
	History    domain.HistoryState                     `json:"history"`
	Undo       []history.Entry                         `json:"undo,omitempty"`
	Redo       []history.Entry                         `json:"redo,omitempty"`
	Pending    int                                     `json:"pending"`
}

// Snapshot captures the current state of the workspace.
func (w *Workspace) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		ID:         w.ID,
		Registries: make(map[domain.RegistryName][]domain.Record),
		History:    w.manager.State(),
		Pending:    w.loop.Pending(),
	}
	for _, e := range w.scene.List() {
		snap.Entities = append(snap.Entities, e.Copy())
	}
	for _, name := range domain.Registries() {
		recs, err := w.registries.Registry(name).List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		snap.Registries[name] = recs
	}
	for _, id := range w.walls.Edges() {
		ends, _ := w.walls.Endpoints(id)
		snap.Walls = append(snap.Walls, WallEdge{ID: id, From: ends[0], To: ends[1]})
	}
	snap.Undo, snap.Redo = w.manager.Entries()
	return snap, nil
}

// Count returns the number of snapshot entities of the given kind.
func (s *Snapshot) Count(kind domain.Kind) int {
	n := 0
	for _, e := range s.Entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
