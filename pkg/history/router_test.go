package history_test

import (
	"testing"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_DeleteMiddleNodeRemovesOrphans(t *testing.T) {
	f := newFixture(t)
	f.buildChain(t)
	b, _ := f.scene.Get("B")

	require.True(t, f.router.Delete(f.ctx, b))
	assert.True(t, f.absent("A", "B", "C", "AB", "BC"))
	assert.Empty(t, f.walls.Edges())
	assert.Empty(t, f.walls.Nodes())

	require.True(t, f.manager.Undo(f.ctx))
	assert.True(t, f.present("A", "B", "C", "AB", "BC"))
	assert.Equal(t, []domain.EntityID{"AB", "BC"}, f.walls.Edges())
	assert.Equal(t, []domain.EntityID{"AB", "BC"}, f.walls.Incident("B"))
	assert.Equal(t, []domain.EntityID{"AB"}, f.walls.Incident("A"))
	assert.Equal(t, []domain.EntityID{"BC"}, f.walls.Incident("C"))
}

func TestRouter_DeleteLeafNodeKeepsRest(t *testing.T) {
	f := newFixture(t)
	f.buildChain(t)
	a, _ := f.scene.Get("A")

	cmd, ok := f.router.Build(a)
	require.True(t, ok)
	composite, ok := cmd.(*history.CompositeCommand)
	require.True(t, ok)
	assert.Equal(t, 2, composite.Len())

	require.True(t, f.manager.ExecuteCommand(f.ctx, cmd))
	assert.True(t, f.absent("A", "AB"))
	assert.True(t, f.present("B", "C", "BC"))
	assert.Equal(t, []domain.EntityID{"BC"}, f.walls.Edges())
	assert.Equal(t, 1, f.walls.Degree("B"))

	f.manager.Undo(f.ctx)
	assert.Equal(t, []domain.EntityID{"AB", "BC"}, f.walls.Incident("B"), "incidence order survives the round trip")

	f.manager.Redo(f.ctx)
	f.manager.Undo(f.ctx)
	assert.Equal(t, []domain.EntityID{"AB", "BC"}, f.walls.Incident("B"))
	assert.Equal(t, []domain.EntityID{"AB"}, f.walls.Incident("A"))
}

func TestRouter_DeleteEdge(t *testing.T) {
	f := newFixture(t)
	f.buildChain(t)
	ab, _ := f.scene.Get("AB")

	require.True(t, f.router.Delete(f.ctx, ab))
	assert.True(t, f.absent("AB", "A"), "A had no other edge")
	assert.True(t, f.present("B", "C", "BC"))

	f.manager.Undo(f.ctx)
	assert.True(t, f.present("A", "AB"))
	assert.Equal(t, []domain.EntityID{"AB"}, f.walls.Incident("A"))
	assert.Equal(t, []domain.EntityID{"AB", "BC"}, f.walls.Incident("B"))
}

func TestRouter_DeleteLonelyEdgeTakesBothEnds(t *testing.T) {
	f := newFixture(t)
	f.manager.ExecuteCommand(f.ctx, history.NewCompositeCommand(
		history.NewAddCommand(f.env, node("P")),
		history.NewAddCommand(f.env, node("Q")),
		history.NewAddCommand(f.env, edge("PQ", "P", "Q")),
	))
	pq, _ := f.scene.Get("PQ")

	require.True(t, f.router.Delete(f.ctx, pq))
	assert.Empty(t, f.scene.List())
}

func TestRouter_IgnoresAffordances(t *testing.T) {
	f := newFixture(t)
	for _, kind := range []domain.Kind{domain.KindHandle, domain.KindOverlay, domain.KindGuide} {
		e := &domain.Entity{ID: domain.EntityID(kind), Kind: kind, Transient: true}
		f.scene.Insert(e)
		assert.False(t, f.router.Delete(f.ctx, e), kind)
		assert.True(t, f.scene.Contains(e.ID))
	}
	assert.Equal(t, 0, f.manager.State().UndoDepth)
}

func TestRouter_DeleteAbsentEntity(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.router.Delete(f.ctx, shape("ghost")))
	assert.False(t, f.router.Delete(f.ctx, nil))
}

func TestRouter_DeleteDeviceTakesLabel(t *testing.T) {
	f := newFixture(t)
	d := device("D", "AP")
	f.manager.ExecuteCommand(f.ctx, history.NewAddCommand(f.env, d))
	labelID := d.Label
	require.NotEmpty(t, labelID)

	// Unlink: the resolver falls back to the owner scan.
	d.Label = ""
	require.True(t, f.router.Delete(f.ctx, d))
	assert.True(t, f.absent("D", labelID))
	assert.Empty(t, f.records(t, domain.RegistryDevices))

	f.manager.Undo(f.ctx)
	assert.True(t, f.present("D", labelID))
}

func TestRegionScenario_CompositeOfTwoAdds(t *testing.T) {
	f := newFixture(t)
	p := &domain.Entity{
		ID: "P", Kind: domain.KindRoom, Finalized: true, LabelText: "Kitchen", Label: "T",
		Points: []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
	}
	tl := label("T", "P", "Kitchen")

	f.manager.ExecuteCommand(f.ctx, history.NewCompositeCommand(
		history.NewAddCommand(f.env, p),
		history.NewAddCommand(f.env, tl),
	))
	require.Len(t, f.records(t, domain.RegistryRooms), 1)

	require.True(t, f.manager.Undo(f.ctx))
	assert.Empty(t, f.records(t, domain.RegistryRooms))
	assert.True(t, f.absent("P", "T"))

	require.True(t, f.manager.Redo(f.ctx))
	recs := f.records(t, domain.RegistryRooms)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.EntityID("P"), recs[0].EntityID)
	assert.Equal(t, "Kitchen", recs[0].Name)
}
