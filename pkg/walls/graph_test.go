package walls_test

import (
	"testing"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/walls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain() *walls.Graph {
	g := walls.New()
	g.Attach("ab", "a", "b")
	g.Attach("bc", "b", "c")
	return g
}

func TestGraph_AttachDetach(t *testing.T) {
	g := chain()

	assert.Equal(t, 1, g.Degree("a"))
	assert.Equal(t, 2, g.Degree("b"))
	assert.Equal(t, []domain.EntityID{"ab", "bc"}, g.Incident("b"))
	assert.Equal(t, []domain.EntityID{"ab", "bc"}, g.Edges())
	assert.Equal(t, []domain.EntityID{"a", "b", "c"}, g.Nodes())

	// Idempotent attach.
	g.Attach("ab", "a", "b")
	assert.Equal(t, 2, g.Degree("b"))

	assert.True(t, g.Detach("ab"))
	assert.False(t, g.Detach("ab"))
	assert.Equal(t, 0, g.Degree("a"))
	assert.Equal(t, []domain.EntityID{"bc"}, g.Incident("b"))
	assert.False(t, g.Has("ab"))
}

func TestGraph_Restore(t *testing.T) {
	g := chain()
	captured := g.Incident("b")

	g.Forget("b")
	assert.Equal(t, 0, g.Degree("b"))

	// Unknown and foreign edges are ignored.
	g.Restore("b", append(captured, "zz"))
	g.Restore("a", []domain.EntityID{"bc"})

	assert.Equal(t, []domain.EntityID{"ab", "bc"}, g.Incident("b"))
	assert.Equal(t, []domain.EntityID{"ab"}, g.Incident("a"))
}

func TestGraph_RestoreKeepsCapturedOrder(t *testing.T) {
	g := chain()
	captured := g.Incident("b")
	require.Equal(t, []domain.EntityID{"ab", "bc"}, captured)

	g.Detach("ab")
	g.Attach("bd", "b", "d")
	g.Attach("ab", "a", "b")
	assert.Equal(t, []domain.EntityID{"bc", "bd", "ab"}, g.Incident("b"))

	g.Restore("b", captured)
	assert.Equal(t, []domain.EntityID{"ab", "bc", "bd"}, g.Incident("b"))

	g.Restore("x", []domain.EntityID{"ab"})
	assert.Equal(t, 0, g.Degree("x"))
	assert.NotContains(t, g.Nodes(), domain.EntityID("x"))
}

func TestGraph_Endpoints(t *testing.T) {
	g := chain()

	ends, ok := g.Endpoints("bc")
	assert.True(t, ok)
	assert.Equal(t, [2]domain.EntityID{"b", "c"}, ends)

	_, ok = g.Endpoints("missing")
	assert.False(t, ok)
}
