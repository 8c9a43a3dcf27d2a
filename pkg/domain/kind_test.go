package domain_test

import (
	"testing"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range domain.Kinds() {
		got, err := domain.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.True(t, k.Valid())
	}

	_, err := domain.ParseKind("polyline")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.False(t, domain.Kind("polyline").Valid())
}

func TestKind_Registry(t *testing.T) {
	cases := map[domain.Kind]domain.RegistryName{
		domain.KindDevice:     domain.RegistryDevices,
		domain.KindZone:       domain.RegistryZones,
		domain.KindRoom:       domain.RegistryRooms,
		domain.KindTitleBlock: domain.RegistryTitleBlocks,
	}
	for _, k := range domain.Kinds() {
		name, ok := k.Registry()
		want, listed := cases[k]
		assert.Equal(t, listed, ok, "kind %s", k)
		assert.Equal(t, want, name, "kind %s", k)
	}
}

func TestKind_Classification(t *testing.T) {
	assert.True(t, domain.KindZone.IsRegion())
	assert.False(t, domain.KindDevice.IsRegion())
	assert.True(t, domain.KindDevice.HasLabel())
	assert.True(t, domain.KindRoom.HasLabel())
	assert.False(t, domain.KindShape.HasLabel())

	assert.True(t, domain.KindLabel.IsDerived())
	assert.False(t, domain.KindLabel.IsTransient())
	assert.True(t, domain.KindGuide.IsTransient())
	assert.True(t, domain.KindBackground.IsTransient())
	assert.False(t, domain.KindWallEdge.IsTransient())
}

func TestEntity_Opposite(t *testing.T) {
	edge := &domain.Entity{ID: "e1", Kind: domain.KindWallEdge, Endpoints: [2]domain.EntityID{"a", "b"}}

	other, ok := edge.Opposite("a")
	assert.True(t, ok)
	assert.Equal(t, domain.EntityID("b"), other)

	_, ok = edge.Opposite("c")
	assert.False(t, ok)
}

func TestEntity_Copy(t *testing.T) {
	e := &domain.Entity{ID: "d1", Points: []domain.Point{{X: 1}}, Fields: map[string]string{"range": "10"}}
	c := e.Copy()
	c.Points[0].X = 9
	c.Fields["range"] = "20"

	assert.Equal(t, 1.0, e.Points[0].X)
	assert.Equal(t, "10", e.Field("range"))
}
