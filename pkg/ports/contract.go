package ports

import (
	"context"
	"testing"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRegistryContract runs a suite of tests to verify that a RegistryStore implementation
// adheres to the defined interface contract. Each subtest uses its own registry name
// suffix-free, so the store must start empty.
func RunRegistryContract(t *testing.T, store RegistryStore) {
	ctx := context.Background()

	t.Run("Add is identity-guarded", func(t *testing.T) {
		reg := store.Registry(domain.RegistryZones)
		rec := domain.Record{EntityID: "z1", Kind: domain.KindZone, Name: "Lobby"}

		added, err := reg.Add(ctx, rec)
		require.NoError(t, err)
		assert.True(t, added)

		// Same identity with a different payload is still a duplicate.
		added, err = reg.Add(ctx, domain.Record{EntityID: "z1", Kind: domain.KindZone, Name: "Renamed"})
		require.NoError(t, err)
		assert.False(t, added)

		records, err := reg.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Lobby", records[0].Name)

		ok, err := reg.Contains(ctx, "z1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("List keeps insertion order", func(t *testing.T) {
		reg := store.Registry(domain.RegistryRooms)
		for _, id := range []domain.EntityID{"r3", "r1", "r2"} {
			_, err := reg.Add(ctx, domain.Record{EntityID: id, Kind: domain.KindRoom})
			require.NoError(t, err)
		}

		records, err := reg.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, domain.EntityID("r3"), records[0].EntityID)
		assert.Equal(t, domain.EntityID("r1"), records[1].EntityID)
		assert.Equal(t, domain.EntityID("r2"), records[2].EntityID)
	})

	t.Run("RemoveWhere", func(t *testing.T) {
		reg := store.Registry(domain.RegistryDevices)
		_, _ = reg.Add(ctx, domain.Record{EntityID: "d1", Kind: domain.KindDevice, Fields: map[string]string{"range": "10"}})
		_, _ = reg.Add(ctx, domain.Record{EntityID: "d2", Kind: domain.KindDevice})

		n, err := reg.RemoveWhere(ctx, func(r domain.Record) bool { return r.EntityID == "d1" })
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		// Absence is not an error.
		n, err = reg.RemoveWhere(ctx, func(r domain.Record) bool { return r.EntityID == "d1" })
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		records, err := reg.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.EntityID("d2"), records[0].EntityID)

		ok, err := reg.Contains(ctx, "d1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Registries are independent", func(t *testing.T) {
		reg := store.Registry(domain.RegistryTitleBlocks)
		records, err := reg.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

// RunSceneContract runs a suite of tests to verify that a Scene implementation adheres to
// the defined interface contract. newScene must return an empty scene on every call.
func RunSceneContract(t *testing.T, newScene func() Scene) {
	t.Run("Insert is idempotent", func(t *testing.T) {
		s := newScene()
		e := &domain.Entity{ID: "s1", Kind: domain.KindShape}

		assert.True(t, s.Insert(e))
		assert.False(t, s.Insert(e))
		assert.Len(t, s.List(), 1)

		got, ok := s.Get("s1")
		require.True(t, ok)
		assert.Same(t, e, got)
	})

	t.Run("Remove tolerates absence", func(t *testing.T) {
		s := newScene()
		s.Insert(&domain.Entity{ID: "s1", Kind: domain.KindShape})

		assert.True(t, s.Remove("s1"))
		assert.False(t, s.Remove("s1"))
		assert.False(t, s.Contains("s1"))
		assert.Empty(t, s.List())
	})

	t.Run("List keeps insertion order", func(t *testing.T) {
		s := newScene()
		for _, id := range []domain.EntityID{"c", "a", "b"} {
			s.Insert(&domain.Entity{ID: id, Kind: domain.KindShape})
		}
		assert.Equal(t, []domain.EntityID{"c", "a", "b"}, domain.IDs(s.List()))
	})

	t.Run("Observers see insertions", func(t *testing.T) {
		s := newScene()
		var seen []domain.EntityID
		cancel := s.OnInsert(func(e *domain.Entity) { seen = append(seen, e.ID) })

		s.Insert(&domain.Entity{ID: "a", Kind: domain.KindShape})
		s.Insert(&domain.Entity{ID: "a", Kind: domain.KindShape}) // duplicate, not observed
		cancel()
		s.Insert(&domain.Entity{ID: "b", Kind: domain.KindShape})

		assert.Equal(t, []domain.EntityID{"a"}, seen)
	})
}
