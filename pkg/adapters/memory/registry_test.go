package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/planner/pkg/adapters/memory"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_Contract(t *testing.T) {
	store := memory.NewRegistryStore()
	ports.RunRegistryContract(t, store)
}

func TestMemoryRegistry_ListIsolation(t *testing.T) {
	ctx := context.Background()
	reg := memory.NewRegistryStore().Registry(domain.RegistryDevices)
	_, err := reg.Add(ctx, domain.Record{EntityID: "d1", Fields: map[string]string{"model": "ap"}})
	require.NoError(t, err)

	records, err := reg.List(ctx)
	require.NoError(t, err)
	records[0].Fields["model"] = "changed"

	records, err = reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ap", records[0].Fields["model"])
}
