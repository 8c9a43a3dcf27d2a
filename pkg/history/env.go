package history

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
	"github.com/aretw0/planner/pkg/walls"
	"github.com/google/uuid"
)

// Recomputer schedules deferred recomputation of derived overlays.
// It is satisfied by coverage.Recomputer.
type Recomputer interface {
	Schedule(id domain.EntityID)
	Cancel(id domain.EntityID)
	ScheduleAll() int
}

// Env holds the collaborators shared by every command of a workspace.
// Scene and Registries are required; everything else may be left zero.
type Env struct {
	Scene      ports.Scene
	Registries ports.RegistryStore
	Walls      *walls.Graph
	Coverage   Recomputer
	Hooks      domain.LifecycleHooks
	Logger     *slog.Logger

	// NewID generates identities for synthesized entities. Defaults to UUIDs.
	NewID func() domain.EntityID
}

func (env *Env) logger() *slog.Logger {
	return logging.OrNop(env.Logger)
}

func (env *Env) newID() domain.EntityID {
	if env.NewID != nil {
		return env.NewID()
	}
	return domain.EntityID(uuid.NewString())
}

func (env *Env) scheduleRecompute(id domain.EntityID) {
	if env.Coverage != nil {
		env.Coverage.Schedule(id)
	}
}

func (env *Env) cancelRecompute(id domain.EntityID) {
	if env.Coverage != nil {
		env.Coverage.Cancel(id)
	}
}

// itemsChanged broadcasts a registry membership change.
func (env *Env) itemsChanged(ctx context.Context, names []domain.RegistryName) {
	if len(names) == 0 || env.Hooks.OnItemsChanged == nil {
		return
	}
	env.Hooks.OnItemsChanged(ctx, &domain.ItemsChangedEvent{
		Timestamp:  time.Now(),
		Registries: names,
	})
}

// registriesOf returns the distinct registries the given entities belong to, in
// canonical order.
func registriesOf(entities []*domain.Entity) []domain.RegistryName {
	var names []domain.RegistryName
	for _, name := range domain.Registries() {
		for _, e := range entities {
			if n, ok := e.Kind.Registry(); ok && n == name {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

func containsID(ids []domain.EntityID, id domain.EntityID) bool {
	return slices.Contains(ids, id)
}
