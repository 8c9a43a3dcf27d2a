package coverage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/planner/pkg/adapters/memory"
	"github.com/aretw0/planner/pkg/coverage"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockModel records which entities were recomputed.
type MockModel struct {
	mock.Mock
}

func (m *MockModel) Outline(e *domain.Entity) ([]domain.Point, error) {
	args := m.Called(e.ID)
	pts, _ := args.Get(0).([]domain.Point)
	return pts, args.Error(1)
}

func setup(opts ...coverage.Option) (*memory.Scene, *scheduler.Loop, *coverage.Recomputer) {
	scene := memory.NewScene()
	loop := scheduler.NewLoop()
	return scene, loop, coverage.New(scene, loop, opts...)
}

func TestRecomputer_CreatesOverlayAfterSettle(t *testing.T) {
	ctx := context.Background()
	scene, loop, r := setup()
	scene.Insert(&domain.Entity{
		ID: "ap1", Kind: domain.KindDevice, Coverage: true,
		Position: domain.Point{X: 10, Y: 10}, Scale: 2,
		Fields: map[string]string{"range": "5"},
	})

	r.Schedule("ap1")
	assert.True(t, r.IsPending("ap1"))
	assert.False(t, scene.Contains(coverage.OverlayID("ap1")), "recompute is deferred")

	loop.Drain(ctx)

	overlay, ok := scene.Get(coverage.OverlayID("ap1"))
	require.True(t, ok)
	assert.Equal(t, domain.KindOverlay, overlay.Kind)
	assert.Equal(t, domain.EntityID("ap1"), overlay.Owner)
	assert.True(t, overlay.Transient)
	require.Len(t, overlay.Points, coverage.DefaultModel.Segments)
	assert.InDelta(t, 20.0, overlay.Points[0].X, 1e-9) // 10 + range 5 * scale 2
	assert.False(t, r.IsPending("ap1"))
}

func TestRecomputer_RescheduleReplacesPending(t *testing.T) {
	ctx := context.Background()
	model := &MockModel{}
	model.On("Outline", domain.EntityID("ap1")).Return([]domain.Point{{X: 1}, {X: 2}, {X: 3}}, nil).Once()

	scene, loop, r := setup(coverage.WithModel(model))
	scene.Insert(&domain.Entity{ID: "ap1", Kind: domain.KindDevice, Coverage: true})

	r.Schedule("ap1")
	r.Schedule("ap1")
	loop.Drain(ctx)

	model.AssertExpectations(t)
}

func TestRecomputer_StaleTaskFindsNothing(t *testing.T) {
	ctx := context.Background()
	var events []*domain.RecomputeEvent
	scene, loop, r := setup(coverage.WithLifecycleHooks(domain.LifecycleHooks{
		OnRecompute: func(ctx context.Context, e *domain.RecomputeEvent) { events = append(events, e) },
	}))
	scene.Insert(&domain.Entity{ID: "ap1", Kind: domain.KindDevice, Coverage: true})

	r.Schedule("ap1")
	scene.Remove("ap1")
	loop.Drain(ctx)

	require.Len(t, events, 1)
	assert.True(t, events[0].Skipped)
	assert.False(t, scene.Contains(coverage.OverlayID("ap1")))
}

func TestRecomputer_CancelDropsTask(t *testing.T) {
	ctx := context.Background()
	scene, loop, r := setup()
	scene.Insert(&domain.Entity{ID: "ap1", Kind: domain.KindDevice, Coverage: true})

	r.Schedule("ap1")
	r.Cancel("ap1")

	assert.Equal(t, 0, loop.Drain(ctx))
	assert.False(t, scene.Contains(coverage.OverlayID("ap1")))
}

func TestRecomputer_FailureDoesNotBlockPass(t *testing.T) {
	ctx := context.Background()
	model := &MockModel{}
	model.On("Outline", domain.EntityID("bad")).Return(nil, errors.New("missing geometry"))
	model.On("Outline", domain.EntityID("good")).Return([]domain.Point{{X: 1}, {X: 2}, {X: 3}}, nil)

	var failed []domain.EntityID
	scene, loop, r := setup(
		coverage.WithModel(model),
		coverage.WithLifecycleHooks(domain.LifecycleHooks{
			OnRecompute: func(ctx context.Context, e *domain.RecomputeEvent) {
				if e.Err != nil {
					failed = append(failed, e.EntityID)
				}
			},
		}),
	)
	scene.Insert(&domain.Entity{ID: "bad", Kind: domain.KindDevice, Coverage: true})
	scene.Insert(&domain.Entity{ID: "good", Kind: domain.KindDevice, Coverage: true})
	scene.Insert(&domain.Entity{ID: "plain", Kind: domain.KindDevice})

	assert.Equal(t, 2, r.ScheduleAll())
	loop.Drain(ctx)

	assert.Equal(t, []domain.EntityID{"bad"}, failed)
	assert.True(t, scene.Contains(coverage.OverlayID("good")))
	assert.False(t, scene.Contains(coverage.OverlayID("bad")))
}

func TestCircleModel_InvalidRange(t *testing.T) {
	_, err := coverage.DefaultModel.Outline(&domain.Entity{Fields: map[string]string{"range": "far"}})
	assert.Error(t, err)

	_, err = coverage.DefaultModel.Outline(&domain.Entity{Fields: map[string]string{"range": "-1"}})
	assert.Error(t, err)
}
