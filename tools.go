package planner

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
)

// DeviceSpec describes a device placed by the device tool.
type DeviceSpec struct {
	ID       domain.EntityID   `json:"id,omitempty" mapstructure:"id"`
	Position domain.Point      `json:"position" mapstructure:"position"`
	Scale    float64           `json:"scale,omitempty" mapstructure:"scale"`
	Label    string            `json:"label,omitempty" mapstructure:"label"`
	Coverage bool              `json:"coverage,omitempty" mapstructure:"coverage"`
	Fields   map[string]string `json:"fields,omitempty" mapstructure:"fields"`
}

// RegionSpec describes a polygon region drawn by the region tools.
type RegionSpec struct {
	ID     domain.EntityID `json:"id,omitempty" mapstructure:"id"`
	Kind   domain.Kind     `json:"kind" mapstructure:"kind"`
	Points []domain.Point  `json:"points" mapstructure:"points"`
	Label  string          `json:"label,omitempty" mapstructure:"label"`
}

// WallSpec describes a wall chain drawn by the wall tool.
type WallSpec struct {
	Points []domain.Point `json:"points" mapstructure:"points"`
	Closed bool           `json:"closed,omitempty" mapstructure:"closed"`
}

// labelGap is the vertical distance between a device and its label, before scaling.
const labelGap = 20.0

// Stamp inserts a free-form entity directly into the scene, the way shape and text
// tools do. The auto-tracker turns the insertion into a history entry, so only kinds
// it tracks are accepted: regions go through DrawRegion, and labels, overlays,
// handles, guides, backgrounds, aggregates and transient entities are refused.
func (w *Workspace) Stamp(ctx context.Context, e *domain.Entity) (*domain.Entity, error) {
	if e == nil {
		return nil, fmt.Errorf("nil entity")
	}
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, e.Kind)
	}
	switch {
	case e.Kind.IsRegion():
		return nil, fmt.Errorf("%w: %q is a region, use DrawRegion", domain.ErrNotStampable, e.Kind)
	case e.Kind.IsDerived(), e.Kind.IsTransient(), e.Kind == domain.KindAggregate:
		return nil, fmt.Errorf("%w: %q", domain.ErrNotStampable, e.Kind)
	case e.Transient:
		return nil, fmt.Errorf("%w: transient %s", domain.ErrNotStampable, e.Kind)
	}
	if w.manager.Executing() {
		return nil, fmt.Errorf("%w: stamp %s during another command", domain.ErrNotApplied, e.Kind)
	}
	if e.ID == "" {
		e.ID = w.newID()
	}
	e.Finalized = true
	if !w.scene.Insert(e) {
		return nil, fmt.Errorf("entity %s already present", e.ID)
	}
	w.scene.RequestRedraw()
	return e, nil
}

// PlaceDevice creates a device and its label as one Add command.
func (w *Workspace) PlaceDevice(ctx context.Context, spec DeviceSpec) (*domain.Entity, error) {
	scale := spec.Scale
	if scale <= 0 {
		scale = 1
	}
	d := &domain.Entity{
		ID:        spec.ID,
		Kind:      domain.KindDevice,
		Finalized: true,
		Position:  spec.Position,
		Scale:     scale,
		LabelText: spec.Label,
		Coverage:  spec.Coverage,
		Fields:    maps.Clone(spec.Fields),
	}
	if d.ID == "" {
		d.ID = w.newID()
	}
	if w.scene.Contains(d.ID) {
		return nil, fmt.Errorf("entity %s already present", d.ID)
	}

	var related []*domain.Entity
	if spec.Label != "" {
		label := &domain.Entity{
			ID:        w.newID(),
			Kind:      domain.KindLabel,
			Finalized: true,
			Position:  d.Position.Add(domain.Point{Y: labelGap * scale}),
			Scale:     scale,
			Text:      spec.Label,
			Owner:     d.ID,
		}
		d.Label = label.ID
		related = append(related, label)
	}

	if err := w.execute(ctx, history.NewAddCommand(w.env, d, related...)); err != nil {
		return nil, err
	}
	return d, nil
}

// DrawRegion finishes a region polygon and its label. The preview is inserted with
// the guard suppressed; the result is submitted as a Composite of two Adds.
func (w *Workspace) DrawRegion(ctx context.Context, spec RegionSpec) (*domain.Entity, error) {
	if !spec.Kind.IsRegion() {
		return nil, fmt.Errorf("%w: %q is not a region kind", domain.ErrUnknownKind, spec.Kind)
	}
	if len(spec.Points) < 3 {
		return nil, fmt.Errorf("region needs at least 3 points, got %d", len(spec.Points))
	}
	region := &domain.Entity{
		ID:        spec.ID,
		Kind:      spec.Kind,
		Points:    append([]domain.Point(nil), spec.Points...),
		Position:  centroid(spec.Points),
		LabelText: spec.Label,
	}
	if region.ID == "" {
		region.ID = w.newID()
	}
	if w.scene.Contains(region.ID) {
		return nil, fmt.Errorf("entity %s already present", region.ID)
	}

	// Mid-construction the polygon is in the scene but not finalized.
	w.manager.Suppress(func() {
		w.scene.Insert(region)
	})
	w.scene.Remove(region.ID)
	region.Finalized = true

	cmds := []history.Command{history.NewAddCommand(w.env, region)}
	if spec.Label != "" {
		label := &domain.Entity{
			ID:        w.newID(),
			Kind:      domain.KindLabel,
			Finalized: true,
			Position:  region.Position,
			Text:      spec.Label,
			Owner:     region.ID,
		}
		region.Label = label.ID
		cmds = append(cmds, history.NewAddCommand(w.env, label))
	}
	if err := w.execute(ctx, history.NewCompositeCommand(cmds...)); err != nil {
		return nil, err
	}
	return region, nil
}

// DrawWalls builds a chain of wall nodes joined by edges, closing the loop if asked,
// as one Composite. Returns the node IDs in drawing order.
func (w *Workspace) DrawWalls(ctx context.Context, spec WallSpec) ([]domain.EntityID, error) {
	if len(spec.Points) < 2 {
		return nil, fmt.Errorf("walls need at least 2 points, got %d", len(spec.Points))
	}

	nodes := make([]*domain.Entity, len(spec.Points))
	var cmds []history.Command
	for i, p := range spec.Points {
		nodes[i] = &domain.Entity{ID: w.newID(), Kind: domain.KindWallNode, Finalized: true, Position: p}
		cmds = append(cmds, history.NewAddCommand(w.env, nodes[i]))
	}
	join := func(a, b *domain.Entity) {
		edge := &domain.Entity{
			ID:        w.newID(),
			Kind:      domain.KindWallEdge,
			Finalized: true,
			Position:  a.Position,
			Points:    []domain.Point{a.Position, b.Position},
			Endpoints: [2]domain.EntityID{a.ID, b.ID},
		}
		cmds = append(cmds, history.NewAddCommand(w.env, edge))
	}
	for i := 1; i < len(nodes); i++ {
		join(nodes[i-1], nodes[i])
	}
	if spec.Closed && len(nodes) > 2 {
		join(nodes[len(nodes)-1], nodes[0])
	}

	// Construction guides shown while drawing never reach the history.
	guides := make([]*domain.Entity, 0, len(spec.Points))
	w.manager.Suppress(func() {
		for _, n := range nodes {
			g := &domain.Entity{ID: w.newID(), Kind: domain.KindGuide, Transient: true, Position: n.Position}
			w.scene.Insert(g)
			guides = append(guides, g)
		}
	})
	for _, g := range guides {
		w.scene.Remove(g.ID)
	}

	if err := w.execute(ctx, history.NewCompositeCommand(cmds...)); err != nil {
		return nil, err
	}
	return domain.IDs(nodes), nil
}

// execute submits a tool command, failing when the manager dropped it.
func (w *Workspace) execute(ctx context.Context, cmd history.Command) error {
	if !w.manager.ExecuteCommand(ctx, cmd) {
		return fmt.Errorf("%w: %s during another command", domain.ErrNotApplied, history.Describe(cmd).Command)
	}
	return nil
}

// Delete routes the deletion of an entity. Reports false when the entity is not
// deletable by itself (handles, overlays, guides).
func (w *Workspace) Delete(ctx context.Context, id domain.EntityID) (bool, error) {
	e, err := w.Get(id)
	if err != nil {
		return false, err
	}
	return w.router.Delete(ctx, e), nil
}

// HideLabel toggles the visibility of the label of a device or region. This is a
// direct property change and is not journaled.
func (w *Workspace) HideLabel(id domain.EntityID, hidden bool) error {
	e, err := w.Get(id)
	if err != nil {
		return err
	}
	related := w.resolver.FindRelated(e)
	if len(related) == 0 {
		return fmt.Errorf("%w: no label for %s", domain.ErrEntityNotFound, id)
	}
	for _, label := range related {
		label.Hidden = hidden
	}
	w.scene.RequestRedraw()
	return nil
}

func centroid(pts []domain.Point) domain.Point {
	var c domain.Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return domain.Point{X: c.X / n, Y: c.Y / n}
}
