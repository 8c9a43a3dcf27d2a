package history

import (
	"context"

	"github.com/aretw0/planner/pkg/domain"
)

// labelOffset is the distance between a device and its synthesized label, before
// scaling.
const labelOffset = 20.0

// AddCommand inserts a primary entity and its related entities.
type AddCommand struct {
	members
}

// NewAddCommand creates an Add for primary and the given related entities.
func NewAddCommand(env *Env, primary *domain.Entity, related ...*domain.Entity) *AddCommand {
	return &AddCommand{members: newMembers(env, primary, related)}
}

// Primary returns the primary entity.
func (c *AddCommand) Primary() *domain.Entity {
	return c.primary
}

// Related returns the related entities, including any synthesized label.
func (c *AddCommand) Related() []*domain.Entity {
	return c.related
}

// Execute inserts every member, registers registry-bearing kinds and schedules the
// overlay recompute of coverage-bearing members.
func (c *AddCommand) Execute(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	c.ensureLabel()
	c.insert()
	c.attachWalls()
	err := c.register(ctx, domain.NewRecord)
	c.scheduleCoverage()
	c.env.itemsChanged(ctx, registriesOf(c.all()))
	c.env.Scene.RequestRedraw()
	return err
}

// Adopt applies the membership side effects of members that were inserted directly
// into the scene: a synthesized label, registry records, wall index entries and
// overlay recompute. Callers hold the manager guard so the label is not tracked on
// its own.
func (c *AddCommand) Adopt(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	c.ensureLabel()
	c.insert()
	c.attachWalls()
	err := c.register(ctx, domain.NewRecord)
	c.scheduleCoverage()
	c.env.itemsChanged(ctx, registriesOf(c.all()))
	return err
}

// Undo removes every member and cleans up after them.
func (c *AddCommand) Undo(ctx context.Context) error {
	if c.primary == nil {
		return nil
	}
	c.remove()
	err := c.performCleanup(ctx)
	c.env.itemsChanged(ctx, registriesOf(c.all()))
	c.env.Scene.RequestRedraw()
	return err
}

// ensureLabel synthesizes the label of a device that lost it, from the stored label
// text and scale. The new label joins the related set so Undo removes it too.
func (c *AddCommand) ensureLabel() {
	p := c.primary
	if p.Kind != domain.KindDevice || p.LabelText == "" || c.hasLabel() {
		return
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	label := &domain.Entity{
		ID:        c.env.newID(),
		Kind:      domain.KindLabel,
		Finalized: true,
		Position:  p.Position.Add(domain.Point{Y: labelOffset * scale}),
		Scale:     scale,
		Text:      p.LabelText,
		Owner:     p.ID,
	}
	p.Label = label.ID
	c.related = append(c.related, label)
	c.env.logger().Debug("Synthesized device label", "entity_id", p.ID, "label_id", label.ID)
}

func (c *AddCommand) hasLabel() bool {
	for _, r := range c.related {
		if r.Kind == domain.KindLabel {
			return true
		}
	}
	if c.primary.Label != "" && c.env.Scene.Contains(c.primary.Label) {
		return true
	}
	for _, e := range c.env.Scene.List() {
		if e.Kind == domain.KindLabel && e.Owner == c.primary.ID {
			return true
		}
	}
	return false
}
