package script

import (
	"context"
	"fmt"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/domain"
)

// StampSpec describes a free-form entity inserted by a stamp step.
type StampSpec struct {
	ID       domain.EntityID   `mapstructure:"id"`
	Kind     domain.Kind       `mapstructure:"kind"`
	Position domain.Point      `mapstructure:"position"`
	Points   []domain.Point    `mapstructure:"points"`
	Scale    float64           `mapstructure:"scale"`
	Angle    float64           `mapstructure:"angle"`
	Text     string            `mapstructure:"text"`
	Fields   map[string]string `mapstructure:"fields"`
}

type hideSpec struct {
	ID     domain.EntityID `mapstructure:"id"`
	Hidden *bool           `mapstructure:"hidden"`
}

// Outcome reports what a step did.
type Outcome struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Detail string `json:"detail"`
}

// Run replays every step against ws, stopping at the first failing step.
func Run(ctx context.Context, ws *planner.Workspace, s *Script) ([]Outcome, error) {
	var outcomes []Outcome
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		detail, err := apply(ctx, ws, step)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s, line %d): %w", i+1, step.Op, step.Line, err)
		}
		outcomes = append(outcomes, Outcome{Step: i + 1, Op: step.Op, Detail: detail})
	}
	return outcomes, nil
}

func apply(ctx context.Context, ws *planner.Workspace, step Step) (string, error) {
	switch step.Op {
	case OpStamp:
		var spec StampSpec
		if err := decode(step.Args, &spec); err != nil {
			return "", invalid(err)
		}
		e, err := ws.Stamp(ctx, &domain.Entity{
			ID: spec.ID, Kind: spec.Kind, Position: spec.Position, Points: spec.Points,
			Scale: spec.Scale, Angle: spec.Angle, Text: spec.Text, Fields: spec.Fields,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("stamped %s %s", e.Kind, e.ID), nil

	case OpDevice:
		var spec planner.DeviceSpec
		if err := decode(step.Args, &spec); err != nil {
			return "", invalid(err)
		}
		d, err := ws.PlaceDevice(ctx, spec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("placed device %s", d.ID), nil

	case OpRegion:
		var spec planner.RegionSpec
		if err := decode(step.Args, &spec); err != nil {
			return "", invalid(err)
		}
		r, err := ws.DrawRegion(ctx, spec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("drew %s %s", r.Kind, r.ID), nil

	case OpWalls:
		var spec planner.WallSpec
		if err := decode(step.Args, &spec); err != nil {
			return "", invalid(err)
		}
		nodes, err := ws.DrawWalls(ctx, spec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("drew %d wall nodes", len(nodes)), nil

	case OpDelete:
		var id domain.EntityID
		if err := decode(step.Args, &id); err != nil {
			return "", invalid(err)
		}
		ok, err := ws.Delete(ctx, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("%s is not deletable", id), nil
		}
		return fmt.Sprintf("deleted %s", id), nil

	case OpHideLabel:
		spec := hideSpec{}
		if id, ok := step.Args.(string); ok {
			spec.ID = domain.EntityID(id)
		} else if err := decode(step.Args, &spec); err != nil {
			return "", invalid(err)
		}
		hidden := spec.Hidden == nil || *spec.Hidden
		if err := ws.HideLabel(spec.ID, hidden); err != nil {
			return "", err
		}
		return fmt.Sprintf("label of %s hidden=%t", spec.ID, hidden), nil

	case OpUndo, OpRedo:
		n := 1
		if step.Args != nil {
			if err := decode(step.Args, &n); err != nil {
				return "", invalid(err)
			}
		}
		replay := ws.Undo
		if step.Op == OpRedo {
			replay = ws.Redo
		}
		done := 0
		for done < n && replay(ctx) {
			done++
		}
		return fmt.Sprintf("%s x%d", step.Op, done), nil

	case OpSettle:
		return fmt.Sprintf("ran %d deferred tasks", ws.Settle(ctx)), nil
	}
	return "", invalid(fmt.Errorf("unknown operation %q", step.Op))
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidScript, err)
}
