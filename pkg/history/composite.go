package history

import (
	"context"
	"errors"
)

// CompositeCommand groups commands into one history entry. It orchestrates its
// children only: Execute runs them in order, Undo in exact reverse order.
// Both are best-effort: a failing child does not stop the others.
type CompositeCommand struct {
	commands []Command
}

// NewCompositeCommand creates a Composite of the given commands.
func NewCompositeCommand(commands ...Command) *CompositeCommand {
	c := &CompositeCommand{}
	for _, cmd := range commands {
		if cmd != nil {
			c.commands = append(c.commands, cmd)
		}
	}
	return c
}

// Commands returns the children in execution order.
func (c *CompositeCommand) Commands() []Command {
	return c.commands
}

// Len returns the number of children.
func (c *CompositeCommand) Len() int {
	return len(c.commands)
}

// Execute runs every child forward.
func (c *CompositeCommand) Execute(ctx context.Context) error {
	var errs []error
	for _, cmd := range c.commands {
		errs = append(errs, cmd.Execute(ctx))
	}
	return errors.Join(errs...)
}

// Undo reverts every child in reverse order.
func (c *CompositeCommand) Undo(ctx context.Context) error {
	var errs []error
	for i := len(c.commands) - 1; i >= 0; i-- {
		errs = append(errs, c.commands[i].Undo(ctx))
	}
	return errors.Join(errs...)
}
