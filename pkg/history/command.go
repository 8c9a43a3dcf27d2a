package history

import (
	"context"
	"fmt"

	"github.com/aretw0/planner/pkg/domain"
)

// Command is a reversible scene mutation.
//
// Execute and Undo are idempotent with respect to scene membership. They return an
// error only when a backing collaborator (a remote registry) fails; the scene part of
// the mutation is applied regardless.
type Command interface {
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
}

// Entry describes a command for logs, events and history listings.
type Entry struct {
	Command  string            `json:"command"`
	Entities []domain.EntityID `json:"entities,omitempty"`
}

// Describe returns the Entry of a command.
func Describe(cmd Command) Entry {
	switch c := cmd.(type) {
	case *AddCommand:
		return Entry{Command: "add", Entities: domain.IDs(c.all())}
	case *RemoveCommand:
		return Entry{Command: "remove", Entities: domain.IDs(c.all())}
	case *CompositeCommand:
		var ids []domain.EntityID
		for _, sub := range c.commands {
			for _, id := range Describe(sub).Entities {
				if !containsID(ids, id) {
					ids = append(ids, id)
				}
			}
		}
		return Entry{Command: "composite", Entities: ids}
	case nil:
		return Entry{Command: "nil"}
	}
	return Entry{Command: fmt.Sprintf("%T", cmd)}
}
