package ports

import (
	"context"

	"github.com/aretw0/planner/pkg/domain"
)

// Registry is an ordered collection of records keyed by entity identity.
type Registry interface {
	// Add appends the record unless a record for the same entity already exists.
	// Returns true if the record was added.
	Add(ctx context.Context, rec domain.Record) (bool, error)

	// Contains reports whether a record for the entity exists.
	Contains(ctx context.Context, id domain.EntityID) (bool, error)

	// RemoveWhere deletes every record matching the predicate and returns how many were removed.
	RemoveWhere(ctx context.Context, match func(domain.Record) bool) (int, error)

	// List returns the records in insertion order.
	List(ctx context.Context) ([]domain.Record, error)
}

// RegistryStore resolves the named registries of a workspace.
type RegistryStore interface {
	Registry(name domain.RegistryName) Registry
}
