package domain

import "errors"

// ErrEntityNotFound is returned when an entity ID cannot be found in the scene.
var ErrEntityNotFound = errors.New("entity not found")

// ErrUnknownKind is returned when a kind name does not match any known entity kind.
var ErrUnknownKind = errors.New("unknown entity kind")

// ErrWorkspaceNotFound is returned when a workspace ID cannot be found in the session manager.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ErrInvalidScript is returned when an editor script cannot be decoded.
var ErrInvalidScript = errors.New("invalid script")

// ErrNotStampable is returned when an entity cannot be inserted on its own, because it
// is a region, derived from another entity or never journaled.
var ErrNotStampable = errors.New("entity cannot be stamped")

// ErrNotApplied is returned when a tool's command was dropped because another command
// was executing.
var ErrNotApplied = errors.New("command not applied")
