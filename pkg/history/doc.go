/*
Package history implements the scene-mutation journal: undoable commands over a shared
scene, the auto-tracker that turns free-form insertions into history entries, the
bounded undo/redo manager and the deletion router.

Commands never clone entities. They hold references to scene-owned entities and
snapshot only the mutable properties needed to reverse a removal. Absence is always a
satisfied post-condition: removing a missing entity or inserting a present one is a
no-op, never an error.

The package is single-threaded. Hosts that serve several callers serialize every call
into one workspace (see session.Manager).
*/
package history
