/*
Package ports defines the driven ports (interfaces) of the planner journal.

These interfaces decouple the undo/redo core from the canvas, the external registries
and the host event loop, allowing the journal to run against an in-memory scene in
tests and against a real canvas or a shared registry backend in production.

# Key Interfaces

  - Scene: the retained scene graph (insert, remove, list, redraw, insertion observers).
  - Registry / RegistryStore: identity-keyed collections kept in sync with the scene.
  - Scheduler: deferred work with cancellation handles.
*/
package ports
