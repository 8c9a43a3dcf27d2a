/*
Package domain contains the core domain models of the planner editor journal.

It defines the entities that live in the scene, the closed set of entity kinds, the
records kept by external registries (zone, room, title-block and device lists) and the
lifecycle hooks used to observe the journal. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Entity: any scene object (shape, device, region, wall node/edge, label, overlay).
  - Kind: the closed tagged variant assigned at creation and matched exhaustively.
  - Record: a registry entry keyed by entity identity.
  - HistoryState: the undo/redo affordance reported to the host UI.
*/
package domain
