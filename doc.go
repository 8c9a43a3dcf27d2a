/*
Package planner is the scene-mutation journal of a floor-plan and device-layout editor.

A Workspace bundles one document: a retained scene of entities (shapes, devices,
region polygons, wall graphs, labels, derived overlays), the external registries kept
in sync with it (devices, zones, rooms, title blocks), and a bounded undo/redo history
that generalizes over every entity kind.

# Concept

Tools mutate the scene in one of two ways:

  - Free-form tools (shape stamping, text placement) insert directly. The auto-tracker
    observes the insertion and records it as an undoable Add.
  - Multi-entity tools (devices with labels, regions, wall chains) build an explicit
    command and submit it through the history, so one user action is one undo step.

Derived state (labels, coverage overlays, resize handles) travels with its owner and
is restored symmetrically. Coverage overlays are recomputed on a cooperative scheduler
after the geometry settles, never inline.

# Usage

	ws, err := planner.New("floor-1")
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close()

	ctx := context.Background()
	ap, _ := ws.PlaceDevice(ctx, planner.DeviceSpec{
		Position: domain.Point{X: 120, Y: 40},
		Label:    "AP lobby",
		Coverage: true,
	})
	ws.Settle(ctx) // coverage overlay is computed here

	ws.Delete(ctx, ap.ID)
	ws.Undo(ctx)

Hosts serving several callers (HTTP, MCP) serialize each workspace through
session.Manager; the workspace itself is single-threaded.
*/
package planner
