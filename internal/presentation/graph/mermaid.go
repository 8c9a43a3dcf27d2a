package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Touched are the entities of the most recent history entry.
	Touched []domain.EntityID
}

// OverlayFromHistory marks the entities of the top undo entry.
func OverlayFromHistory(snap *planner.Snapshot) *GraphOverlay {
	if len(snap.Undo) == 0 {
		return nil
	}
	return &GraphOverlay{Touched: snap.Undo[len(snap.Undo)-1].Entities}
}

// GenerateMermaid produces a Mermaid flowchart of a workspace snapshot.
// It applies semantic styling:
// - Wall node: ((Circle))
// - Device: [[Subroutine]]
// - Region: [/Parallelogram/]
// - Label: >Flag]
// - Default: [Rectangle]
// Wall edges are solid links, ownership (labels, overlays) is dotted.
func GenerateMermaid(snap *planner.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	present := make(map[domain.EntityID]bool, len(snap.Entities))
	for _, e := range snap.Entities {
		present[e.ID] = true
	}

	for _, e := range snap.Entities {
		if e.Kind == domain.KindWallEdge {
			continue
		}
		safeID := sanitizeMermaidID(string(e.ID))

		opener, closer := "[", "]"
		switch {
		case e.Kind == domain.KindWallNode:
			opener, closer = "((", "))"
		case e.Kind == domain.KindDevice:
			opener, closer = "[[", "]]"
		case e.Kind.IsRegion():
			opener, closer = "[/", "/]"
		case e.Kind == domain.KindLabel:
			opener, closer = ">", "]"
		}

		text := string(e.ID)
		if e.Text != "" {
			text = fmt.Sprintf("%s <br/> %s", e.ID, strings.ReplaceAll(e.Text, "\"", "'"))
		}
		if e.Hidden {
			text += " (hidden)"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, text, closer))

		if e.Owner != "" && present[e.Owner] {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", sanitizeMermaidID(string(e.Owner)), safeID))
		}
	}

	for _, w := range snap.Walls {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --- %s\n",
			sanitizeMermaidID(string(w.From)), w.ID, sanitizeMermaidID(string(w.To))))
	}

	if overlay != nil && len(overlay.Touched) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef touched fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Touched {
			// Edges are links, not nodes, and deleted entities have nothing to style.
			if !present[id] {
				continue
			}
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] && !isEdge(snap, id) {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s touched;\n", safeID))
			}
		}
	}

	return sb.String()
}

func isEdge(snap *planner.Snapshot, id domain.EntityID) bool {
	for _, w := range snap.Walls {
		if w.ID == id {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
