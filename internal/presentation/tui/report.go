package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/script"
)

// Report builds a markdown summary of a workspace snapshot and, when given, the steps
// that produced it.
func Report(snap *planner.Snapshot, outcomes []script.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Workspace `%s`\n\n", snap.ID)

	if len(outcomes) > 0 {
		sb.WriteString("## Steps\n\n")
		for _, o := range outcomes {
			fmt.Fprintf(&sb, "%d. **%s** %s\n", o.Step, o.Op, o.Detail)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Scene\n\n")
	counts := make(map[domain.Kind]int)
	for _, e := range snap.Entities {
		counts[e.Kind]++
	}
	if len(counts) == 0 {
		sb.WriteString("_empty_\n\n")
	} else {
		kinds := make([]domain.Kind, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		sb.WriteString("| Kind | Count |\n|---|---|\n")
		for _, k := range kinds {
			fmt.Fprintf(&sb, "| %s | %d |\n", k, counts[k])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Registries\n\n")
	for _, name := range domain.Registries() {
		recs := snap.Registries[name]
		ids := make([]string, 0, len(recs))
		for _, r := range recs {
			ids = append(ids, string(r.EntityID))
		}
		listed := "_none_"
		if len(ids) > 0 {
			listed = strings.Join(ids, ", ")
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", name, listed)
	}
	sb.WriteString("\n")

	sb.WriteString("## History\n\n")
	fmt.Fprintf(&sb, "- Undo: %d\n- Redo: %d\n", snap.History.UndoDepth, snap.History.RedoDepth)
	if n := len(snap.Undo); n > 0 {
		top := snap.Undo[n-1]
		fmt.Fprintf(&sb, "- Last: %s (%d entities)\n", top.Command, len(top.Entities))
	}
	if snap.Pending > 0 {
		fmt.Fprintf(&sb, "- Pending recomputes: %d\n", snap.Pending)
	}
	return sb.String()
}
