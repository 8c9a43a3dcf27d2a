package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/internal/presentation/graph"
	"github.com/aretw0/planner/internal/presentation/tui"
	"github.com/aretw0/planner/pkg/script"
)

// Output formats for Replay.
const (
	FormatReport  = "report"
	FormatJSON    = "json"
	FormatMermaid = "mermaid"
)

// ReplayOptions configures a script replay.
type ReplayOptions struct {
	ScriptPath string
	Format     string
	Width      int
	Workspace  WorkspaceOptions
}

// replayResult is the JSON document printed by the json format.
type replayResult struct {
	Steps    []script.Outcome  `json:"steps"`
	Snapshot *planner.Snapshot `json:"snapshot"`
}

// Replay loads a script, runs it against a fresh workspace and writes the final state.
// The state is written even when a step fails, so the caller sees how far it got.
func Replay(ctx context.Context, opts ReplayOptions, logger *slog.Logger, out io.Writer) error {
	s, err := script.Load(opts.ScriptPath)
	if err != nil {
		return err
	}
	id := s.Workspace
	if id == "" {
		id = "replay"
	}

	wsOpts := append(workspaceOptions(id, opts.Workspace, logger), s.Options()...)
	ws, err := planner.New(id, wsOpts...)
	if err != nil {
		return fmt.Errorf("error initializing workspace: %w", err)
	}
	defer ws.Close()

	outcomes, runErr := script.Run(ctx, ws, s)
	ws.Settle(ctx)

	snap, err := ws.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := write(out, opts, snap, outcomes); err != nil {
		return err
	}
	return runErr
}

func write(out io.Writer, opts ReplayOptions, snap *planner.Snapshot, outcomes []script.Outcome) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(replayResult{Steps: outcomes, Snapshot: snap})
	case FormatMermaid:
		_, err := io.WriteString(out, graph.GenerateMermaid(snap, graph.OverlayFromHistory(snap)))
		return err
	case FormatReport, "":
		rendered, err := tui.NewRenderer(opts.Width)(tui.Report(snap, outcomes))
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, rendered)
		return err
	default:
		return fmt.Errorf("unknown format %q (supported: report, json, mermaid)", opts.Format)
	}
}
