package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/planner/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <script.yaml>",
	Short: "Export the scene graph visualization",
	Long: `Replays a script and outputs a Mermaid diagram (graph TD) of the final scene:
wall nodes and edges, devices, regions and their labels. Entities touched by the
last history entry are highlighted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := cli.Replay(context.Background(), cli.ReplayOptions{
			ScriptPath: args[0],
			Format:     cli.FormatMermaid,
			Workspace:  workspaceOptions(cmd),
		}, newLogger(cmd), os.Stdout)
		if err != nil {
			fmt.Printf("Error generating graph: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
