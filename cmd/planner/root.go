package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/planner/internal/cli"
	"github.com/aretw0/planner/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Planner is an editing journal for floor-plan scenes",
	Long: `Planner keeps an undo/redo history of every change made to a floor-plan scene:
devices, zones, rooms, walls and annotations. Scripts can be replayed offline,
and workspaces can be served over HTTP or MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Log every journal event")
	rootCmd.PersistentFlags().Int("max-history", 0, "Undo stack bound (0 keeps the default)")
}

// newLogger honours --debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

func workspaceOptions(cmd *cobra.Command) cli.WorkspaceOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	maxHistory, _ := cmd.Flags().GetInt("max-history")
	return cli.WorkspaceOptions{Debug: debug, MaxHistory: maxHistory}
}
