package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/planner/internal/cli"
	"github.com/aretw0/planner/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay an editor script and print the resulting workspace",
	Long: `Runs every step of a YAML script (stamps, devices, regions, walls, deletes,
undo and redo) against a fresh workspace, settles deferred coverage work and prints
a report of the final state.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		width, _ := cmd.Flags().GetInt("width")
		quiet, _ := cmd.Flags().GetBool("quiet")
		if width == 0 {
			width = terminalWidth()
		}

		if format == cli.FormatReport && !quiet {
			tui.PrintBanner(os.Stdout)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := cli.Replay(ctx, cli.ReplayOptions{
			ScriptPath: args[0],
			Format:     format,
			Width:      width,
			Workspace:  workspaceOptions(cmd),
		}, newLogger(cmd), os.Stdout)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringP("format", "f", cli.FormatReport, "Output format: report, json or mermaid")
	replayCmd.Flags().Int("width", 0, "Word wrap column for the report (0 follows the terminal)")
	replayCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}

// terminalWidth returns the stdout terminal width, or 80 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
