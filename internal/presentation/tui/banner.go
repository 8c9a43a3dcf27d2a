package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Planner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   ___  _                              ", "#34d399"},
		{"  / _ \\| | __ _ _ __  _ __   ___ _ __ ", "#2dd4bf"},
		{" / /_)/| |/ _` | '_ \\| '_ \\ / _ \\ '__|", "#22d3ee"},
		{"/ ___/ | | (_| | | | | | | |  __/ |   ", "#38bdf8"},
		{"\\/     |_|\\__,_|_| |_|_| |_|\\___|_|   ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
