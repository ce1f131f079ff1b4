package main

import (
	"fmt"
	"io"
	"os"

	"github.com/inhies/go-bytesize"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/scriptrt/heapgc/gc"
)

// stderrWriter routes through go-colorable so ANSI sequences survive on
// Windows consoles too, and is only asked to colorize when the underlying
// fd is actually a terminal (go-isatty), so piping heapgcstress into a file
// or another tool never embeds escape codes in the output.
func stderrWriter() (w io.Writer, color bool) {
	return colorable.NewColorableStderr(), isatty.IsTerminal(os.Stderr.Fd())
}

func printStats(w io.Writer, color bool, label string, s gc.Stats) {
	heading := label
	if color {
		heading = "\x1b[1m" + label + "\x1b[0m"
	}
	fmt.Fprintf(w, "%s: phase=%s objects=%d allocated=%s threshold=%s\n",
		heading, s.Phase, s.NumObjects,
		bytesize.New(float64(s.BytesAllocated)),
		bytesize.New(float64(s.Threshold)))
}
