// Command heapgcstress drives the gc package the way an embedder would:
// allocating a synthetic object graph, triggering collections, and
// reporting what survived. It is a test harness, not part of the managed
// heap itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "heapgcstress",
		Short: "Stress-test and inspect a gc.Heap",
	}
	root.AddCommand(newRunCmd(), newReplCmd(), newDumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
