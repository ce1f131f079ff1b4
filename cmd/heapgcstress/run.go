package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/scriptrt/heapgc/example/script"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var objects, roots int
	var seed int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Allocate a synthetic object graph and run it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx := script.NewContext(cfg)
			rng := rand.New(rand.NewSource(seed))
			if err := buildSyntheticGraph(ctx, rng, objects, roots); err != nil {
				return fmt.Errorf("building workload: %w", err)
			}

			w, color := stderrWriter()
			printStats(w, color, "before", ctx.Heap.Stats())

			ctx.Heap.Start(ctx)
			steps := ctx.Heap.Finish()

			printStats(w, color, "after ", ctx.Heap.Stats())
			fmt.Fprintf(w, "collection finished in %d steps\n", steps)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config overlay")
	cmd.Flags().IntVar(&objects, "objects", 1000, "number of objects to allocate")
	cmd.Flags().IntVar(&roots, "roots", 50, "number of objects to root")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the synthetic graph")
	return cmd
}
