package main

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/sigurn/crc16"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/scriptrt/heapgc/example/script"
	"github.com/scriptrt/heapgc/gc"
)

// snapshot is what `dump` writes to disk: a point-in-time summary of a
// heap, not a full serialization of live objects — the collaborator
// contract has no notion of object identity stable enough to round-trip
// pointers across a process boundary.
type snapshot struct {
	Phase          string `yaml:"phase"`
	NumObjects     int    `yaml:"numObjects"`
	BytesAllocated uint64 `yaml:"bytesAllocated"`
	Threshold      uint64 `yaml:"threshold"`
}

var crc16Table = crc16.MakeTable(crc16.CRC16_XMODEM)

func writeSnapshot(path string, s gc.Stats) error {
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("another heapgcstress process holds the lock on %s", path)
	}
	defer fl.Unlock()

	body, err := yaml.Marshal(snapshot{
		Phase:          s.Phase.String(),
		NumObjects:     s.NumObjects,
		BytesAllocated: uint64(s.BytesAllocated),
		Threshold:      uint64(s.Threshold),
	})
	if err != nil {
		return err
	}

	checksum := crc16.Checksum(body, crc16Table)
	body = append(body, []byte(fmt.Sprintf("# crc16: %04x\n", checksum))...)

	return os.WriteFile(path, body, 0o644)
}

// verifySnapshot recomputes the checksum over everything but the trailer
// line and reports whether it still matches.
func verifySnapshot(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	nl := lastNewline(data)
	if nl < 0 {
		return false, fmt.Errorf("%s has no checksum trailer", path)
	}
	body, trailer := data[:nl+1], data[nl+1:]

	var want uint16
	if _, err := fmt.Sscanf(string(trailer), "# crc16: %04x", &want); err != nil {
		return false, fmt.Errorf("%s: malformed checksum trailer: %w", path, err)
	}
	return crc16.Checksum(body, crc16Table) == want, nil
}

func lastNewline(b []byte) int {
	for i := len(b) - 2; i >= 0; i-- {
		if b[i] == '\n' {
			return i
		}
	}
	return -1
}

func newDumpCmd() *cobra.Command {
	var configPath, out string
	var objects, roots int

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a heap snapshot to disk with a crc16 integrity trailer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := script.NewContext(cfg)
			if err := buildSyntheticGraph(ctx, defaultRand(), objects, roots); err != nil {
				return err
			}
			ctx.Heap.Start(ctx)
			ctx.Heap.Finish()

			if err := writeSnapshot(out, ctx.Heap.Stats()); err != nil {
				return err
			}

			ok, err := verifySnapshot(out)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("snapshot written to %s failed its own checksum verification", out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote verified snapshot to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config overlay")
	cmd.Flags().StringVar(&out, "out", "heap.snapshot", "output path")
	cmd.Flags().IntVar(&objects, "objects", 1000, "number of objects to allocate before dumping")
	cmd.Flags().IntVar(&roots, "roots", 50, "number of objects to root")
	return cmd
}
