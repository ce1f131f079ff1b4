package main

import (
	"math/rand"
	"unsafe"

	"github.com/scriptrt/heapgc/example/script"
	"github.com/scriptrt/heapgc/gc"
)

// defaultRand is used by subcommands that don't expose their own --seed
// flag; its output only ever shapes which synthetic objects point at which,
// never the semantics under test.
func defaultRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// buildSyntheticGraph allocates a mixed workload of plain objects, arrays
// and strings, cross-linking a random subset of them so a stress run
// exercises tracing and not just flat allocation. roots randomly chosen
// objects (picked with replacement, so some may repeat) are pushed onto
// ctx.Roots; the rest are left to be collected unless something else keeps
// them alive.
func buildSyntheticGraph(ctx *script.Context, rng *rand.Rand, objects, roots int) error {
	nodes := make([]unsafe.Pointer, 0, objects)
	for i := 0; i < objects; i++ {
		var obj unsafe.Pointer
		var err error
		switch i % 3 {
		case 0:
			obj, err = ctx.NewPlainObject(2)
		case 1:
			obj, err = ctx.NewArray([]gc.Value{gc.Undefined(), gc.Undefined()})
		case 2:
			obj, err = ctx.NewString([]byte("stress"))
		}
		if err != nil {
			return err
		}
		nodes = append(nodes, obj)
	}

	for i, obj := range nodes {
		switch i % 3 {
		case 0:
			if len(nodes) > 0 {
				ctx.SetPlainObjectSlot(obj, 0, gc.Pointer(nodes[rng.Intn(len(nodes))]))
			}
		case 1:
			if len(nodes) > 0 {
				ctx.SetArrayItem(obj, 0, gc.Pointer(nodes[rng.Intn(len(nodes))]))
			}
		}
	}

	if roots > objects {
		roots = objects
	}
	for i := 0; i < roots; i++ {
		ctx.Roots.New(gc.Pointer(nodes[rng.Intn(len(nodes))]))
	}
	return nil
}
