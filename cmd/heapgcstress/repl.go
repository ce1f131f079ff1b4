package main

import (
	"fmt"
	"io"
	"strconv"
	"unsafe"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/scriptrt/heapgc/example/script"
	"github.com/scriptrt/heapgc/gc"
)

// replSession tracks the objects a user has allocated in this session so
// they can be referred to by a small integer handle instead of a raw
// pointer, which would not survive being typed back in.
type replSession struct {
	ctx     *script.Context
	handles []unsafe.Pointer
}

func (s *replSession) alloc(kind, value string) (int, error) {
	var obj unsafe.Pointer
	var err error
	switch kind {
	case "object":
		obj, err = s.ctx.NewPlainObject(1)
		if err == nil && value != "" {
			n, perr := strconv.ParseInt(value, 10, 64)
			if perr != nil {
				return 0, fmt.Errorf("object value must be an integer: %w", perr)
			}
			s.ctx.SetPlainObjectSlot(obj, 0, gc.Int(n))
		}
	case "string":
		obj, err = s.ctx.NewString([]byte(value))
	case "array":
		obj, err = s.ctx.NewArray(nil)
	default:
		return 0, fmt.Errorf("unknown kind %q (want object, string, or array)", kind)
	}
	if err != nil {
		return 0, err
	}
	s.handles = append(s.handles, obj)
	return len(s.handles) - 1, nil
}

func (s *replSession) resolve(arg string) (unsafe.Pointer, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(s.handles) {
		return nil, fmt.Errorf("no such handle %q", arg)
	}
	return s.handles[i], nil
}

func newReplCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively drive one heap: alloc, root, step, finish, stats, dump, quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			session := &replSession{ctx: script.NewContext(cfg)}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "heapgc> ",
				HistoryFile: "",
			})
			if err != nil {
				return fmt.Errorf("starting readline: %w", err)
			}
			defer rl.Close()

			w, color := stderrWriter()
			return runReplLoop(rl, session, w, color)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config overlay")
	return cmd
}

func runReplLoop(rl *readline.Instance, s *replSession, w io.Writer, color bool) error {
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(w, "parse error: %v\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}

		if quit := dispatchReplCommand(fields, s, w, color); quit {
			return nil
		}
	}
}

func dispatchReplCommand(fields []string, s *replSession, w io.Writer, color bool) (quit bool) {
	switch fields[0] {
	case "quit", "exit":
		return true

	case "alloc":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: alloc <object|string|array> [value]")
			return false
		}
		value := ""
		if len(fields) > 2 {
			value = fields[2]
		}
		id, err := s.alloc(fields[1], value)
		if err != nil {
			fmt.Fprintf(w, "alloc: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "#%d\n", id)

	case "root":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: root <handle>")
			return false
		}
		obj, err := s.resolve(fields[1])
		if err != nil {
			fmt.Fprintf(w, "root: %v\n", err)
			return false
		}
		s.ctx.Roots.New(gc.Pointer(obj))

	case "step":
		if s.ctx.Heap.Phase() == gc.Idle {
			s.ctx.Heap.Start(s.ctx)
		}
		s.ctx.Heap.Step()

	case "finish":
		if s.ctx.Heap.Phase() == gc.Idle {
			s.ctx.Heap.Start(s.ctx)
		}
		steps := s.ctx.Heap.Finish()
		fmt.Fprintf(w, "finished in %d steps\n", steps)

	case "stats":
		printStats(w, color, "heap", s.ctx.Heap.Stats())

	case "dump":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: dump <path>")
			return false
		}
		if err := writeSnapshot(fields[1], s.ctx.Heap.Stats()); err != nil {
			fmt.Fprintf(w, "dump: %v\n", err)
		}

	default:
		fmt.Fprintf(w, "unknown command %q\n", fields[0])
	}
	return false
}
