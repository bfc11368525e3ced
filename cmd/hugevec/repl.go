package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/yashkanani/hugevector"
	"github.com/yashkanani/hugevector/internal/cli"
)

func replCommand(cfg Config) *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Short: "Interactively drive a float64 container",
		Exec: func(_ context.Context, o *cli.IO, _ []string) error {
			r := &repl{cfg: cfg, out: o}

			return r.run()
		},
	}
}

// repl is the interactive command loop.
type repl struct {
	cfg    Config
	out    *cli.IO
	active *hugevector.Container[float64]
	forked *hugevector.Container[float64]
	liner  *liner.State
}

func (r *repl) run() error {
	var opts []hugevector.Option
	if r.cfg.TempDir != "" {
		opts = append(opts, hugevector.WithTempDir(r.cfg.TempDir))
	}

	cont, err := hugevector.New[float64](hugevector.Float64Codec{}, opts...)
	if err != nil {
		return err
	}

	r.active = cont

	defer func() {
		_ = r.active.Close()

		if r.forked != nil {
			_ = r.forked.Close()
		}
	}()

	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)

	if r.cfg.HistoryFile != "" {
		if f, err := os.Open(r.cfg.HistoryFile); err == nil {
			r.liner.ReadHistory(f)
			f.Close()
		}
	}

	r.out.Println("hugevec - disk-backed float64 container")
	r.out.Println("Type 'help' for available commands.")
	r.out.Println()

	for {
		line, err := r.liner.Prompt("hugevec> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				r.out.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			r.out.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "push":
			r.cmdPush(args)

		case "at":
			r.cmdAt(args)

		case "insert":
			r.cmdInsert(args)

		case "rm", "remove":
			r.cmdRemove(args)

		case "clear":
			r.report(r.active.Clear())

		case "len", "count":
			r.out.Printf("%d\n", r.active.Len())

		case "first":
			r.cmdEnd(r.active.First)

		case "last":
			r.cmdEnd(r.active.Last)

		case "fork":
			r.cmdFork()

		case "swap":
			r.cmdSwap()

		case "save":
			r.cmdSave(args)

		case "load":
			r.cmdLoad(args)

		case "bench":
			r.cmdBench(args)

		default:
			r.out.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *repl) saveHistory() {
	if r.cfg.HistoryFile == "" {
		return
	}

	if f, err := os.Create(r.cfg.HistoryFile); err == nil {
		r.liner.WriteHistory(f)
		f.Close()
	}
}

func (r *repl) printHelp() {
	r.out.Println("Commands:")
	r.out.Println("  push <v> [v...]   Append values")
	r.out.Println("  at <i>            Read value at index")
	r.out.Println("  insert <i> <v>    Insert value at index")
	r.out.Println("  rm <i>            Remove value at index")
	r.out.Println("  clear             Remove all values")
	r.out.Println("  len               Number of values")
	r.out.Println("  first / last      Read the ends")
	r.out.Println("  fork              Snapshot into a second handle (copy-on-write)")
	r.out.Println("  swap              Exchange active and forked handles")
	r.out.Println("  save <path>       Write a snapshot file")
	r.out.Println("  load <path>       Replace contents from a snapshot file")
	r.out.Println("  bench <n>         Append and read back n values, timed")
	r.out.Println("  exit              Leave the repl")
}

func (r *repl) report(err error) {
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.out.Println("ok")
}

func (r *repl) cmdPush(args []string) {
	if len(args) == 0 {
		r.out.Println("usage: push <v> [v...]")

		return
	}

	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			r.out.Println("error:", err)

			return
		}

		if err := r.active.PushBack(v); err != nil {
			r.out.Println("error:", err)

			return
		}
	}

	r.out.Printf("ok, len=%d\n", r.active.Len())
}

func (r *repl) index(arg string, max int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= max {
		r.out.Printf("index must be in [0, %d)\n", max)

		return 0, false
	}

	return i, true
}

func (r *repl) cmdAt(args []string) {
	if len(args) != 1 {
		r.out.Println("usage: at <i>")

		return
	}

	i, ok := r.index(args[0], r.active.Len())
	if !ok {
		return
	}

	v, err := r.active.At(i)
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.out.Printf("%v\n", v)
}

func (r *repl) cmdInsert(args []string) {
	if len(args) != 2 {
		r.out.Println("usage: insert <i> <v>")

		return
	}

	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i > r.active.Len() {
		r.out.Printf("index must be in [0, %d]\n", r.active.Len())

		return
	}

	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.report(r.active.Insert(i, v))
}

func (r *repl) cmdRemove(args []string) {
	if len(args) != 1 {
		r.out.Println("usage: rm <i>")

		return
	}

	i, ok := r.index(args[0], r.active.Len())
	if !ok {
		return
	}

	r.report(r.active.RemoveAt(i))
}

func (r *repl) cmdEnd(read func() (float64, error)) {
	if r.active.IsEmpty() {
		r.out.Println("container is empty")

		return
	}

	v, err := read()
	if err != nil {
		r.out.Println("error:", err)

		return
	}

	r.out.Printf("%v\n", v)
}

func (r *repl) cmdFork() {
	if r.forked != nil {
		_ = r.forked.Close()
	}

	r.forked = r.active.Clone()
	r.out.Printf("forked %d values, mutations no longer shared\n", r.forked.Len())
}

func (r *repl) cmdSwap() {
	if r.forked == nil {
		r.out.Println("nothing forked yet")

		return
	}

	r.active.Swap(r.forked)
	r.out.Printf("swapped, active len=%d\n", r.active.Len())
}

func (r *repl) cmdSave(args []string) {
	if len(args) != 1 {
		r.out.Println("usage: save <path>")

		return
	}

	r.report(r.active.SaveFile(args[0]))
}

func (r *repl) cmdLoad(args []string) {
	if len(args) != 1 {
		r.out.Println("usage: load <path>")

		return
	}

	r.report(r.active.LoadFile(args[0]))
}

func (r *repl) cmdBench(args []string) {
	if len(args) != 1 {
		r.out.Println("usage: bench <n>")

		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		r.out.Println("n must be a positive integer")

		return
	}

	start := time.Now()

	for i := 0; i < n; i++ {
		if err := r.active.PushBack(float64(i)); err != nil {
			r.out.Println("error:", err)

			return
		}
	}

	writeDur := time.Since(start)
	base := r.active.Len() - n

	start = time.Now()

	for i := 0; i < n; i++ {
		if _, err := r.active.At(base + i); err != nil {
			r.out.Println("error:", err)

			return
		}
	}

	readDur := time.Since(start)

	r.out.Printf("%d writes in %v (%.0f/s), %d reads in %v (%.0f/s)\n",
		n, writeDur, float64(n)/writeDur.Seconds(),
		n, readDur, float64(n)/readDur.Seconds())
}
