package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yashkanani/hugevector/internal/cli"
	"github.com/yashkanani/hugevector/pkg/sqlvector"
)

func sqlCommand(cfg Config) *cli.Command {
	return &cli.Command{
		Name:  "sql",
		Args:  "<count>",
		Short: "Exercise the SQLite-backed vector",
		Exec: func(_ context.Context, o *cli.IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument, got %d", len(args))
			}

			count, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || count <= 0 {
				return fmt.Errorf("count must be a positive integer, got %q", args[0])
			}

			var opts []sqlvector.Option
			if cfg.TempDir != "" {
				opts = append(opts, sqlvector.WithDir(cfg.TempDir))
			}

			vec, err := sqlvector.Open(opts...)
			if err != nil {
				return err
			}

			defer func() { _ = vec.Close() }()

			start := time.Now()

			for i := int64(0); i < count; i++ {
				if err := vec.PushBack(float64(i) * 1.5); err != nil {
					return err
				}
			}

			writeDur := time.Since(start)
			start = time.Now()

			// ROWID indices are 1-based.
			for i := int64(1); i <= count; i++ {
				want := float64(i-1) * 1.5

				got, err := vec.At(i)
				if err != nil {
					return err
				}

				if got != want {
					return fmt.Errorf("row %d: got %v, want %v", i, got, want)
				}
			}

			readDur := time.Since(start)

			n, err := vec.Len()
			if err != nil {
				return err
			}

			o.Printf("%d rows: %d writes in %v, %d verified reads in %v\n",
				n, count, writeDur, count, readDur)

			return nil
		},
	}
}
