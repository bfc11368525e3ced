package main

import (
	"context"
	"time"

	"github.com/briandowns/spinner"
	flag "github.com/spf13/pflag"

	"github.com/yashkanani/hugevector"
	"github.com/yashkanani/hugevector/internal/cli"
)

func cleanCommand() *cli.Command {
	flags := flag.NewFlagSet("clean", flag.ContinueOnError)
	quiet := flags.BoolP("quiet", "q", false, "Suppress the progress spinner")

	return &cli.Command{
		Name:  "clean",
		Short: "Remove leftover backing files from crashed runs",
		Flags: flags,
		Exec: func(_ context.Context, o *cli.IO, _ []string) error {
			var spin *spinner.Spinner

			if !*quiet {
				spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				spin.Prefix = "Scanning temp directory... "
				spin.Start()
			}

			removed := hugevector.CleanUp()

			if spin != nil {
				spin.Stop()
			}

			o.Printf("removed %d leftover backing file(s)\n", removed)

			return nil
		},
	}
}
