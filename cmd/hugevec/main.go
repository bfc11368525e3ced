// Package main provides hugevec, a CLI for working with disk-backed
// sequence containers.
package main

import (
	"context"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/yashkanani/hugevector/internal/cli"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args))
}

// run is the testable entry point. Returns exit code.
func run(out, errOut io.Writer, args []string) int {
	o := cli.NewIO(out, errOut)

	globalFlags := flag.NewFlagSet("hugevec", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})
	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagTempDir := globalFlags.String("temp-dir", "", "Create backing files in `dir`")

	if err := globalFlags.Parse(args[1:]); err != nil {
		o.ErrPrintln("error:", err)
		printGlobalOptions(o)

		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	cfg, err := LoadConfig(workDir, *flagConfig, Config{TempDir: *flagTempDir})
	if err != nil {
		o.ErrPrintln("error:", err)
		printGlobalOptions(o)

		return 1
	}

	commands := []*cli.Command{
		replCommand(cfg),
		cleanCommand(),
		sqlCommand(cfg),
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		cli.Usage(o, commands)
		o.Println()
		printGlobalOptions(o)

		if len(commandAndArgs) == 0 && !*flagHelp {
			return 1
		}

		return 0
	}

	return cli.Dispatch(context.Background(), o, commands, commandAndArgs[0], commandAndArgs[1:])
}

func printGlobalOptions(o *cli.IO) {
	o.Println("Global flags:")
	o.Println("  -h, --help            Show help")
	o.Println("  -c, --config file     Use specified config file")
	o.Println("      --temp-dir dir    Create backing files in dir")
}
