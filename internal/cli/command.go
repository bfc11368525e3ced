// Package cli implements the small command layer of the hugevec binary.
package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one hugevec subcommand. The binary has only a handful, so
// there is no nesting and no long-form help: a command is its name, an
// argument synopsis, one line of description, optional flags, and the
// function that runs it.
type Command struct {
	// Name is the subcommand name as typed on the command line.
	Name string

	// Args is the argument synopsis shown in help, e.g. "<count>".
	// Empty for commands that take no arguments.
	Args string

	// Short is the one-line description shown in the command table.
	Short string

	// Flags holds the command's flag definitions. Nil means no flags.
	Flags *flag.FlagSet

	// Exec runs the command with the positional arguments left over
	// after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// synopsis is the "name [flags] args" form used in help output.
func (c *Command) synopsis() string {
	parts := []string{c.Name}

	if c.Flags != nil && c.Flags.HasFlags() {
		parts = append(parts, "[flags]")
	}

	if c.Args != "" {
		parts = append(parts, c.Args)
	}

	return strings.Join(parts, " ")
}

// Usage prints the command table.
func Usage(o *IO, commands []*Command) {
	o.Println("Usage: hugevec [global flags] <command> [args]")
	o.Println()
	o.Println("Commands:")

	for _, c := range commands {
		o.Printf("  %-18s %s\n", c.synopsis(), c.Short)
	}
}

// Dispatch looks up name among commands, parses its flags, and runs it.
// Returns the process exit code. Unknown names and flag errors print to
// stderr; --help on a command that has flags prints its synopsis and
// flags. Commands without a FlagSet receive all arguments, --help
// included, unparsed.
func Dispatch(ctx context.Context, o *IO, commands []*Command, name string, args []string) int {
	var cmd *Command

	for _, c := range commands {
		if c.Name == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		o.ErrPrintln("error: unknown command:", name)
		Usage(o, commands)

		return 1
	}

	rest := args

	if cmd.Flags != nil {
		cmd.Flags.SetOutput(io.Discard)

		if err := cmd.Flags.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				cmd.printHelp(o)

				return 0
			}

			o.ErrPrintln("error:", err)
			cmd.printHelp(o)

			return 1
		}

		rest = cmd.Flags.Args()
	}

	if err := cmd.Exec(ctx, o, rest); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}

func (c *Command) printHelp(o *IO) {
	o.Println("Usage: hugevec " + c.synopsis())
	o.Println()
	o.Println(c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}
