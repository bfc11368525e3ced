package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "--help"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage: hugevec")
	assert.Contains(t, out.String(), "repl")
	assert.Contains(t, out.String(), "clean")
	assert.Contains(t, out.String(), "sql")
}

func TestRunNoCommand(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec"})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Usage: hugevec")
}

func TestRunCommandHelp(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "clean", "--help"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage: hugevec clean [flags]")
	assert.Contains(t, out.String(), "quiet")
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "bogus"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown command: bogus")
}

func TestRunSQLBadArgs(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "sql"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "error:")

	code = run(&out, &errOut, []string{"hugevec", "sql", "-7"})
	assert.Equal(t, 1, code)
}

func TestRunSQLRoundTrip(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "sql", "5"})
	assert.Equal(t, 0, code, "stderr: %s", errOut.String())
	assert.Contains(t, out.String(), "5 rows")
}

func TestRunCleanQuiet(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := run(&out, &errOut, []string{"hugevec", "clean", "--quiet"})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "leftover backing file(s)")
}
