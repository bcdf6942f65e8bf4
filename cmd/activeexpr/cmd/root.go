// Package cmd implements the activeexpr command-line front-end.
//
// Grounded on cuelang.org/go's cmd/cue/cmd: a thin Command wrapper around
// *cobra.Command, with Main doing the process-exit-code translation so
// tests can call Main directly without touching os.Exit.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command wraps the root cobra.Command.
type Command struct {
	*cobra.Command
}

// New builds the root command tree.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "activeexpr",
		Short:         "run and inspect activeexpr demo scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c := &Command{Command: root}
	root.AddCommand(newListCmd(c))
	root.AddCommand(newDemoCmd(c))
	root.AddCommand(newReplCmd(c))
	root.SetArgs(args)
	return c
}

// Main is the process entry point: build the command tree from os.Args and
// run it, printing any error and translating it to a process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
