package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

// newReplCmd builds an interactive loop accepting "run <scenario>", "list",
// and "quit" lines, tokenized with shlex so a future version can grow
// quoted-argument flags (e.g. `run sum --quiet`) without changing the
// parsing approach.
func newReplCmd(root *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "interactively run demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	return cmd
}

func runRepl(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "activeexpr repl — commands: list, run <scenario>, quit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(out, "parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "quit", "exit":
			return nil
		case "list":
			for _, s := range scenarios {
				fmt.Fprintf(out, "  %-12s %s\n", s.name, s.desc)
			}
		case "run":
			if len(tokens) != 2 {
				fmt.Fprintln(out, "usage: run <scenario>")
				continue
			}
			s, ok := findScenario(tokens[1])
			if !ok {
				fmt.Fprintf(out, "unknown scenario %q\n", tokens[1])
				continue
			}
			if err := s.run(out); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintf(out, "unknown command %q\n", tokens[0])
		}
	}
}
