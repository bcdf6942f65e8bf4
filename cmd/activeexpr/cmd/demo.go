package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDemoCmd(root *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo <scenario>",
		Short: "run one demo scenario and print its notification trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := findScenario(args[0])
			if !ok {
				return fmt.Errorf("unknown scenario %q (see: activeexpr list)", args[0])
			}
			return s.run(cmd.OutOrStdout())
		},
	}
	return cmd
}
