package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scenarioListing struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func newListCmd(root *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list the available demo scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			listing := make([]scenarioListing, len(scenarios))
			for i, s := range scenarios {
				listing[i] = scenarioListing{Name: s.name, Description: s.desc}
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(listing)
		},
	}
	return cmd
}
