package cli

import (
	"fmt"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:               "which <tool>",
	Short:             "Show where a tool is installed and how it is managed",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeToolNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		desc, err := a.lookup(args[0])
		if err != nil {
			return err
		}

		states, err := a.probeAll([]manifest.ToolDescriptor{desc})
		if err != nil {
			return err
		}
		if structured() {
			return writeStructured(cmd.OutOrStdout(), newStateViews(states)[0])
		}

		s := states[0]
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Name:     %s\n", desc.Name)
		fmt.Fprintf(w, "Category: %s\n", desc.Tag())
		if desc.Description != "" {
			fmt.Fprintf(w, "About:    %s\n", desc.Description)
		}
		if !s.Installed {
			fmt.Fprintf(w, "Status:   not installed\n")
			return nil
		}
		version := s.Version
		if version == "" {
			version = "unknown"
		}
		fmt.Fprintf(w, "Path:     %s\n", s.Path)
		fmt.Fprintf(w, "Version:  %s\n", version)
		fmt.Fprintf(w, "Update:   %s\n", desc.Update)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whichCmd)
}
