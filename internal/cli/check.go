package cli

import (
	"fmt"

	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/report"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [tool]",
	Short: "Check whether tools are installed and which version",
	Long: `Probe one tool, or every tool in the manifest, and print whether it is
installed and the version it reports. A tool whose version command prints
nothing usable is shown as installed with an unknown version.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeToolNames,
	RunE:              runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	descs := a.manifest.All()
	if len(args) == 1 {
		d, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		descs = []manifest.ToolDescriptor{d}
	}

	states, err := a.probeAll(descs)
	if err != nil {
		return err
	}
	if structured() {
		return writeStructured(cmd.OutOrStdout(), newStateViews(states))
	}
	if err := a.printer.WriteTools(states); err != nil {
		return err
	}
	if len(args) == 0 {
		r := report.Build(a.manifest, states)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d tools installed (%d%%)\n", r.Installed, r.Total, r.Coverage)
	}
	return nil
}
