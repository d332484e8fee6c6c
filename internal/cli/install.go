package cli

import (
	"fmt"

	"github.com/devkit-labs/devkit/internal/dispatch"
	"github.com/devkit-labs/devkit/internal/orchestrator"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/spf13/cobra"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install <tool>",
	Short: "Install one tool",
	Long: `Install a tool from the manifest using the first entry of its install chain
that applies to this host, falling back to later entries if one fails. A
tool that can only be installed by hand is reported with its download URL.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeMissingToolNames,
	RunE:              runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Print the commands that would run without running them")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	desc, err := a.lookup(args[0])
	if err != nil {
		return err
	}

	kind := a.resolver.Resolve()
	a.log.Debug().Str("tool", desc.Name).Str("backend", string(kind)).Msg("installing")

	out, err := a.orchestrator(a.dispatcher(installDryRun)).InstallOne(cmd.Context(), desc, kind, orchestrator.ForceAll)
	if err != nil {
		return exitError(1, "install of %s interrupted: %v", desc.Name, err)
	}
	if err := printOutcome(a, out); err != nil {
		return err
	}

	switch {
	case dispatch.IsBackendUnavailable(out.Result):
		return exitError(1, "no supported package manager found and %s has no manual install", desc.Name)
	case out.Result.Status == probe.StatusFailed:
		return exitError(1, "installing %s failed", desc.Name)
	case out.Result.Status == probe.StatusSkipped && !installDryRun && !structured():
		fmt.Fprintf(cmd.ErrOrStderr(), "%s was not installed automatically.\n", desc.Name)
	}
	return nil
}
