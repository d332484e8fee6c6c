package cli

import (
	"fmt"

	"github.com/devkit-labs/devkit/internal/config"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/devkit-labs/devkit/internal/orchestrator"
	"github.com/devkit-labs/devkit/internal/probe"
	"github.com/devkit-labs/devkit/internal/report"
	"github.com/spf13/cobra"
)

var (
	updateForce    bool
	updateYes      bool
	updateDryRun   bool
	updateCategory string
)

var updateCmd = &cobra.Command{
	Use:   "update [tool]",
	Short: "Install missing tools and update installed ones",
	Long: `Without arguments, walk every tool in the manifest in order: missing tools
are offered for install and installed tools for update. Each action is
confirmed interactively unless --force or --yes-to-all is given (or DEVKIT_YES
is set). A failing tool is reported in the summary and never stops the run.

With a tool name, only that tool is processed.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeToolNames,
	RunE:              runUpdate,
}

func init() {
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Proceed without asking for confirmation")
	updateCmd.Flags().BoolVarP(&updateYes, "yes-to-all", "y", false, "Answer yes to every confirmation")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Print the commands that would run without running them")
	updateCmd.Flags().StringVarP(&updateCategory, "category", "c", "", "Only process tools in this category")
	_ = updateCmd.RegisterFlagCompletionFunc("category", completeCategories)
	rootCmd.AddCommand(updateCmd)
}

// updateResult is the structured output of a batch update.
type updateResult struct {
	Summary orchestrator.Summary   `json:"summary" yaml:"summary"`
	Changes []report.VersionChange `json:"changes" yaml:"changes"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	policy := orchestrator.ParsePolicy(updateForce, updateYes || config.AutoYes())
	kind := a.resolver.Resolve()
	if kind == manifest.BackendNone {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no supported package manager found; only manual and driver-based installs are possible.")
	}
	d := a.dispatcher(updateDryRun)

	if len(args) == 1 {
		desc, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		out, err := a.orchestrator(d).RunOne(cmd.Context(), desc, kind, policy)
		if err != nil {
			return exitError(1, "update of %s interrupted: %v", desc.Name, err)
		}
		if err := printOutcome(a, out); err != nil {
			return err
		}
		if out.Result.Status == probe.StatusFailed {
			return exitError(1, "updating %s failed", desc.Name)
		}
		return nil
	}

	descs := a.manifest.All()
	if updateCategory != "" {
		descs = a.manifest.ByCategory(updateCategory)
		if len(descs) == 0 {
			return exitError(1, "no tools in category %q", updateCategory)
		}
	}

	var opts []orchestrator.Option
	if !structured() {
		opts = append(opts, orchestrator.WithProgress(func(o orchestrator.Outcome) {
			_ = a.printer.WriteOutcome(o)
		}))
	}
	sum := a.orchestrator(d, opts...).Run(cmd.Context(), descs, kind, policy)
	changes := report.DiffVersions(sum.States())

	if structured() {
		if err := writeStructured(cmd.OutOrStdout(), updateResult{Summary: sum, Changes: changes}); err != nil {
			return err
		}
	} else {
		if err := a.printer.WriteSummary(sum); err != nil {
			return err
		}
		if err := a.printer.WriteChanges(changes); err != nil {
			return err
		}
	}

	if sum.Interrupted {
		return exitError(1, "interrupted")
	}
	return nil
}

// printOutcome prints a single-tool result in the selected format.
func printOutcome(a *app, o orchestrator.Outcome) error {
	if structured() {
		return writeStructured(a.cmd.OutOrStdout(), o)
	}
	return a.printer.WriteOutcome(o)
}
