package cli

import (
	"github.com/devkit-labs/devkit/internal/report"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every tool grouped by category with overall coverage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, a, err := buildReport(cmd)
		if err != nil {
			return err
		}
		if structured() {
			return writeStructured(cmd.OutOrStdout(), r)
		}
		return a.printer.WriteStatus(r)
	},
}

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List tools that are not installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, a, err := buildReport(cmd)
		if err != nil {
			return err
		}
		if structured() {
			return writeStructured(cmd.OutOrStdout(), r.Missing)
		}
		return a.printer.WriteMissing(r)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List tools grouped by category with installed markers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, a, err := buildReport(cmd)
		if err != nil {
			return err
		}
		if structured() {
			return writeStructured(cmd.OutOrStdout(), r.Categories)
		}
		return a.printer.WriteCategories(r)
	},
}

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List installed tools with their current versions",
	Long: `List installed tools with the version each one reports and how it is
updated. No remote lookup is made; run 'update' to let each package manager
decide whether a newer version exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		states, err := a.probeAll(a.manifest.All())
		if err != nil {
			return err
		}
		if structured() {
			views := newStateViews(states)
			installed := views[:0]
			for _, v := range views {
				if v.Installed {
					installed = append(installed, v)
				}
			}
			return writeStructured(cmd.OutOrStdout(), installed)
		}
		return a.printer.WriteOutdated(states)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, missingCmd, categoriesCmd, outdatedCmd)
}

// buildReport probes every tool and summarises the result.
func buildReport(cmd *cobra.Command) (report.Report, *app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return report.Report{}, nil, err
	}
	states, err := a.probeAll(a.manifest.All())
	if err != nil {
		return report.Report{}, nil, err
	}
	return report.Build(a.manifest, states), a, nil
}
