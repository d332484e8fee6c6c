package cli

import (
	"strings"

	"github.com/devkit-labs/devkit/internal/config"
	"github.com/devkit-labs/devkit/internal/manifest"
	"github.com/spf13/cobra"
)

// completeToolNames offers manifest tool names for the first argument.
func completeToolNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeTools(cmd, args, toComplete, func(manifest.ToolDescriptor) bool { return true })
}

// completeMissingToolNames offers only tools whose binary is not on PATH.
func completeMissingToolNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	runner := newRunner()
	return completeTools(cmd, args, toComplete, func(d manifest.ToolDescriptor) bool {
		_, err := runner.LookPath(d.Binary)
		return err != nil
	})
}

func completeTools(cmd *cobra.Command, args []string, toComplete string, keep func(manifest.ToolDescriptor) bool) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	config.Load()
	bindFlags(cmd)
	m, err := loadManifest()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, d := range m.All() {
		if strings.HasPrefix(d.Name, toComplete) && keep(d) {
			names = append(names, d.Name+"\t"+d.Description)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeCategories offers manifest categories for --category.
func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	config.Load()
	bindFlags(cmd)
	m, err := loadManifest()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, c := range m.Categories() {
		if strings.HasPrefix(c, toComplete) {
			out = append(out, c)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
