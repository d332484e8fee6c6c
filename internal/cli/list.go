package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tools in the manifest",
	Long: `List every tool the manifest declares with its category, install chain and
description. Use --category to show one category (or category:subcategory).`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only list tools in this category")
	_ = listCmd.RegisterFlagCompletionFunc("category", completeCategories)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	descs := a.manifest.All()
	if listCategory != "" {
		descs = a.manifest.ByCategory(listCategory)
	}

	if structured() {
		views := make([]toolView, 0, len(descs))
		for _, d := range descs {
			views = append(views, newToolView(d))
		}
		return writeStructured(cmd.OutOrStdout(), views)
	}

	if len(descs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No tools in category %q.\n", listCategory)
		return nil
	}
	return a.printer.WriteInventory(descs)
}
