package cmd

import (
	"github.com/spf13/cobra"
)

// categoriesCmd represents the categories command.
var categoriesCmd = newCategoriesCmd()

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the clause categories in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Categories(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
