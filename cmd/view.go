package cmd

import (
	"github.com/spf13/cobra"

	"clausestat.dev/pkg/clausestat/internal/domain"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <output-dir>",
		Short: "View the statistics of a finished run",
		Long:  "View the per-project statistics and category totals recorded in the summary of an output directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Output: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
