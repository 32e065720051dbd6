package cmd

import (
	"github.com/spf13/cobra"

	"clausestat.dev/pkg/clausestat/internal/domain"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

const defaultKinds = "all"

// classifyCmd represents the classify command.
var classifyCmd = newClassifyCmd()

func newClassifyCmd() *cobra.Command {
	var kinds string

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Classify the contract clauses of individual files",
		Long: `Print every top-level contract clause of the given C# files together with
the category it was assigned. Use --kinds to restrict the contract kinds, for
example --kinds requires,ensures.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := m.ParseContractKind(kinds)
			if err != nil {
				return err
			}

			return workflow.Classify(cmd.Context(), domain.ClassifyArgs{
				Paths: parsePaths(args),
				Kinds: parsed,
			})
		},
	}

	cmd.Flags().StringVar(&kinds, kindsFlagName, defaultKinds, "contract kinds to classify (requires, ensures, invariant, all)")

	return cmd
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
