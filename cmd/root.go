// Package cmd provides the root command and CLI setup for clausestat.
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"clausestat.dev/pkg/clausestat/internal/adapter"
	"clausestat.dev/pkg/clausestat/internal/controller"
	"clausestat.dev/pkg/clausestat/internal/domain"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var syntaxAdapter adapter.SyntaxAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var extensionsFlag []string
var runParallelFlag int
var dumpCategoriesFlag bool
var logFileFlag string
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	syntaxAdapter = adapter.NewLocalCSharpAdapter()
	reportStore = adapter.NewLocalReportStore()
	workflow = domain.NewWorkflow(
		fsAdapter,
		syntaxAdapter,
		reportStore,
		ui,
		workflowOptions()...,
	)
}

const usageLine = "usage: clausestat <source-dir> <output-dir>"

const rootLongDescription = `clausestat classifies the Code Contracts clauses (Contract.Requires,
Contract.Ensures and Contract.Invariant) of a corpus of C# projects into
structural categories and writes per-project and aggregate statistics.

Every directory directly below <source-dir> is one project. Reports are
written to <output-dir>:
  - stats-by-project.csv          combined counts, one row per project
  - <project>.stats               per-kind counts of one project
  - uncategorized-contracts.txt   clauses no category matched
  - summary.yaml                  run summary, see "clausestat view"`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clausestat <source-dir> <output-dir>",
		Short: "Code Contracts clause classifier",
		Long:  rootLongDescription,
		Args:  cobra.ArbitraryArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			reportConfigLoadError()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				cmd.Println(usageLine)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, err := workflow.Run(ctx, domain.RunArgs{
				Source:         m.Path(args[0]),
				Output:         m.Path(args[1]),
				Exclude:        viper.GetStringSlice(excludeConfigKey),
				Extensions:     viper.GetStringSlice(extensionsConfigKey),
				DumpCategories: viper.GetBool(dumpCategoriesConfigKey),
				Threads:        viper.GetInt(runParallelConfigKey),
			})

			return err
		},
	}

	configureRootFlags(cmd)
	configureRunFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of projects classified concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().BoolVar(&dumpCategoriesFlag, dumpCategoriesFlagName, viper.GetBool(dumpCategoriesConfigKey), "write one clause listing per category")
	bindFlagToConfig(cmd.Flags().Lookup(dumpCategoriesFlagName), dumpCategoriesConfigKey)

	cmd.Flags().StringSliceVar(&extensionsFlag, extensionsFlagName, viper.GetStringSlice(extensionsConfigKey), "source file extensions to scan")
	bindFlagToConfig(cmd.Flags().Lookup(extensionsFlagName), extensionsConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
