package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const develVersion = "(devel)"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the clausestat version",
		Long:  "Displays the clausestat build version, VCS revision and the Go version it was built with.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			for _, line := range versionLines(info, ok) {
				cmd.Println(line)
			}
		},
	}
}

// versionLines renders the build information of the running binary.
func versionLines(info *debug.BuildInfo, ok bool) []string {
	if !ok || info == nil {
		return []string{"clausestat version: unknown"}
	}

	version := info.Main.Version
	if version == "" {
		version = develVersion
	}

	lines := []string{"clausestat version\t" + version}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			lines = append(lines, "revision\t"+setting.Value)
		case "vcs.modified":
			if setting.Value == "true" {
				lines = append(lines, "modified\ttrue")
			}
		}
	}

	return append(lines, "go version\t"+info.GoVersion)
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
