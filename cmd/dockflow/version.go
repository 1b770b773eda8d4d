package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information about the dockflow CLI.`,
	Example: `  # Show version
  dockflow version

  # Show version in JSON format
  dockflow version --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), output)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func writeVersion(w io.Writer, format string) error {
	if format == jsonFormat || format == yamlFormat {
		return writeStructured(w, format, map[string]string{
			"version":   version,
			"commit":    commit,
			"buildDate": buildDate,
			"goVersion": goVersion,
		})
	}

	fmt.Fprintf(w, "dockflow version %s\n", version)
	if version != "dev" {
		fmt.Fprintf(w, "  commit:     %s\n", commit)
		fmt.Fprintf(w, "  built:      %s\n", buildDate)
		fmt.Fprintf(w, "  go version: %s\n", goVersion)
	}
	return nil
}
