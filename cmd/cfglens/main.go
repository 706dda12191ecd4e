// Package main implements the cfglens CLI.
// It provides commands for building control-flow and basic-block graphs,
// computing complexity metrics, and exporting analysis records.
package main

import (
	"fmt"
	"os"

	"cfglens/cmd/cfglens/commands"
	"cfglens/internal/scanner"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Add languages command
	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range scanner.SupportedLanguages() {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
			return nil
		},
	}

	commands.RootCmd.AddCommand(languagesCmd)

	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`cfglens version {{.Version}}
`)
	commands.RootCmd.Version = version

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
