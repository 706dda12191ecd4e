// Package commands provides the CLI commands for the cfglens tool.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"cfglens/internal/config"
	"cfglens/internal/log"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cfglens",
	Short: "cfglens - Control-flow analysis for source code",
	Long: `cfglens builds control-flow graphs, basic-block graphs, and complexity
metrics from source code, across Rust, Python, Go, JavaScript, TypeScript,
Java, C and C++.

Commands:
  cfg         Build the control-flow graph for functions in a file
  blocks      Build the basic-block graph for functions in a file
  complexity  Report cyclomatic complexity and unreachable code
  export      Export analysis records as JSONL
  init        Create a cfglens configuration interactively

Use "cfglens [command] --help" for more information about a command.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func setupLogging(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	logger := log.Default()
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.SetJSONOutput(jsonLogs)
	return nil
}

// loadConfig loads the layered configuration, honoring --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func init() {
	RootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	RootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	RootCmd.PersistentFlags().String("config", "", "Config file path")
}
