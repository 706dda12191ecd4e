package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cfglens/internal/log"
	"cfglens/pkg/analyze"
)

var complexityCmd = &cobra.Command{
	Use:   "complexity <path>",
	Short: "Report cyclomatic complexity and unreachable code",
	Long: `Computes cyclomatic complexity and unreachable graph nodes for every
function under the given path. The path may be a single source file or a
directory, in which case it is scanned recursively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		c, err := openCache(cfgFile)
		if err != nil {
			return err
		}
		analyzer := newAnalyzer(cfgFile, c)

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", path, err)
		}

		var files []analyze.FileAnalysis
		if info.IsDir() {
			spinner := log.NewProgressSpinner(fmt.Sprintf("Analyzing %s...", path))
			spinner.Start()
			files, err = analyzer.Directory(cmd.Context(), path)
			spinner.Stop()
		} else {
			var fa *analyze.FileAnalysis
			fa, err = analyzer.File(cmd.Context(), path)
			if fa != nil {
				files = []analyze.FileAnalysis{*fa}
			}
		}
		if err != nil {
			return err
		}
		persistCache(cfgFile, c)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(files, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		printComplexityTable(cmd, files)
		return nil
	},
}

func printComplexityTable(cmd *cobra.Command, files []analyze.FileAnalysis) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tFUNCTION\tCOMPLEXITY\tUNREACHABLE")
	for _, f := range files {
		for _, fn := range f.Functions {
			unreachable := "-"
			if len(fn.Complexity.Unreachable) > 0 {
				parts := make([]string, len(fn.Complexity.Unreachable))
				for i, id := range fn.Complexity.Unreachable {
					parts[i] = fmt.Sprintf("%d", id)
				}
				unreachable = strings.Join(parts, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Path, fn.Function, fn.Complexity.Cyclomatic, unreachable)
		}
	}
	w.Flush()
}

func init() {
	complexityCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(complexityCmd)
}
