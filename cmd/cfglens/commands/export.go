package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cfglens/internal/log"
	"cfglens/internal/scanner"
	"cfglens/pkg/ast"
	"cfglens/pkg/cfg"
	"cfglens/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export analysis records as JSONL",
	Long: `Exports the language-neutral intermediate representation of every
function's control-flow graph as JSONL, one record per node and edge.
The path may be a single source file or a directory.

Output goes to stdout unless --out names a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", path, err)
		}

		var lines []string
		if info.IsDir() {
			files, err := scanner.Scan(path)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			for _, f := range files {
				if f.Language == "" {
					continue
				}
				fileLines, err := exportFile(f.FullPath, f.Path, f.Language)
				if err != nil {
					log.Default().Warn("skipping file", "path", f.Path, "error", err)
					continue
				}
				lines = append(lines, fileLines...)
			}
		} else {
			language, err := resolveLanguage(cmd, cfgFile, path)
			if err != nil {
				return err
			}
			lines, err = exportFile(path, path, language)
			if err != nil {
				return err
			}
		}

		output := strings.Join(lines, "\n")
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := os.WriteFile(out, []byte(output+"\n"), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			log.Default().Info("export written", "path", out, "records", len(lines))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

// exportFile builds the IR for every function in one file and returns its
// JSONL lines.
func exportFile(fullPath, displayPath, language string) ([]string, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	tree, err := ast.Parse(content, language)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var lines []string
	for _, fn := range ast.ListFunctions(tree.RootNode(), content, language) {
		graph := cfg.Build(fn.Name, ast.Body(fn.Node), content, language)
		irGraph := export.ToIR(graph, displayPath)
		jsonl, err := irGraph.ToJSONL()
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", fn.Name, err)
		}
		lines = append(lines, strings.Split(strings.TrimRight(jsonl, "\n"), "\n")...)
	}
	return lines, nil
}

func init() {
	exportCmd.Flags().String("out", "", "Write output to a file instead of stdout")
	exportCmd.Flags().String("language", "", "Language override (default: from file extension)")
	RootCmd.AddCommand(exportCmd)
}
