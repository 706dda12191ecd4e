package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cfglens/internal/config"
	"cfglens/pkg/ast"
	"cfglens/pkg/basicblock"
	"cfglens/pkg/export"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks <file> [function]",
	Short: "Build the basic-block graph for functions in a file",
	Long: `Builds a basic-block graph, where straight-line runs of statements are
coalesced into single blocks. Covers one function, or every function in
the file when no name is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := resolveFormat(cmd, cfgFile)
		if err != nil {
			return err
		}

		path := args[0]
		content, err := readSource(path)
		if err != nil {
			return err
		}
		language, err := resolveLanguage(cmd, cfgFile, path)
		if err != nil {
			return err
		}

		tree, err := ast.Parse(content, language)
		if err != nil {
			return err
		}
		defer tree.Close()

		var fns []ast.Function
		if len(args) == 2 {
			node := ast.FindFunction(tree.RootNode(), content, language, args[1])
			if node == nil {
				return fmt.Errorf("function %q not found in %s", args[1], path)
			}
			fns = []ast.Function{{Name: args[1], Node: node}}
		} else {
			fns = ast.ListFunctions(tree.RootNode(), content, language)
			if len(fns) == 0 {
				return fmt.Errorf("no functions found in %s", path)
			}
		}

		var out []string
		for _, fn := range fns {
			graph := basicblock.Build(fn.Name, ast.Body(fn.Node), content, language)
			rendered, err := renderBlockGraph(graph, format)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", fn.Name, err)
			}
			out = append(out, rendered)
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, "\n\n"))
		return nil
	},
}

func renderBlockGraph(g *basicblock.Graph, format config.OutputFormat) (string, error) {
	switch format {
	case config.FormatMermaid:
		return export.BlockMermaid(g), nil
	case config.FormatJSONL:
		return export.BlockJSONL(g)
	case config.FormatJSON:
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func init() {
	blocksCmd.Flags().String("format", "", "Output format: mermaid, jsonl or json")
	blocksCmd.Flags().String("language", "", "Language override (default: from file extension)")
	RootCmd.AddCommand(blocksCmd)
}
