package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cfglens/internal/config"
	"cfglens/internal/log"
	"cfglens/pkg/ast"
	"cfglens/pkg/cfg"
	"cfglens/pkg/export"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg <file> [function]",
	Short: "Build the control-flow graph for functions in a file",
	Long: `Builds a statement-level control-flow graph for one function, or for
every function in the file when no function name is given.

The graph is rendered as a Mermaid diagram by default. Use --format to
get JSONL records or a single JSON document instead.`,
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

		graphs, err := buildGraphs(cmd, cfgFile, args)
		if err != nil {
			return err
		}

		validate, _ := cmd.Flags().GetBool("validate")
		var out []string
		for _, g := range graphs {
			for _, d := range g.Diagnostics {
				log.Default().Warn("builder diagnostic", "function", g.Function, "message", d.Message, "span", d.Span)
			}
			rendered, err := renderGraph(g, format, validate)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", g.Function, err)
			}
			out = append(out, rendered)
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, "\n\n"))
		return nil
	},
}

// buildGraphs parses the file and builds a graph per selected function.
func buildGraphs(cmd *cobra.Command, cfgFile *config.Config, args []string) ([]*cfg.ControlFlowGraph, error) {
	path := args[0]
	content, err := readSource(path)
	if err != nil {
		return nil, err
	}
	language, err := resolveLanguage(cmd, cfgFile, path)
	if err != nil {
		return nil, err
	}

	tree, err := ast.Parse(content, language)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var fns []ast.Function
	if len(args) == 2 {
		node := ast.FindFunction(tree.RootNode(), content, language, args[1])
		if node == nil {
			return nil, fmt.Errorf("function %q not found in %s", args[1], path)
		}
		fns = []ast.Function{{Name: args[1], Node: node}}
	} else {
		fns = ast.ListFunctions(tree.RootNode(), content, language)
		if len(fns) == 0 {
			return nil, fmt.Errorf("no functions found in %s", path)
		}
	}

	graphs := make([]*cfg.ControlFlowGraph, 0, len(fns))
	for _, fn := range fns {
		graphs = append(graphs, cfg.Build(fn.Name, ast.Body(fn.Node), content, language))
	}
	return graphs, nil
}

func renderGraph(g *cfg.ControlFlowGraph, format config.OutputFormat, validate bool) (string, error) {
	switch format {
	case config.FormatMermaid:
		if validate {
			return export.MermaidValidated(g)
		}
		return export.Mermaid(g), nil
	case config.FormatJSONL:
		return export.JSONL(g)
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
	cfgCmd.Flags().String("format", "", "Output format: mermaid, jsonl or json")
	cfgCmd.Flags().String("language", "", "Language override (default: from file extension)")
	cfgCmd.Flags().Bool("validate", false, "Validate Mermaid output before printing")
	RootCmd.AddCommand(cfgCmd)
}
