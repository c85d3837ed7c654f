package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/graph"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output string // output file; format inferred from extension if unset
	format string // dot, svg, or png
}

// newGraphCmd creates the graph command. It renders a graph JSON file
// previously written by "extract --graph".
func newGraphCmd() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <graph.json>",
		Short: "Render a saved dependency graph",
		Long: `Render a dependency graph written by "carve extract --graph" as DOT,
SVG, or PNG.

Examples:
  carve extract main.py -r . --graph deps.json
  carve graph deps.json -o deps.svg
  carve graph deps.json --format dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGraph(c, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout for dot if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, or png (inferred from -o extension)")

	return cmd
}

// runGraph loads the graph and renders it in the requested format.
func runGraph(cmd *cobra.Command, path string, opts *graphOpts) error {
	g, err := graph.ReadFile(path)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.output)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "dot"
		}
	}

	dot := graph.ToDOT(g)

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = graph.RenderSVG(cmd.Context(), dot)
	case "png":
		data, err = graph.RenderPNG(cmd.Context(), dot)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutput, err, "writing graph output %s", opts.output)
	}

	printSuccess("Rendered %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	printFile(opts.output)
	return nil
}
