package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/extsql/internal/render"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Output string
}

// GraphResult is the JSON payload of the graph command.
type GraphResult struct {
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
	DOT   string `json:"dot"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Print the entity graph in graphviz format",
		Long: `Build the entity graph and print it as a graphviz digraph.

Descriptor nodes are named "sql NAME"; the bootstrap and finalize anchors
appear as "bootstrap" and "finalize".

Example:
  extsql graph ./sql | dot -Tsvg > graph.svg`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runGraph(opts *GraphOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	path, err := resolveManifest(opts.RootOptions, args)
	if err != nil {
		return buildFailure(formatter, err)
	}

	build, err := LoadAndBuild(path)
	if err != nil {
		return buildFailure(formatter, err)
	}

	dot := render.DOT(build.Plan)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(dot), 0644); err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "writing output file", err),
				ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(GraphResult{
			Nodes: len(build.Plan.Nodes),
			Edges: len(build.Plan.Edges),
			DOT:   dot,
		})
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote graph with %d node(s) to %s\n", len(build.Plan.Nodes), opts.Output)
		return nil
	}
	_, err = fmt.Fprint(formatter.Writer, dot)
	return err
}
