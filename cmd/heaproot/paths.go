// ABOUTME: paths subcommand explaining why an object is retained
// ABOUTME: Prints the shortest reference chains from an object to the roots

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prateek/heaproot/graph"
)

func newPathsCmd(cfg *config) *cobra.Command {
	var (
		id       uint64
		maxPaths int
	)
	cmd := &cobra.Command{
		Use:   "paths <snapshot>",
		Short: "Show paths from an object to the roots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max") {
				maxPaths = cfg.Paths.Max
			}
			if maxPaths <= 0 {
				return fmt.Errorf("--max must be positive, got %d", maxPaths)
			}
			g, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			return renderPaths(cmd.OutOrStdout(), g, graph.ObjID(id), maxPaths)
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "object handle to explain")
	cmd.Flags().IntVar(&maxPaths, "max", 10, "maximum number of paths to print")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func renderPaths(out io.Writer, g graph.Graph, id graph.ObjID, maxPaths int) error {
	if g.GetObject(id) == nil {
		return fmt.Errorf("object %d not found in snapshot", id)
	}
	paths := graph.PathsToRoots(g, id, maxPaths)
	if len(paths) == 0 {
		fmt.Fprintf(out, "object %d is unreachable\n", id)
		return nil
	}
	for i, p := range paths {
		steps := make([]string, len(p.IDs))
		for j, step := range p.IDs {
			steps[j] = fmt.Sprintf("%d (%s)", step, typeOf(g, step))
		}
		fmt.Fprintf(out, "#%d: %s\n", i+1, strings.Join(steps, " <- "))
	}
	return nil
}

func typeOf(g graph.Graph, id graph.ObjID) string {
	if obj := g.GetObject(id); obj != nil {
		return obj.Type
	}
	return "?"
}
