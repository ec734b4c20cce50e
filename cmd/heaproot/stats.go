// ABOUTME: stats subcommand summarising a heap snapshot
// ABOUTME: Reports object, root, reachable and unreachable counts

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/prateek/heaproot/graph"
	"github.com/prateek/heaproot/heapdump"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "Summarise a heap snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := openSnapshot(args[0])
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), g)
			return nil
		},
	}
}

func openSnapshot(path string) (graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := heapdump.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func renderStats(out io.Writer, g graph.Graph) {
	var size uint64
	g.ForEachObject(func(obj *graph.Object) {
		size += obj.Size
	})
	reachable := graph.Reachable(g)

	fmt.Fprintf(out, "objects:     %d\n", g.NumObjects())
	fmt.Fprintf(out, "bytes:       %d\n", size)
	fmt.Fprintf(out, "roots:       %d\n", len(g.GetRoots().IDs))
	fmt.Fprintf(out, "reachable:   %d\n", len(reachable))
	fmt.Fprintf(out, "unreachable: %d\n", g.NumObjects()-len(reachable))
}
