package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/graphio"
	"github.com/perivale/flywheel/pkg/ir"
)

// graphStats summarizes the live part of a graph.
type graphStats struct {
	nodes     int
	edges     int
	depth     int
	byOpcode  map[string]int
	byKind    map[ir.Kind]int
	maxUses   int
	maxUsesOp string
}

// collectStats walks the live nodes of a graph and tallies operators,
// edge kinds, and the most-used node.
func collectStats(g *ir.Graph) graphStats {
	stats := graphStats{
		byOpcode: make(map[string]int),
		byKind:   make(map[ir.Kind]int),
	}
	for _, n := range g.Reachable() {
		stats.nodes++
		stats.byOpcode[n.Op().Opcode.String()]++
		op := n.Op()
		for i := 0; i < n.InputCount(); i++ {
			stats.edges++
			switch {
			case i < op.ValueIn:
				stats.byKind[ir.KindValue]++
			case i < op.ValueIn+op.EffectIn:
				stats.byKind[ir.KindEffect]++
			default:
				stats.byKind[ir.KindControl]++
			}
		}
		if n.UseCount() > stats.maxUses {
			stats.maxUses = n.UseCount()
			stats.maxUsesOp = n.String()
		}
	}
	if end := g.End(); end != nil {
		stats.depth = graphDepth(end, make(map[ir.NodeID]int), make(map[ir.NodeID]bool))
	}
	return stats
}

// graphDepth returns the longest input chain below n, counting n itself.
// Back edges (loop headers, loop phis) are skipped via the on-path set, so
// cyclic graphs report the depth of their acyclic skeleton.
func graphDepth(n *ir.Node, memo map[ir.NodeID]int, onPath map[ir.NodeID]bool) int {
	if d, ok := memo[n.ID()]; ok {
		return d
	}
	if onPath[n.ID()] {
		return 0
	}
	onPath[n.ID()] = true
	deepest := 0
	for i := 0; i < n.InputCount(); i++ {
		if d := graphDepth(n.InputAt(i), memo, onPath); d > deepest {
			deepest = d
		}
	}
	delete(onPath, n.ID())
	memo[n.ID()] = deepest + 1
	return deepest + 1
}

// newStatsCmd creates the stats command: per-operator counts for a graph.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print per-operator statistics for a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.Import(args[0])
			if err != nil {
				return err
			}
			stats := collectStats(g)

			names := make([]string, 0, len(stats.byOpcode))
			for name := range stats.byOpcode {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				if stats.byOpcode[names[i]] != stats.byOpcode[names[j]] {
					return stats.byOpcode[names[i]] > stats.byOpcode[names[j]]
				}
				return names[i] < names[j]
			})

			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{name, fmt.Sprintf("%d", stats.byOpcode[name])}
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("Operator", "Count").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return StyleTitle
					}
					if col == 1 {
						return StyleNumber
					}
					return StyleValue
				})
			fmt.Println(t.Render())

			printKeyValue("nodes", fmt.Sprintf("%d", stats.nodes))
			printKeyValue("edges", fmt.Sprintf("%d", stats.edges))
			printKeyValue("depth", fmt.Sprintf("%d", stats.depth))
			printKeyValue("value", fmt.Sprintf("%d", stats.byKind[ir.KindValue]))
			printKeyValue("effect", fmt.Sprintf("%d", stats.byKind[ir.KindEffect]))
			printKeyValue("control", fmt.Sprintf("%d", stats.byKind[ir.KindControl]))
			if stats.maxUses > 0 {
				printKeyValue("most used", fmt.Sprintf("%s (%d uses)", stats.maxUsesOp, stats.maxUses))
			}
			return nil
		},
	}
}
