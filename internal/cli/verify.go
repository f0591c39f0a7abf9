package cli

import (
	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/graphio"
	"github.com/perivale/flywheel/pkg/ir/verify"
)

// newVerifyCmd creates the verify command: check a graph's structural
// invariants without modifying it.
func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Check a graph's structural invariants",
		Long: `Verify loads a JSON graph and checks its structure: every node's input
count must match its operator's arity, no live node may reference a dead
or unknown node, and every edge must be mirrored in the producer's use
list. The exit status is non-zero if any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.Import(args[0])
			if err != nil {
				return err
			}
			if err := verify.Graph(g); err != nil {
				printError("Invalid graph: %s", errors.UserMessage(err))
				return err
			}
			printSuccess("Graph is valid")
			printDetail("%d live nodes", len(g.Reachable()))
			return nil
		},
	}
}
