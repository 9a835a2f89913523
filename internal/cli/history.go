package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ahghee/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Graph string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <iri>",
		Short: "Show every stored version of a node",
		Long: `Show the version history of a node, oldest first. A put whose
content matches the latest version does not add a version.

Example:
  ahghee history --db ./graph.db n1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "", "graph the node belongs to")

	return cmd
}

func runHistory(opts *HistoryOptions, iri string, cmd *cobra.Command) error {
	s, _, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	id := ir.NodeID{Graph: opts.Graph, IRI: iri}
	out := NewRenderer(cmd.OutOrStdout(), opts.Format)

	versions, err := s.History(commandContext(cmd), id)
	if err != nil {
		_ = out.Rejected("history "+id.String(), err)
		return WrapExitError(ExitFailure, "history failed", err)
	}
	return out.History(id, versions)
}
