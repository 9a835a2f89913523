package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.nt>...",
		Short: "Import N-Triples files",
		Long: `Import N-Triples documents. Triples are grouped by subject into
nodes; predicates become node reference keys and objects become values.
Blank nodes are scoped to the file they appear in.

Example:
  ahghee load --db ./graph.db people.nt places.nt`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args, cmd)
		},
	}
}

func runLoad(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	s, cfg, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	out := NewRenderer(cmd.OutOrStdout(), opts.Format)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open "+path, err)
		}
		res, err := s.Load(ctx, f)
		f.Close()
		if err != nil {
			_ = out.Rejected(path, err)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
		}

		res.Command = "load " + path
		if err := out.Result(res); err != nil {
			return err
		}
		if res.Err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to store %s", path), res.Err)
		}
	}

	if err := s.Flush(ctx); err != nil {
		return WrapExitError(ExitFailure, "flush failed", err)
	}
	if cfg.Metrics.Enabled {
		_ = s.Metrics().WriteSummary(cmd.ErrOrStderr())
	}
	return nil
}
