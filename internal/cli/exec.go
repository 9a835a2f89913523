package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	File string // read commands from a file ("-" for stdin)
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec [commands...]",
		Short: "Run DSL commands non-interactively",
		Long: `Run one or more DSL commands and print their results.

Arguments are joined with spaces and parsed as a single input, so several
commands can be separated by ";" or newlines. A syntax error rejects the
whole input; any other failure affects only its own command.

Exit codes:
  0 - Every command succeeded
  1 - One or more commands failed
  2 - Syntax error or command error (config, database, etc.)

Examples:
  ahghee exec 'put {"id": "n1", "kvps": {"name": "alice"}}'
  ahghee exec 'get "n1" | fields ["name"]' --format json
  ahghee exec -f commands.ahg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read commands from file (- for stdin)")

	return cmd
}

func runExec(opts *ExecOptions, args []string, cmd *cobra.Command) error {
	input, err := readInput(opts.File, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, cfg, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	out := NewRenderer(cmd.OutOrStdout(), opts.Format)

	results, err := s.Exec(ctx, input)
	if err != nil {
		_ = out.Rejected(input, err)
		return WrapExitError(ExitCommandError, "input rejected", err)
	}

	failed := 0
	for _, res := range results {
		if err := out.Result(res); err != nil {
			return err
		}
		if !res.OK() {
			failed++
		}
	}

	if err := s.Flush(ctx); err != nil {
		return WrapExitError(ExitFailure, "flush failed", err)
	}
	if cfg.Metrics.Enabled {
		_ = s.Metrics().WriteSummary(cmd.ErrOrStderr())
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d command(s) failed", failed, len(results)))
	}
	return nil
}

// readInput returns the DSL text from file ("-" for stdin) or the joined
// arguments.
func readInput(file string, args []string, stdin io.Reader) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", NewExitError(ExitCommandError, "give commands as arguments or --file, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read commands", err)
		}
		return string(data), nil
	case len(args) == 0:
		return "", NewExitError(ExitCommandError, "no commands given")
	}
	return strings.Join(args, " "), nil
}
