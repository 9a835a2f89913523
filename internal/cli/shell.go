package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/ahghee/internal/session"
)

// LineReader reads shell input. *liner.State implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Shell is the interactive read-exec-print loop.
type Shell struct {
	Session  *session.Session
	Reader   LineReader
	Renderer *Renderer
	Prompt   string
	Logger   *slog.Logger
}

// Run reads lines until EOF, Ctrl-C, "quit" or "exit". Each line is
// executed as one input; a failing line never ends the loop.
func (sh *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := sh.Reader.Prompt(sh.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		sh.Reader.AppendHistory(line)

		if err := sh.Exec(ctx, line); err != nil {
			return err
		}
	}
}

// Exec runs one input and renders its results. Only output failures are
// returned.
func (sh *Shell) Exec(ctx context.Context, input string) error {
	results, err := sh.Session.Exec(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		sh.Logger.Debug("input rejected", "error", err)
		return sh.Renderer.Rejected(input, err)
	}
	for _, res := range results {
		if err := sh.Renderer.Result(res); err != nil {
			return err
		}
	}
	return nil
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive DSL shell",
		Long: `Start an interactive shell. Each line is parsed and run as one or
more DSL commands; results are printed as status lines and node tables.

The prompt and history file come from shell.prompt and shell.history in
the configuration. Ctrl-C or Ctrl-D leaves the shell.

Example:
  ahghee shell --db ./graph.db
  wat> put {"id": "n1", "kvps": {"name": "alice"}}
  status> put(n1).done in 2ms`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	s, cfg, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if cfg.Shell.History != "" {
		if f, err := os.Open(cfg.Shell.History); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	sh := &Shell{
		Session:  s,
		Reader:   line,
		Renderer: NewRenderer(cmd.OutOrStdout(), opts.Format),
		Prompt:   cfg.Shell.Prompt,
		Logger:   cfg.Logger(cmd.ErrOrStderr()),
	}
	runErr := sh.Run(commandContext(cmd))

	if cfg.Shell.History != "" {
		if f, err := os.Create(cfg.Shell.History); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
	if cfg.Metrics.Enabled {
		_ = s.Metrics().WriteSummary(cmd.ErrOrStderr())
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "shell failed", runErr)
	}
	return nil
}
