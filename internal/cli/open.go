package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ahghee/internal/config"
	"github.com/roach88/ahghee/internal/session"
)

// loadConfig reads the config file and environment, then applies the
// global flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	if opts.Backend != "" {
		cfg.Store.Backend = opts.Backend
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// openSession loads configuration and opens a session on the configured
// backend. Logs go to the command's stderr. The caller must Close the
// session.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session.Session, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	logger := cfg.Logger(cmd.ErrOrStderr())
	s, err := session.Open(commandContext(cmd), cfg, session.WithLogger(logger))
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return s, cfg, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
