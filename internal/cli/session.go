package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/chloe/internal/config"
	"github.com/roach88/chloe/internal/store"
)

// session is what a subcommand works with: the loaded config, a logger and
// the opened store.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	out    *OutputFormatter
}

// openSession loads the config, sets up logging and opens the store. Opening
// the store runs the recovery merge.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Logging, opts.Verbose)

	dir := opts.Database
	if dir == "" {
		dir = cfg.Database.Dir
	}
	logger.Debug("opening store", "dir", dir)
	st, err := store.Open(dir,
		store.WithLogger(logger),
		store.WithDiscardTornTail(cfg.Database.DiscardTornTail),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		store:  st,
		out:    newFormatter(opts, cmd),
	}, nil
}

// Close closes the store, logging any error.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newLogger builds the slog handler from the logging config. --verbose forces
// debug level.
func newLogger(w io.Writer, l config.Logging, verbose bool) *slog.Logger {
	level := l.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if l.Format == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	w := cmd.OutOrStdout()
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    w,
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		Color:     opts.Format == "text" && useColor(w),
	}
}

// commandContext returns the command's context, or Background when the
// command was not started through ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
