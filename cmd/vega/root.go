package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/vega/internal/config"
	"github.com/1broseidon/vega/internal/platform"
	"github.com/1broseidon/vega/internal/state"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what every subcommand needs. Fields set by flags are filled
// in before RunE; cfg and logger are populated by setup.
type app struct {
	openProvider func(platform.Options) (platform.Provider, error)
	socketPath   func() (string, error)

	configPath string
	verbose    bool
	noDaemon   bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vega",
		Short: "Tile windows on the main display",
		Long: "vega arranges the windows of the current desktop into a master-stack\n" +
			"layout (Vertical, Horizontal or Monocle). Each invocation applies one\n" +
			"command and retiles; the layout and window order persist between runs.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError{errMissingCommand}
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/vega/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().BoolVar(&a.noDaemon, "no-daemon", false, "apply commands in this process even if a daemon is running")

	root.AddCommand(
		newTileCmd(a, "cycle", "Switch to the next layout and retile"),
		newTileCmd(a, "promote", "Move the focused window to the master slot and retile"),
		newListenCmd(a),
		newDaemonCmd(a),
		newStatusCmd(a),
		newStateCmd(a),
		newDisplaysCmd(a),
		newConfigCmd(a),
	)
	return root
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path, err := a.resolvedConfigPath()
	if err != nil {
		return err
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = res.Config

	level := a.cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	if res.File != "" {
		a.logger.Debug("configuration loaded", "file", res.File)
	}
	return nil
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

// statePath resolves the state file: the configured override, else the
// per-user runtime directory.
func (a *app) statePath() (string, error) {
	if a.cfg != nil && a.cfg.StatePath != "" {
		return a.cfg.StatePath, nil
	}
	return state.DefaultPath()
}

func (a *app) providerOptions() platform.Options {
	return platform.Options{
		ExcludedApps: a.cfg.ExcludedApps,
		Logger:       a.logger,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
