package main

import (
	"errors"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/ipc"
	"github.com/1broseidon/vega/internal/orchestrator"
	"github.com/1broseidon/vega/internal/state"
	"github.com/spf13/cobra"
)

func newTileCmd(a *app, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := command.Parse(name)
			if err != nil {
				return err
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			if !a.noDaemon {
				forwarded, err := a.forward(c)
				if forwarded || err != nil {
					return err
				}
			}
			_, err = a.runOnce(c)
			return err
		},
	}
}

// forward hands c to a running daemon. It reports false with a nil error
// when no daemon is listening.
func (a *app) forward(c command.Command) (bool, error) {
	path, err := a.socketPath()
	if err != nil {
		return false, err
	}
	err = ipc.NewClient(path).Run(c)
	switch {
	case errors.Is(err, ipc.ErrDaemonNotRunning):
		a.logger.Debug("no daemon, applying in-process", "socket", path)
		return false, nil
	case err != nil:
		return true, err
	}
	a.logger.Debug("command forwarded to daemon", "command", string(c), "socket", path)
	return true, nil
}

// runOnce opens a fresh provider, applies c and closes the provider again.
func (a *app) runOnce(c command.Command) (orchestrator.Report, error) {
	path, err := a.statePath()
	if err != nil {
		return orchestrator.Report{}, err
	}

	provider, err := a.openProvider(a.providerOptions())
	if err != nil {
		return orchestrator.Report{}, err
	}
	defer provider.Close()

	store := state.NewStore(path, a.logger)
	return orchestrator.New(provider, store, a.logger).Run(c)
}
