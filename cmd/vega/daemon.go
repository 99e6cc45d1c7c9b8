package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/daemon"
	"github.com/1broseidon/vega/internal/ipc"
	"github.com/1broseidon/vega/internal/x11"
	"github.com/spf13/cobra"
)

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Grab the global shortcuts and apply commands in-process",
		Long: "daemon keeps one process resident. Key presses are queued and a\n" +
			"poll loop applies them one at a time, each with a fresh window\n" +
			"snapshot, so a pass never blocks key capture.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.runDaemon(cmd.Context())
		},
	}
}

func (a *app) runDaemon(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	socket, err := a.socketPath()
	if err != nil {
		return err
	}
	queue := &daemon.Queue{}
	server := ipc.NewServer(socket, queue, a.logger)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if err := a.grabHotkeys(conn, queue.Push); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	go func() {
		conn.EventLoop()
		cancel()
	}()

	loop := daemon.NewLoop(daemon.LoopConfig{
		Interval: a.cfg.PollInterval(),
		Logger:   a.logger,
	}, queue, func(c command.Command) error {
		_, err := a.runOnce(c)
		return err
	})

	a.logger.Info("daemon started", "pid", os.Getpid())
	loop.Run(ctx)
	conn.Quit()
	a.logger.Info("daemon stopped")
	return nil
}
