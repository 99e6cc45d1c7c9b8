package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/hotkeys"
	"github.com/1broseidon/vega/internal/x11"
	"github.com/spf13/cobra"
)

func newListenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Grab the global shortcuts and run one vega process per key press",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.listen()
		},
	}
}

func (a *app) listen() error {
	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	if err := a.grabHotkeys(conn, a.spawn); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		a.logger.Info("received signal, shutting down", "signal", sig)
		conn.Quit()
	}()

	a.logger.Info("listening for hotkeys")
	conn.EventLoop()
	return nil
}

func (a *app) grabHotkeys(conn *x11.Connection, fire func(command.Command)) error {
	bindings, err := hotkeys.Bindings(a.cfg.CycleHotkey, a.cfg.PromoteHotkey)
	if err != nil {
		return err
	}
	return hotkeys.NewHandler(conn, a.logger).Bind(bindings, fire)
}

// spawn runs "vega <cmd>" as a separate process so a slow or crashing pass
// never stalls key capture.
func (a *app) spawn(c command.Command) {
	exe, err := os.Executable()
	if err != nil {
		a.logger.Error("failed to resolve executable", "error", err)
		return
	}

	proc := exec.Command(exe, a.childArgs(c)...)
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	if err := proc.Start(); err != nil {
		a.logger.Error("failed to spawn", "command", string(c), "error", err)
		return
	}

	go func(c command.Command, proc *exec.Cmd) {
		if err := proc.Wait(); err != nil {
			a.logger.Warn("command exited with error", "command", string(c), "pid", proc.Process.Pid, "error", err)
			return
		}
		a.logger.Debug("command finished", "command", string(c), "pid", proc.Process.Pid)
	}(c, proc)
}

// childArgs forwards the flags that affect a single pass.
func (a *app) childArgs(c command.Command) []string {
	args := []string{string(c)}
	if a.configPath != "" {
		args = append(args, "--config", a.configPath)
	}
	if a.verbose {
		args = append(args, "--verbose")
	}
	return args
}

