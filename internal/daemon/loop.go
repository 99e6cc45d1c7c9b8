package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/vega/internal/command"
)

// DefaultInterval is the queue poll period.
const DefaultInterval = 100 * time.Millisecond

// Runner performs one full reconcile-and-retile pass for cmd.
type Runner func(cmd command.Command) error

// LoopConfig holds configuration for the poll loop.
type LoopConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Loop polls a Queue on a fixed interval and runs one pass per tick while
// commands are pending.
type Loop struct {
	interval time.Duration
	queue    *Queue
	run      Runner
	logger   *slog.Logger
}

// NewLoop creates a loop that drains queue through run.
func NewLoop(cfg LoopConfig, queue *Queue, run Runner) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Loop{
		interval: interval,
		queue:    queue,
		run:      run,
		logger:   logger,
	}
}

// Run starts the poll loop. Blocks until context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("poll loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("poll loop stopped", "pending", l.queue.Len())
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step drains at most one pending command. It reports whether a command was
// run.
func (l *Loop) Step() bool {
	cmd, ok := l.queue.Pop()
	if !ok {
		return false
	}

	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("pass panic recovered", "command", string(cmd), "error", err)
		}
	}()

	if err := l.run(cmd); err != nil {
		l.logger.Error("pass failed", "command", string(cmd), "error", err)
	}
	return true
}
