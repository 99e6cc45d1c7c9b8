package daemon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/vega/internal/command"
)

func TestQueue_FIFO(t *testing.T) {
	var q Queue
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue")
	}

	q.Push(command.Cycle)
	q.Push(command.Promote)
	q.Push(command.Cycle)
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}

	for _, want := range []command.Command{command.Cycle, command.Promote, command.Cycle} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = %q,%v want %q", got, ok, want)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected drained queue")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(command.Cycle)
		}()
	}
	wg.Wait()
	if q.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", q.Len())
	}
}

func TestLoop_StepDrainsOnePerCall(t *testing.T) {
	var q Queue
	var ran []command.Command
	loop := NewLoop(LoopConfig{}, &q, func(cmd command.Command) error {
		ran = append(ran, cmd)
		return nil
	})

	if loop.Step() {
		t.Fatal("Step on an empty queue should do nothing")
	}

	q.Push(command.Promote)
	q.Push(command.Cycle)

	if !loop.Step() || len(ran) != 1 || ran[0] != command.Promote {
		t.Fatalf("first step ran %v", ran)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one command left, got %d", q.Len())
	}
	if !loop.Step() || len(ran) != 2 || ran[1] != command.Cycle {
		t.Fatalf("second step ran %v", ran)
	}
}

func TestLoop_StepSurvivesErrorsAndPanics(t *testing.T) {
	var logs bytes.Buffer
	var q Queue
	calls := 0
	loop := NewLoop(LoopConfig{Logger: slog.New(slog.NewTextHandler(&logs, nil))}, &q, func(cmd command.Command) error {
		calls++
		if cmd == command.Cycle {
			panic("boom")
		}
		return errors.New("no windows")
	})

	q.Push(command.Cycle)
	q.Push(command.Promote)
	loop.Step()
	loop.Step()

	if calls != 2 {
		t.Fatalf("expected both passes to run, got %d", calls)
	}
	out := logs.String()
	if !strings.Contains(out, "pass panic recovered") || !strings.Contains(out, "pass failed") {
		t.Fatalf("expected both failures logged, got %q", out)
	}
}

func TestLoop_RunDrainsUntilCancelled(t *testing.T) {
	var q Queue
	done := make(chan command.Command, 4)
	loop := NewLoop(LoopConfig{Interval: time.Millisecond}, &q, func(cmd command.Command) error {
		done <- cmd
		return nil
	})

	q.Push(command.Cycle)
	q.Push(command.Promote)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(stopped)
	}()

	for _, want := range []command.Command{command.Cycle, command.Promote} {
		select {
		case got := <-done:
			if got != want {
				t.Fatalf("ran %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestNewLoop_DefaultInterval(t *testing.T) {
	loop := NewLoop(LoopConfig{}, &Queue{}, func(command.Command) error { return nil })
	if loop.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", loop.interval, DefaultInterval)
	}
}
