// Package daemon implements the resident mode: hotkey notifications are
// queued by the listener and drained by a polling loop, one pass each.
package daemon

import (
	"sync"

	"github.com/1broseidon/vega/internal/command"
)

// Queue is an unbounded FIFO of pending commands. Push never blocks, so the
// goroutine that owns key capture is never held up by a slow pass.
type Queue struct {
	mu    sync.Mutex
	items []command.Command
}

// Push appends cmd.
func (q *Queue) Push(cmd command.Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
}

// Pop removes and returns the oldest command. ok is false when the queue is
// empty.
func (q *Queue) Pop() (cmd command.Command, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	cmd = q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return cmd, true
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
