// Package order merges a persisted window ordering with the live window set.
package order

import "github.com/1broseidon/vega/internal/window"

// Reconcile returns the live windows ordered by persisted.
//
// Windows whose signature appears in persisted keep their persisted relative
// order. Each persisted entry consumes at most one live window, so duplicate
// signatures pair up in discovery order. Live windows left over are appended
// in discovery order; persisted entries with no live match are dropped.
//
// The result is always a permutation of live.
func Reconcile(persisted []window.Signature, live []window.LiveWindow) []window.LiveWindow {
	pending := make(map[window.Signature][]int, len(live))
	for i, w := range live {
		pending[w.Signature] = append(pending[w.Signature], i)
	}

	consumed := make([]bool, len(live))
	result := make([]window.LiveWindow, 0, len(live))

	for _, sig := range persisted {
		queue := pending[sig]
		if len(queue) == 0 {
			continue
		}
		idx := queue[0]
		pending[sig] = queue[1:]
		consumed[idx] = true
		result = append(result, live[idx])
	}

	for i, w := range live {
		if !consumed[i] {
			result = append(result, w)
		}
	}

	return result
}
